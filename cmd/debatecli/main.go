// debatecli 在終端機參與辯論：輪詢房間狀態、顯示倒數、提交文字或語音發言。
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"debate_arena/internal/client"
	"debate_arena/internal/debate"
	"debate_arena/internal/debateview"
	"debate_arena/internal/models"
	"debate_arena/internal/session"
	"debate_arena/pkg/config"
)

type options struct {
	room     string
	email    string
	password string
	username string
	join     bool
	spectate bool
	team     string
	debug    bool
}

func main() {
	var opts options
	flags := pflag.NewFlagSet("debatecli", pflag.ExitOnError)
	flags.StringVar(&opts.room, "room", "", "room code to open")
	flags.StringVar(&opts.email, "email", "", "log in with this email")
	flags.StringVar(&opts.password, "password", "", "password for --email")
	flags.StringVar(&opts.username, "register", "", "register a new account with this username before logging in")
	flags.BoolVar(&opts.join, "join", false, "join the room as a debater")
	flags.BoolVar(&opts.spectate, "spectate", false, "join the room as a spectator")
	flags.StringVar(&opts.team, "team", "", "team for team debates (for|against)")
	flags.BoolVar(&opts.debug, "debug", false, "verbose logging")
	flags.String("base-url", "", "debate server URL")
	flags.String("token-file", "", "where the login token is stored")
	flags.Duration("poll-interval", 0, "how often to refresh room state")
	flags.Bool("realtime", false, "subscribe to room events in addition to polling")
	_ = flags.Parse(os.Args[1:])

	v := viper.New()
	bindFlag(v, flags, "client.base_url", "base-url")
	bindFlag(v, flags, "client.token_file", "token-file")
	bindFlag(v, flags, "client.poll_interval", "poll-interval")
	bindFlag(v, flags, "client.realtime", "realtime")

	cfg, err := config.LoadWith(v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(opts.debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg.Client, opts, logger); err != nil {
		logger.Error("debatecli failed", zap.Error(err))
		os.Exit(1)
	}
}

// bindFlag 只有使用者明確設定時 flag 才覆蓋設定檔
func bindFlag(v *viper.Viper, flags *pflag.FlagSet, key, name string) {
	if f := flags.Lookup(name); f != nil && f.Changed {
		_ = v.BindPFlag(key, f)
	}
}

func newLogger(debug bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	if !debug {
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	return cfg.Build()
}

func run(cfg config.ClientConfig, opts options, logger *zap.Logger) error {
	if opts.room == "" {
		return fmt.Errorf("--room is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sess := session.New(session.NewFileTokenStore(cfg.TokenFile), logger)
	if err := sess.Init(); err != nil {
		return fmt.Errorf("load token: %w", err)
	}
	defer sess.Teardown()
	sess.OnUnauthorized(func() {
		fmt.Fprintln(os.Stderr, "session expired, log in again with --email and --password")
		stop()
	})

	api := client.New(cfg.BaseURL, cfg.RequestTimeout, sess, logger)

	if opts.email != "" {
		if err := authenticate(ctx, api, opts); err != nil {
			return err
		}
	}
	if !sess.Authenticated() {
		return fmt.Errorf("not logged in, pass --email and --password")
	}

	me, err := api.Me(ctx)
	if err != nil {
		return fmt.Errorf("fetch profile: %w", err)
	}

	switch {
	case opts.join:
		var team *models.Team
		if opts.team != "" {
			t := models.Team(opts.team)
			team = &t
		}
		if _, err := api.JoinRoom(ctx, opts.room, team); err != nil {
			return fmt.Errorf("join room: %w", err)
		}
	case opts.spectate:
		if _, err := api.JoinAsSpectator(ctx, opts.room); err != nil {
			return fmt.Errorf("join as spectator: %w", err)
		}
	}

	out := os.Stdout
	view := debateview.New(api, debateview.Options{
		UserID:         me.ID,
		PollInterval:   cfg.PollInterval,
		ReconcileDelay: cfg.ReconcileDelay,
		EndSettleDelay: cfg.EndSettleDelay,
	}, debateview.Hooks{
		TimerExpired: func(pos debate.Position) {
			fmt.Fprintf(out, "! time is up for round %d turn %d\n", pos.Round, pos.Turn)
		},
		Waiting: func() {
			fmt.Fprintln(out, "! all rounds finished, waiting for the host to end the debate")
		},
		Ended: func(scores map[uint]models.ScoreCard) {
			printScores(out, scores)
			stop()
		},
		Error: func(err error) {
			fmt.Fprintf(out, "! %v\n", err)
		},
	}, logger)
	defer view.Close()

	if err := view.Load(ctx, opts.room); err != nil {
		return fmt.Errorf("open room: %w", err)
	}
	printState(out, view.State())

	go view.Run(ctx)

	if cfg.Realtime {
		roomID := view.State().Room.ID
		go func() {
			err := api.Subscribe(ctx, roomID, func(evt models.Event) {
				if evt.Type == models.EventSystem {
					fmt.Fprintf(out, "* %s\n", evt.Content)
				}
				view.Nudge()
			})
			if err != nil {
				logger.Warn("realtime channel closed, falling back to polling", zap.Error(err))
			}
		}()
	}

	return prompt(ctx, os.Stdin, out, api, view)
}

func authenticate(ctx context.Context, api *client.Client, opts options) error {
	if opts.username != "" {
		if _, err := api.Register(ctx, opts.email, opts.username, opts.password); err != nil {
			return fmt.Errorf("register: %w", err)
		}
		return nil
	}
	if _, err := api.Login(ctx, opts.email, opts.password); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	return nil
}

// prompt 逐行讀取指令，一般文字視為發言
func prompt(ctx context.Context, in io.Reader, out io.Writer, api *client.Client, view *debateview.View) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if quit := handleLine(ctx, out, api, view, strings.TrimSpace(line)); quit {
				return nil
			}
		}
	}
}

func handleLine(ctx context.Context, out io.Writer, api *client.Client, view *debateview.View, line string) bool {
	cmd, rest, _ := strings.Cut(line, " ")
	switch cmd {
	case "":
	case "/quit":
		return true
	case "/status":
		printState(out, view.State())
	case "/hide":
		view.SetVisible(false)
	case "/show":
		view.SetVisible(true)
	case "/end":
		if err := view.EndDebate(ctx); err != nil {
			fmt.Fprintf(out, "! %v\n", err)
		}
	case "/audio":
		path, text, _ := strings.Cut(strings.TrimSpace(rest), " ")
		submitAudio(ctx, out, view, path, text)
	case "/react":
		target, reaction, _ := strings.Cut(strings.TrimSpace(rest), " ")
		id, err := strconv.ParseUint(target, 10, 32)
		if err != nil || reaction == "" {
			fmt.Fprintln(out, "usage: /react <participant id> <reaction>")
			return false
		}
		if err := api.Reward(ctx, view.State().Room.ID, uint(id), reaction); err != nil {
			fmt.Fprintf(out, "! %v\n", err)
		}
	default:
		view.SetDraft(line)
		if _, err := view.Submit(ctx, line, nil); err != nil {
			fmt.Fprintf(out, "! %v\n", err)
			return false
		}
		printState(out, view.State())
	}
	return false
}

func submitAudio(ctx context.Context, out io.Writer, view *debateview.View, path, text string) {
	if path == "" {
		fmt.Fprintln(out, "usage: /audio <file> [text]")
		return
	}
	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(out, "! %v\n", err)
		return
	}
	defer f.Close()

	if _, err := view.Submit(ctx, text, &debateview.Audio{Filename: filepath.Base(path), Data: f}); err != nil {
		fmt.Fprintf(out, "! %v\n", err)
		return
	}
	printState(out, view.State())
}

func printState(out io.Writer, s debateview.State) {
	fmt.Fprintf(out, "%s [%s] round %d/%d, turn %d\n", s.Room.Topic, s.Room.Status, s.Position.Round, s.Room.Rounds, s.Position.Turn)
	if s.TimerActive {
		fmt.Fprintf(out, "  time left: %d:%02d\n", s.Remaining/60, s.Remaining%60)
	}
	for _, t := range s.Transcript {
		fmt.Fprintf(out, "  R%d.%d #%d: %s\n", t.RoundNumber, t.TurnNumber, t.SpeakerID, t.Content)
		if t.AIFeedback.Feedback != "" {
			fmt.Fprintf(out, "      judge: %s\n", t.AIFeedback.Feedback)
		}
	}
	if s.Verdict.CanSubmit {
		fmt.Fprintln(out, "  your turn: type your argument")
	} else if s.Verdict.Reason != "" {
		fmt.Fprintf(out, "  cannot submit: %s\n", s.Verdict.Reason)
	}
}

func printScores(out io.Writer, scores map[uint]models.ScoreCard) {
	fmt.Fprintln(out, "debate ended")
	ids := make([]uint, 0, len(scores))
	for id := range scores {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		card := scores[id]
		fmt.Fprintf(out, "  participant %d: %.1f (logic %.0f, credibility %.0f, rhetoric %.0f)\n",
			id, card.WeightedTotal, card.Logic, card.Credibility, card.Rhetoric)
	}
}
