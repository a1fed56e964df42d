package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"strconv"

	"debate_arena/internal/models"
)

// Status GET /api/debate/{id}/status 的回應
type Status struct {
	Room         models.Room          `json:"room"`
	Participants []models.Participant `json:"participants"`
	TurnCount    int                  `json:"turn_count"`
	Status       models.RoomStatus    `json:"status"`
	CurrentRound int                  `json:"current_round"`
	CurrentTurn  int                  `json:"current_turn"`
}

// TurnRequest 提交發言的內容
type TurnRequest struct {
	Content     string `json:"content"`
	RoundNumber int    `json:"round_number"`
	TurnNumber  int    `json:"turn_number"`
}

type authResponse struct {
	AccessToken string       `json:"access_token"`
	User        *models.User `json:"user"`
}

func (c *Client) Login(ctx context.Context, email, password string) (*models.User, error) {
	var out authResponse
	if err := c.postJSON(ctx, "/api/auth/login", map[string]string{"email": email, "password": password}, &out); err != nil {
		return nil, err
	}
	return out.User, c.session.SetToken(out.AccessToken)
}

func (c *Client) Register(ctx context.Context, email, username, password string) (*models.User, error) {
	var out authResponse
	in := map[string]string{"email": email, "username": username, "password": password}
	if err := c.postJSON(ctx, "/api/auth/register", in, &out); err != nil {
		return nil, err
	}
	return out.User, c.session.SetToken(out.AccessToken)
}

func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.getJSON(ctx, "/api/auth/me", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) RoomByCode(ctx context.Context, code string) (*models.Room, error) {
	var room models.Room
	if err := c.getJSON(ctx, "/api/rooms/code/"+code, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

// JoinRoom 以辯手身份加入，個人賽 team 傳 nil
func (c *Client) JoinRoom(ctx context.Context, code string, team *models.Team) (*models.Participant, error) {
	var p models.Participant
	in := map[string]any{"room_code": code, "team": team}
	if err := c.postJSON(ctx, "/api/participants/join", in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) JoinAsSpectator(ctx context.Context, code string) (*models.Participant, error) {
	var p models.Participant
	if err := c.postJSON(ctx, "/api/spectators/join", map[string]string{"room_code": code}, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) Status(ctx context.Context, roomID uint) (*Status, error) {
	var status Status
	if err := c.getJSON(ctx, fmt.Sprintf("/api/debate/%d/status", roomID), &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (c *Client) Transcript(ctx context.Context, roomID uint) ([]models.Turn, error) {
	var turns []models.Turn
	if err := c.getJSON(ctx, fmt.Sprintf("/api/debate/%d/transcript", roomID), &turns); err != nil {
		return nil, err
	}
	return turns, nil
}

func (c *Client) SubmitTurn(ctx context.Context, roomID uint, in TurnRequest) (*models.Turn, error) {
	var turn models.Turn
	if err := c.postJSON(ctx, fmt.Sprintf("/api/debate/%d/submit-turn", roomID), in, &turn); err != nil {
		return nil, err
	}
	return &turn, nil
}

// SubmitAudio 以 multipart 上傳語音，content 作為補充文字
func (c *Client) SubmitAudio(ctx context.Context, roomID uint, in TurnRequest, filename string, audio io.Reader) (*models.Turn, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	part, err := w.CreateFormFile("audio", filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, audio); err != nil {
		return nil, fmt.Errorf("read audio: %w", err)
	}
	fields := map[string]string{
		"round_number": strconv.Itoa(in.RoundNumber),
		"turn_number":  strconv.Itoa(in.TurnNumber),
		"content":      in.Content,
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	var turn models.Turn
	path := fmt.Sprintf("/api/debate/%d/submit-audio", roomID)
	if err := c.do(ctx, "POST", path, &body, w.FormDataContentType(), &turn); err != nil {
		return nil, err
	}
	return &turn, nil
}

func (c *Client) EndDebate(ctx context.Context, roomID uint) error {
	return c.postJSON(ctx, fmt.Sprintf("/api/debate/%d/end", roomID), nil, nil)
}

// FinalScore 要求伺服器計算最終分數，回傳 participant ID 對應的分數
func (c *Client) FinalScore(ctx context.Context, roomID uint) (map[uint]models.ScoreCard, error) {
	var out struct {
		Scores map[uint]models.ScoreCard `json:"scores"`
	}
	if err := c.postJSON(ctx, "/api/ai/final-score", map[string]uint{"room_id": roomID}, &out); err != nil {
		return nil, err
	}
	return out.Scores, nil
}

func (c *Client) Result(ctx context.Context, roomID uint) (*models.Result, error) {
	var result models.Result
	if err := c.getJSON(ctx, fmt.Sprintf("/api/debate/%d/result", roomID), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Reward 觀眾對辯手送出反應
func (c *Client) Reward(ctx context.Context, roomID, participantID uint, reaction string) error {
	in := map[string]any{"participant_id": participantID, "reaction_type": reaction}
	return c.postJSON(ctx, fmt.Sprintf("/api/spectators/%d/reward", roomID), in, nil)
}
