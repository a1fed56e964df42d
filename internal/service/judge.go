package service

import (
	"fmt"
	"math"
	"strings"
	"unicode"

	"debate_arena/internal/models"
)

// Judge 對單次發言評分
type Judge interface {
	Score(topic, content string, previous []string) models.AIFeedback
}

// HeuristicJudge 以關鍵字與文字特徵評分，結果可重現，不呼叫外部服務
type HeuristicJudge struct{}

var (
	reasoningMarkers = []string{"because", "therefore", "thus", "hence", "since", "consequently", "however", "if", "implies", "so"}
	evidenceMarkers  = []string{"study", "studies", "data", "research", "according", "percent", "source", "evidence", "survey", "report"}
)

func (HeuristicJudge) Score(topic, content string, previous []string) models.AIFeedback {
	text := strings.TrimSpace(content)
	if text == "" {
		return models.AIFeedback{
			Logic:       50,
			Credibility: 50,
			Rhetoric:    50,
			Feedback:    "Audio argument received. Add a written summary to get detailed feedback.",
		}
	}

	words := tokenize(text)
	counts := make(map[string]int, len(words))
	for _, w := range words {
		counts[w]++
	}

	logic := 40.0 + 8*float64(countMarkers(counts, reasoningMarkers)) + math.Min(float64(len(words))/5, 20)
	logic += 4 * float64(topicOverlap(topic, counts))

	credibility := 35.0 + 10*float64(countMarkers(counts, evidenceMarkers))
	if strings.ContainsFunc(text, unicode.IsDigit) {
		credibility += 10
	}

	rhetoric := 45.0
	if len(words) > 0 {
		rhetoric += 30 * float64(len(counts)) / float64(len(words))
	}
	if strings.Contains(text, "?") {
		rhetoric += 5
	}
	if strings.Count(text, "!") > 2 {
		rhetoric -= 5
	}

	for _, p := range previous {
		if strings.EqualFold(strings.TrimSpace(p), text) {
			logic -= 20
			rhetoric -= 20
			break
		}
	}

	fb := models.AIFeedback{
		Logic:       clampScore(logic),
		Credibility: clampScore(credibility),
		Rhetoric:    clampScore(rhetoric),
	}
	fb.Feedback = feedbackText(fb)
	return fb
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '%'
	})
}

func countMarkers(counts map[string]int, markers []string) int {
	n := 0
	for _, m := range markers {
		n += counts[m]
	}
	if n > 5 {
		n = 5
	}
	return n
}

func topicOverlap(topic string, counts map[string]int) int {
	n := 0
	for _, w := range tokenize(topic) {
		if len(w) > 3 && counts[w] > 0 {
			n++
		}
	}
	if n > 5 {
		n = 5
	}
	return n
}

func clampScore(v float64) float64 {
	return math.Round(math.Max(0, math.Min(100, v)))
}

func feedbackText(fb models.AIFeedback) string {
	type dim struct {
		name  string
		score float64
		tip   string
	}
	dims := []dim{
		{"logic", fb.Logic, "connect your claims with explicit reasoning"},
		{"credibility", fb.Credibility, "back your claims with data or sources"},
		{"rhetoric", fb.Rhetoric, "vary your wording and engage the audience"},
	}

	best, worst := dims[0], dims[0]
	for _, d := range dims[1:] {
		if d.score > best.score {
			best = d
		}
		if d.score < worst.score {
			worst = d
		}
	}
	if best.name == worst.name {
		return fmt.Sprintf("Balanced argument (%s %.0f).", best.name, best.score)
	}
	return fmt.Sprintf("Strongest on %s (%.0f). To improve %s, %s.", best.name, best.score, worst.name, worst.tip)
}

// WeightedTotal 最終分數權重：邏輯 0.4、可信度 0.35、修辭 0.25
func WeightedTotal(s models.Scores) float64 {
	return s.Logic*0.4 + s.Credibility*0.35 + s.Rhetoric*0.25
}
