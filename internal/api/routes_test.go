package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"debate_arena/internal/repository"
	"debate_arena/internal/service"
	"debate_arena/internal/storage"
	"debate_arena/internal/utils"
	"debate_arena/pkg/config"
)

type testServer struct {
	router *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	files, err := storage.NewFileStore(t.TempDir(), 1)
	require.NoError(t, err)
	tokens := utils.NewTokenManager("test-secret", time.Hour)
	logger := zap.NewNop()
	services := service.NewServices(repository.NewMemoryRepositories(), files, tokens, logger)

	r := gin.New()
	SetupRoutes(r, services, tokens, files, config.ServerConfig{CorsOrigins: []string{"http://localhost:5173"}}, logger)
	return &testServer{router: r}
}

func (s *testServer) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) register(t *testing.T, name string) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/auth/register", gin.H{
		"email":    name + "@example.com",
		"username": name,
		"password": "password",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var out struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out.AccessToken
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealthAndNoRoute(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/health", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/rooms/create", gin.H{"topic": "x"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/auth/me", nil, "garbage")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginAndMe(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "alice")

	rec := s.do(t, http.MethodPost, "/api/auth/login", gin.H{"email": "alice@example.com", "password": "wrong-pass"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/auth/login", gin.H{"email": "alice@example.com", "password": "password"}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	token := decode[map[string]any](t, rec)["access_token"].(string)

	rec = s.do(t, http.MethodGet, "/api/auth/me", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decode[map[string]any](t, rec)
	assert.Equal(t, "alice", me["username"])
	assert.NotContains(t, me, "password")
}

func TestDebateFlow(t *testing.T) {
	s := newTestServer(t)
	hostToken := s.register(t, "host")
	guestToken := s.register(t, "guest")

	rec := s.do(t, http.MethodPost, "/api/rooms/create", gin.H{"topic": "Remote work beats the office", "rounds": 1, "mode": "both"}, hostToken)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	room := decode[map[string]any](t, rec)
	code := room["room_code"].(string)
	roomID := uint(room["id"].(float64))
	assert.EqualValues(t, 2, room["max_participants"])

	rec = s.do(t, http.MethodGet, "/api/rooms/code/"+code, nil, hostToken)
	require.Equal(t, http.StatusOK, rec.Code)

	for _, token := range []string{hostToken, guestToken} {
		rec = s.do(t, http.MethodPost, "/api/participants/join", gin.H{"room_code": code}, token)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/api/debate/%d/status", roomID), nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	status := decode[map[string]any](t, rec)
	assert.Equal(t, "ongoing", status["status"])
	assert.EqualValues(t, 0, status["turn_count"])
	assert.EqualValues(t, 1, status["current_round"])
	assert.EqualValues(t, 1, status["current_turn"])

	submitPath := fmt.Sprintf("/api/debate/%d/submit-turn", roomID)
	rec = s.do(t, http.MethodPost, submitPath, gin.H{"content": "Because commutes waste hours.", "round_number": 1, "turn_number": 1}, hostToken)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	turn := decode[map[string]any](t, rec)
	assert.EqualValues(t, 1, turn["round_number"])
	assert.NotEmpty(t, turn["ai_feedback"].(map[string]any)["feedback"])

	rec = s.do(t, http.MethodPost, submitPath, gin.H{"content": "Again."}, hostToken)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "ALREADY_SUBMITTED_THIS_ROUND", decode[map[string]any](t, rec)["reason"])

	rec = s.submitAudio(t, roomID, guestToken)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	audioTurn := decode[map[string]any](t, rec)
	assert.True(t, strings.HasPrefix(audioTurn["audio_url"].(string), "/uploads/audio/"))
	assert.EqualValues(t, 2, audioTurn["turn_number"])

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/api/debate/%d/transcript", roomID), nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec), 2)

	endPath := fmt.Sprintf("/api/debate/%d/end", roomID)
	rec = s.do(t, http.MethodPost, endPath, nil, guestToken)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPost, endPath, nil, hostToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPost, endPath, nil, hostToken)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/ai/final-score", gin.H{"room_id": roomID}, hostToken)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[map[string]any](t, rec)["scores"], 2)

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/api/debate/%d/result", roomID), nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func (s *testServer) submitAudio(t *testing.T, roomID uint, token string) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("audio", "argument.webm")
	require.NoError(t, err)
	_, err = part.Write([]byte("fake audio bytes"))
	require.NoError(t, err)
	require.NoError(t, w.WriteField("round_number", "1"))
	require.NoError(t, w.WriteField("turn_number", "2"))
	require.NoError(t, w.WriteField("content", "Offices build trust."))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/debate/%d/submit-audio", roomID), &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func TestUnknownRoom(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/debate/999/status", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/debate/abc/status", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
