package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zipcheck-go/internal/model"
	"zipcheck-go/internal/service"
	"zipcheck-go/pkg/token"
)

// chatUserService 는 프로필 조회만 응답하는 UserService 대역이다.
type chatUserService struct {
	user *model.User
}

func (s *chatUserService) Register(email, password, channel string) (*model.User, error) {
	return nil, nil
}
func (s *chatUserService) Login(email, password string) (string, string, error) {
	return "", "", nil
}
func (s *chatUserService) LoginWithOAuth(profile service.OAuthProfile) (string, string, error) {
	return "", "", nil
}
func (s *chatUserService) GetProfile(userID uint) (*model.User, error) { return s.user, nil }
func (s *chatUserService) Logout(tokenString string) error             { return nil }
func (s *chatUserService) RefreshToken(refreshTokenString string) (string, string, error) {
	return "", "", nil
}

// haltableChatService 는 중단 지시가 올 때까지 전송을 계속하는 ChatService 대역이다.
type haltableChatService struct {
	started chan struct{}
	stopped chan struct{}
}

func (s *haltableChatService) StreamReport(ctx context.Context, caseID string, user *model.User, send func([]byte) error, shouldStop func() bool) error {
	close(s.started)
	for !shouldStop() {
		payload, _ := json.Marshal(map[string]string{"chunk": "조각"})
		if err := send(payload); err != nil {
			return err
		}
		time.Sleep(5 * time.Millisecond)
	}
	close(s.stopped)
	return nil
}

func newChatTestServer(t *testing.T, chatService service.ChatService) (*httptest.Server, *ChatHandler, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	jwtManager := token.NewJWTManager("test-secret", 1, 7)
	accessToken, err := jwtManager.GenerateToken(3, "user@zipcheck.kr", "USER", "local", false)
	require.NoError(t, err)

	h := NewChatHandler(chatService, &chatUserService{user: &model.User{ID: 3, Email: "user@zipcheck.kr"}}, jwtManager)
	router := gin.New()
	router.GET("/chat/:token", h.Handle)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server, h, accessToken
}

func dialChat(t *testing.T, server *httptest.Server, accessToken string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/chat/" + accessToken
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestChatHandleStopsStreamInFlight(t *testing.T) {
	svc := &haltableChatService{started: make(chan struct{}), stopped: make(chan struct{})}
	server, h, accessToken := newChatTestServer(t, svc)

	// 중단 토큰 발급
	w := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(w)
	ctx.Request = httptest.NewRequest(http.MethodGet, "/api/v1/chat/ws-token", nil)
	h.GetWebsocketStopToken(ctx)
	require.Equal(t, http.StatusOK, w.Code)

	var tokenResp struct {
		Data struct {
			CmdToken string `json:"cmdToken"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tokenResp))
	require.NotEmpty(t, tokenResp.Data.CmdToken)

	conn := dialChat(t, server, accessToken)
	require.NoError(t, conn.WriteJSON(map[string]string{"caseId": "case-1"}))

	select {
	case <-svc.started:
	case <-time.After(2 * time.Second):
		t.Fatal("스트리밍이 시작되지 않았습니다")
	}

	// 전송이 진행 중인 상태에서 중단 프레임을 보낸다
	require.NoError(t, conn.WriteJSON(map[string]string{
		"type": "stop", "_internal_cmd_token": tokenResp.Data.CmdToken,
	}))

	select {
	case <-svc.stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("중단 지시가 반영되지 않았습니다")
	}

	// 중단 확인 프레임이 도착할 때까지 읽는다
	deadline := time.Now().Add(2 * time.Second)
	for {
		require.NoError(t, conn.SetReadDeadline(deadline))
		var frame map[string]interface{}
		require.NoError(t, conn.ReadJSON(&frame))
		if frame["type"] == "stop" {
			assert.Equal(t, "전송이 중단되었습니다", frame["message"])
			return
		}
	}
}

func TestChatHandleRejectsInvalidToken(t *testing.T) {
	svc := &haltableChatService{started: make(chan struct{}), stopped: make(chan struct{})}
	server, _, _ := newChatTestServer(t, svc)

	resp, err := http.Get(server.URL + "/chat/not-a-token")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestChatHandleRequiresCaseID(t *testing.T) {
	svc := &haltableChatService{started: make(chan struct{}), stopped: make(chan struct{})}
	server, _, accessToken := newChatTestServer(t, svc)

	conn := dialChat(t, server, accessToken)
	require.NoError(t, conn.WriteJSON(map[string]string{"type": "report"}))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var frame map[string]string
	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, "caseId 가 필요합니다", frame["error"])
}
