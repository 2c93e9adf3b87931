package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"zipcheck-go/internal/service"
	"zipcheck-go/pkg/log"
	"zipcheck-go/pkg/token"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // 모든 출처 허용
	},
}

// ChatHandler 는 리포트 스트리밍 웹소켓 연결을 처리한다.
type ChatHandler struct {
	chatService   service.ChatService
	userService   service.UserService
	jwtManager    *token.JWTManager
	stopToken     string
	stopTokenLock sync.Mutex
	// 연결별 중단 플래그
	stopFlags sync.Map // key: 세션 포인터 문자열, value: bool
}

// NewChatHandler 는 새 ChatHandler 인스턴스를 생성한다.
func NewChatHandler(chatService service.ChatService, userService service.UserService, jwtManager *token.JWTManager) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		userService: userService,
		jwtManager:  jwtManager,
	}
}

// GetWebsocketStopToken 은 스트림 중단에 쓸 토큰을 발급한다.
func (h *ChatHandler) GetWebsocketStopToken(c *gin.Context) {
	h.stopTokenLock.Lock()
	defer h.stopTokenLock.Unlock()
	// 다중 서버 구성이라면 Redis 에 두어야 하지만 단일 토큰 회전으로 충분하다
	h.stopToken = "WSS_STOP_CMD_" + token.GenerateRandomString(16)
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": gin.H{"cmdToken": h.stopToken}})
}

// wsRequest 웹소켓으로 들어오는 요청 프레임
type wsRequest struct {
	CaseID   string `json:"caseId"`
	Type     string `json:"type"`
	CmdToken string `json:"_internal_cmd_token"`
}

// Handle 은 웹소켓 연결을 맺고 케이스 리포트 스트리밍 요청을 처리한다.
func (h *ChatHandler) Handle(c *gin.Context) {
	tokenString := c.Param("token")
	claims, err := h.jwtManager.VerifyToken(tokenString)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"code": http.StatusUnauthorized, "message": "유효하지 않은 토큰입니다", "data": nil})
		return
	}

	user, err := h.userService.GetProfile(claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "사용자 정보를 가져올 수 없습니다", "data": nil})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("웹소켓 업그레이드 실패", err)
		return
	}
	defer conn.Close()

	log.Infof("웹소켓 연결 수립: email=%s", user.Email)

	// 스트리밍 고루틴과 읽기 루프가 같은 연결에 쓰므로 쓰기를 직렬화한다
	var writeMu sync.Mutex
	send := func(b []byte) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		return conn.WriteMessage(websocket.TextMessage, b)
	}

	var streaming atomic.Bool
	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			log.Warnf("웹소켓 메시지 읽기 실패: %v", err)
			break
		}

		var req wsRequest
		if err := json.Unmarshal(message, &req); err != nil {
			h.writeError(send, "잘못된 메시지 형식입니다")
			continue
		}

		// 중단 지시: {"type":"stop","_internal_cmd_token":"..."}
		if req.Type == "stop" {
			h.stopTokenLock.Lock()
			valid := req.CmdToken == h.stopToken
			h.stopTokenLock.Unlock()
			if valid {
				h.stopFlags.Store(sessionKey(conn), true)
				resp := map[string]interface{}{
					"type":      "stop",
					"message":   "전송이 중단되었습니다",
					"timestamp": time.Now().UnixMilli(),
					"date":      time.Now().Format("2006-01-02T15:04:05"),
				}
				b, _ := json.Marshal(resp)
				_ = send(b)
			}
			continue
		}

		if req.CaseID == "" {
			h.writeError(send, "caseId 가 필요합니다")
			continue
		}
		if !streaming.CompareAndSwap(false, true) {
			h.writeError(send, "이미 전송 중인 요청이 있습니다")
			continue
		}

		shouldStop := func() bool {
			v, ok := h.stopFlags.Load(sessionKey(conn))
			return ok && v.(bool)
		}
		// 이전 요청의 중단 플래그 제거
		h.stopFlags.Delete(sessionKey(conn))

		// 스트리밍 중에도 읽기 루프가 중단 프레임을 받을 수 있게 고루틴에서 전송한다
		wg.Add(1)
		go func(caseID string) {
			defer wg.Done()
			defer streaming.Store(false)
			if err := h.chatService.StreamReport(c.Request.Context(), caseID, user, send, shouldStop); err != nil {
				log.Errorf("리포트 스트리밍 실패: caseId=%s error: %v", caseID, err)
				h.writeError(send, "리포트를 전송할 수 없습니다. 잠시 후 다시 시도해 주세요.")
			}
		}(req.CaseID)
	}
}

// writeError 웹소켓 에러 프레임 전송
func (h *ChatHandler) writeError(send func([]byte) error, message string) {
	b, _ := json.Marshal(map[string]string{"error": message})
	_ = send(b)
}

func sessionKey(conn *websocket.Conn) string {
	return fmt.Sprintf("%p", conn)
}
