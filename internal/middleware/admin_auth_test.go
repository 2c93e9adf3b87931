package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zipcheck-go/internal/config"
	"zipcheck-go/internal/model"
	"zipcheck-go/pkg/token"
)

func adminGateConfig() config.AdminConfig {
	return config.AdminConfig{
		AllowedEmailDomains: []string{"zipcheck.kr"},
		OAuthProviders:      []string{"google", "kakao"},
	}
}

func adminUser() *model.User {
	return &model.User{Email: "admin@zipcheck.kr", Role: "ADMIN"}
}

func adminClaims() *token.CustomClaims {
	return &token.CustomClaims{UserID: 1, Provider: "google", MFA: true}
}

// runAdminGate 는 사용자/클레임을 컨텍스트에 심고 게이트를 한 번 통과시킨다.
func runAdminGate(t *testing.T, user *model.User, claims *token.CustomClaims) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/admin/dashboard/kpis", nil)
	if user != nil {
		c.Set("user", user)
	}
	if claims != nil {
		c.Set("claims", claims)
	}

	AdminAuthMiddleware(adminGateConfig())(c)
	if !c.IsAborted() {
		c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": nil})
	}
	return w
}

func gateMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Message
}

func TestAdminGateAllowsFullMatch(t *testing.T) {
	w := runAdminGate(t, adminUser(), adminClaims())
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdminGateChecksInOrder(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(u *model.User, cl *token.CustomClaims)
		message string
	}{
		{
			"비밀번호 로그인 세션은 제공자 검사에서 끊긴다",
			func(u *model.User, cl *token.CustomClaims) { cl.Provider = "password" },
			"허용되지 않은 로그인 방식입니다",
		},
		{
			"외부 도메인 이메일은 도메인 검사에서 끊긴다",
			func(u *model.User, cl *token.CustomClaims) { u.Email = "admin@gmail.com" },
			"허용되지 않은 이메일 도메인입니다",
		},
		{
			"MFA 미통과 세션은 MFA 검사에서 끊긴다",
			func(u *model.User, cl *token.CustomClaims) { cl.MFA = false },
			"다중 인증(MFA)이 필요합니다",
		},
		{
			"일반 사용자는 권한 검사에서 끊긴다",
			func(u *model.User, cl *token.CustomClaims) { u.Role = "USER" },
			"관리자 권한이 필요합니다",
		},
		{
			"제공자와 MFA 가 모두 틀리면 앞선 제공자 검사 메시지가 나온다",
			func(u *model.User, cl *token.CustomClaims) { cl.Provider = "password"; cl.MFA = false },
			"허용되지 않은 로그인 방식입니다",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, claims := adminUser(), adminClaims()
			tt.mutate(user, claims)

			w := runAdminGate(t, user, claims)
			assert.Equal(t, http.StatusForbidden, w.Code)
			assert.Equal(t, tt.message, gateMessage(t, w))
		})
	}
}

func TestAdminGateRequiresAuthContext(t *testing.T) {
	// AuthMiddleware 를 거치지 않아 user 가 없는 경우
	w := runAdminGate(t, nil, adminClaims())
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	// user 는 있지만 claims 가 없는 경우
	w = runAdminGate(t, adminUser(), nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestAllowedDomain(t *testing.T) {
	domains := []string{"zipcheck.kr"}
	assert.True(t, allowedDomain(domains, "dev@zipcheck.kr"))
	assert.False(t, allowedDomain(domains, "dev@sub.zipcheck.kr"))
	assert.False(t, allowedDomain(domains, "zipcheck.kr"))
	assert.False(t, allowedDomain(domains, "dev@"))
	assert.False(t, allowedDomain(domains, ""))
}
