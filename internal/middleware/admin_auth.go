package middleware

import (
	"net/http"

	"zipcheck-go/internal/config"
	"zipcheck-go/internal/model"
	"zipcheck-go/pkg/token"

	"github.com/gin-gonic/gin"
)

// AdminAuthMiddleware 는 관리자 접근 4단계 검사를 수행한다.
// AuthMiddleware 뒤에서만 사용해야 한다. 검사 순서는 고정이며
// 하나라도 실패하면 즉시 403 으로 끊는다:
//  1. 허용된 OAuth 제공자로 로그인했는가
//  2. 이메일 도메인이 허용 목록에 있는가
//  3. MFA 를 통과한 세션인가
//  4. DB 권한이 ADMIN 인가
func AdminAuthMiddleware(adminCfg config.AdminConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		rawUser, exists := c.Get("user")
		if !exists {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "사용자 정보를 가져올 수 없습니다", "data": nil})
			return
		}
		user, ok := rawUser.(*model.User)
		if !ok {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "사용자 데이터 타입 오류", "data": nil})
			return
		}

		rawClaims, exists := c.Get("claims")
		if !exists {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "토큰 정보를 가져올 수 없습니다", "data": nil})
			return
		}
		claims, ok := rawClaims.(*token.CustomClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "토큰 데이터 타입 오류", "data": nil})
			return
		}

		// 1. OAuth 제공자 검사
		if !contains(adminCfg.OAuthProviders, claims.Provider) {
			forbid(c, "허용되지 않은 로그인 방식입니다")
			return
		}

		// 2. 이메일 도메인 검사
		if !allowedDomain(adminCfg.AllowedEmailDomains, user.Email) {
			forbid(c, "허용되지 않은 이메일 도메인입니다")
			return
		}

		// 3. MFA 검사
		if !claims.MFA {
			forbid(c, "다중 인증(MFA)이 필요합니다")
			return
		}

		// 4. 권한 검사
		if user.Role != "ADMIN" {
			forbid(c, "관리자 권한이 필요합니다")
			return
		}

		c.Next()
	}
}

func forbid(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"code": http.StatusForbidden, "message": message, "data": nil})
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

// allowedDomain 은 이메일이 허용 도메인 목록에 속하는지 확인한다.
func allowedDomain(domains []string, email string) bool {
	at := -1
	for i, r := range email {
		if r == '@' {
			at = i
		}
	}
	if at < 0 || at == len(email)-1 {
		return false
	}
	return contains(domains, email[at+1:])
}
