// Package middleware 는 Gin 미들웨어를 제공한다.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"zipcheck-go/internal/service"
	"zipcheck-go/pkg/database"
	"zipcheck-go/pkg/token"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware 는 JWT 인증 미들웨어를 만든다.
// Authorization 헤더에서 토큰을 꺼내 검증하고, 사용자와 클레임을 컨텍스트에 넣는다.
func AuthMiddleware(jwtManager *token.JWTManager, userService service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": http.StatusUnauthorized, "message": "인증 헤더가 없습니다", "data": nil})
			return
		}

		const bearerPrefix = "Bearer "
		if !strings.HasPrefix(authHeader, bearerPrefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": http.StatusUnauthorized, "message": "잘못된 인증 헤더 형식입니다", "data": nil})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, bearerPrefix)

		// 로그아웃으로 블랙리스트에 오른 토큰 거부
		if exists, _ := database.RDB.Exists(context.Background(), "blacklist:"+tokenString).Result(); exists > 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": http.StatusUnauthorized, "message": "로그아웃된 토큰입니다", "data": nil})
			return
		}

		claims, err := jwtManager.VerifyToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": http.StatusUnauthorized, "message": "유효하지 않거나 만료된 토큰입니다", "data": nil})
			return
		}

		// 토큰 발급 후 삭제된 사용자일 수 있어 DB 에서 확인한다
		user, err := userService.GetProfile(claims.UserID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": http.StatusUnauthorized, "message": "사용자를 찾을 수 없습니다", "data": nil})
			return
		}

		c.Set("user", user)
		c.Set("claims", claims)
		c.Next()
	}
}

// OptionalAuthMiddleware 는 비로그인 사용자도 쓸 수 있는 라우트용 인증 미들웨어다.
// 유효한 Bearer 토큰이 있으면 사용자와 클레임을 컨텍스트에 넣고,
// 헤더가 없거나 토큰이 유효하지 않으면 익명 요청으로 그대로 통과시킨다.
func OptionalAuthMiddleware(jwtManager *token.JWTManager, userService service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		const bearerPrefix = "Bearer "
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, bearerPrefix) {
			c.Next()
			return
		}
		tokenString := strings.TrimPrefix(authHeader, bearerPrefix)

		if exists, _ := database.RDB.Exists(context.Background(), "blacklist:"+tokenString).Result(); exists > 0 {
			c.Next()
			return
		}

		claims, err := jwtManager.VerifyToken(tokenString)
		if err != nil {
			c.Next()
			return
		}
		user, err := userService.GetProfile(claims.UserID)
		if err != nil {
			c.Next()
			return
		}

		c.Set("user", user)
		c.Set("claims", claims)
		c.Next()
	}
}
