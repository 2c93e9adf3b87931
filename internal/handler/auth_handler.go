package handler

import (
	"net/http"

	"zipcheck-go/internal/service"
	"zipcheck-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// AuthHandler 는 토큰 갱신과 OAuth 콜백을 처리한다.
type AuthHandler struct {
	userService service.UserService
}

// NewAuthHandler 는 새 AuthHandler 인스턴스를 생성한다.
func NewAuthHandler(userService service.UserService) *AuthHandler {
	return &AuthHandler{userService: userService}
}

// RefreshRequest 토큰 갱신 요청 본문
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// Refresh 는 리프레시 토큰으로 새 토큰 쌍을 발급한다.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "잘못된 요청 본문입니다", "data": nil})
		return
	}

	accessToken, refreshToken, err := h.userService.RefreshToken(req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"code": http.StatusUnauthorized, "message": "유효하지 않은 리프레시 토큰입니다", "data": nil})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": gin.H{
		"accessToken":  accessToken,
		"refreshToken": refreshToken,
	}})
}

// OAuthCallback 은 인증 제공자 콜백을 받아 우리 세션 토큰으로 교환한다.
// 제공자 프로필 검증은 앞단 게이트웨이에서 끝난 상태로 들어온다.
func (h *AuthHandler) OAuthCallback(c *gin.Context) {
	profile := service.OAuthProfile{
		Provider:      c.Query("provider"),
		Email:         c.Query("email"),
		EmailVerified: c.Query("emailVerified") == "true",
		MFA:           c.Query("mfa") == "true",
		Channel:       c.Query("channel"),
	}
	if profile.Provider == "" || profile.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "provider 와 email 은 필수입니다", "data": nil})
		return
	}

	accessToken, refreshToken, err := h.userService.LoginWithOAuth(profile)
	if err != nil {
		log.Warnf("OAuth 로그인 실패: provider=%s email=%s error: %v", profile.Provider, profile.Email, err)
		c.JSON(http.StatusUnauthorized, gin.H{"code": http.StatusUnauthorized, "message": err.Error(), "data": nil})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": gin.H{
		"accessToken":  accessToken,
		"refreshToken": refreshToken,
	}})
}
