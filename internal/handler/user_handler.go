package handler

import (
	"net/http"
	"strings"

	"zipcheck-go/internal/model"
	"zipcheck-go/internal/service"
	"zipcheck-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// UserHandler 는 회원 가입/로그인 등 사용자 요청을 처리한다.
type UserHandler struct {
	userService service.UserService
}

// NewUserHandler 는 새 UserHandler 인스턴스를 생성한다.
func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// RegisterRequest 회원 가입 요청 본문
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Channel  string `json:"channel"`
}

// Register 는 이메일/비밀번호 회원 가입을 처리한다.
func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "잘못된 요청 본문입니다", "data": nil})
		return
	}

	user, err := h.userService.Register(req.Email, req.Password, req.Channel)
	if err != nil {
		log.Warnf("회원 가입 실패: email=%s error: %v", req.Email, err)
		c.JSON(http.StatusConflict, gin.H{"code": http.StatusConflict, "message": err.Error(), "data": nil})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": user})
}

// LoginRequest 로그인 요청 본문
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login 은 이메일/비밀번호 로그인을 처리한다.
func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "잘못된 요청 본문입니다", "data": nil})
		return
	}

	accessToken, refreshToken, err := h.userService.Login(req.Email, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"code": http.StatusUnauthorized, "message": "이메일 또는 비밀번호가 올바르지 않습니다", "data": nil})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": gin.H{
		"accessToken":  accessToken,
		"refreshToken": refreshToken,
	}})
}

// Logout 은 현재 액세스 토큰을 블랙리스트에 올린다.
func (h *UserHandler) Logout(c *gin.Context) {
	authHeader := c.GetHeader("Authorization")
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == "" || tokenString == authHeader {
		c.JSON(http.StatusBadRequest, gin.H{"code": http.StatusBadRequest, "message": "토큰이 없습니다", "data": nil})
		return
	}

	if err := h.userService.Logout(tokenString); err != nil {
		log.Errorf("로그아웃 처리 실패: error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "로그아웃에 실패했습니다", "data": nil})
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": nil})
}

// Me 는 인증된 사용자의 프로필을 돌려준다.
func (h *UserHandler) Me(c *gin.Context) {
	rawUser, exists := c.Get("user")
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "사용자 정보를 가져올 수 없습니다", "data": nil})
		return
	}
	user, ok := rawUser.(*model.User)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": "사용자 데이터 타입 오류", "data": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "success", "data": user})
}
