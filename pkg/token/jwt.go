// Package token 은 JSON Web Token (JWT) 생성과 검증 기능을 제공한다.
package token

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTManager 는 JWT 의 생성과 검증을 담당한다.
type JWTManager struct {
	secretKey       []byte        // 서명과 검증에 사용하는 비밀키
	accessTokenDur  time.Duration // access token 유효 기간
	refreshTokenDur time.Duration // refresh token 유효 기간
}

// CustomClaims 는 세션 토큰에 싣는 사용자 정보를 정의한다.
// Provider 는 로그인 경로(password / google / kakao), MFA 는 2단계 인증 통과 여부다.
// 관리자 게이트가 이 두 값을 검사한다.
type CustomClaims struct {
	UserID   uint   `json:"userId"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Provider string `json:"provider"`
	MFA      bool   `json:"mfa"`
	jwt.RegisteredClaims
}

// NewJWTManager 는 새 JWTManager 인스턴스를 생성한다.
// secret: 서명용 비밀키 문자열.
// accessTokenExpireHours: access token 만료 시간(시간 단위).
// refreshTokenExpireDays: refresh token 만료 시간(일 단위).
func NewJWTManager(secret string, accessTokenExpireHours, refreshTokenExpireDays int) *JWTManager {
	return &JWTManager{
		secretKey:       []byte(secret),
		accessTokenDur:  time.Hour * time.Duration(accessTokenExpireHours),
		refreshTokenDur: time.Duration(refreshTokenExpireDays) * 24 * time.Hour,
	}
}

// GenerateToken 은 주어진 사용자 정보로 새 access token 을 발급한다.
func (m *JWTManager) GenerateToken(userID uint, email, role, provider string, mfa bool) (string, error) {
	claims := CustomClaims{
		UserID:   userID,
		Email:    email,
		Role:     role,
		Provider: provider,
		MFA:      mfa,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(m.accessTokenDur)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secretKey)
}

// GenerateRefreshToken 은 GenerateToken 과 같은 방식으로 더 긴 만료 시간을 가진
// refresh token 을 발급한다.
func (m *JWTManager) GenerateRefreshToken(userID uint, email, role, provider string, mfa bool) (string, error) {
	claims := CustomClaims{
		UserID:   userID,
		Email:    email,
		Role:     role,
		Provider: provider,
		MFA:      mfa,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(m.refreshTokenDur)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secretKey)
}

// VerifyToken 은 토큰 문자열을 검증한다.
// 유효하면 CustomClaims 를 반환하고, 서명 불일치나 만료 등으로 무효하면 에러를 반환한다.
func (m *JWTManager) VerifyToken(tokenString string) (*CustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		// 서명 방식이 HMAC 인지 확인한다
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secretKey, nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*CustomClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}

// GenerateRandomString 은 주어진 길이의 랜덤 hex 문자열을 생성한다.
func GenerateRandomString(length int) string {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		// rand 실패 시 타임스탬프 기반 문자열로 대체
		return fmt.Sprintf("fallback%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(bytes)
}
