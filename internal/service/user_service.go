package service

import (
	"context"
	"errors"
	"time"

	"zipcheck-go/internal/model"
	"zipcheck-go/internal/repository"
	"zipcheck-go/pkg/database"
	"zipcheck-go/pkg/hash"
	"zipcheck-go/pkg/log"
	"zipcheck-go/pkg/token"

	"gorm.io/gorm"
)

// OAuthProfile 은 외부 신원 제공자 콜백에서 받아 오는 프로필이다.
type OAuthProfile struct {
	Provider      string `json:"provider" binding:"required"`
	Email         string `json:"email" binding:"required"`
	EmailVerified bool   `json:"emailVerified"`
	MFA           bool   `json:"mfa"`
	Channel       string `json:"channel"`
}

// UserService 인터페이스는 사용자 관련 비즈니스 작업을 정의한다.
type UserService interface {
	Register(email, password, channel string) (*model.User, error)
	Login(email, password string) (accessToken, refreshToken string, err error)
	LoginWithOAuth(profile OAuthProfile) (accessToken, refreshToken string, err error)
	GetProfile(userID uint) (*model.User, error)
	Logout(tokenString string) error
	RefreshToken(refreshTokenString string) (newAccessToken, newRefreshToken string, err error)
}

// userService 는 UserService 인터페이스의 구현이다.
type userService struct {
	userRepo   repository.UserRepository
	jwtManager *token.JWTManager
}

// NewUserService 는 새 UserService 인스턴스를 생성한다.
func NewUserService(userRepo repository.UserRepository, jwtManager *token.JWTManager) UserService {
	return &userService{
		userRepo:   userRepo,
		jwtManager: jwtManager,
	}
}

// Register 는 이메일/비밀번호 가입을 처리한다.
func (s *userService) Register(email, password, channel string) (*model.User, error) {
	// 1. 이메일 중복 확인
	_, err := s.userRepo.FindByEmail(email)
	if err == nil {
		return nil, errors.New("이미 가입된 이메일입니다")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// 2. 비밀번호 해싱
	hashedPassword, err := hash.HashPassword(password)
	if err != nil {
		return nil, err
	}

	// 3. 사용자 생성
	newUser := &model.User{
		Email:    email,
		Password: hashedPassword,
		Role:     "USER",
		Provider: "password",
		Channel:  channel,
	}
	if err := s.userRepo.Create(newUser); err != nil {
		return nil, err
	}

	return newUser, nil
}

// Login 은 이메일/비밀번호 로그인을 처리한다.
func (s *userService) Login(email, password string) (accessToken, refreshToken string, err error) {
	// 1. 사용자 조회
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", "", errors.New("invalid credentials")
		}
		return "", "", err
	}

	// 2. 비밀번호 검증
	if !hash.CheckPasswordHash(password, user.Password) {
		return "", "", errors.New("invalid credentials")
	}

	// 3. access / refresh 토큰 발급
	return s.issueTokens(user, "password", false)
}

// LoginWithOAuth 는 외부 신원 제공자 콜백 프로필로 로그인을 처리한다.
// 처음 보는 이메일이면 가입 처리하고 유입 채널을 기록한다.
func (s *userService) LoginWithOAuth(profile OAuthProfile) (accessToken, refreshToken string, err error) {
	if !profile.EmailVerified {
		return "", "", errors.New("이메일이 검증되지 않은 계정입니다")
	}

	user, err := s.userRepo.FindByEmail(profile.Email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user = &model.User{
			Email:      profile.Email,
			Role:       "USER",
			Provider:   profile.Provider,
			Channel:    profile.Channel,
			MFAEnabled: profile.MFA,
		}
		if err := s.userRepo.Create(user); err != nil {
			return "", "", err
		}
		log.Infof("[UserService] OAuth 신규 가입: email=%s, provider=%s", profile.Email, profile.Provider)
	} else if err != nil {
		return "", "", err
	} else {
		// 세션마다 제공자와 MFA 통과 상태를 최신으로 유지한다
		user.Provider = profile.Provider
		user.MFAEnabled = profile.MFA
		if err := s.userRepo.Update(user); err != nil {
			return "", "", err
		}
	}

	return s.issueTokens(user, profile.Provider, profile.MFA)
}

// issueTokens 는 access / refresh 토큰 한 쌍을 발급한다.
func (s *userService) issueTokens(user *model.User, provider string, mfa bool) (string, string, error) {
	accessToken, err := s.jwtManager.GenerateToken(user.ID, user.Email, user.Role, provider, mfa)
	if err != nil {
		return "", "", err
	}
	refreshToken, err := s.jwtManager.GenerateRefreshToken(user.ID, user.Email, user.Role, provider, mfa)
	if err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

// GetProfile 은 사용자 ID 로 상세 정보를 조회한다.
func (s *userService) GetProfile(userID uint) (*model.User, error) {
	return s.userRepo.FindByID(userID)
}

// Logout 은 토큰을 Redis 블랙리스트에 올린다.
// 토큰의 남은 유효 기간을 키의 만료 시간으로 쓴다.
func (s *userService) Logout(tokenString string) error {
	claims, err := s.jwtManager.VerifyToken(tokenString)
	if err != nil {
		return err
	}
	expiration := time.Until(claims.ExpiresAt.Time)
	return database.RDB.Set(context.Background(), "blacklist:"+tokenString, "true", expiration).Err()
}

// RefreshToken 은 refresh token 을 검증하고 새 토큰 쌍을 발급한다.
func (s *userService) RefreshToken(refreshTokenString string) (newAccessToken, newRefreshToken string, err error) {
	// 1. refresh token 유효성 확인
	claims, err := s.jwtManager.VerifyToken(refreshTokenString)
	if err != nil {
		return "", "", errors.New("invalid refresh token")
	}

	// 2. 사용자 존재 확인
	user, err := s.userRepo.FindByID(claims.UserID)
	if err != nil {
		return "", "", errors.New("user not found")
	}

	// 3. 새 토큰 발급
	return s.issueTokens(user, claims.Provider, claims.MFA)
}
