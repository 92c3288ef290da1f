package service

import (
	"concept_review_backend/internal/config"
	"concept_review_backend/internal/util"
	"crypto/subtle"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// AuthService 后台管理员登录；账号来自配置，不落库
type AuthService struct {
	Cfg *config.AdminConfig
}

func NewAuthService(cfg *config.AdminConfig) *AuthService {
	return &AuthService{Cfg: cfg}
}

func (s *AuthService) Enabled() bool {
	return s.Cfg.Enabled
}

func (s *AuthService) Login(username, password string) (string, time.Time, error) {
	if subtle.ConstantTimeCompare([]byte(username), []byte(s.Cfg.Username)) != 1 {
		return "", time.Time{}, util.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(s.Cfg.PasswordHash), []byte(password)); err != nil {
		return "", time.Time{}, util.ErrInvalidCredentials
	}

	return util.GenerateJWT(username, s.Cfg.JWTSecret, s.Cfg.ExpireTime)
}

func (s *AuthService) Verify(token string) (*util.Claims, error) {
	return util.ParseJWT(token, s.Cfg.JWTSecret)
}
