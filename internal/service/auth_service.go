package service

import (
	"errors"
	"strings"
	"time"

	"feeportal/config"
	"feeportal/internal/auth"
	"feeportal/internal/domain"
	"feeportal/internal/models"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const resetTokenTTL = 10 * time.Minute

type AuthService struct {
	cfg    *config.Config
	users  UserStore
	mailer Mailer
	log    *zap.Logger
	now    func() time.Time
}

func NewAuthService(cfg *config.Config, users UserStore, mailer Mailer, log *zap.Logger) *AuthService {
	return &AuthService{cfg: cfg, users: users, mailer: mailer, log: log, now: time.Now}
}

// TokenPair is an access/refresh token pair.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Register creates an unverified admin account and mails a 6-digit OTP.
// An existing unverified account with the same email is overwritten.
func (s *AuthService) Register(name, email, password string) (*models.User, error) {
	email = normalizeEmail(email)
	existing, err := s.users.GetByEmail(email)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil && existing.IsVerified {
		return nil, conflict("User already exists with this email")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	otp, err := generateOTP()
	if err != nil {
		return nil, err
	}

	u := existing
	if u == nil {
		u = &models.User{Email: email, Role: domain.RoleAdmin}
	}
	u.Name = strings.TrimSpace(name)
	u.PasswordHash = string(hash)
	u.VerifyOTP = otp
	u.Role = domain.RoleAdmin

	if existing == nil {
		err = s.users.Create(u)
	} else {
		err = s.users.Update(u)
	}
	if err != nil {
		return nil, storeErr(err, "User not found")
	}
	if err := s.mailer.SendEmailOTP(u.Name, u.Email, otp); err != nil {
		s.log.Error("[auth] otp mail failed", zap.String("email", u.Email), zap.Error(err))
		return nil, upstream("Failed to send OTP email")
	}
	return u, nil
}

func (s *AuthService) VerifyOTP(email, otp string) (*models.User, error) {
	u, err := s.users.GetByEmail(normalizeEmail(email))
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if u == nil || u.VerifyOTP == "" || u.VerifyOTP != strings.TrimSpace(otp) {
		return nil, invalid("Invalid OTP")
	}
	u.IsVerified = true
	u.VerifyOTP = ""
	if err := s.users.Update(u); err != nil {
		return nil, storeErr(err, "User not found")
	}
	return u, nil
}

func (s *AuthService) Login(email, password string) (*models.User, *TokenPair, error) {
	u, err := s.users.GetByEmail(normalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, unauthorized("Invalid credentials")
		}
		return nil, nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, nil, unauthorized("Invalid credentials")
	}
	if !u.IsVerified {
		return nil, nil, forbidden("Account not verified, please verify the OTP sent to your email")
	}
	pair, err := s.issue(u)
	if err != nil {
		return nil, nil, err
	}
	return u, pair, nil
}

// ForgetPassword stores a 10-minute reset token and mails the reset link.
func (s *AuthService) ForgetPassword(email string) error {
	u, err := s.users.GetByEmail(normalizeEmail(email))
	if err != nil {
		return storeErr(err, "User not found")
	}
	token, err := generateResetToken()
	if err != nil {
		return err
	}
	expires := s.now().Add(resetTokenTTL)
	u.ResetPasswordToken = &token
	u.ResetPasswordExpires = &expires
	if err := s.users.Update(u); err != nil {
		return storeErr(err, "User not found")
	}
	link := strings.TrimRight(s.cfg.URLs.FrontendURL, "/") + "/resetpassword/" + token
	if err := s.mailer.SendForgotPassword(u.Email, link); err != nil {
		s.log.Error("[auth] reset mail failed", zap.String("email", u.Email), zap.Error(err))
		return upstream("Failed to send reset email")
	}
	return nil
}

func (s *AuthService) ResetPassword(token, password string) (*models.User, error) {
	u, err := s.users.GetByResetToken(token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invalid("Invalid reset token")
		}
		return nil, err
	}
	if u.ResetPasswordExpires == nil || s.now().After(*u.ResetPasswordExpires) {
		return nil, invalid("Reset token has expired")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u.PasswordHash = string(hash)
	u.ResetPasswordToken = nil
	u.ResetPasswordExpires = nil
	if err := s.users.Update(u); err != nil {
		return nil, storeErr(err, "User not found")
	}
	if err := s.mailer.SendPasswordUpdated(u.Email); err != nil {
		s.log.Warn("[auth] password update notice failed", zap.String("email", u.Email), zap.Error(err))
	}
	return u, nil
}

// RefreshToken exchanges a valid refresh token for a new pair.
func (s *AuthService) RefreshToken(refreshToken string) (*TokenPair, error) {
	claims, err := auth.ParseRefreshToken(&s.cfg.JWT, refreshToken)
	if err != nil {
		return nil, unauthorized("Invalid refresh token")
	}
	u, err := s.users.GetByID(claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, unauthorized("Invalid refresh token")
		}
		return nil, err
	}
	return s.issue(u)
}

func (s *AuthService) Me(userID uint) (*models.User, error) {
	return loadActor(s.users, userID)
}

func (s *AuthService) issue(u *models.User) (*TokenPair, error) {
	access, err := auth.GenerateAccessToken(&s.cfg.JWT, u.ID, u.Email, u.Role)
	if err != nil {
		return nil, err
	}
	refresh, err := auth.GenerateRefreshToken(&s.cfg.JWT, u.ID, u.Email, u.Role)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
