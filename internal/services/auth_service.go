package services

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/okozyrev/ratemark/internal/config"
	"github.com/okozyrev/ratemark/internal/dto"
	"github.com/okozyrev/ratemark/internal/mailer"
	"github.com/okozyrev/ratemark/internal/models"
	"github.com/okozyrev/ratemark/internal/validation"
	"gorm.io/gorm"
)

var (
	ErrUsernameTaken = errors.New("a user with this username already exists")
	ErrEmailTaken    = errors.New("a user with this email already exists")
	ErrUserNotFound  = errors.New("user not found")
	ErrInvalidCode   = errors.New("invalid confirmation_code")
	ErrInvalidToken  = errors.New("invalid or expired refresh token")
)

const (
	codeEmailSubject = "Your confirmation code"
	codeEmailBody    = "Your confirmation code is %s."
)

type AuthService struct {
	db     *gorm.DB
	cfg    *config.Config
	mailer mailer.Mailer
}

func NewAuthService(db *gorm.DB, cfg *config.Config, m mailer.Mailer) *AuthService {
	return &AuthService{db: db, cfg: cfg, mailer: m}
}

// Signup registers a new user or re-requests the confirmation code for an
// existing (username, email) pair. A repeat signup for the exact same pair
// is idempotent: the stored code is resent unchanged. The unique indexes
// on username and email are the authoritative guard against concurrent
// registrations; the pre-checks only produce friendlier errors.
func (s *AuthService) Signup(req *dto.SignupRequest) (*dto.SignupResponse, error) {
	if err := validation.Username(req.Username); err != nil {
		return nil, invalid(err)
	}
	if err := validation.Email(req.Email); err != nil {
		return nil, invalid(err)
	}

	var user models.User
	err := s.db.Where("username = ? AND email = ?", req.Username, req.Email).First(&user).Error
	switch {
	case err == nil:
		// Existing pair: resend the current code below.
	case errors.Is(err, gorm.ErrRecordNotFound):
		if taken, which := s.pairConflict(req.Username, req.Email); taken {
			return nil, which
		}

		user = models.User{
			Username:         req.Username,
			Email:            req.Email,
			ConfirmationCode: generateConfirmationCode(),
		}
		if err := s.db.Create(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				// Lost a registration race; figure out which constraint fired.
				_, which := s.pairConflict(req.Username, req.Email)
				return nil, which
			}
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
	default:
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	// Delivery failure must not roll back the registration.
	if err := s.mailer.Send(user.Email, codeEmailSubject, fmt.Sprintf(codeEmailBody, user.ConfirmationCode)); err != nil {
		slog.Error("confirmation code delivery failed", "username", user.Username, "error", err)
	}

	return &dto.SignupResponse{Username: req.Username, Email: req.Email}, nil
}

// RequestToken exchanges a confirmation code for credentials. The code is
// compared byte-for-byte and stays valid after use.
func (s *AuthService) RequestToken(req *dto.TokenRequest) (*dto.TokenResponse, error) {
	if err := validation.Username(req.Username); err != nil {
		return nil, invalid(err)
	}

	var user models.User
	if err := s.db.Where("username = ?", req.Username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if user.ConfirmationCode == "" || user.ConfirmationCode != req.ConfirmationCode {
		return nil, ErrInvalidCode
	}

	return s.generateTokenPair(&user)
}

// Refresh rotates a refresh token into a fresh credential pair.
func (s *AuthService) Refresh(req *dto.RefreshRequest) (*dto.TokenResponse, error) {
	tokenHash := hashToken(req.RefreshToken)

	var stored models.RefreshToken
	if err := s.db.Where("token_hash = ? AND revoked = ?", tokenHash, false).First(&stored).Error; err != nil {
		return nil, ErrInvalidToken
	}

	if time.Now().After(stored.ExpiresAt) {
		s.db.Model(&stored).Update("revoked", true)
		return nil, ErrInvalidToken
	}

	s.db.Model(&stored).Update("revoked", true)

	var user models.User
	if err := s.db.First(&user, "id = ?", stored.UserID).Error; err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}

	return s.generateTokenPair(&user)
}

func (s *AuthService) Logout(req *dto.LogoutRequest) error {
	tokenHash := hashToken(req.RefreshToken)
	return s.db.Model(&models.RefreshToken{}).
		Where("token_hash = ?", tokenHash).
		Update("revoked", true).Error
}

// pairConflict reports whether username or email already belongs to
// another record, preferring the username error when both collide.
func (s *AuthService) pairConflict(username, email string) (bool, error) {
	var count int64
	s.db.Model(&models.User{}).Where("username = ?", username).Count(&count)
	if count > 0 {
		return true, ErrUsernameTaken
	}
	s.db.Model(&models.User{}).Where("email = ?", email).Count(&count)
	if count > 0 {
		return true, ErrEmailTaken
	}
	return false, nil
}

func (s *AuthService) generateTokenPair(user *models.User) (*dto.TokenResponse, error) {
	access, err := s.generateAccessToken(user)
	if err != nil {
		return nil, err
	}

	refresh, err := s.generateRefreshToken(user)
	if err != nil {
		return nil, err
	}

	return &dto.TokenResponse{Access: access, Refresh: refresh}, nil
}

func (s *AuthService) generateAccessToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":      user.ID.String(),
		"username": user.Username,
		"role":     user.Role,
		"iat":      time.Now().Unix(),
		"exp":      time.Now().Add(s.cfg.JWTAccessExpiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func (s *AuthService) generateRefreshToken(user *models.User) (string, error) {
	rawBytes := make([]byte, 32)
	if _, err := rand.Read(rawBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	rawToken := base64.URLEncoding.EncodeToString(rawBytes)

	record := models.RefreshToken{
		UserID:    user.ID,
		TokenHash: hashToken(rawToken),
		ExpiresAt: time.Now().Add(s.cfg.JWTRefreshExpiry),
	}

	if err := s.db.Create(&record).Error; err != nil {
		return "", fmt.Errorf("failed to store refresh token: %w", err)
	}

	return rawToken, nil
}

// generateConfirmationCode produces five 4-digit groups joined by
// hyphens, e.g. 1234-5678-9012-3456-7890.
func generateConfirmationCode() string {
	groups := make([]string, 5)
	for i := range groups {
		n, err := rand.Int(rand.Reader, big.NewInt(9000))
		if err != nil {
			// crypto/rand failing is unrecoverable for token issuance.
			panic(fmt.Sprintf("crypto/rand unavailable: %v", err))
		}
		groups[i] = strconv.FormatInt(n.Int64()+1000, 10)
	}
	return strings.Join(groups, "-")
}

func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return fmt.Sprintf("%x", h)
}
