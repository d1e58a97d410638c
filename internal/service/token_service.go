package service

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"time"

	"coursio/internal/models"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrTokenInvalid = errors.New("invalid or expired reset token")
)

// TokenService issues one-time password-set tokens. Only the token's
// sha256 hash is persisted; the plaintext is returned once for the email
// link and never stored.
type TokenService struct {
	users UserStore
	ttl   time.Duration
}

func NewTokenService(users UserStore, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &TokenService{users: users, ttl: ttl}
}

// Issue mints a token for the user. While an unexpired token exists it
// returns "", nil so concurrent triggers cannot invalidate a live link.
func (s *TokenService) Issue(u *models.User) (string, error) {
	now := time.Now()
	if u.ResetTokenHash != "" && u.ResetTokenExpiresAt != nil && u.ResetTokenExpiresAt.After(now) {
		return "", nil
	}
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	token := hex.EncodeToString(buf)
	u.ResetTokenHash = hashToken(token)
	exp := now.Add(s.ttl)
	u.ResetTokenExpiresAt = &exp
	if err := s.users.Update(u); err != nil {
		return "", err
	}
	return token, nil
}

// Verify checks a presented token for the email and returns the user.
func (s *TokenService) Verify(email, token string) (*models.User, error) {
	u, err := s.users.GetByEmail(email)
	if err != nil {
		return nil, ErrTokenInvalid
	}
	if u.ResetTokenHash == "" || u.ResetTokenExpiresAt == nil || u.ResetTokenExpiresAt.Before(time.Now()) {
		return nil, ErrTokenInvalid
	}
	if subtle.ConstantTimeCompare([]byte(hashToken(token)), []byte(u.ResetTokenHash)) != 1 {
		return nil, ErrTokenInvalid
	}
	return u, nil
}

// Redeem sets the user's password and burns the token.
func (s *TokenService) Redeem(email, token, password string) error {
	u, err := s.Verify(email, token)
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	u.ResetTokenHash = ""
	u.ResetTokenExpiresAt = nil
	return s.users.Update(u)
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
