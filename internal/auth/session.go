// Package auth issues and validates session tokens. Login and credential
// verification live outside this module; callers arrive with an already
// resolved user ID.
package auth

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"filedepot/internal/models"
)

var (
	ErrInvalidToken = errors.New("auth: invalid token")
	ErrExpiredToken = errors.New("auth: token expired")
)

// Manager signs session tokens and mirrors them into the sessions table so
// they can be revoked before their signed expiry.
type Manager struct {
	db     *gorm.DB
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewManager(db *gorm.DB, secret string, ttl time.Duration) *Manager {
	return &Manager{db: db, secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue creates a signed token for userID and records the session row.
func (m *Manager) Issue(ctx context.Context, userID uint) (string, error) {
	expiresAt := m.now().Add(m.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(userID), 10),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(m.now()),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", err
	}

	session := models.Session{Token: token, UserID: userID, ExpiresAt: expiresAt}
	if err := m.db.WithContext(ctx).Create(&session).Error; err != nil {
		return "", err
	}
	return token, nil
}

// Validate checks the signature, the session row and the expiry, returning
// the user ID the token was issued for.
func (m *Manager) Validate(ctx context.Context, tokenStr string) (uint, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	})
	if err != nil || !parsed.Valid {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrExpiredToken
		}
		return 0, ErrInvalidToken
	}

	var session models.Session
	err = m.db.WithContext(ctx).Where("token = ?", tokenStr).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, ErrInvalidToken
	}
	if err != nil {
		return 0, err
	}
	if m.now().After(session.ExpiresAt) {
		return 0, ErrExpiredToken
	}
	return session.UserID, nil
}

// PruneExpired deletes session rows past their expiry and reports how many
// went. Scheduled periodically; validation already rejects expired rows, so
// this is purely table hygiene.
func (m *Manager) PruneExpired(ctx context.Context) (int64, error) {
	res := m.db.WithContext(ctx).Where("expires_at < ?", m.now()).Delete(&models.Session{})
	return res.RowsAffected, res.Error
}

// Revoke deletes the session row; the token stops validating immediately.
func (m *Manager) Revoke(ctx context.Context, tokenStr string) error {
	return m.db.WithContext(ctx).Where("token = ?", tokenStr).Delete(&models.Session{}).Error
}
