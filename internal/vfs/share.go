package vfs

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"filedepot/internal/models"
	"filedepot/internal/utils"
)

// ItemKind distinguishes folder and file targets in the public API.
type ItemKind string

const (
	KindFile   ItemKind = "file"
	KindFolder ItemKind = "folder"
)

// shareTokenBytes gives 32 hex characters, comfortably unguessable.
const shareTokenBytes = 16

// namedTTLs are the durations offered by the share dialog.
var namedTTLs = map[string]time.Duration{
	"1h":  time.Hour,
	"24h": 24 * time.Hour,
	"7d":  7 * 24 * time.Hour,
}

// Share is the issued token and its absolute expiry; a nil expiry never
// expires.
type Share struct {
	Token     string     `json:"token"`
	ExpiresAt *time.Time `json:"expiresAt"`
}

// ShareTarget is what a token resolves to.
type ShareTarget struct {
	Kind             ItemKind `json:"kind"`
	ItemID           uint     `json:"itemId"`
	OwnerID          uint     `json:"-"`
	Name             string   `json:"name"`
	RequiresPassword bool     `json:"requiresPassword"`
}

// CreateShare issues a share token for one item, replacing any prior share
// on it. TTL is a named duration ("1h", "24h", "7d"), or expiresAt is used
// as an absolute deadline; both empty means the share never expires. A
// non-empty password gates resolution behind a bcrypt check.
func (s *Service) CreateShare(ctx context.Context, userID uint, kind ItemKind, itemID uint, ttl string, expiresAt *time.Time, password string) (*Share, error) {
	var expiry *time.Time
	switch {
	case ttl != "":
		d, ok := namedTTLs[ttl]
		if !ok {
			return nil, ErrInvalidState
		}
		at := s.now().Add(d)
		expiry = &at
	case expiresAt != nil:
		expiry = expiresAt
	}

	token, err := utils.RandomToken(shareTokenBytes)
	if err != nil {
		return nil, err
	}

	var passwordHash *string
	if password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		hashStr := string(hash)
		passwordHash = &hashStr
	}

	updates := map[string]any{
		"share_token":         token,
		"share_expires_at":    expiry,
		"share_password_hash": passwordHash,
	}

	switch kind {
	case KindFile:
		file, err := s.file(ctx, s.db, userID, itemID)
		if err != nil {
			return nil, err
		}
		if err := s.db.WithContext(ctx).Model(file).Updates(updates).Error; err != nil {
			return nil, classify(err)
		}
	case KindFolder:
		folder, err := s.folder(ctx, s.db, userID, itemID)
		if err != nil {
			return nil, err
		}
		if err := s.db.WithContext(ctx).Model(folder).Updates(updates).Error; err != nil {
			return nil, classify(err)
		}
	default:
		return nil, ErrInvalidState
	}

	return &Share{Token: token, ExpiresAt: expiry}, nil
}

// ResolveShare looks a token up across folders and files. Expiry is lazy:
// a past deadline yields ErrExpired, no sweep is involved. The item's
// password, if any, is reported as a requirement, never returned.
func (s *Service) ResolveShare(ctx context.Context, token string) (*ShareTarget, error) {
	if token == "" {
		return nil, ErrNotFound
	}

	var folder models.Folder
	err := s.db.WithContext(ctx).Scopes(notDeleted).
		Where("share_token = ?", token).
		First(&folder).Error
	if err == nil {
		if err := s.checkShareExpiry(folder.ShareExpiresAt); err != nil {
			return nil, err
		}
		return &ShareTarget{
			Kind:             KindFolder,
			ItemID:           folder.ID,
			OwnerID:          folder.OwnerID,
			Name:             folder.Name,
			RequiresPassword: folder.SharePasswordHash != nil,
		}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var file models.File
	err = s.db.WithContext(ctx).Scopes(notDeleted).
		Where("share_token = ?", token).
		First(&file).Error
	if err != nil {
		return nil, classify(err)
	}
	if err := s.checkShareExpiry(file.ShareExpiresAt); err != nil {
		return nil, err
	}
	return &ShareTarget{
		Kind:             KindFile,
		ItemID:           file.ID,
		OwnerID:          file.OwnerID,
		Name:             file.Name,
		RequiresPassword: file.SharePasswordHash != nil,
	}, nil
}

func (s *Service) checkShareExpiry(expiresAt *time.Time) error {
	if expiresAt != nil && s.now().After(*expiresAt) {
		return ErrExpired
	}
	return nil
}

// VerifySharePassword checks a plaintext password against the share gate.
func (s *Service) VerifySharePassword(ctx context.Context, token, password string) (bool, error) {
	target, err := s.ResolveShare(ctx, token)
	if err != nil {
		return false, err
	}
	if !target.RequiresPassword {
		return true, nil
	}

	var hash string
	if target.Kind == KindFolder {
		var folder models.Folder
		if err := s.db.WithContext(ctx).First(&folder, target.ItemID).Error; err != nil {
			return false, classify(err)
		}
		hash = *folder.SharePasswordHash
	} else {
		var file models.File
		if err := s.db.WithContext(ctx).First(&file, target.ItemID).Error; err != nil {
			return false, classify(err)
		}
		hash = *file.SharePasswordHash
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil, nil
}

// CancelShare clears the share triple from the item.
func (s *Service) CancelShare(ctx context.Context, userID uint, kind ItemKind, itemID uint) error {
	updates := map[string]any{
		"share_token":         nil,
		"share_expires_at":    nil,
		"share_password_hash": nil,
	}
	switch kind {
	case KindFile:
		file, err := s.file(ctx, s.db, userID, itemID)
		if err != nil {
			return err
		}
		return classify(s.db.WithContext(ctx).Model(file).Updates(updates).Error)
	case KindFolder:
		folder, err := s.folder(ctx, s.db, userID, itemID)
		if err != nil {
			return err
		}
		return classify(s.db.WithContext(ctx).Model(folder).Updates(updates).Error)
	default:
		return ErrInvalidState
	}
}
