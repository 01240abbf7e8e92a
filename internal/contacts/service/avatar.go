package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/aussiebroadwan/contacts/internal/contacts/domain"
	"github.com/aussiebroadwan/contacts/internal/contacts/store"
	"github.com/aussiebroadwan/contacts/pkg/slogx"
)

// DefaultAvatarMaxBytes caps avatar uploads at 5 MiB.
const DefaultAvatarMaxBytes = 5 << 20

// avatarTypes are the accepted image types and the extension used in the
// object key.
var avatarTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

type AvatarService struct {
	Store    store.Store
	Uploader Uploader
	Cache    *ProfileCache
	MaxBytes int64
	Now      func() time.Time
}

// MaxSize is the effective upload limit in bytes.
func (s *AvatarService) MaxSize() int64 {
	if s.MaxBytes > 0 {
		return s.MaxBytes
	}
	return DefaultAvatarMaxBytes
}

// UploadAvatar stores data as the caller's avatar and returns the updated
// profile. The type is decided by content, not by the client's filename or
// header. Restricted to admins.
func (s *AvatarService) UploadAvatar(ctx context.Context, p domain.Principal, data []byte) (domain.Profile, error) {
	l := slogx.FromContext(ctx)

	if err := domain.RequireRole(p, domain.RoleAdmin); err != nil {
		return domain.Profile{}, err
	}

	switch {
	case len(data) == 0:
		return domain.Profile{}, invalid("file", "required")
	case int64(len(data)) > s.MaxSize():
		return domain.Profile{}, invalid("file", fmt.Sprintf("must be at most %d bytes", s.MaxSize()))
	}

	contentType := mimetype.Detect(data).String()
	ext, ok := avatarTypes[contentType]
	if !ok {
		return domain.Profile{}, invalid("file", "must be a jpeg, png, gif or webp image")
	}

	key := fmt.Sprintf("avatars/%s/%s%s", p.ID, uuid.NewString(), ext)
	url, err := s.Uploader.Upload(ctx, key, contentType, data)
	if err != nil {
		l.Error("avatar upload failed", slog.String("key", key), slog.Any("error", err))
		return domain.Profile{}, fmt.Errorf("%w: %w", ErrUpload, err)
	}

	if err := s.Store.Users().UpdateAvatarURL(ctx, p.ID, url, s.now()); err != nil {
		return domain.Profile{}, mapNotFound(err)
	}
	s.Cache.Invalidate(ctx, p.ID)

	u, err := s.Store.Users().GetUserByID(ctx, p.ID)
	if err != nil {
		return domain.Profile{}, mapNotFound(err)
	}

	l.Info("avatar updated", slog.String("key", key))
	return u.Profile(), nil
}

func (s *AvatarService) now() time.Time { return clock(s.Now) }
