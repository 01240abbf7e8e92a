package service

import (
	"bytes"
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

// pngBytes is the PNG signature plus an IHDR chunk header, enough for
// content sniffing.
var pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 32)...)

func TestUploadAvatar(t *testing.T) {
	ctx := context.Background()
	e := newTestEnv(t)
	admin := e.admin(t)
	e.verifiedUser(t, "ada@example.com", "ada")
	_, user := e.login(t, "ada@example.com")

	t.Run("admins only", func(t *testing.T) {
		_, err := e.Avatars.UploadAvatar(ctx, user, pngBytes)
		require.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("rejects non images", func(t *testing.T) {
		_, err := e.Avatars.UploadAvatar(ctx, admin, []byte("hello, world"))
		require.ErrorIs(t, err, ErrValidation)

		_, err = e.Avatars.UploadAvatar(ctx, admin, nil)
		require.ErrorIs(t, err, ErrValidation)
	})

	t.Run("rejects oversized files", func(t *testing.T) {
		e.Avatars.MaxBytes = 16
		defer func() { e.Avatars.MaxBytes = 0 }()
		_, err := e.Avatars.UploadAvatar(ctx, admin, pngBytes)
		require.ErrorIs(t, err, ErrValidation)
	})

	t.Run("uploader failure", func(t *testing.T) {
		e.Uploader.err = errors.New("bucket gone")
		defer func() { e.Uploader.err = nil }()
		_, err := e.Avatars.UploadAvatar(ctx, admin, pngBytes)
		require.ErrorIs(t, err, ErrUpload)
	})

	t.Run("stores the url and drops the cached profile", func(t *testing.T) {
		_, ok := e.Cache.Get(ctx, admin.ID)
		require.True(t, ok)

		p, err := e.Avatars.UploadAvatar(ctx, admin, bytes.Clone(pngBytes))
		require.NoError(t, err)
		require.Len(t, e.Uploader.keys, 1)
		require.Regexp(t, regexp.MustCompile(`^avatars/`+admin.ID+`/[0-9a-f-]{36}\.png$`), e.Uploader.keys[0])
		require.Equal(t, "https://cdn.example.com/"+e.Uploader.keys[0], p.AvatarURL)

		_, ok = e.Cache.Get(ctx, admin.ID)
		require.False(t, ok)
	})
}
