package service

import "context"

// EmailSender delivers the links of the account flows. Implementations live
// in internal/contacts/mail. Failures are returned as is; callers do not
// retry.
type EmailSender interface {
	SendVerification(ctx context.Context, to, link string) error
	SendPasswordReset(ctx context.Context, to, link string) error
}

// Uploader stores a public object and returns the URL it is served from.
// Implementations live in internal/contacts/media.
type Uploader interface {
	Upload(ctx context.Context, key, contentType string, data []byte) (string, error)
}
