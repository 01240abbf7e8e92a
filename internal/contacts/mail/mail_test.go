package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

type captureTransport struct{ msgs []Message }

func (c *captureTransport) Send(_ context.Context, msg Message) error {
	c.msgs = append(c.msgs, msg)
	return nil
}

func TestMailer_Renders(t *testing.T) {
	ctx := context.Background()
	tr := &captureTransport{}
	m := &Mailer{Transport: tr, AppName: "Contacts"}

	link := "http://localhost:8080/v1/auth/verify-email?token=abc&x=1"
	require.NoError(t, m.SendVerification(ctx, "ada@example.com", link))
	require.NoError(t, m.SendPasswordReset(ctx, "ada@example.com", "http://localhost:3000/reset?token=def"))
	require.Len(t, tr.msgs, 2)

	v := tr.msgs[0]
	require.Equal(t, "ada@example.com", v.To)
	require.Equal(t, "Contacts: Confirm your email", v.Subject)
	require.Equal(t, link, v.Link)
	require.Contains(t, v.Text, link)
	// HTML output escapes the query separator.
	require.Contains(t, v.HTML, "token=abc&amp;x=1")

	r := tr.msgs[1]
	require.Equal(t, "Contacts: Reset your password", r.Subject)
	require.Contains(t, r.Text, "token=def")
}

func TestLogTransport(t *testing.T) {
	var buf bytes.Buffer
	tr := &LogTransport{Logger: slog.New(slog.NewJSONHandler(&buf, nil))}
	require.NoError(t, tr.Send(context.Background(), Message{To: "ada@example.com", Subject: "s", Link: "http://x/?token=t"}))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "http://x/?token=t", line["link"])
	require.Equal(t, "ada@example.com", line["to"])
}

func TestSendGridTransport(t *testing.T) {
	_, err := NewSendGridTransport("", "noreply@example.com", "Contacts")
	require.ErrorIs(t, err, ErrMissingAPIKey)

	status := http.StatusAccepted
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v3/mail/send", r.URL.Path)
		require.Equal(t, "Bearer sg-key", r.Header.Get("Authorization"))
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &gotBody))
		w.WriteHeader(status)
	}))
	defer srv.Close()

	tr, err := NewSendGridTransport("sg-key", "noreply@example.com", "Contacts")
	require.NoError(t, err)
	tr.WithBaseURL(srv.URL)

	msg := Message{To: "ada@example.com", Subject: "Hello", Text: "plain", HTML: "<p>html</p>"}
	require.NoError(t, tr.Send(context.Background(), msg))
	require.Equal(t, "Hello", gotBody["subject"])
	from := gotBody["from"].(map[string]any)
	require.Equal(t, "noreply@example.com", from["email"])

	status = http.StatusBadRequest
	require.Error(t, tr.Send(context.Background(), msg))
}
