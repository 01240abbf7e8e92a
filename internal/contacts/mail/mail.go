// Package mail renders the account emails and hands them to a transport
// (SendGrid in production, the log in development).
package mail

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
)

//go:embed templates/*
var templateFS embed.FS

var (
	htmlTemplates = htmltemplate.Must(htmltemplate.ParseFS(templateFS, "templates/*.html"))
	textTemplates = texttemplate.Must(texttemplate.ParseFS(templateFS, "templates/*.txt"))
)

// Message is one rendered email. Link is the actionable URL, kept
// separately so the log transport can print it.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
	Link    string
}

// Transport delivers rendered messages.
type Transport interface {
	Send(ctx context.Context, msg Message) error
}

// Mailer renders the verification and password reset emails.
type Mailer struct {
	Transport Transport
	AppName   string
}

type templateData struct {
	AppName string
	Email   string
	Link    string
}

func (m *Mailer) SendVerification(ctx context.Context, to, link string) error {
	return m.send(ctx, "verify_email", "Confirm your email", to, link)
}

func (m *Mailer) SendPasswordReset(ctx context.Context, to, link string) error {
	return m.send(ctx, "reset_password", "Reset your password", to, link)
}

func (m *Mailer) send(ctx context.Context, tmpl, subject, to, link string) error {
	data := templateData{AppName: m.appName(), Email: to, Link: link}

	var text, html bytes.Buffer
	if err := textTemplates.ExecuteTemplate(&text, tmpl+".txt", data); err != nil {
		return fmt.Errorf("render %s text: %w", tmpl, err)
	}
	if err := htmlTemplates.ExecuteTemplate(&html, tmpl+".html", data); err != nil {
		return fmt.Errorf("render %s html: %w", tmpl, err)
	}

	return m.Transport.Send(ctx, Message{
		To:      to,
		Subject: fmt.Sprintf("%s: %s", data.AppName, subject),
		Text:    text.String(),
		HTML:    html.String(),
		Link:    link,
	})
}

func (m *Mailer) appName() string {
	if m.AppName == "" {
		return "Contacts"
	}
	return m.AppName
}
