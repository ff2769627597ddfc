package mailer

import (
	"bytes"
	"context"
	"errors"
	texttemplate "text/template"
)

// Config holds defaults applied to every message.
type Config struct {
	Layout          string `env:"MAILER_LAYOUT" envDefault:"base.html"`
	FallbackSubject string `env:"MAILER_FALLBACK_SUBJECT" envDefault:"Notification"`
	ReplyTo         string `env:"MAILER_REPLY_TO"`
}

// Message selects a template and the data it is executed with.
type Message struct {
	Data     any
	Tags     map[string]string
	To       string
	Template string
	// Subject overrides the template's "subject" metadata.
	Subject string
}

type Mailer struct {
	sender   Sender
	renderer *Renderer
	cfg      Config
}

func New(sender Sender, renderer *Renderer, cfg Config) *Mailer {
	return &Mailer{sender: sender, renderer: renderer, cfg: cfg}
}

// Send renders msg and delivers it. The subject is taken from msg.Subject,
// then the template's "subject" metadata, then Config.FallbackSubject, and
// is itself executed as a template against msg.Data.
func (m *Mailer) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return ErrNoRecipient
	}

	out, err := m.renderer.Render(m.cfg.Layout, msg.Template, msg.Data)
	if err != nil {
		return err
	}

	subject := msg.Subject
	if subject == "" {
		subject, _ = out.Metadata["subject"].(string)
	}
	if subject == "" {
		subject = m.cfg.FallbackSubject
	}
	if subject == "" {
		return ErrNoSubject
	}
	subject, err = executeSubject(subject, msg.Data)
	if err != nil {
		return errors.Join(ErrRenderFailed, err)
	}

	email := &Email{
		To:      []string{msg.To},
		Subject: subject,
		HTML:    out.HTML,
		Text:    out.Text,
		ReplyTo: m.cfg.ReplyTo,
		Tags:    msg.Tags,
	}
	if err := m.sender.Send(ctx, email); err != nil {
		return errors.Join(ErrSendFailed, err)
	}
	return nil
}

func executeSubject(subject string, data any) (string, error) {
	tmpl, err := texttemplate.New("subject").Parse(subject)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
