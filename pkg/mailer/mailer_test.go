package mailer_test

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/scheduled/pkg/mailer"
)

type recordingSender struct {
	err  error
	sent []*mailer.Email
}

func (s *recordingSender) Send(_ context.Context, email *mailer.Email) error {
	s.sent = append(s.sent, email)
	return s.err
}

type verifiedData struct {
	Domain     string
	RecordName string
	Token      string
}

func TestMailer_SendsBuiltinDomainVerified(t *testing.T) {
	t.Parallel()

	sender := &recordingSender{}
	m := mailer.New(sender, mailer.NewRenderer(mailer.Templates()), mailer.Config{Layout: "base.html", ReplyTo: "help@scheduled.app"})

	err := m.Send(t.Context(), mailer.Message{
		To:       "owner@example.com",
		Template: "domain_verified.md",
		Data: verifiedData{
			Domain:     "example.com",
			RecordName: "_scheduled-verification.example.com",
			Token:      "scheduled-verify-abc",
		},
	})
	require.NoError(t, err)
	require.Len(t, sender.sent, 1)

	email := sender.sent[0]
	assert.Equal(t, []string{"owner@example.com"}, email.To)
	assert.Equal(t, "example.com is verified", email.Subject)
	assert.Equal(t, "help@scheduled.app", email.ReplyTo)
	assert.Contains(t, email.HTML, "<strong>example.com</strong>")
	assert.Contains(t, email.HTML, "<table>")
	assert.Contains(t, email.HTML, "Your custom domain is ready to use.")
	assert.Contains(t, email.Text, "**example.com**")
}

func TestMailer_Subject(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"plain.md":          {Data: []byte("Hello {{.}}")},
		"layouts/base.html": {Data: []byte("{{.Content}}")},
	}

	tests := []struct {
		name     string
		cfg      mailer.Config
		override string
		want     string
		wantErr  error
	}{
		{name: "fallback", cfg: mailer.Config{Layout: "base.html", FallbackSubject: "Note for {{.}}"}, want: "Note for Ana"},
		{name: "override", cfg: mailer.Config{Layout: "base.html", FallbackSubject: "x"}, override: "Hi", want: "Hi"},
		{name: "none", cfg: mailer.Config{Layout: "base.html"}, wantErr: mailer.ErrNoSubject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			sender := &recordingSender{}
			m := mailer.New(sender, mailer.NewRenderer(fsys), tt.cfg)
			err := m.Send(t.Context(), mailer.Message{To: "a@b.c", Template: "plain.md", Data: "Ana", Subject: tt.override})
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, sender.sent[0].Subject)
		})
	}
}

func TestMailer_Errors(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"ok.md":             {Data: []byte("---\nsubject: s\n---\nbody")},
		"broken.md":         {Data: []byte("---\nsubject: s\nbody")},
		"layouts/base.html": {Data: []byte("{{.Content}}")},
	}
	failing := &recordingSender{err: errors.New("provider down")}
	m := mailer.New(failing, mailer.NewRenderer(fsys), mailer.Config{Layout: "base.html"})
	ctx := t.Context()

	assert.ErrorIs(t, m.Send(ctx, mailer.Message{Template: "ok.md"}), mailer.ErrNoRecipient)
	assert.ErrorIs(t, m.Send(ctx, mailer.Message{To: "a@b.c", Template: "missing.md"}), mailer.ErrTemplateNotFound)
	assert.ErrorIs(t, m.Send(ctx, mailer.Message{To: "a@b.c", Template: "broken.md"}), mailer.ErrInvalidFrontmatter)
	assert.ErrorIs(t, m.Send(ctx, mailer.Message{To: "a@b.c", Template: "ok.md"}), mailer.ErrSendFailed)

	noLayout := mailer.New(failing, mailer.NewRenderer(fsys), mailer.Config{Layout: "other.html"})
	assert.ErrorIs(t, noLayout.Send(ctx, mailer.Message{To: "a@b.c", Template: "ok.md"}), mailer.ErrLayoutNotFound)
}

func TestLogSender(t *testing.T) {
	t.Parallel()

	assert.NoError(t, mailer.LogSender{}.Send(t.Context(), &mailer.Email{To: []string{"a@b.c"}}))
}

func TestAddress(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Scheduled <no-reply@scheduled.app>", mailer.Address("Scheduled", "no-reply@scheduled.app"))
	assert.Equal(t, "no-reply@scheduled.app", mailer.Address("", "no-reply@scheduled.app"))
}
