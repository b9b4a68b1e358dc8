package mail

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/kardex-admin/internal/application/ports"
	"github.com/jhoicas/kardex-admin/pkg/config"
	"github.com/jhoicas/kardex-admin/pkg/logger"
)

func TestNew_SinHostUsaLogMailer(t *testing.T) {
	m := New(config.SMTPConfig{}, nil)
	_, ok := m.(*LogMailer)
	assert.True(t, ok)

	m = New(config.SMTPConfig{Host: "smtp.example.com", Port: 587, From: "no-reply@example.com"}, nil)
	_, ok = m.(*SMTPMailer)
	assert.True(t, ok)
}

func TestLogMailer_RegistraElCorreo(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Env: "production", Level: "info", Out: &buf})

	err := NewLogMailer(log).Send(context.Background(), ports.MailMessage{
		To: "ana@example.com", Subject: "Invitación", Body: "Hola",
	})
	require.NoError(t, err)
	assert.True(t, strings.Contains(buf.String(), "ana@example.com"))
	assert.True(t, strings.Contains(buf.String(), `"component":"mail"`))
}

func TestSMTPMailer_Mensaje(t *testing.T) {
	m := NewSMTPMailer(config.SMTPConfig{Host: "smtp.example.com", Port: 587, From: "no-reply@example.com"})
	gm := m.message(ports.MailMessage{To: "ana@example.com", Subject: "Recuperar contraseña", Body: "token"})

	assert.Equal(t, []string{"no-reply@example.com"}, gm.GetHeader("From"))
	assert.Equal(t, []string{"ana@example.com"}, gm.GetHeader("To"))
}

func TestSMTPMailer_ContextoCancelado(t *testing.T) {
	m := NewSMTPMailer(config.SMTPConfig{Host: "smtp.example.com", Port: 587})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, m.Send(ctx, ports.MailMessage{To: "x@example.com"}), context.Canceled)
}
