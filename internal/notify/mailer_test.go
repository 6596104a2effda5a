package notify

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSMTPMailer_Send(t *testing.T) {
	m := NewSMTPMailer(SMTPConfig{Host: "smtp.example.com", Username: "u", Password: "p", From: "portal@agency.com"}, nil)

	var gotAddr, gotFrom string
	var gotTo []string
	var gotBody []byte
	m.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotBody = addr, from, to, msg
		assert.NotNil(t, a)
		return nil
	}

	err := m.Send(context.Background(), Message{To: []string{"ops@agency.com"}, Subject: "New quote request", HTML: "<p>hi</p>"})

	require.NoError(t, err)
	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, "portal@agency.com", gotFrom)
	assert.Equal(t, []string{"ops@agency.com"}, gotTo)
	body := string(gotBody)
	assert.Contains(t, body, "Content-Type: text/html")
	assert.True(t, strings.HasSuffix(body, "<p>hi</p>"))
}

func TestSMTPMailer_WrapsErrors(t *testing.T) {
	m := NewSMTPMailer(SMTPConfig{Host: "smtp.example.com", Port: "2525"}, nil)
	m.send = func(string, smtp.Auth, string, []string, []byte) error {
		return errors.New("connection refused")
	}

	err := m.Send(context.Background(), Message{To: []string{"a@b.com"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "smtp send")
}

func TestSMTPMailer_DisabledDropsMessages(t *testing.T) {
	m := NewSMTPMailer(SMTPConfig{}, nil)
	m.send = func(string, smtp.Auth, string, []string, []byte) error {
		t.Fatal("send must not be called")
		return nil
	}

	assert.False(t, m.Enabled())
	assert.NoError(t, m.Send(context.Background(), Message{To: []string{"a@b.com"}}))
	assert.Error(t, m.Send(context.Background(), Message{}))
}
