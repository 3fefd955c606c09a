package email

import (
	"bytes"
	"context"
	"errors"
	"net"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"
)

type capture struct {
	msg *mail.Msg
	err error
}

func newTestSender(opts Options, c *capture) *Sender {
	s := NewSender(opts)
	s.now = func() time.Time { return time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC) }
	s.send = func(_ context.Context, msg *mail.Msg) error {
		c.msg = msg
		return c.err
	}
	return s
}

func render(t *testing.T, msg *mail.Msg) string {
	t.Helper()
	require.NotNil(t, msg)
	var buf bytes.Buffer
	_, err := msg.WriteTo(&buf)
	require.NoError(t, err)
	return buf.String()
}

func TestSend(t *testing.T) {
	c := &capture{}
	s := newTestSender(Options{Host: "smtp.example.com", Port: 587, Username: "u", Password: "p", From: "care@example.com"}, c)

	err := s.Send(context.Background(), " user@example.com ", "Reminder", "Take your meds\nat 08:00")
	require.NoError(t, err)

	raw := render(t, c.msg)
	assert.Contains(t, raw, "care@example.com")
	assert.Contains(t, raw, "user@example.com")
	assert.Contains(t, raw, "Subject: Reminder\r\n")
	assert.Contains(t, raw, "Take your meds")
	assert.Contains(t, raw, "at 08:00")
}

func TestSend_EncodesNonASCIISubject(t *testing.T) {
	c := &capture{}
	s := newTestSender(Options{Host: "h", From: "care@example.com"}, c)

	require.NoError(t, s.Send(context.Background(), "user@example.com", "Reminder: Médicament", "b"))

	raw := render(t, c.msg)
	assert.Regexp(t, `(?i)Subject: =\?UTF-8\?[QB]\?`, raw)
	assert.NotContains(t, raw, "Subject: Reminder: Médicament")
}

func TestSend_Validation(t *testing.T) {
	c := &capture{}
	err := newTestSender(Options{}, c).Send(context.Background(), "user@example.com", "s", "b")
	assert.ErrorIs(t, err, ErrNotConfigured)

	s := newTestSender(Options{Host: "h", Port: 25, From: "a@b.c"}, c)
	assert.Error(t, s.Send(context.Background(), "not-an-address", "s", "b"))
	assert.Error(t, s.Send(context.Background(), "a@b.c\r\nBcc: x@y.z", "s", "b"))
	assert.Error(t, s.Send(context.Background(), "a@b.c", "line\r\nBcc: x@y.z", "b"))
	assert.Nil(t, c.msg)
}

func TestSend_RelayFailure(t *testing.T) {
	relay := errors.New("421 service not available")
	s := newTestSender(Options{Host: "h", Port: 25, From: "a@b.c"}, &capture{err: relay})

	err := s.Send(context.Background(), "user@example.com", "s", "b")
	assert.ErrorIs(t, err, relay)
}

// silentRelay accepts connections and never sends the SMTP greeting.
func silentRelay(t *testing.T) (string, int) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	var (
		mu    sync.Mutex
		conns []net.Conn
	)
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			mu.Lock()
			conns = append(conns, conn)
			mu.Unlock()
		}
	}()
	t.Cleanup(func() {
		_ = ln.Close()
		mu.Lock()
		defer mu.Unlock()
		for _, c := range conns {
			_ = c.Close()
		}
	})

	host, port, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	p, err := strconv.Atoi(port)
	require.NoError(t, err)
	return host, p
}

func TestSend_HonoursContextDeadline(t *testing.T) {
	host, port := silentRelay(t)
	s := NewSender(Options{Host: host, Port: port, From: "care@example.com", Timeout: time.Second})

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := s.Send(ctx, "user@example.com", "Reminder", "b")
	require.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
}
