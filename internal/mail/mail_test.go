package mail

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

type recorder struct {
	mu   sync.Mutex
	sent []Message
}

func (r *recorder) Send(_ context.Context, msg Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, msg)
	return nil
}

func TestDispatcherDeliversQueuedMessages(t *testing.T) {
	rec := &recorder{}
	d := NewDispatcher(rec, 4)

	d.Dispatch(VerifyEmail("ana@example.com", "Ana", "http://localhost/verify"))
	d.Dispatch(OrderPlaced("ana@example.com", "Ana", 7, "300000"))
	d.Close()

	assert.Len(t, rec.sent, 2)
	assert.Equal(t, "Verify Email Address", rec.sent[0].Subject)
	assert.Contains(t, rec.sent[0].Body, "http://localhost/verify")
	assert.Equal(t, "Order #7 received", rec.sent[1].Subject)
}

func TestDispatchAfterCloseIsDropped(t *testing.T) {
	rec := &recorder{}
	d := NewDispatcher(rec, 4)
	d.Dispatch(VerifyEmail("ana@example.com", "Ana", "http://localhost/verify"))
	d.Close()

	assert.NotPanics(t, func() {
		d.Dispatch(OrderPlaced("ana@example.com", "Ana", 8, "120000"))
	})
	d.Close()

	assert.Len(t, rec.sent, 1)
}

func TestRenderHeaders(t *testing.T) {
	cfg := SMTPConfig{From: "shop@example.com"}
	raw := string(cfg.render(Message{To: "ana@example.com", Subject: "Hi", Body: "Body"}))

	assert.True(t, strings.HasPrefix(raw, "From: shop@example.com\r\n"))
	assert.Contains(t, raw, "Subject: Hi\r\n")
	assert.True(t, strings.HasSuffix(raw, "\r\n\r\nBody"))
}
