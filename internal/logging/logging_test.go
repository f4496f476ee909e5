package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromContextFallsBackToDefault(t *testing.T) {
	assert.Equal(t, slog.Default(), FromContext(context.Background()))
}

func TestRequestLoggerCarriesAttributes(t *testing.T) {
	var buf bytes.Buffer
	base := SetupWriter(&buf, true)

	ctx := WithLogger(context.Background(), base.With("request_id", "abc123"))
	FromContext(ctx).Info("order placed", "order_id", 7)

	out := buf.String()
	assert.Contains(t, out, `"request_id":"abc123"`)
	assert.Contains(t, out, `"order_id":7`)
	assert.Contains(t, out, `"msg":"order placed"`)
}
