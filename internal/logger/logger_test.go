package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBufferCapturesMessages(t *testing.T) {
	buf := NewBuffer()

	buf.Debug("connecting to %s", "alpha")
	buf.Info("connected")
	buf.Warn("slow handshake")
	buf.Error("lost connection")

	assert.Len(t, buf.Messages, 4)
	assert.Equal(t, "debug", buf.Messages[0].Level)
	assert.Equal(t, "connecting to alpha", buf.Messages[0].Text)
	assert.True(t, buf.HasLevel("warn"))
	assert.True(t, buf.HasLevel("error"))
	assert.False(t, buf.HasLevel("fatal"))
}

func TestNoopDiscards(t *testing.T) {
	l := Noop()

	// Must not panic; nothing observable to assert beyond that.
	l.Debug("a %d", 1)
	l.Info("b")
	l.Warn("c")
	l.Error("d")
}

func TestNewReturnsLogger(t *testing.T) {
	l := New("[test]")
	assert.NotNil(t, l)
}
