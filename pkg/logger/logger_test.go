package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newBufferLogger(t *testing.T) (*Logger, *bytes.Buffer) {
	t.Helper()
	log, err := NewLogger(&Config{Level: DebugLevel, Format: "json", AppName: "test"})
	require.NoError(t, err)
	buf := &bytes.Buffer{}
	log.SetOutput(buf)
	return log, buf
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestWithFieldsDoesNotMutateParent(t *testing.T) {
	log, buf := newBufferLogger(t)

	child := log.WithField("a", 1)
	_ = child.WithField("b", 2)

	child.Info("hello")
	entry := decodeLine(t, buf)

	assert.Equal(t, "hello", entry["message"])
	assert.Equal(t, "test", entry["app"])
	assert.EqualValues(t, 1, entry["a"])
	assert.NotContains(t, entry, "b")
}

func TestLogReservationEvent(t *testing.T) {
	log, buf := newBufferLogger(t)
	id := primitive.NewObjectID()

	log.LogReservationEvent(id, "reservation_approved", map[string]interface{}{"host_id": "h1"})
	entry := decodeLine(t, buf)

	assert.Equal(t, id.Hex(), entry["reservation_id"])
	assert.Equal(t, "reservation_approved", entry["event"])
	assert.Equal(t, "reservation_event", entry["type"])
	assert.Equal(t, "h1", entry["host_id"])
}

func TestWithContextAndError(t *testing.T) {
	log, buf := newBufferLogger(t)
	ctx := context.WithValue(context.Background(), ContextRequestID, "req-1")

	log.WithContext(ctx).WithError(errors.New("boom")).Error("failed")
	entry := decodeLine(t, buf)

	assert.Equal(t, "req-1", entry["request_id"])
	assert.Equal(t, "boom", entry["error"])
	assert.Equal(t, "error", entry["level"])
}

func TestNopDiscards(t *testing.T) {
	assert.NotPanics(t, func() {
		Nop().WithField("k", "v").Info("ignored")
	})
}
