package events_test

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"erp-inventory/src/events"
)

func TestLogPublisherWritesJSONPayload(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetOutput(io.Discard)
	pub := events.NewLogPublisher(logger)

	ref := uuid.New()
	err := pub.Publish(context.Background(), events.Event{
		Kind:      events.TransferCompleted,
		EntityID:  7,
		Reference: ref,
		ActorID:   3,
		Data:      map[string]any{"lines": 2},
	})
	require.NoError(t, err)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, "transfer.completed", entry.Data["event"])
	assert.Contains(t, entry.Message, `"kind":"transfer.completed"`)
	assert.Contains(t, entry.Message, ref.String())
	assert.Contains(t, entry.Message, `"occurred_at"`)
}
