package nats

import (
	"encoding/json"
	"testing"
	"time"

	"study-tracker-be/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeRoundTripsPublishedPayload(t *testing.T) {
	at := time.Date(2026, 5, 4, 8, 30, 0, 0, time.UTC)
	sent := events.BaseEvent{
		Type:       events.TypeFolderRepaired,
		Data:       map[string]interface{}{"code": "ONC-1", "kind": "STORAGE"},
		OccurredAt: at,
	}
	data, err := json.Marshal(sent.Payload())
	require.NoError(t, err)

	got, err := decode(Subject(sent.Type), data)
	require.NoError(t, err)
	assert.Equal(t, events.TypeFolderRepaired, got.EventType())
	assert.True(t, at.Equal(got.Timestamp()))
	assert.Equal(t, map[string]interface{}{"code": "ONC-1", "kind": "STORAGE"}, got.Data)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := decode("events.X", []byte("not json"))
	assert.Error(t, err)
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "events.STUDY_CREATED", Subject(events.TypeStudyCreated))
}
