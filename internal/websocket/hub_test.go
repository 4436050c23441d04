package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"interview-practice-be/internal/dto"
	"interview-practice-be/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestHubDeliversOnlyToSessionViewers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(nil, logger.NewNopLogger())
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()
	defer func() {
		cancel()
		<-done
	}()

	watcher := &Client{Hub: hub, SessionId: "s1", Send: make(chan []byte, 1)}
	other := &Client{Hub: hub, SessionId: "s2", Send: make(chan []byte, 1)}
	require.True(t, hub.Register(watcher))
	require.True(t, hub.Register(other))
	require.Eventually(t, func() bool { return hub.Viewers("s1") == 1 && hub.Viewers("s2") == 1 }, time.Second, 5*time.Millisecond)

	hub.NotifySubmission(dto.SubmissionRecordedMessage{SessionId: "s1", QuestionId: 2})

	select {
	case raw := <-watcher.Send:
		var frame struct {
			Type string                        `json:"type"`
			Data dto.SubmissionRecordedMessage `json:"data"`
		}
		require.NoError(t, json.Unmarshal(raw, &frame))
		assert.Equal(t, "submission_recorded", frame.Type)
		assert.Equal(t, 2, frame.Data.QuestionId)
	case <-time.After(time.Second):
		t.Fatal("viewer did not receive the event")
	}
	assert.Empty(t, other.Send)

	hub.Unregister(watcher)
	require.Eventually(t, func() bool { return hub.Viewers("s1") == 0 }, time.Second, 5*time.Millisecond)
}

func TestHubStoppedDoesNotBlockViewers(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(nil, logger.NewNopLogger())
	go hub.Run(ctx)

	slow := &Client{Hub: hub, SessionId: "s1", Send: make(chan []byte)}
	require.True(t, hub.Register(slow))
	require.Eventually(t, func() bool { return hub.Viewers("s1") == 1 }, time.Second, 5*time.Millisecond)

	// slow never drains, so delivery schedules an unregister in the background
	hub.NotifySubmission(dto.SubmissionRecordedMessage{SessionId: "s1", QuestionId: 1})

	cancel()
	select {
	case <-hub.Done():
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}

	unregistered := make(chan struct{})
	go func() {
		hub.Unregister(slow)
		close(unregistered)
	}()
	select {
	case <-unregistered:
	case <-time.After(time.Second):
		t.Fatal("Unregister blocked after the hub stopped")
	}

	assert.False(t, hub.Register(&Client{Hub: hub, SessionId: "s2", Send: make(chan []byte, 1)}))
	assert.Equal(t, 0, hub.Viewers("s1"))
}
