package realtime

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEvent(t *testing.T) {
	tests := []struct {
		name       string
		payload    string
		wantErr    bool
		wantRecord bool
	}{
		{
			name:    "trigger payload with key only",
			payload: `{"table":"progress","type":"UPDATE","key":{"student_id":"st1","session_id":"s1"}}`,
		},
		{
			name:       "relayed record",
			payload:    `{"table":"messages","type":"INSERT","key":"m1","record":{"id":"m1"}}`,
			wantRecord: true,
		},
		{
			name:    "missing table",
			payload: `{"type":"INSERT","key":"m1"}`,
			wantErr: true,
		},
		{
			name:    "not json",
			payload: `INSERT messages`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			evt, err := DecodeEvent([]byte(tt.payload))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantRecord, evt.HasRecord())
		})
	}
}

func TestMemoryFeedDeliversPerTable(t *testing.T) {
	feed := NewMemoryFeed(8)
	defer feed.Close()

	ctx := context.Background()
	msgs, err := feed.Subscribe(ctx, "messages")
	require.NoError(t, err)
	students, err := feed.Subscribe(ctx, "students")
	require.NoError(t, err)

	evt, err := NewEvent("messages", EventInsert, "m1", map[string]string{"id": "m1"})
	require.NoError(t, err)
	require.NoError(t, feed.Publish(ctx, evt))

	select {
	case got := <-msgs.Events():
		assert.Equal(t, "messages", got.Table)
		assert.JSONEq(t, `"m1"`, string(got.Key))
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}

	select {
	case got := <-students.Events():
		t.Fatalf("unexpected event on students: %+v", got)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestMemoryFeedUnsubscribe(t *testing.T) {
	feed := NewMemoryFeed(8)

	sub, err := feed.Subscribe(context.Background(), "progress")
	require.NoError(t, err)
	assert.Equal(t, 1, feed.Subscribers("progress"))

	require.NoError(t, sub.Unsubscribe())
	require.NoError(t, sub.Unsubscribe())
	assert.Equal(t, 0, feed.Subscribers("progress"))

	_, open := <-sub.Events()
	assert.False(t, open)

	require.NoError(t, feed.Close())
	_, err = feed.Subscribe(context.Background(), "progress")
	assert.ErrorIs(t, err, ErrFeedClosed)
}
