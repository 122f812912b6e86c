// Package realtime delivers per-table change notifications from the remote
// backend. Three transports are available: Postgres LISTEN/NOTIFY, a
// RabbitMQ topic exchange and Redis Pub/Sub.
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

type EventType string

const (
	EventInsert EventType = "INSERT"
	EventUpdate EventType = "UPDATE"
	EventDelete EventType = "DELETE"
)

var ErrFeedClosed = errors.New("realtime feed is closed")

// Event describes one row change. Record carries the full row when the
// transport has it; otherwise only Key is set and the row must be fetched.
type Event struct {
	Table  string          `json:"table"`
	Type   EventType       `json:"type"`
	Key    json.RawMessage `json:"key,omitempty"`
	Record json.RawMessage `json:"record,omitempty"`
}

func (e Event) HasRecord() bool {
	return len(e.Record) > 0 && string(e.Record) != "null"
}

func DecodeEvent(data []byte) (Event, error) {
	var evt Event
	if err := json.Unmarshal(data, &evt); err != nil {
		return evt, fmt.Errorf("failed to decode event: %w", err)
	}
	if evt.Table == "" || evt.Type == "" {
		return evt, fmt.Errorf("incomplete event: table=%q type=%q", evt.Table, evt.Type)
	}
	return evt, nil
}

// NewEvent builds an event carrying both the key and the full record.
func NewEvent(table string, typ EventType, key, record interface{}) (Event, error) {
	k, err := json.Marshal(key)
	if err != nil {
		return Event{}, fmt.Errorf("failed to encode key: %w", err)
	}
	r, err := json.Marshal(record)
	if err != nil {
		return Event{}, fmt.Errorf("failed to encode record: %w", err)
	}
	return Event{Table: table, Type: typ, Key: k, Record: r}, nil
}

type Subscription interface {
	Events() <-chan Event
	Unsubscribe() error
}

type Feed interface {
	Subscribe(ctx context.Context, table string) (Subscription, error)
	Close() error
}

// Publisher relays successful writes to transports that have no database
// trigger behind them.
type Publisher interface {
	Publish(ctx context.Context, evt Event) error
}

func channelName(prefix, sep, table string) string {
	if prefix == "" {
		return table
	}
	return prefix + sep + table
}
