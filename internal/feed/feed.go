// Package feed turns decoder output into metadata events. Sources deliver
// events to a Sink one at a time, in arrival order.
package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"metapanel/internal/panel"
)

// MessageTypeMetadata is the websocket message type carrying metadata.
const MessageTypeMetadata = "metadata"

var (
	// ErrNotMetadata marks a well-formed message that carries something else.
	ErrNotMetadata = errors.New("feed: not a metadata message")
	// ErrMalformed marks input that is not a JSON object.
	ErrMalformed = errors.New("feed: malformed message")
)

// Sink receives decoded events. Sources never call it concurrently.
type Sink func(ev panel.Event)

// Source produces events until the context ends or the input is exhausted.
type Source interface {
	Run(ctx context.Context, sink Sink) error
}

type envelope struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}

// Decode accepts either the client envelope {"type":"metadata","value":{...}}
// or a bare event object.
func Decode(data []byte) (panel.Event, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return panel.Event{}, ErrMalformed
	}
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return panel.Event{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	payload := data
	if len(env.Value) > 0 {
		if env.Type != MessageTypeMetadata {
			return panel.Event{}, fmt.Errorf("%w: type %q", ErrNotMetadata, env.Type)
		}
		payload = env.Value
	}
	var ev panel.Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		return panel.Event{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return ev, nil
}

// Encode wraps ev in the client envelope.
func Encode(ev panel.Event) ([]byte, error) {
	value, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("encode metadata: %w", err)
	}
	return json.Marshal(envelope{Type: MessageTypeMetadata, Value: value})
}

// deliver decodes one message and hands it to sink. Messages that do not
// decode are logged and dropped.
func deliver(logger *slog.Logger, source string, data []byte, sink Sink) bool {
	ev, err := Decode(data)
	if err != nil {
		if errors.Is(err, ErrNotMetadata) {
			logger.Debug("skipping non-metadata message", "source", source, "error", err)
		} else {
			logger.Warn("dropping undecodable message", "source", source, "error", err)
		}
		return false
	}
	sink(ev)
	return true
}
