package feed

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
)

const maxLineBytes = 1 << 20

// ReaderSource reads newline-delimited messages, e.g. a recorded session or
// a decoder piped to stdin.
type ReaderSource struct {
	r      io.Reader
	name   string
	logger *slog.Logger
}

type ReaderOption func(*ReaderSource)

func WithReaderLogger(logger *slog.Logger) ReaderOption {
	return func(s *ReaderSource) {
		s.logger = logger
	}
}

// WithName labels the source in logs.
func WithName(name string) ReaderOption {
	return func(s *ReaderSource) {
		s.name = name
	}
}

func NewReaderSource(r io.Reader, opts ...ReaderOption) *ReaderSource {
	s := &ReaderSource{r: r, name: "reader", logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run returns nil at end of input.
func (s *ReaderSource) Run(ctx context.Context, sink Sink) error {
	scanner := bufio.NewScanner(s.r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	delivered := 0
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if deliver(s.logger, s.name, line, sink) {
			delivered++
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read %s: %w", s.name, err)
	}
	s.logger.Info("feed exhausted", "source", s.name, "events", delivered)
	return nil
}
