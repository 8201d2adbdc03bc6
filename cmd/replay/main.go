// Command replay feeds recorded metadata messages through the panels and
// prints what they render.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/pflag"

	"metapanel/internal/feed"
	"metapanel/internal/panel"
	"metapanel/internal/panel/render"
	"metapanel/internal/platform/logger"
	pstrings "metapanel/pkg/platform/strings"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "replay: %v\n", err)
		os.Exit(1)
	}
}

type snapshot struct {
	Panels   map[string]panel.State            `json:"panels"`
	Document map[string]map[string]render.Node `json:"document"`
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	var (
		snap     bool
		panels   []string
		logLevel string
	)
	fs := pflag.NewFlagSet("replay", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.BoolVar(&snap, "snapshot", false, "print only the final panel states and document")
	fs.StringSliceVar(&panels, "panels", nil, "panel tags to mount (default all)")
	fs.StringVar(&logLevel, "log-level", "warn", "log level")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "usage: replay [flags] [file]\n\nReads one metadata message per line from file or stdin.\n\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 1 {
		return fmt.Errorf("expected at most one input file, got %d", fs.NArg())
	}

	log, err := logger.New(stderr, logLevel, logger.FormatText)
	if err != nil {
		return err
	}

	registry := panel.DefaultRegistry()
	if tags := pstrings.DedupeAndTrimLower(panels); len(tags) > 0 {
		registry = registry.Only(tags...)
		if len(registry) != len(tags) {
			return fmt.Errorf("unknown panel in %v (known: %v)", tags, panel.DefaultRegistry().Tags())
		}
	}

	in, name := stdin, "stdin"
	if fs.NArg() == 1 {
		name = fs.Arg(0)
		f, err := os.Open(name)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	rec := render.NewRecorder("")
	doc := render.NewDocument()
	dispatch := panel.NewDispatcher(registry, func(id string) panel.Renderer {
		return render.Tee(rec.For(id), doc.Element(id))
	}, panel.WithLogger(log))
	dispatch.MountRegistry()

	enc := json.NewEncoder(stdout)
	var writeErr error
	source := feed.NewReaderSource(in, feed.WithName(name), feed.WithReaderLogger(log))
	err = source.Run(ctx, func(ev panel.Event) {
		dispatch.Broadcast(ev)
		for _, d := range rec.Drain() {
			if snap || writeErr != nil {
				continue
			}
			writeErr = enc.Encode(d)
		}
	})
	if err != nil {
		return err
	}
	if writeErr != nil {
		return fmt.Errorf("write directives: %w", writeErr)
	}
	if snap {
		enc.SetIndent("", "  ")
		return enc.Encode(snapshot{Panels: dispatch.States(), Document: doc.Snapshot()})
	}
	return nil
}
