package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"metapanel/internal/feed"
	"metapanel/internal/platform/config"
	"metapanel/internal/platform/logger"
)

func TestPanelRegistry(t *testing.T) {
	reg, err := panelRegistry(nil)
	require.NoError(t, err)
	assert.Len(t, reg, 5)

	reg, err = panelRegistry([]string{"dmr", "m17"})
	require.NoError(t, err)
	assert.Equal(t, []string{"dmr", "m17"}, reg.Tags())

	_, err = panelRegistry([]string{"pocsag"})
	require.Error(t, err)
}

func TestNewSource(t *testing.T) {
	ctx := context.Background()

	t.Run("none", func(t *testing.T) {
		src, closeFn, health, err := newSource(ctx, config.Default(), nil, logger.Discard())
		require.NoError(t, err)
		defer closeFn()
		assert.Nil(t, src)
		assert.Nil(t, health)
	})

	t.Run("stdin", func(t *testing.T) {
		cfg := config.Default()
		cfg.Feed.Kind = config.FeedStdin
		src, closeFn, health, err := newSource(ctx, cfg, bytes.NewBufferString(""), logger.Discard())
		require.NoError(t, err)
		defer closeFn()
		assert.IsType(t, &feed.ReaderSource{}, src)
		assert.Nil(t, health, "reader feeds have nothing to check")
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "feed.jsonl")
		require.NoError(t, os.WriteFile(path, nil, 0o600))
		cfg := config.Default()
		cfg.Feed = config.Feed{Kind: config.FeedFile, File: path}
		src, closeFn, _, err := newSource(ctx, cfg, nil, logger.Discard())
		require.NoError(t, err)
		defer closeFn()
		assert.IsType(t, &feed.ReaderSource{}, src)

		cfg.Feed.File = filepath.Join(t.TempDir(), "missing.jsonl")
		_, _, _, err = newSource(ctx, cfg, nil, logger.Discard())
		require.Error(t, err)
	})
}

func TestRunRejectsBadConfiguration(t *testing.T) {
	var stderr bytes.Buffer
	getenv := func(string) string { return "" }

	err := run(context.Background(), []string{"--feed", "redis"}, getenv, nil, &stderr)
	require.Error(t, err)

	err = run(context.Background(), []string{"--log-level", "loud"}, getenv, nil, &stderr)
	require.Error(t, err)

	err = run(context.Background(), []string{"--panels", "pocsag"}, getenv, nil, &stderr)
	require.Error(t, err)
}
