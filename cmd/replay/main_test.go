package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"metapanel/internal/panel"
	"metapanel/internal/panel/render"
)

const recording = `{"type":"metadata","value":{"protocol":"YSF","mode":"V/D mode 2","source":"DL1ABC","up":"ALL","down":"ALL"}}
{"type":"smeter","value":0.3}
not json
{"protocol":"DMR","sync":"voice","slot":0,"source":"2623266","talkeralias":"DL1ABC","additional":{"callsign":"DL1ABC","fname":"Anna"},"type":"group","target":"262"}
`

func TestReplayPrintsDirectivesAsJSONLines(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), nil, strings.NewReader(recording), &stdout, &stderr)
	require.NoError(t, err)

	var directives []render.Directive
	scanner := bufio.NewScanner(&stdout)
	for scanner.Scan() {
		var d render.Directive
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &d))
		directives = append(directives, d)
	}
	require.NotEmpty(t, directives)
	assert.Equal(t, render.Directive{
		Element:  panel.ElementID("ysf"),
		Op:       render.OpText,
		Selector: panel.SelYSFMode,
		Value:    "V/D mode 2",
	}, directives[0])
	assert.Contains(t, directives, render.Directive{
		Element:  panel.ElementID("dmr"),
		Op:       render.OpText,
		Selector: panel.SlotRoot(0) + " " + panel.SelDMRID,
		Value:    "DL1ABC",
	})
	assert.Contains(t, stderr.String(), "dropping undecodable message")
}

func TestReplaySnapshotFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(recording), 0o600))

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"--snapshot", "--panels", "DMR", path}, nil, &stdout, &stderr)
	require.NoError(t, err)

	var snap snapshot
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &snap))
	require.Len(t, snap.Panels, 1)
	dmr := snap.Panels[panel.ElementID("dmr")]
	assert.True(t, dmr.Active)
	assert.Equal(t, "Anna", dmr.Slots[0].Fields[panel.FieldName])
}

func TestReplayRejectsBadArguments(t *testing.T) {
	var out bytes.Buffer
	require.Error(t, run(context.Background(), []string{"--panels", "pocsag"}, strings.NewReader(""), &out, &out))
	require.Error(t, run(context.Background(), []string{"a", "b"}, strings.NewReader(""), &out, &out))
	require.Error(t, run(context.Background(), []string{"/does/not/exist"}, nil, &out, &out))
}
