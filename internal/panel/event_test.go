package panel_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"metapanel/internal/panel"
)

func TestEventDecodesDecoderOutput(t *testing.T) {
	raw := `{
		"protocol": "DMR",
		"sync": "voice",
		"slot": 1,
		"type": "group",
		"source": 2621234,
		"target": 262,
		"talkeralias": "DL1ABC Hans",
		"additional": {"callsign": "DL1ABC", "fname": "Hans", "country": "Germany"},
		"lat": 48.137,
		"lon": 11.575,
		"unknown": [1, 2, 3]
	}`

	var ev panel.Event
	require.NoError(t, json.Unmarshal([]byte(raw), &ev))

	assert.Equal(t, panel.Text("DMR"), ev.Protocol)
	assert.True(t, ev.IsVoice())
	require.NotNil(t, ev.Slot)
	assert.Equal(t, 1, *ev.Slot)
	assert.Equal(t, panel.Text("2621234"), ev.Source)
	assert.Equal(t, panel.Text("262"), ev.Target)
	assert.Equal(t, "Hans", ev.Fname())
	require.NotNil(t, ev.Lat)
	assert.InDelta(t, 48.137, *ev.Lat, 1e-9)
}

func TestEventTreatsNullAsAbsent(t *testing.T) {
	var ev panel.Event
	require.NoError(t, json.Unmarshal([]byte(`{"protocol":"M17","source":null,"destination":"ALL","sync":true}`), &ev))

	assert.Equal(t, panel.Text(""), ev.Source)
	assert.Equal(t, panel.Text("true"), ev.Sync)
	assert.False(t, ev.IsVoice())
	assert.Nil(t, ev.Slot)
	assert.Nil(t, ev.Additional)
	assert.Equal(t, "", ev.Fname())
}

func TestEventRejectsStructuredText(t *testing.T) {
	var ev panel.Event
	assert.Error(t, json.Unmarshal([]byte(`{"source":{"id":1}}`), &ev))
}
