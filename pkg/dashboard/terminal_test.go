package dashboard

import (
	"bytes"
	"testing"
	"time"

	"quoteboard/pkg/quote"
	"quoteboard/pkg/testkit/providers"
	"quoteboard/pkg/timing"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTerminalRenderer_Render(t *testing.T) {
	var buf bytes.Buffer
	r := NewTerminalRenderer(&buf, WithColor(false), WithClearScreen(false))

	snap := Snapshot{
		Indices:   []quote.Record{providers.NewRecord("sh000001", "上证指数", 3000, 3030)},
		Watch:     []quote.Record{providers.NewRecord("600519", "贵州茅台", 1500, 1485)},
		Codes:     []string{"600519"},
		Warnings:  []string{"自选网络请求失败: timeout"},
		Session:   timing.SessionTrading,
		UpdatedAt: time.Date(2025, 8, 21, 10, 0, 0, 0, time.UTC),
		Cycle:     1,
	}
	require.NoError(t, r.Render(snap))

	out := buf.String()
	assert.Contains(t, out, "[交易中]")
	assert.Contains(t, out, "最后刷新: 10:00:00")
	assert.Contains(t, out, "! 自选网络请求失败: timeout")
	assert.Contains(t, out, "上证指数")
	assert.Contains(t, out, "30.000 (1.000%)")
	assert.Contains(t, out, "涨跌幅(%)")
	assert.Contains(t, out, "贵州茅台")
	assert.Contains(t, out, "-15.000")
	assert.NotContains(t, out, clearScreen)
}

func TestTerminalRenderer_EmptyStates(t *testing.T) {
	var buf bytes.Buffer
	r := NewTerminalRenderer(&buf, WithColor(false))

	require.NoError(t, r.Render(Snapshot{Session: timing.SessionClosed}))
	out := buf.String()
	assert.Contains(t, out, clearScreen)
	assert.Contains(t, out, MsgLoadingIndex)
	assert.Contains(t, out, MsgEmptyList)

	buf.Reset()
	require.NoError(t, r.Render(Snapshot{Codes: []string{"600519"}}))
	assert.Contains(t, buf.String(), MsgNoData)
}

func TestTerminalRenderer_Colors(t *testing.T) {
	text.EnableColors()
	var buf bytes.Buffer
	r := NewTerminalRenderer(&buf, WithClearScreen(false))

	assert.Contains(t, r.paint(ToneWarm, "+1.000"), "\x1b[31m")
	assert.Contains(t, r.paint(ToneCool, "-1.000"), "\x1b[32m")
}

func TestTerminalRenderer_NeutralAndWarningColors(t *testing.T) {
	text.EnableColors()
	r := NewTerminalRenderer(&bytes.Buffer{})

	assert.Equal(t, "0.000", r.paint(ToneNeutral, "0.000"))
	assert.Contains(t, r.warn("! 失败"), "\x1b[33m")
	assert.Equal(t, "! 失败", NewTerminalRenderer(&bytes.Buffer{}, WithColor(false)).warn("! 失败"))
}
