package dashboard

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

const clearScreen = "\033[H\033[2J"

// TerminalRenderer 终端看板，每轮刷新后重绘
type TerminalRenderer struct {
	out   io.Writer
	color bool
	clear bool
}

// TerminalOption 终端渲染选项
type TerminalOption func(*TerminalRenderer)

// WithColor 是否输出 ANSI 颜色
func WithColor(enabled bool) TerminalOption {
	return func(r *TerminalRenderer) { r.color = enabled }
}

// WithClearScreen 重绘前是否清屏
func WithClearScreen(enabled bool) TerminalOption {
	return func(r *TerminalRenderer) { r.clear = enabled }
}

// NewTerminalRenderer 创建终端渲染器
func NewTerminalRenderer(out io.Writer, opts ...TerminalOption) *TerminalRenderer {
	r := &TerminalRenderer{out: out, color: true, clear: true}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render 绘制一帧看板
func (r *TerminalRenderer) Render(snap Snapshot) error {
	var sb strings.Builder
	if r.clear {
		sb.WriteString(clearScreen)
	}

	fmt.Fprintf(&sb, "行情看板  [%s]  最后刷新: %s\n\n", snap.Session, snap.UpdatedAt.Format("15:04:05"))
	for _, w := range snap.Warnings {
		sb.WriteString(r.warn("! " + w))
		sb.WriteString("\n")
	}

	sb.WriteString("指数\n")
	if len(snap.Indices) == 0 {
		sb.WriteString(MsgLoadingIndex + "\n")
	} else {
		sb.WriteString(r.indexTable(snap) + "\n")
	}

	sb.WriteString("\n自选监控\n")
	switch {
	case len(snap.Codes) == 0:
		sb.WriteString(MsgEmptyList + "\n")
	case len(snap.Watch) == 0:
		sb.WriteString(MsgNoData + "\n")
	default:
		sb.WriteString(r.watchTable(snap) + "\n")
	}

	_, err := io.WriteString(r.out, sb.String())
	return err
}

func (r *TerminalRenderer) indexTable(snap Snapshot) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)

	header := table.Row{}
	values := table.Row{}
	deltas := table.Row{}
	for _, rec := range snap.Indices {
		h := HeadlineOf(rec)
		header = append(header, h.Label)
		values = append(values, h.Value)
		deltas = append(deltas, r.paint(h.Tone, h.Delta))
	}
	t.AppendHeader(header)
	t.AppendRow(values)
	t.AppendRow(deltas)
	return t.Render()
}

func (r *TerminalRenderer) watchTable(snap Snapshot) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)

	header := make(table.Row, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	t.AppendHeader(header)

	for _, rec := range snap.Watch {
		cells := Row(rec)
		row := make(table.Row, len(cells))
		tone := ToneOf(rec.Trend())
		for i, cell := range cells {
			if IsChangeColumn(i) {
				row[i] = r.paint(tone, cell)
			} else {
				row[i] = cell
			}
		}
		t.AppendRow(row)
	}
	return t.Render()
}

func (r *TerminalRenderer) paint(tone Tone, s string) string {
	if !r.color {
		return s
	}
	switch tone {
	case ToneWarm:
		return text.FgRed.Sprint(s)
	case ToneCool:
		return text.FgGreen.Sprint(s)
	default:
		return s
	}
}

func (r *TerminalRenderer) warn(s string) string {
	if !r.color {
		return s
	}
	return text.FgYellow.Sprint(s)
}
