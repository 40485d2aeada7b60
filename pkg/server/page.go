package server

import (
	"html/template"
	"time"

	"quoteboard/pkg/dashboard"
)

const pageTemplate = `<!DOCTYPE html>
<html lang="zh-CN">
<head>
<meta charset="utf-8">
<meta http-equiv="refresh" content="{{.RefreshSeconds}}">
<title>实时行情看板</title>
<style>
body { font-family: -apple-system, "PingFang SC", "Microsoft YaHei", sans-serif; margin: 0; display: flex; }
aside { width: 240px; padding: 16px; background: #f5f5f5; min-height: 100vh; }
main { flex: 1; padding: 16px 24px; }
.metrics { display: flex; gap: 32px; }
.metric .label { color: #555; font-size: 14px; }
.metric .value { font-size: 28px; }
table { border-collapse: collapse; width: 100%; }
th, td { padding: 6px 10px; border-bottom: 1px solid #eee; text-align: right; }
th:nth-child(-n+2), td:nth-child(-n+2) { text-align: left; }
.flash, .warning, .info { padding: 8px 12px; margin: 8px 0; border-radius: 4px; }
.success { background: #e6f4ea; } .warning { background: #fff4e5; } .info { background: #e8f0fe; }
.status { color: #888; font-size: 12px; }
</style>
</head>
<body>
<aside>
  <h3>自选管理</h3>
  <form method="post" action="/watchlist">
    <input name="code" maxlength="6" placeholder="输入6位代码 (如 600519)">
    <button type="submit">添加</button>
  </form>
  {{if .Flash}}<div class="flash {{.FlashLevel}}">{{.Flash}}</div>{{end}}
  {{if .Codes}}
  <hr>
  <form method="post" action="/watchlist/remove">
    <select name="codes" multiple size="{{len .Codes}}">
      {{range .Codes}}<option value="{{.}}">{{.}}</option>{{end}}
    </select>
    <button type="submit">确认移除</button>
  </form>
  {{end}}
</aside>
<main>
  <div class="status">{{.Session}} · 最后刷新: {{.UpdatedAt}}</div>
  {{range .Warnings}}<div class="warning">{{.}}</div>{{end}}
  <h5>指数</h5>
  {{if .Headlines}}
  <div class="metrics">
    {{range .Headlines}}
    <div class="metric">
      <div class="label">{{.Label}}</div>
      <div class="value">{{.Value}}</div>
      <div style="color: {{.Tone.Color}}">{{.Delta}}</div>
    </div>
    {{end}}
  </div>
  {{else}}
  <div class="warning">{{.LoadingIndex}}</div>
  {{end}}
  <hr>
  <h5>自选监控</h5>
  {{if .Rows}}
  <table>
    <tr>{{range .Columns}}<th>{{.}}</th>{{end}}</tr>
    {{range .Rows}}
    <tr>{{range .}}<td{{if .Color}} style="color: {{.Color}}"{{end}}>{{.Text}}</td>{{end}}</tr>
    {{end}}
  </table>
  {{else}}
  <div class="info">{{.EmptyMessage}}</div>
  {{end}}
</main>
</body>
</html>`

var indexTemplate = template.Must(template.New("index").Parse(pageTemplate))

// cell 表格单元格
type cell struct {
	Text  string
	Color string
}

// pageData 页面视图模型
type pageData struct {
	RefreshSeconds int
	Session        string
	UpdatedAt      string
	Flash          string
	FlashLevel     string
	Warnings       []string
	Headlines      []dashboard.Headline
	LoadingIndex   string
	Columns        []string
	Rows           [][]cell
	Codes          []string
	EmptyMessage   string
}

func newPageData(snap dashboard.Snapshot, codes []string, interval time.Duration) pageData {
	data := pageData{
		RefreshSeconds: int(interval.Seconds()),
		Session:        string(snap.Session),
		UpdatedAt:      "--:--:--",
		Warnings:       snap.Warnings,
		LoadingIndex:   dashboard.MsgLoadingIndex,
		Columns:        dashboard.Columns,
		Codes:          codes,
	}
	if data.RefreshSeconds < 1 {
		data.RefreshSeconds = 1
	}
	if snap.Ready() {
		data.UpdatedAt = snap.UpdatedAt.Format("15:04:05")
	}

	for _, rec := range snap.Indices {
		data.Headlines = append(data.Headlines, dashboard.HeadlineOf(rec))
	}

	for _, rec := range snap.Watch {
		tone := dashboard.ToneOf(rec.Trend())
		texts := dashboard.Row(rec)
		row := make([]cell, len(texts))
		for i, text := range texts {
			row[i] = cell{Text: text}
			if dashboard.IsChangeColumn(i) {
				row[i].Color = tone.Color()
			}
		}
		data.Rows = append(data.Rows, row)
	}

	if len(codes) == 0 {
		data.EmptyMessage = dashboard.MsgEmptyList
	} else {
		data.EmptyMessage = dashboard.MsgNoData
	}
	return data
}
