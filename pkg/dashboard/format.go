package dashboard

import (
	"fmt"

	"quoteboard/pkg/quote"
)

// Columns 自选表格列
var Columns = []string{"代码", "名称", "当前价", "涨跌幅(%)", "涨跌额", "昨收价", "开盘价", "最高价", "最低价", "更新时间"}

// 看板提示文案
const (
	MsgAdded        = "已添加 %s"
	MsgNoData       = "暂无数据"
	MsgEmptyList    = "请在左侧添加。"
	MsgLoadingIndex = "正在获取大盘数据..."
)

// Tone 涨跌配色，A 股习惯红涨绿跌
type Tone string

const (
	ToneWarm    Tone = "up"
	ToneCool    Tone = "down"
	ToneNeutral Tone = "flat"
)

// ToneOf 根据涨跌方向给出配色
func ToneOf(t quote.Trend) Tone {
	switch t {
	case quote.TrendUp:
		return ToneWarm
	case quote.TrendDown:
		return ToneCool
	default:
		return ToneNeutral
	}
}

// Color 返回配色对应的 CSS 颜色
func (t Tone) Color() string {
	switch t {
	case ToneWarm:
		return "#d62728"
	case ToneCool:
		return "#2ca02c"
	default:
		return "black"
	}
}

// FormatPrice 价格保留三位小数
func FormatPrice(v float64) string {
	return fmt.Sprintf("%.3f", v)
}

// FormatSigned 带符号保留三位小数
func FormatSigned(v float64) string {
	return fmt.Sprintf("%+.3f", v)
}

// Headline 指数栏的单个指标
type Headline struct {
	Label string
	Value string
	Delta string
	Tone  Tone
}

// HeadlineOf 构造指数指标，涨跌展示为 "涨跌额 (涨跌幅%)"
func HeadlineOf(r quote.Record) Headline {
	return Headline{
		Label: r.Name,
		Value: FormatPrice(r.Price),
		Delta: fmt.Sprintf("%.3f (%.3f%%)", r.Change, r.ChangePercent),
		Tone:  ToneOf(r.Trend()),
	}
}

// Row 按 Columns 顺序格式化一行
func Row(r quote.Record) []string {
	return []string{
		r.Code,
		r.Name,
		FormatPrice(r.Price),
		FormatSigned(r.ChangePercent),
		FormatSigned(r.Change),
		FormatPrice(r.PrevClose),
		FormatPrice(r.Open),
		FormatPrice(r.High),
		FormatPrice(r.Low),
		r.UpdateTime,
	}
}

// changeColumns 需要按涨跌着色的列
var changeColumns = map[int]bool{3: true, 4: true}

// IsChangeColumn 判断列是否为涨跌列
func IsChangeColumn(idx int) bool {
	return changeColumns[idx]
}
