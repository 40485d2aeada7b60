package quote

import (
	"strings"
	"time"
)

// Dialect 行情行的字段布局
type Dialect int

const (
	DialectMainland Dialect = iota // 沪深北
	DialectHongKong                // 港股
)

// hkMarker 港股行的识别标记
const hkMarker = "rt_hk"

// varPrefix 行情变量名前缀，如 var hq_str_sh600519
const varPrefix = "hq_str_"

// noIndex 表示布局中没有该字段
const noIndex = -1

// layout 每种方言的字段位置表
type layout struct {
	minFields    int
	name         int
	open         int
	prevClose    int
	current      int
	high         int
	low          int
	updateTime   int
	timeFallback int  // updateTime 缺失时尝试的相邻位置
	useClock     bool // 仍缺失时使用当前时间
}

var layouts = map[Dialect]layout{
	DialectMainland: {
		minFields:    6,
		name:         0,
		open:         1,
		prevClose:    2,
		current:      3,
		high:         4,
		low:          5,
		updateTime:   31,
		timeFallback: 30,
	},
	DialectHongKong: {
		minFields:    7,
		name:         1,
		open:         2,
		prevClose:    3,
		high:         4,
		low:          5,
		current:      6,
		updateTime:   18,
		timeFallback: noIndex,
		useClock:     true,
	},
}

// DetectDialect 根据行内容判断方言
func DetectDialect(line string) Dialect {
	if strings.Contains(line, hkMarker) {
		return DialectHongKong
	}
	return DialectMainland
}

// String 返回方言名称
func (d Dialect) String() string {
	switch d {
	case DialectMainland:
		return "mainland"
	case DialectHongKong:
		return "hongkong"
	default:
		return "unknown"
	}
}

func (d Dialect) layout() layout {
	return layouts[d]
}

// ExtractKey 从等号左侧的变量名中取出接口代码
//
//	var hq_str_sh600519   -> sh600519
//	var hq_str_rt_hkHSTECH -> rt_hkHSTECH
func (d Dialect) ExtractKey(lhs string) string {
	lhs = strings.TrimSpace(lhs)
	if d == DialectHongKong {
		if _, after, ok := strings.Cut(lhs, varPrefix); ok {
			return after
		}
		if i := strings.Index(lhs, hkMarker); i >= 0 {
			return lhs[i:]
		}
		return lhs
	}
	if i := strings.LastIndex(lhs, "_"); i >= 0 {
		return lhs[i+1:]
	}
	return lhs
}

// updateTimeOf 取更新时间字段
func (l layout) updateTimeOf(fields []string, now func() time.Time) string {
	if len(fields) > l.updateTime {
		if v := fields[l.updateTime]; v != "" || !l.useClock {
			return v
		}
	}
	if l.timeFallback != noIndex && len(fields) > l.timeFallback {
		return fields[l.timeFallback]
	}
	if l.useClock {
		return now().Format("15:04:05")
	}
	return ""
}
