package quote

// Record 单个证券的一次行情快照，构造后不再修改
type Record struct {
	Code          string  `json:"code"`           // 展示代码（尽量还原用户输入）
	APICode       string  `json:"api_code"`       // 接口代码，如 sh600519
	Market        Market  `json:"market"`         // 市场前缀
	Name          string  `json:"name"`           // 名称
	Price         float64 `json:"price"`          // 当前价
	Change        float64 `json:"change"`         // 涨跌额
	ChangePercent float64 `json:"change_percent"` // 涨跌幅(%)
	Open          float64 `json:"open"`           // 开盘价
	High          float64 `json:"high"`           // 最高价
	Low           float64 `json:"low"`            // 最低价
	PrevClose     float64 `json:"prev_close"`     // 昨收价
	UpdateTime    string  `json:"update_time"`    // 更新时间
}

// Trend 涨跌方向
type Trend int

const (
	TrendFlat Trend = iota
	TrendUp
	TrendDown
)

// TrendOf 根据数值正负判断方向
func TrendOf(v float64) Trend {
	switch {
	case v > 0:
		return TrendUp
	case v < 0:
		return TrendDown
	default:
		return TrendFlat
	}
}

// Trend 返回该记录的涨跌方向
func (r Record) Trend() Trend {
	return TrendOf(r.Change)
}
