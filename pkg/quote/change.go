package quote

// Change 涨跌计算结果
type Change struct {
	Price   float64 // 展示用当前价，可能被替换为昨收价
	Amount  float64 // 涨跌额
	Percent float64 // 涨跌幅(%)
}

// ComputeChange 根据昨收价和当前价计算涨跌
//
// 当前价为 0 表示当日尚未成交，此时展示价取昨收价，涨跌记为 0。
// 昨收价不为正时涨跌记为 0，当前价保持原值。
func ComputeChange(prevClose, current float64) Change {
	switch {
	case prevClose > 0 && current > 0:
		amount := current - prevClose
		return Change{
			Price:   current,
			Amount:  amount,
			Percent: amount / prevClose * 100,
		}
	case prevClose > 0 && current == 0:
		return Change{Price: prevClose}
	default:
		return Change{Price: current}
	}
}
