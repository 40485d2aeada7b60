package timing

import (
	"time"
)

// TimeService 提供当前时间接口，用于mock测试
type TimeService interface {
	Now() time.Time
}

// SystemTimeService 使用系统实际时间
type SystemTimeService struct{}

func (s *SystemTimeService) Now() time.Time {
	return time.Now()
}

// FixedTimeService 返回固定时间
type FixedTimeService struct {
	At time.Time
}

func (f *FixedTimeService) Now() time.Time {
	return f.At
}

// Session 交易时段状态
type Session string

const (
	SessionTrading Session = "交易中"
	SessionClosed  Session = "休市"
)

// 沪深连续竞价时段
const (
	morningOpen    = "09:30:00"
	morningClose   = "11:30:00"
	afternoonOpen  = "13:00:00"
	afternoonClose = "15:00:00"
)

// MarketTime 提供市场交易时间检测功能
type MarketTime struct {
	timeService TimeService
	location    *time.Location
}

// NewMarketTime 创建新的市场时间检测器
// 交易时段按北京时间判断，时区加载失败时退回 UTC+8 固定时区
func NewMarketTime(timeService TimeService) *MarketTime {
	if timeService == nil {
		timeService = &SystemTimeService{}
	}
	loc, err := time.LoadLocation("Asia/Shanghai")
	if err != nil {
		loc = time.FixedZone("CST", 8*3600)
	}
	return &MarketTime{timeService: timeService, location: loc}
}

// DefaultMarketTime 使用系统时间的默认市场时间检测器
func DefaultMarketTime() *MarketTime {
	return NewMarketTime(&SystemTimeService{})
}

// Now 返回当前北京时间
func (m *MarketTime) Now() time.Time {
	return m.timeService.Now().In(m.location)
}

// Clock 返回可注入行情解析器的时钟
func (m *MarketTime) Clock() func() time.Time {
	return m.Now
}

// IsTradingDay 判断是否是交易日（周一到周五，不含节假日）
func (m *MarketTime) IsTradingDay(t time.Time) bool {
	weekday := t.Weekday()
	return weekday >= time.Monday && weekday <= time.Friday
}

// IsTradingTime 判断当前是否在交易时段
func (m *MarketTime) IsTradingTime() bool {
	now := m.Now()
	if !m.IsTradingDay(now) {
		return false
	}

	hms := now.Format("15:04:05")
	return (hms >= morningOpen && hms <= morningClose) ||
		(hms >= afternoonOpen && hms <= afternoonClose)
}

// Session 返回当前时段标签
func (m *MarketTime) Session() Session {
	if m.IsTradingTime() {
		return SessionTrading
	}
	return SessionClosed
}
