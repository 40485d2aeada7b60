package quote

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"quoteboard/pkg/logger"

	"github.com/sirupsen/logrus"
)

// 单行解析错误，只影响当前行
var (
	ErrNoSeparator  = errors.New("line has no '=' separator")
	ErrEmptyValue   = errors.New("line value is empty")
	ErrTooFewFields = errors.New("too few fields")
	ErrBadNumber    = errors.New("field is not a finite number")
)

// Line 单行解析得到的原始报价，尚未计算涨跌和还原代码
type Line struct {
	Key        string
	Dialect    Dialect
	Name       string
	Open       float64
	PrevClose  float64
	Current    float64
	High       float64
	Low        float64
	UpdateTime string
}

// Parser 新浪行情文本解析器
type Parser struct {
	now    func() time.Time
	labels map[string]string
	log    *logrus.Entry
}

// ParserOption 解析器选项
type ParserOption func(*Parser)

// WithClock 设置港股缺少时间字段时使用的时钟
func WithClock(now func() time.Time) ParserOption {
	return func(p *Parser) {
		if now != nil {
			p.now = now
		}
	}
}

// WithLabels 覆盖展示代码的别名表
func WithLabels(labels map[string]string) ParserOption {
	return func(p *Parser) {
		p.labels = labels
	}
}

// NewParser 创建解析器
func NewParser(opts ...ParserOption) *Parser {
	p := &Parser{
		now:    time.Now,
		labels: DefaultLabels(),
		log:    logger.WithComponent("QuoteParser"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse 解析整段响应，出错的行被跳过
func (p *Parser) Parse(text string, res Resolution) []Record {
	lines := strings.Split(text, "\n")
	records := make([]Record, 0, len(lines))

	for _, raw := range lines {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		line, err := p.ParseLine(raw)
		if err != nil {
			p.log.WithError(err).Debugf("skip line: %.60s", raw)
			continue
		}
		records = append(records, p.build(line, res))
	}
	return records
}

// ParseLine 解析单行 var hq_str_xxx="f1,f2,...";
func (p *Parser) ParseLine(raw string) (Line, error) {
	lhs, rhs, ok := strings.Cut(raw, "=")
	if !ok {
		return Line{}, ErrNoSeparator
	}

	value := strings.TrimSpace(rhs)
	value = strings.TrimSuffix(value, ";")
	value = strings.Trim(value, `"`)
	if value == "" {
		return Line{}, ErrEmptyValue
	}

	dialect := DetectDialect(raw)
	l := dialect.layout()
	fields := strings.Split(value, ",")
	if len(fields) < l.minFields {
		return Line{}, fmt.Errorf("%w: %s needs %d, got %d", ErrTooFewFields, dialect, l.minFields, len(fields))
	}

	line := Line{
		Key:     dialect.ExtractKey(lhs),
		Dialect: dialect,
		Name:    strings.TrimSpace(fields[l.name]),
	}

	var err error
	if line.Open, err = parseField(fields, l.open, "open"); err != nil {
		return Line{}, err
	}
	if line.PrevClose, err = parseField(fields, l.prevClose, "prev_close"); err != nil {
		return Line{}, err
	}
	if line.Current, err = parseField(fields, l.current, "current"); err != nil {
		return Line{}, err
	}
	if line.High, err = parseField(fields, l.high, "high"); err != nil {
		return Line{}, err
	}
	if line.Low, err = parseField(fields, l.low, "low"); err != nil {
		return Line{}, err
	}
	line.UpdateTime = l.updateTimeOf(fields, p.now)

	return line, nil
}

// build 计算涨跌并还原展示代码
func (p *Parser) build(line Line, res Resolution) Record {
	change := ComputeChange(line.PrevClose, line.Current)
	market, _ := MarketOf(line.Key)

	return Record{
		Code:          p.displayCode(line.Key, res),
		APICode:       line.Key,
		Market:        market,
		Name:          line.Name,
		Price:         change.Price,
		Change:        change.Amount,
		ChangePercent: change.Percent,
		Open:          line.Open,
		High:          line.High,
		Low:           line.Low,
		PrevClose:     line.PrevClose,
		UpdateTime:    line.UpdateTime,
	}
}

func (p *Parser) displayCode(key string, res Resolution) string {
	return Relabel(key, RecoverCode(key, res), p.labels)
}

func parseField(fields []string, idx int, name string) (float64, error) {
	if idx < 0 || idx >= len(fields) {
		return 0, fmt.Errorf("%w: %s missing", ErrTooFewFields, name)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(fields[idx]), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %s=%q", ErrBadNumber, name, fields[idx])
	}
	return v, nil
}
