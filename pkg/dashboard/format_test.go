package dashboard

import (
	"testing"

	"quoteboard/pkg/quote"
	"quoteboard/pkg/testkit/providers"

	"github.com/stretchr/testify/assert"
)

func TestToneOf(t *testing.T) {
	assert.Equal(t, ToneWarm, ToneOf(quote.TrendUp))
	assert.Equal(t, ToneCool, ToneOf(quote.TrendDown))
	assert.Equal(t, ToneNeutral, ToneOf(quote.TrendFlat))

	assert.Equal(t, "#d62728", ToneWarm.Color())
	assert.Equal(t, "#2ca02c", ToneCool.Color())
	assert.Equal(t, "black", ToneNeutral.Color())
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "10.500", FormatPrice(10.5))
	assert.Equal(t, "+0.100", FormatSigned(0.1))
	assert.Equal(t, "-1.250", FormatSigned(-1.25))
	assert.Equal(t, "+0.000", FormatSigned(0))
}

func TestRow(t *testing.T) {
	r := providers.NewRecord("600519", "贵州茅台", 1500, 1485)
	row := Row(r)

	assert.Len(t, row, len(Columns))
	assert.Equal(t, []string{"600519", "贵州茅台", "1485.000", "-1.000", "-15.000", "1500.000", "1500.000", "1485.000", "1500.000", "15:00:00"}, row)
	assert.True(t, IsChangeColumn(3))
	assert.True(t, IsChangeColumn(4))
	assert.False(t, IsChangeColumn(2))
}

func TestHeadlineOf(t *testing.T) {
	h := HeadlineOf(providers.NewRecord("sh000001", "上证指数", 3000, 3030))
	assert.Equal(t, "上证指数", h.Label)
	assert.Equal(t, "3030.000", h.Value)
	assert.Equal(t, "30.000 (1.000%)", h.Delta)
	assert.Equal(t, ToneWarm, h.Tone)
}
