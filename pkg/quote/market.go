package quote

import "strings"

// Market 行情接口使用的市场前缀
type Market string

const (
	MarketSH Market = "sh"    // 上交所
	MarketSZ Market = "sz"    // 深交所
	MarketBJ Market = "bj"    // 北交所
	MarketHK Market = "rt_hk" // 港股实时

	// MarketDefault 无法识别首字符时使用的前缀
	MarketDefault = MarketSH
)

// knownMarkets 按匹配顺序排列的已知前缀
var knownMarkets = []Market{MarketSH, MarketSZ, MarketBJ, MarketHK}

// digitMarkets 裸代码首位数字到市场的映射
// 沪市: 6(主板/科创), 5(ETF/LOF), 9(B股)
// 深市: 0(主板), 3(创业板), 1(ETF/LOF), 2(B股)
// 北交所: 4, 8
var digitMarkets = map[byte]Market{
	'5': MarketSH, '6': MarketSH, '9': MarketSH,
	'0': MarketSZ, '1': MarketSZ, '2': MarketSZ, '3': MarketSZ,
	'4': MarketBJ, '8': MarketBJ,
}

// MarketOf 返回代码携带的市场前缀，未携带时 ok 为 false
func MarketOf(code string) (Market, bool) {
	for _, m := range knownMarkets {
		if strings.HasPrefix(code, string(m)) {
			return m, true
		}
	}
	return "", false
}

// MarketForBare 根据裸代码首字符推断市场，无法识别时返回默认市场
func MarketForBare(code string) Market {
	if code == "" {
		return MarketDefault
	}
	if m, ok := digitMarkets[code[0]]; ok {
		return m
	}
	return MarketDefault
}

// Resolve 将用户输入的代码转换为接口代码
// 空白输入返回 ok=false；已带前缀的代码原样返回
func Resolve(raw string) (resolved string, ok bool) {
	code := strings.TrimSpace(raw)
	if code == "" {
		return "", false
	}
	if _, has := MarketOf(code); has {
		return code, true
	}
	return string(MarketForBare(code)) + code, true
}

// Resolution 一次请求内的代码解析结果
type Resolution struct {
	Codes    []string          // 接口代码，保持输入顺序
	Original map[string]string // 接口代码 -> 用户输入
}

// ResolveCodes 批量解析代码并建立反向映射
func ResolveCodes(codes []string) Resolution {
	res := Resolution{
		Codes:    make([]string, 0, len(codes)),
		Original: make(map[string]string, len(codes)),
	}
	for _, raw := range codes {
		resolved, ok := Resolve(raw)
		if !ok {
			continue
		}
		res.Codes = append(res.Codes, resolved)
		res.Original[resolved] = strings.TrimSpace(raw)
	}
	return res
}

// Empty 是否没有可请求的代码
func (r Resolution) Empty() bool {
	return len(r.Codes) == 0
}

// StripMarket 去掉接口代码的市场前缀
func StripMarket(apiCode string) string {
	if m, ok := MarketOf(apiCode); ok {
		return strings.TrimPrefix(apiCode, string(m))
	}
	return apiCode
}
