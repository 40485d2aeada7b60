package quote

// CodeHSTECH 恒生科技指数的接口代码
const CodeHSTECH = "rt_hkHSTECH"

// DefaultLabels 接口代码到展示代码的别名
func DefaultLabels() map[string]string {
	return map[string]string{
		CodeHSTECH: "恒生科技",
	}
}

// RecoverCode 找回用户输入的原始代码，找不到时去掉市场前缀
func RecoverCode(apiCode string, res Resolution) string {
	if original, ok := res.Original[apiCode]; ok {
		return original
	}
	return StripMarket(apiCode)
}

// Relabel 按别名表替换展示代码，未命中时返回 code
func Relabel(apiCode, code string, labels map[string]string) string {
	if label, ok := labels[apiCode]; ok {
		return label
	}
	return code
}
