package quote

import (
	"bytes"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

// DecodeGBK 将接口返回的 GBK 字节转换为 UTF-8 字符串
//
// 非法字节被替换为 U+FFFD，不会返回错误；单个名称乱码不影响整批行情。
// 需要感知乱码时使用 HasReplacement 检查结果。
func DecodeGBK(body []byte) (string, error) {
	if len(body) == 0 {
		return "", nil
	}
	reader := transform.NewReader(bytes.NewReader(body), simplifiedchinese.GBK.NewDecoder())
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// HasReplacement 解码结果是否包含替换字符
func HasReplacement(text string) bool {
	return strings.ContainsRune(text, utf8.RuneError)
}
