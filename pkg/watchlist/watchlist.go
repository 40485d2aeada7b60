package watchlist

import (
	"errors"
	"strings"
	"sync"
)

// CodeLength 自选代码长度
const CodeLength = 6

var (
	// ErrInvalidCode 代码格式错误
	ErrInvalidCode = errors.New("代码格式错误")
	// ErrDuplicate 代码已在列表中
	ErrDuplicate = errors.New("已在列表中")
)

// Watchlist 会话内的自选列表，保持插入顺序且不重复
// 可被多个 goroutine 并发读写
type Watchlist struct {
	mu    sync.RWMutex
	codes []string
}

// New 创建自选列表，忽略无效或重复的初始代码
func New(codes ...string) *Watchlist {
	w := &Watchlist{codes: make([]string, 0, len(codes))}
	for _, code := range codes {
		_ = w.Add(code)
	}
	return w
}

// Validate 校验 6 位数字代码
func Validate(code string) error {
	if len(code) != CodeLength {
		return ErrInvalidCode
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return ErrInvalidCode
		}
	}
	return nil
}

// Add 追加代码，格式错误或重复时返回错误
func (w *Watchlist) Add(code string) error {
	code = strings.TrimSpace(code)
	if err := Validate(code); err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.indexOf(code) >= 0 {
		return ErrDuplicate
	}
	w.codes = append(w.codes, code)
	return nil
}

// Remove 移除代码，返回实际移除的数量；不存在的代码忽略
func (w *Watchlist) Remove(codes ...string) int {
	w.mu.Lock()
	defer w.mu.Unlock()

	removed := 0
	for _, code := range codes {
		idx := w.indexOf(strings.TrimSpace(code))
		if idx < 0 {
			continue
		}
		w.codes = append(w.codes[:idx], w.codes[idx+1:]...)
		removed++
	}
	return removed
}

// Contains 是否包含代码
func (w *Watchlist) Contains(code string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.indexOf(code) >= 0
}

// Codes 返回代码副本
func (w *Watchlist) Codes() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	out := make([]string, len(w.codes))
	copy(out, w.codes)
	return out
}

// Len 返回代码数量
func (w *Watchlist) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.codes)
}

// indexOf 需要持有锁
func (w *Watchlist) indexOf(code string) int {
	for i, c := range w.codes {
		if c == code {
			return i
		}
	}
	return -1
}
