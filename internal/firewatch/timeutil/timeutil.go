package timeutil

import (
	"fmt"
	"strings"
	"time"
)

// 推特老格式："Mon Jul 28 17:12:07 +0000 2025"
const legacyLayout = "Mon Jan 2 15:04:05 -0700 2006"

// 规范化输出带显式偏移（UTC 即 +00:00），与历史台账保持一致
const isoLayout = "2006-01-02T15:04:05-07:00"

// 无时区的 isoformat 写法（历史 verified_at 字段），按 UTC 处理
const naiveLayout = "2006-01-02T15:04:05"

// ParseError 解析失败时带回原始串，调用方决定怎么兜底
type ParseError struct {
	Raw string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("timeutil: cannot parse date %q", e.Raw)
}

// Normalize 把各种来源的时间串解析成 UTC 时刻。
// 先试老格式，再试 ISO-8601 透传；全部失败返回 ParseError，
// 绝不吞错给一个错误的时间。对已规范化的输入是幂等的。
func Normalize(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, &ParseError{Raw: raw}
	}
	if t, err := time.Parse(legacyLayout, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	if strings.Contains(s, ".") {
		// 带微秒、无偏移的 isoformat
		if t, err := time.Parse(naiveLayout+".999999", s); err == nil {
			return t.UTC(), nil
		}
	}
	if t, err := time.Parse(naiveLayout, s); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, &ParseError{Raw: raw}
}

// FormatISO 规范化存储格式
func FormatISO(t time.Time) string {
	return t.UTC().Format(isoLayout)
}

// IsLegacy 判断输入是否还是老格式（迁移工具用）
func IsLegacy(raw string) bool {
	_, err := time.Parse(legacyLayout, strings.TrimSpace(raw))
	return err == nil
}

// WithinWindow now 往前 hours 小时内（含边界）返回 true；零值时间一律 false
func WithinWindow(t time.Time, now time.Time, hours int) bool {
	if t.IsZero() {
		return false
	}
	return now.Sub(t) <= time.Duration(hours)*time.Hour
}
