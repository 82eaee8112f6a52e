package model

// Verdict 分类结果：正例 / 负例 / 不可判定
type Verdict int

const (
	// VerdictIndeterminate 调用失败或回复无法解析时的兜底值，
	// 持久化时按 Negative 处理，但日志里单独区分
	VerdictIndeterminate Verdict = iota
	VerdictNegative
	VerdictPositive
)

func (v Verdict) String() string {
	switch v {
	case VerdictPositive:
		return "positive"
	case VerdictNegative:
		return "negative"
	default:
		return "indeterminate"
	}
}

// Positive 只有明确的正例才允许进入持久化
func (v Verdict) Positive() bool { return v == VerdictPositive }
