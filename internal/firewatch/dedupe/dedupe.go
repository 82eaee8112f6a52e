package dedupe

import "fire-watch/internal/firewatch/model"

// Dedupe 按推文 ID 去重，保留首次出现的顺序。
// 没有 ID 的条目无法安全去重，直接丢弃。
// 纯函数：抓取合并和落盘前各调用一次，必须给出一致结果。
func Dedupe(posts []model.Post) []model.Post {
	seen := make(map[string]struct{}, len(posts))
	out := make([]model.Post, 0, len(posts))
	for _, p := range posts {
		if p.ID == "" {
			continue
		}
		if _, ok := seen[p.ID]; ok {
			continue
		}
		seen[p.ID] = struct{}{}
		out = append(out, p)
	}
	return out
}
