package search

import (
	"fmt"
	"strings"
)

// Combinations 州 × 关键词 的笛卡尔积查询串
func Combinations(states, keywords []string) []string {
	out := make([]string, 0, len(states)*len(keywords))
	for _, state := range states {
		for _, kw := range keywords {
			out = append(out, fmt.Sprintf("%s %s", state, kw))
		}
	}
	return out
}

// AccountQuery 指定账号的时间线查询，账号带不带 @ 都接受
func AccountQuery(handle string) string {
	return "from:" + strings.TrimPrefix(handle, "@")
}

// AllQueries 一次运行要跑的全部查询：组合检索在前，账号时间线在后
func AllQueries(states, keywords, accounts []string) []string {
	queries := Combinations(states, keywords)
	for _, a := range accounts {
		queries = append(queries, AccountQuery(a))
	}
	return queries
}
