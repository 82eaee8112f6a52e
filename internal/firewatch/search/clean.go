package search

import (
	"time"

	"go.uber.org/zap"

	"fire-watch/internal/firewatch/model"
	"fire-watch/internal/firewatch/timeutil"
)

// Clean 候选集清洗：只留 type=="tweet"（老数据 type 为空也算），
// 时间窗口外和日期解析失败的一律剔除。
func Clean(log *zap.Logger, posts []model.Post, now time.Time, hours int) []model.Post {
	out := make([]model.Post, 0, len(posts))
	for _, p := range posts {
		if p.Type != "" && p.Type != "tweet" {
			continue
		}
		t, err := timeutil.Normalize(p.CreatedAt)
		if err != nil {
			log.Warn("Dropping post with unparsable date",
				zap.String("tweetId", p.ID),
				zap.String("createdAt", p.CreatedAt),
			)
			continue
		}
		if !timeutil.WithinWindow(t, now, hours) {
			continue
		}
		out = append(out, p)
	}
	return out
}
