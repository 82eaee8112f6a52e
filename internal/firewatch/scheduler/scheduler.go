package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"fire-watch/internal/firewatch/model"
)

// Runner 一次批处理的入口（pipeline.Pipeline 实现它）
type Runner interface {
	RunOnce(ctx context.Context) (*model.RunReport, error)
}

// Worker 定时驱动批处理：启动先跑一次，之后睡到下一个锚点小时再跑
type Worker struct {
	Log     *zap.Logger
	Runner  Runner
	Anchors []int // 每天的触发整点（UTC），如 [0, 6, 12, 18]
}

// nextAnchor 当天下一个未过去的锚点；都过了就明天第一个锚点
func nextAnchor(now time.Time, anchors []int) time.Time {
	utc := now.UTC()
	for _, h := range anchors {
		t := time.Date(utc.Year(), utc.Month(), utc.Day(), h, 0, 0, 0, time.UTC)
		if !t.Before(utc) {
			return t
		}
	}
	next := utc.AddDate(0, 0, 1)
	return time.Date(next.Year(), next.Month(), next.Day(), anchors[0], 0, 0, 0, time.UTC)
}

func (w *Worker) Run(ctx context.Context) {
	if len(w.Anchors) == 0 {
		w.Anchors = []int{0, 6, 12, 18}
	}

	// 启动立即跑一次
	w.runOnce(ctx)

	for {
		next := nextAnchor(time.Now(), w.Anchors)
		sleep := time.Until(next)
		if sleep < 0 {
			sleep = 0
		}
		w.Log.Info("Next run scheduled", zap.Time("at", next))

		timer := time.NewTimer(sleep)
		select {
		case <-ctx.Done():
			timer.Stop()
			w.Log.Info("Scheduler stopped")
			return
		case <-timer.C:
			w.runOnce(ctx)
		}
	}
}

func (w *Worker) runOnce(ctx context.Context) {
	report, err := w.Runner.RunOnce(ctx)
	if err != nil {
		w.Log.Error("Run aborted", zap.Error(err))
		return
	}
	w.Log.Info("Run finished",
		zap.Int("candidates", report.CandidateCount),
		zap.Int("persisted", report.PersistedCount),
		zap.Duration("elapsed", report.FinishedAt.Sub(report.StartedAt)),
	)
}
