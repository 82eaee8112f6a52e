package verifier

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"fire-watch/internal/firewatch/classifier"
	"fire-watch/internal/firewatch/model"
	"fire-watch/internal/firewatch/timeutil"
)

// DateStrategy publishedDate 落盘策略。历史上两个近似脚本一个存原始串、
// 一个存规范化结果，这里收敛成显式选项。
type DateStrategy int

const (
	// DateStrategyNormalize 落盘前规范化成 ISO-8601（默认）
	DateStrategyNormalize DateStrategy = iota
	// DateStrategyRaw 原样保留，由上传环节再解析（兼容老台账）
	DateStrategyRaw
)

// Options 一次运行的可配置行为，取代原来两份分叉的编排脚本
type Options struct {
	EnableUpload bool
	DateStrategy DateStrategy
}

// RecordSink 一条验证记录的落盘端。两个 sink 互相独立，各自可恢复。
type RecordSink interface {
	Append(rec model.VerifiedRecord) error
}

// Engine 核心编排：逐条分类候选推文，正例构造 VerifiedRecord 并交给两个 sink。
// 顺序处理、顺序确定，单条失败只跳过该条。
type Engine struct {
	Log    *zap.Logger
	Oracle classifier.Oracle
	Ledger RecordSink
	Sheet  RecordSink
	Opts   Options

	// Now 可注入时钟，为空用 time.Now
	Now func() time.Time
}

// Run 按输入顺序处理整个候选集，返回汇总和本次持久化的记录
func (e *Engine) Run(ctx context.Context, posts []model.Post) (*model.RunReport, []model.VerifiedRecord) {
	now := e.now()
	report := &model.RunReport{
		StartedAt:      now,
		CandidateCount: len(posts),
	}
	var persisted []model.VerifiedRecord

	for _, post := range posts {
		rec, ok := e.processOne(ctx, post, report)
		if !ok {
			report.SkippedCount++
			continue
		}
		persisted = append(persisted, rec)
		report.PersistedCount++
	}

	report.FinishedAt = e.now()
	e.Log.Info("Verification run complete",
		zap.Int("candidates", report.CandidateCount),
		zap.Int("persisted", report.PersistedCount),
		zap.Int("skipped", report.SkippedCount),
		zap.Int("indeterminate", report.IndeterminateCount),
	)
	return report, persisted
}

// processOne 单条推文的完整状态机。内部 recover：一条坏数据
// 不能废掉整批（500 条里 1 条出错，其余 499 条必须照常产出）。
func (e *Engine) processOne(ctx context.Context, post model.Post, report *model.RunReport) (rec model.VerifiedRecord, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			e.Log.Error("Post processing panicked, skipping",
				zap.String("tweetId", post.ID),
				zap.Any("panic", r),
			)
			ok = false
		}
	}()

	if strings.TrimSpace(post.Text) == "" {
		// 空文本不进分类器
		return rec, false
	}

	verdict, rawAnswer := e.Oracle.ClassifyIncident(ctx, post.Text, post.URL)
	if verdict == model.VerdictIndeterminate {
		report.IndeterminateCount++
	}
	if !verdict.Positive() {
		e.Log.Debug("Post not verified",
			zap.String("tweetId", post.ID),
			zap.String("verdict", verdict.String()),
		)
		return rec, false
	}

	// 评分失败只丢信息，不丢记录
	score := e.Oracle.ScoreRelevance(ctx, post.Text)

	rec = model.VerifiedRecord{
		TweetID:            post.ID,
		Title:              model.MakeTitle(post.Text),
		Content:            post.Text,
		PublishedDate:      e.publishedDate(post),
		URL:                post.URL,
		Source:             post.Author.UserName,
		FireRelatedScore:   score,
		VerificationResult: rawAnswer,
		VerifiedAt:         timeutil.FormatISO(e.now()),
	}

	ledgerErr := e.Ledger.Append(rec)
	if ledgerErr != nil {
		e.Log.Error("Ledger append failed",
			zap.String("tweetId", rec.TweetID),
			zap.Error(ledgerErr),
		)
	}
	sheetErr := e.Sheet.Append(rec)
	if sheetErr != nil {
		e.Log.Error("Spreadsheet append failed",
			zap.String("tweetId", rec.TweetID),
			zap.Error(sheetErr),
		)
	}
	if ledgerErr != nil && sheetErr != nil {
		// 两个 sink 都没写进去，这条不算持久化
		return rec, false
	}

	e.Log.Info("Verified fire incident",
		zap.String("tweetId", rec.TweetID),
		zap.String("score", score.String()),
	)
	return rec, true
}

func (e *Engine) publishedDate(post model.Post) string {
	if e.Opts.DateStrategy == DateStrategyRaw {
		return post.CreatedAt
	}
	t, err := timeutil.Normalize(post.CreatedAt)
	if err != nil {
		// 解析不了就原样保留，后续迁移工具还有机会修
		e.Log.Warn("Cannot normalize published date, keeping raw",
			zap.String("tweetId", post.ID),
			zap.String("createdAt", post.CreatedAt),
		)
		return post.CreatedAt
	}
	return timeutil.FormatISO(t)
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}
