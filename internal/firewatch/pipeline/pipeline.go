package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"fire-watch/internal/firewatch/classifier"
	"fire-watch/internal/firewatch/dedupe"
	"fire-watch/internal/firewatch/model"
	"fire-watch/internal/firewatch/search"
	"fire-watch/internal/firewatch/sink"
	"fire-watch/internal/firewatch/verifier"
)

// Feed 上游搜索的窄接口
type Feed interface {
	FetchQuery(ctx context.Context, query string) ([]model.Post, error)
}

// NotifySink / UploadSink / ArchiveSink 下游分发的窄接口，
// 三者互相独立，任何一个失败都不挡另外两个。
type NotifySink interface {
	Send(report *model.RunReport) error
}

type UploadSink interface {
	Upload(ctx context.Context, records []model.VerifiedRecord) (*model.BulkUploadResponse, error)
}

type ArchiveSink interface {
	Archive(ctx context.Context, records []model.VerifiedRecord, report *model.RunReport) error
}

// Pipeline 一次完整批处理：抓取 → 清洗去重 → 历史日期迁移 → 逐条验证落盘 → 分发
type Pipeline struct {
	Log         *zap.Logger
	Feed        Feed
	Queries     []string
	Oracle      classifier.Oracle
	Opts        verifier.Options
	OutputDir   string
	WithinHours int

	// 分发端都可以为 nil（未配置即跳过）
	Notifier NotifySink
	Uploader UploadSink
	Archiver ArchiveSink

	// Now 可注入时钟，为空用 time.Now
	Now func() time.Time
}

// RunOnce 跑一个完整批次。唯一致命错误是候选集文件读不回来；
// 其余一切按各自的降级策略继续。
func (p *Pipeline) RunOnce(ctx context.Context) (*model.RunReport, error) {
	now := p.now()
	if err := os.MkdirAll(p.OutputDir, 0o755); err != nil {
		return nil, err
	}

	// 1) 抓取：每个查询抓完立即合并落盘
	candidatePath := filepath.Join(p.OutputDir,
		fmt.Sprintf("fire_tweets_%dh_%s.json", p.WithinHours, now.Format("20060102_150405")))
	store := &search.CandidateStore{Log: p.Log, Path: candidatePath}

	fetched := 0
	for _, query := range p.Queries {
		posts, err := p.Feed.FetchQuery(ctx, query)
		if err != nil {
			p.Log.Error("Query failed, skipping",
				zap.String("query", query),
				zap.Error(err),
			)
			continue
		}
		if len(posts) == 0 {
			continue
		}
		fetched += len(posts)
		if _, err := store.Fold(posts); err != nil {
			p.Log.Error("Failed to fold candidates",
				zap.String("query", query),
				zap.Error(err),
			)
		}
	}
	p.Log.Info("Search complete",
		zap.Int("queries", len(p.Queries)),
		zap.Int("fetched", fetched),
	)
	if fetched == 0 {
		p.Log.Info("No candidates fetched, nothing to verify")
		return &model.RunReport{StartedAt: now, FinishedAt: p.now()}, nil
	}

	// 2) 候选集读不回来是唯一的致命错误
	raw, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("pipeline: cannot read candidate file: %w", err)
	}

	// 3) 清洗 + 去重，顺序保持确定
	posts := dedupe.Dedupe(search.Clean(p.Log, raw, now, p.WithinHours))
	p.Log.Info("Candidates ready",
		zap.Int("raw", len(raw)),
		zap.Int("cleaned", len(posts)),
	)

	// 4) 开始验证前先修旧台账里的老日期格式
	p.migrateHistoricalLedgers()

	// 5) 验证 + 增量落盘
	ledgerPath, sheetPath := sink.RunPaths(p.OutputDir, now)
	ledger := sink.NewLedger(p.Log, ledgerPath)
	engine := &verifier.Engine{
		Log:    p.Log,
		Oracle: p.Oracle,
		Ledger: ledger,
		Sheet:  sink.NewSpreadsheet(p.Log, sheetPath),
		Opts:   p.Opts,
		Now:    p.Now,
	}
	report, records := engine.Run(ctx, posts)
	report.LedgerPath = ledgerPath
	report.SpreadsheetPath = sheetPath
	p.Log.Info("Ledger state",
		zap.String("path", ledgerPath),
		zap.Int("total", len(ledger.Records())),
	)

	// 6) 零持久化就不分发
	if report.PersistedCount == 0 {
		p.Log.Info("No verified incidents, skipping fanout")
		return report, nil
	}
	p.fanout(ctx, records, report)
	return report, nil
}

func (p *Pipeline) migrateHistoricalLedgers() {
	matches, err := filepath.Glob(filepath.Join(p.OutputDir, "live_verified_fires_*.json"))
	if err != nil {
		return
	}
	for _, path := range matches {
		if _, err := verifier.NormalizeHistoricalDates(p.Log, path); err != nil {
			p.Log.Warn("Historical date migration failed",
				zap.String("path", path),
				zap.Error(err),
			)
		}
	}
}

// fanout 邮件、上传、归档三步各自 best-effort
func (p *Pipeline) fanout(ctx context.Context, records []model.VerifiedRecord, report *model.RunReport) {
	if p.Notifier != nil {
		if err := p.Notifier.Send(report); err != nil {
			p.Log.Error("Notification failed", zap.Error(err))
		}
	}
	if p.Uploader != nil && p.Opts.EnableUpload {
		if _, err := p.Uploader.Upload(ctx, records); err != nil {
			p.Log.Error("Bulk upload failed", zap.Error(err))
		}
	}
	if p.Archiver != nil {
		if err := p.Archiver.Archive(ctx, records, report); err != nil {
			p.Log.Error("Archive failed", zap.Error(err))
		}
	}
}

func (p *Pipeline) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}
