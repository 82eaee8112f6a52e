package main

import (
	"context"
	"flag"
	"net/http"
	"time"

	"go.uber.org/zap"

	"fire-watch/internal/firewatch/api"
	"fire-watch/internal/firewatch/classifier"
	"fire-watch/internal/firewatch/fanout"
	"fire-watch/internal/firewatch/helper"
	"fire-watch/internal/firewatch/pipeline"
	"fire-watch/internal/firewatch/scheduler"
	"fire-watch/internal/firewatch/search"
	"fire-watch/internal/firewatch/verifier"
	"fire-watch/internal/middleware/logger"
	"fire-watch/pkg/config"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	once := flag.Bool("once", false, "run a single batch then exit")
	flag.Parse()

	log, err := logger.NewLogger()
	if err != nil {
		panic(err)
	}
	defer func(log *zap.Logger) {
		_ = log.Sync()
	}(log)

	ctx := context.Background()

	log.Info("Starting Fire Watch Service...")

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		panic(err)
	}

	feed := &search.Client{
		Log:         log,
		HTTPClient:  &http.Client{Timeout: 30 * time.Second},
		BaseURL:     cfg.Search.BaseURL,
		APIKey:      cfg.Search.APIKey,
		WithinHours: cfg.Search.WithinHours,
		MaxResults:  cfg.Search.MaxResults,
	}

	oracle := &classifier.Client{
		Log:        log,
		HTTPClient: &http.Client{Timeout: time.Duration(cfg.Classifier.TimeoutSeconds) * time.Second},
		BaseURL:    cfg.Classifier.BaseURL,
		APIKey:     cfg.Classifier.APIKey,
		Model:      cfg.Classifier.Model,
	}

	p := &pipeline.Pipeline{
		Log:     log,
		Feed:    feed,
		Queries: search.AllQueries(cfg.Search.States, cfg.Search.Keywords, cfg.Search.Accounts),
		Oracle:  oracle,
		Opts: verifier.Options{
			EnableUpload: cfg.Uploader.Enabled,
			DateStrategy: verifier.DateStrategyNormalize,
		},
		OutputDir:   cfg.OutputDir,
		WithinHours: cfg.Search.WithinHours,
	}

	if len(cfg.Notifier.Recipients) > 0 {
		p.Notifier = &fanout.Notifier{
			Log:        log,
			Host:       cfg.Notifier.SMTPHost,
			Port:       cfg.Notifier.SMTPPort,
			Username:   cfg.Notifier.Username,
			Password:   cfg.Notifier.Password,
			From:       cfg.Notifier.From,
			Recipients: cfg.Notifier.Recipients,
		}
	}
	if cfg.Uploader.Enabled && cfg.Uploader.URL != "" {
		p.Uploader = &fanout.Uploader{
			Log:        log,
			HTTPClient: &http.Client{Timeout: 60 * time.Second},
			URL:        cfg.Uploader.URL,
		}
	}

	// Mongo 归档和 feed API 都是可选的：不配 mongo 就只写文件
	var stores *helper.Stores
	if cfg.Mongo.Host != "" {
		stores = helper.MustMongo(
			ctx,
			cfg.Mongo.Host,
			cfg.Mongo.DBName,
			cfg.Mongo.Username,
			cfg.Mongo.Password,
			cfg.Mongo.AuthSource,
		)
		p.Archiver = &fanout.Archiver{Log: log, Stores: stores}
	}

	if *once {
		report, err := p.RunOnce(ctx)
		if err != nil {
			log.Fatal("Run aborted", zap.Error(err))
		}
		log.Info("Run finished",
			zap.Int("candidates", report.CandidateCount),
			zap.Int("persisted", report.PersistedCount),
		)
		return
	}

	worker := &scheduler.Worker{
		Log:     log,
		Runner:  p,
		Anchors: cfg.AnchorHours,
	}
	go worker.Run(ctx)

	if stores == nil {
		// 没有归档库就没有 feed API，挂住主协程即可
		log.Info("Feed API disabled (no mongo configured)")
		select {}
	}

	srv := &api.Server{Stores: stores}
	r := srv.Router()
	_ = r.SetTrustedProxies(nil)
	log.Info("Fire Watch Service is running", zap.String("address", cfg.Address))
	_ = r.Run(cfg.Address)
}
