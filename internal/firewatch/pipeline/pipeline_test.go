package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"fire-watch/internal/firewatch/model"
	"fire-watch/internal/firewatch/verifier"
)

type fakeFeed struct {
	posts map[string][]model.Post // query -> posts
	errs  map[string]error
}

func (f *fakeFeed) FetchQuery(ctx context.Context, query string) ([]model.Post, error) {
	if err := f.errs[query]; err != nil {
		return nil, err
	}
	return f.posts[query], nil
}

type stubOracle struct {
	verdict model.Verdict
	score   model.Score
}

func (s *stubOracle) ClassifyIncident(ctx context.Context, text, url string) (model.Verdict, string) {
	if s.verdict == model.VerdictPositive {
		return s.verdict, "yes"
	}
	return s.verdict, "no"
}

func (s *stubOracle) ScoreRelevance(ctx context.Context, text string) model.Score {
	return s.score
}

type recordingNotifier struct {
	calls int
	fail  bool
}

func (r *recordingNotifier) Send(report *model.RunReport) error {
	r.calls++
	if r.fail {
		return errors.New("smtp down")
	}
	return nil
}

type recordingUploader struct {
	calls   int
	records int
}

func (r *recordingUploader) Upload(ctx context.Context, records []model.VerifiedRecord) (*model.BulkUploadResponse, error) {
	r.calls++
	r.records = len(records)
	return &model.BulkUploadResponse{Inserted: len(records), TotalProcessed: len(records)}, nil
}

type recordingArchiver struct {
	calls int
}

func (r *recordingArchiver) Archive(ctx context.Context, records []model.VerifiedRecord, report *model.RunReport) error {
	r.calls++
	return nil
}

func fixedNow() time.Time {
	return time.Date(2025, 7, 29, 1, 0, 0, 0, time.UTC)
}

func newPipeline(t *testing.T, feed Feed, oracle *stubOracle) (*Pipeline, *recordingNotifier, *recordingUploader, *recordingArchiver) {
	t.Helper()
	notifier := &recordingNotifier{}
	uploader := &recordingUploader{}
	archiver := &recordingArchiver{}
	p := &Pipeline{
		Log:         zap.NewNop(),
		Feed:        feed,
		Queries:     []string{"q1", "q2"},
		Oracle:      oracle,
		Opts:        verifier.Options{EnableUpload: true},
		OutputDir:   t.TempDir(),
		WithinHours: 72,
		Notifier:    notifier,
		Uploader:    uploader,
		Archiver:    archiver,
		Now:         fixedNow,
	}
	return p, notifier, uploader, archiver
}

func recentPost(id, text string) model.Post {
	return model.Post{
		ID:        id,
		Type:      "tweet",
		Text:      text,
		CreatedAt: "Mon Jul 28 14:45:00 +0000 2025",
		URL:       "https://x.com/a/" + id,
		Author:    model.Author{UserName: "a"},
	}
}

func TestPipelineFanoutInvokedOnce(t *testing.T) {
	feed := &fakeFeed{posts: map[string][]model.Post{
		"q1": {recentPost("1", "House fire destroys home in Texas")},
		"q2": {recentPost("1", "House fire destroys home in Texas")}, // 重叠，去重后只剩一条
	}}
	p, notifier, uploader, archiver := newPipeline(t, feed, &stubOracle{
		verdict: model.VerdictPositive,
		score:   model.ScoreOf(9),
	})

	report, err := p.RunOnce(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if report.PersistedCount != 1 {
		t.Fatalf("persisted = %d, want 1", report.PersistedCount)
	}
	if notifier.calls != 1 || uploader.calls != 1 || archiver.calls != 1 {
		t.Errorf("fanout calls = %d/%d/%d, want 1/1/1",
			notifier.calls, uploader.calls, archiver.calls)
	}
	if uploader.records != 1 {
		t.Errorf("uploaded %d records, want 1", uploader.records)
	}
}

func TestPipelineNoFanoutWhenNothingPersisted(t *testing.T) {
	posts := make([]model.Post, 10)
	for i := range posts {
		posts[i] = recentPost(string(rune('0'+i)), "anything")
	}
	feed := &fakeFeed{posts: map[string][]model.Post{"q1": posts}}
	// 永远 Indeterminate 的分类器：10 条全跳过，整次运行不能崩
	p, notifier, uploader, archiver := newPipeline(t, feed, &stubOracle{
		verdict: model.VerdictIndeterminate,
	})

	report, err := p.RunOnce(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if report.PersistedCount != 0 {
		t.Fatalf("persisted = %d, want 0", report.PersistedCount)
	}
	if notifier.calls != 0 || uploader.calls != 0 || archiver.calls != 0 {
		t.Error("fanout must not run with zero persisted records")
	}
}

func TestPipelineNotifierFailureDoesNotBlockUpload(t *testing.T) {
	feed := &fakeFeed{posts: map[string][]model.Post{
		"q1": {recentPost("1", "fire")},
	}}
	p, notifier, uploader, _ := newPipeline(t, feed, &stubOracle{
		verdict: model.VerdictPositive,
		score:   model.ScoreOf(5),
	})
	notifier.fail = true

	if _, err := p.RunOnce(context.Background()); err != nil {
		t.Fatal(err)
	}
	if uploader.calls != 1 {
		t.Error("uploader must still run after notifier failure")
	}
}

func TestPipelineUploadDisabled(t *testing.T) {
	feed := &fakeFeed{posts: map[string][]model.Post{
		"q1": {recentPost("1", "fire")},
	}}
	p, _, uploader, archiver := newPipeline(t, feed, &stubOracle{
		verdict: model.VerdictPositive,
		score:   model.ScoreOf(5),
	})
	p.Opts.EnableUpload = false

	if _, err := p.RunOnce(context.Background()); err != nil {
		t.Fatal(err)
	}
	if uploader.calls != 0 {
		t.Error("upload disabled but uploader was called")
	}
	if archiver.calls != 1 {
		t.Error("archiver should still run")
	}
}

func TestPipelineQueryFailureIsSkipped(t *testing.T) {
	feed := &fakeFeed{
		posts: map[string][]model.Post{"q2": {recentPost("1", "fire")}},
		errs:  map[string]error{"q1": errors.New("network down")},
	}
	p, _, _, _ := newPipeline(t, feed, &stubOracle{
		verdict: model.VerdictPositive,
		score:   model.ScoreOf(5),
	})

	report, err := p.RunOnce(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if report.PersistedCount != 1 {
		t.Fatalf("persisted = %d, want 1 (failed query skipped, not fatal)", report.PersistedCount)
	}
}

func TestPipelineNoCandidates(t *testing.T) {
	feed := &fakeFeed{}
	p, notifier, _, _ := newPipeline(t, feed, &stubOracle{verdict: model.VerdictPositive})

	report, err := p.RunOnce(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if report.CandidateCount != 0 || report.PersistedCount != 0 {
		t.Errorf("report = %+v", report)
	}
	if notifier.calls != 0 {
		t.Error("no fanout on empty run")
	}
}
