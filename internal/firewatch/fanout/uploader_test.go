package fanout

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"fire-watch/internal/firewatch/model"
)

func baseRecord() model.VerifiedRecord {
	return model.VerifiedRecord{
		TweetID:            "1949843538046603655",
		Title:              "Two Sun City firefighters were evaluated...",
		Content:            "Two Sun City firefighters were evaluated for injuries in a house fire on Sunday.",
		PublishedDate:      "Mon Jul 28 14:45:00 +0000 2025",
		URL:                "https://x.com/KTAR923/status/1949843538046603655",
		Source:             "KTAR923",
		FireRelatedScore:   model.ScoreOf(9),
		VerificationResult: "yes",
		VerifiedAt:         "2025-07-29T01:06:47+00:00",
	}
}

func TestToUploadItemMapsFields(t *testing.T) {
	item := ToUploadItem(baseRecord())

	if item.PublishedDate == nil || *item.PublishedDate != "2025-07-28T14:45:00+00:00" {
		t.Errorf("published_date = %v, want normalized ISO", item.PublishedDate)
	}
	if item.FireRelatedScore != 9 {
		t.Errorf("fire_related_score = %v, want 9", item.FireRelatedScore)
	}
	if item.Source != "KTAR923" || item.VerificationResult != "yes" {
		t.Errorf("item = %+v", item)
	}
	if item.Country != "USA" {
		t.Errorf("country = %q, want USA", item.Country)
	}
	if item.Tags != "fire,emergency,news,twitter" {
		t.Errorf("tags = %q", item.Tags)
	}
	if item.ReporterName != "Twitter Fire Detection Bot" {
		t.Errorf("reporter_name = %q", item.ReporterName)
	}
	if item.Latitude != nil || item.Longitude != nil {
		t.Error("geo fields should default to null")
	}
	if item.State != "" || item.City != "" {
		t.Error("geo names should default to empty")
	}
}

func TestToUploadItemScoreDefault(t *testing.T) {
	rec := baseRecord()
	rec.FireRelatedScore = model.ScoreUnavailable()
	item := ToUploadItem(rec)
	if item.FireRelatedScore != 0.8 {
		t.Errorf("fire_related_score = %v, want default 0.8", item.FireRelatedScore)
	}
}

func TestToUploadItemUnparsableDate(t *testing.T) {
	rec := baseRecord()
	rec.PublishedDate = "garbage"
	item := ToUploadItem(rec)
	if item.PublishedDate != nil {
		t.Errorf("published_date = %v, want null", item.PublishedDate)
	}
}

func TestToUploadItemVerificationDefault(t *testing.T) {
	rec := baseRecord()
	rec.VerificationResult = ""
	if got := ToUploadItem(rec).VerificationResult; got != "yes" {
		t.Errorf("verification_result = %q, want yes", got)
	}
}

func TestUploadBulkRequest(t *testing.T) {
	var got model.BulkUploadRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_ = json.NewEncoder(w).Encode(model.BulkUploadResponse{
			Inserted: 1, Skipped: 1, TotalProcessed: 2,
		})
	}))
	defer srv.Close()

	u := &Uploader{Log: zap.NewNop(), HTTPClient: srv.Client(), URL: srv.URL}
	resp, err := u.Upload(context.Background(), []model.VerifiedRecord{baseRecord(), baseRecord()})
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Items) != 2 {
		t.Fatalf("sent %d items, want 2", len(got.Items))
	}
	if resp.Inserted != 1 || resp.Skipped != 1 || resp.TotalProcessed != 2 {
		t.Errorf("resp = %+v", resp)
	}
}

func TestUploadNon200IsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	u := &Uploader{Log: zap.NewNop(), HTTPClient: srv.Client(), URL: srv.URL}
	if _, err := u.Upload(context.Background(), []model.VerifiedRecord{baseRecord()}); err == nil {
		t.Fatal("expected error on non-200")
	}
}
