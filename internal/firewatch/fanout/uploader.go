package fanout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"fire-watch/internal/firewatch/model"
	"fire-watch/internal/firewatch/timeutil"
)

// 上传 schema 的文档化默认值
const (
	defaultCountry      = "USA"
	defaultTags         = "fire,emergency,news,twitter"
	defaultReporterName = "Twitter Fire Detection Bot"
	defaultScore        = 0.8
	defaultVerification = "yes"
)

// ToUploadItem 内部记录 → 远端 bulk-upload 条目的纯映射。
// 地理字段留空、国家默认 USA、评分缺失兜 0.8、日期统一重新规范化。
func ToUploadItem(rec model.VerifiedRecord) model.UploadItem {
	var published *string
	if t, err := timeutil.Normalize(rec.PublishedDate); err == nil {
		iso := timeutil.FormatISO(t)
		published = &iso
	}

	verification := rec.VerificationResult
	if verification == "" {
		verification = defaultVerification
	}

	return model.UploadItem{
		Title:              rec.Title,
		Content:            rec.Content,
		PublishedDate:      published,
		URL:                rec.URL,
		Source:             rec.Source,
		FireRelatedScore:   rec.FireRelatedScore.OrDefault(defaultScore),
		VerificationResult: verification,
		VerifiedAt:         rec.VerifiedAt,
		Country:            defaultCountry,
		Tags:               defaultTags,
		ReporterName:       defaultReporterName,
	}
}

// Uploader 验证结果的远端批量上报端。一次运行最多一发，不自动重试。
type Uploader struct {
	Log        *zap.Logger
	HTTPClient *http.Client
	URL        string
}

// Upload 整批一次 POST。非 2xx 记失败返回错误，由调用方决定记日志后继续。
func (u *Uploader) Upload(ctx context.Context, records []model.VerifiedRecord) (*model.BulkUploadResponse, error) {
	req := model.BulkUploadRequest{Items: make([]model.UploadItem, 0, len(records))}
	for _, rec := range records {
		req.Items = append(req.Items, ToUploadItem(rec))
	}

	jsonData, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, "POST", u.URL, bytes.NewReader(jsonData))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := u.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			u.Log.Warn("Failed to close response body", zap.Error(err))
		}
	}(resp.Body)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bulk upload status %d: %s", resp.StatusCode, string(body))
	}

	var result model.BulkUploadResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("bulk upload invalid response: %w", err)
	}

	u.Log.Info("Bulk upload complete",
		zap.Int("sent", len(req.Items)),
		zap.Int("inserted", result.Inserted),
		zap.Int("skipped", result.Skipped),
		zap.Int("totalProcessed", result.TotalProcessed),
	)
	return &result, nil
}
