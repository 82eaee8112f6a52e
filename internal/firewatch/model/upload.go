package model

// UploadItem bulk-upload 接口要求的条目结构，字段名以远端 schema 为准
type UploadItem struct {
	Title              string   `json:"title"`
	Content            string   `json:"content"`
	PublishedDate      *string  `json:"published_date"` // ISO-8601，解析失败传 null
	URL                string   `json:"url"`
	Source             string   `json:"source"`
	FireRelatedScore   float64  `json:"fire_related_score"`
	VerificationResult string   `json:"verification_result"`
	VerifiedAt         string   `json:"verified_at"`
	State              string   `json:"state"`
	County             string   `json:"county"`
	City               string   `json:"city"`
	Province           string   `json:"province"`
	Country            string   `json:"country"`
	Latitude           *float64 `json:"latitude"`
	Longitude          *float64 `json:"longitude"`
	ImageURL           string   `json:"image_url"`
	Tags               string   `json:"tags"`
	ReporterName       string   `json:"reporter_name"`
}

// BulkUploadRequest POST body：{"items": [...]}
type BulkUploadRequest struct {
	Items []UploadItem `json:"items"`
}

// BulkUploadResponse 200 时远端返回的统计
type BulkUploadResponse struct {
	Inserted       int `json:"inserted"`
	Skipped        int `json:"skipped"`
	TotalProcessed int `json:"total_processed"`
}
