package model

import "time"

// RunReport 单次批处理的汇总，供通知邮件和归档使用
type RunReport struct {
	StartedAt          time.Time `json:"started_at" bson:"started_at"`
	FinishedAt         time.Time `json:"finished_at" bson:"finished_at"`
	CandidateCount     int       `json:"candidate_count" bson:"candidate_count"`
	PersistedCount     int       `json:"persisted_count" bson:"persisted_count"`
	SkippedCount       int       `json:"skipped_count" bson:"skipped_count"`
	IndeterminateCount int       `json:"indeterminate_count" bson:"indeterminate_count"`
	LedgerPath         string    `json:"ledger_path" bson:"ledger_path"`
	SpreadsheetPath    string    `json:"spreadsheet_path" bson:"spreadsheet_path"`
}
