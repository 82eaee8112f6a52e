package verifier

import (
	"encoding/json"
	"os"

	"go.uber.org/zap"

	"fire-watch/internal/firewatch/sink"
	"fire-watch/internal/firewatch/timeutil"
)

// NormalizeHistoricalDates 把台账文件里残留的老格式 published_date
// 原地改写成 ISO-8601。只改这一个字段，不动记录顺序和其他内容；
// 幂等：已经干净的文件零写入。返回改写条数。
func NormalizeHistoricalDates(log *zap.Logger, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	// 用 RawMessage 保留未知字段，迁移不应该丢掉任何东西
	var records []map[string]json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return 0, err
	}

	changed := 0
	for _, rec := range records {
		raw, ok := rec["published_date"]
		if !ok {
			continue
		}
		var date string
		if err := json.Unmarshal(raw, &date); err != nil {
			continue
		}
		if !timeutil.IsLegacy(date) {
			continue
		}
		t, err := timeutil.Normalize(date)
		if err != nil {
			continue
		}
		fixed, err := json.Marshal(timeutil.FormatISO(t))
		if err != nil {
			return changed, err
		}
		rec["published_date"] = fixed
		changed++
	}

	if changed == 0 {
		return 0, nil
	}

	out, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return changed, err
	}
	if err := sink.WriteAtomic(path, out); err != nil {
		return changed, err
	}
	log.Info("Normalized historical dates",
		zap.String("path", path),
		zap.Int("changed", changed),
	)
	return changed, nil
}
