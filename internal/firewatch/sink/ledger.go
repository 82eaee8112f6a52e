package sink

import (
	"encoding/json"
	"os"
	"sync"

	"go.uber.org/zap"

	"fire-watch/internal/firewatch/model"
)

// Ledger 单个 JSON 数组文件的追加式台账。
// 读-改-写必须整体持锁，两次追加不允许交叉。
type Ledger struct {
	Log  *zap.Logger
	Path string

	mu sync.Mutex
}

func NewLedger(log *zap.Logger, path string) *Ledger {
	return &Ledger{Log: log, Path: path}
}

// Append 幂等追加：同一 tweet_id 已在台账里就跳过。
// 文件不存在或解析失败按空数组处理。
func (l *Ledger) Append(rec model.VerifiedRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	records := l.readLocked()
	for _, r := range records {
		if r.TweetID == rec.TweetID {
			l.Log.Debug("Ledger entry already present, skip",
				zap.String("tweetId", rec.TweetID),
				zap.String("path", l.Path),
			)
			return nil
		}
	}

	records = append(records, rec)
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	if err := WriteAtomic(l.Path, data); err != nil {
		return err
	}
	l.Log.Info("Ledger updated",
		zap.String("tweetId", rec.TweetID),
		zap.Int("total", len(records)),
	)
	return nil
}

// Records 读出当前台账内容（拷贝）
func (l *Ledger) Records() []model.VerifiedRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.readLocked()
}

func (l *Ledger) readLocked() []model.VerifiedRecord {
	data, err := os.ReadFile(l.Path)
	if err != nil {
		if !os.IsNotExist(err) {
			l.Log.Warn("Failed to read ledger, treating as empty",
				zap.String("path", l.Path),
				zap.Error(err),
			)
		}
		return nil
	}
	var records []model.VerifiedRecord
	if err := json.Unmarshal(data, &records); err != nil {
		l.Log.Warn("Ledger file unparsable, treating as empty",
			zap.String("path", l.Path),
			zap.Error(err),
		)
		return nil
	}
	return records
}
