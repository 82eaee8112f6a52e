package search

import (
	"encoding/json"
	"os"
	"sync"

	"go.uber.org/zap"

	"fire-watch/internal/firewatch/dedupe"
	"fire-watch/internal/firewatch/model"
	"fire-watch/internal/firewatch/sink"
)

// CandidateStore 原始候选集文件：每个查询跑完立即合并落盘，
// 进程中途挂掉也不丢已抓到的数据。合并按 ID 去重，先到先得。
type CandidateStore struct {
	Log  *zap.Logger
	Path string

	mu sync.Mutex
}

// Fold 把新一批推文并进已有候选集并重写文件，返回合并后的总量
func (s *CandidateStore) Fold(posts []model.Post) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing := s.loadLocked()
	merged := dedupe.Dedupe(append(existing, posts...))

	data, err := json.MarshalIndent(merged, "", "  ")
	if err != nil {
		return 0, err
	}
	if err := sink.WriteAtomic(s.Path, data); err != nil {
		return 0, err
	}
	return len(merged), nil
}

// Load 读出候选集。文件必须可读可解析：这是整次运行唯一的致命错误来源。
func (s *CandidateStore) Load() ([]model.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, err
	}
	var posts []model.Post
	if err := json.Unmarshal(data, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (s *CandidateStore) loadLocked() []model.Post {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.Log.Warn("Failed to read candidate file, starting empty",
				zap.String("path", s.Path),
				zap.Error(err),
			)
		}
		return nil
	}
	var posts []model.Post
	if err := json.Unmarshal(data, &posts); err != nil {
		s.Log.Warn("Candidate file unparsable, starting empty",
			zap.String("path", s.Path),
			zap.Error(err),
		)
		return nil
	}
	return posts
}
