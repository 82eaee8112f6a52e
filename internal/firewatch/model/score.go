package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Score 0-10 的火情相关度评分；Valid=false 表示评分调用失败（信息缺失，不阻塞持久化）
type Score struct {
	Value int
	Valid bool
}

func ScoreOf(v int) Score { return Score{Value: v, Valid: true} }

func ScoreUnavailable() Score { return Score{} }

// OrDefault 上传时的兜底：评分缺失用固定默认值
func (s Score) OrDefault(def float64) float64 {
	if !s.Valid {
		return def
	}
	return float64(s.Value)
}

func (s Score) String() string {
	if !s.Valid {
		return "n/a"
	}
	return strconv.Itoa(s.Value)
}

// MarshalJSON 有效评分写数字，缺失写 null
func (s Score) MarshalJSON() ([]byte, error) {
	if !s.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(s.Value)
}

// UnmarshalJSON 兼容历史台账里的三种写法：数字、数字字符串、空串/null
func (s *Score) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*s = Score{}
		return nil
	}
	if trimmed[0] == '"' {
		var raw string
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return err
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			*s = Score{}
			return nil
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			// 历史数据里偶尔存的是模型原话，当作缺失
			*s = Score{}
			return nil
		}
		*s = ScoreOf(v)
		return nil
	}
	var v int
	if err := json.Unmarshal(trimmed, &v); err != nil {
		// 浮点写法也兼容一下
		var f float64
		if err2 := json.Unmarshal(trimmed, &f); err2 != nil {
			return fmt.Errorf("score: cannot parse %s", string(trimmed))
		}
		v = int(f)
	}
	*s = ScoreOf(v)
	return nil
}
