package sink

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// WriteAtomic 先写临时文件再 rename，避免进程中途挂掉留下半截文件
// 污染下一次读取。rename 同目录内是原子的。
func WriteAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".firewatch-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	// CreateTemp 给的是 0600，落盘文件用常规权限
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}

// RunPaths 一次运行固定一对带时间戳的输出文件名，
// 同一次运行内的所有追加都写同一对文件。
func RunPaths(dir string, t time.Time) (ledgerPath, sheetPath string) {
	ts := t.Format("20060102_150405")
	ledgerPath = filepath.Join(dir, fmt.Sprintf("live_verified_fires_%s.json", ts))
	sheetPath = filepath.Join(dir, fmt.Sprintf("verified_fires_%s.xlsx", ts))
	return ledgerPath, sheetPath
}
