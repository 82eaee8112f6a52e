package sink

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"fire-watch/internal/firewatch/model"
)

var sheetHeader = []string{
	"tweet_id", "title", "content", "published_date", "url",
	"source", "fire_related_score", "verification_result", "verified_at",
}

const sheetName = "Sheet1"

// Spreadsheet 表格落盘：每条验证记录一行，表头固定。
// 每次追加整表重写，列宽/换行/超链接是重写后的装饰，不影响正确性。
type Spreadsheet struct {
	Log  *zap.Logger
	Path string

	mu sync.Mutex
}

func NewSpreadsheet(log *zap.Logger, path string) *Spreadsheet {
	return &Spreadsheet{Log: log, Path: path}
}

// Append 读全表 + 追加一行 + 原子重写
func (s *Spreadsheet) Append(rec model.VerifiedRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, nextRow, err := s.openLocked()
	if err != nil {
		return err
	}
	defer func() {
		if err := f.Close(); err != nil {
			s.Log.Warn("Failed to close workbook", zap.Error(err))
		}
	}()

	row := []interface{}{
		rec.TweetID, rec.Title, rec.Content, rec.PublishedDate, rec.URL,
		rec.Source, rec.FireRelatedScore.String(), rec.VerificationResult, rec.VerifiedAt,
	}
	for i, v := range row {
		cell, err := excelize.CoordinatesToCellName(i+1, nextRow)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, v); err != nil {
			return err
		}
	}

	if err := s.formatLocked(f); err != nil {
		// 装饰失败不影响数据本身
		s.Log.Warn("Failed to format spreadsheet", zap.Error(err))
	}

	if err := s.saveLocked(f); err != nil {
		return err
	}
	s.Log.Info("Spreadsheet updated",
		zap.String("tweetId", rec.TweetID),
		zap.Int("row", nextRow),
	)
	return nil
}

// openLocked 打开已有工作簿，不存在则新建并写表头；返回下一可写行号
func (s *Spreadsheet) openLocked() (*excelize.File, int, error) {
	if _, err := os.Stat(s.Path); err == nil {
		f, err := excelize.OpenFile(s.Path)
		if err != nil {
			return nil, 0, err
		}
		rows, err := f.GetRows(sheetName)
		if err != nil {
			_ = f.Close()
			return nil, 0, err
		}
		return f, len(rows) + 1, nil
	}

	f := excelize.NewFile()
	for i, h := range sheetHeader {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			_ = f.Close()
			return nil, 0, err
		}
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			_ = f.Close()
			return nil, 0, err
		}
	}
	return f, 2, nil
}

// formatLocked 列宽按内容自适应（15~60），全表换行，URL 列加超链接
func (s *Spreadsheet) formatLocked(f *excelize.File) error {
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	wrapStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	})
	if err != nil {
		return err
	}

	for col := range rows[0] {
		maxLen := 0
		for _, row := range rows {
			if col < len(row) && len(row[col]) > maxLen {
				maxLen = len(row[col])
			}
		}
		width := float64(maxLen + 2)
		if width < 15 {
			width = 15
		}
		if width > 60 {
			width = 60
		}
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheetName, name, name, width); err != nil {
			return err
		}
		top, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		bottom, err := excelize.CoordinatesToCellName(col+1, len(rows))
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheetName, top, bottom, wrapStyle); err != nil {
			return err
		}
	}

	// 表头大小写不敏感匹配 url 列
	urlCol := 0
	for i, h := range rows[0] {
		if strings.EqualFold(h, "url") {
			urlCol = i + 1
			break
		}
	}
	if urlCol == 0 {
		return nil
	}
	for r := 2; r <= len(rows); r++ {
		cell, err := excelize.CoordinatesToCellName(urlCol, r)
		if err != nil {
			return err
		}
		val, err := f.GetCellValue(sheetName, cell)
		if err != nil {
			return err
		}
		if strings.HasPrefix(val, "http") {
			if err := f.SetCellHyperLink(sheetName, cell, val, "External"); err != nil {
				return err
			}
		}
	}
	return nil
}

// saveLocked 写临时文件再 rename，保证任意时刻磁盘上的表都是完整的
func (s *Spreadsheet) saveLocked(f *excelize.File) error {
	tmp := filepath.Join(filepath.Dir(s.Path), fmt.Sprintf(".%s.tmp", filepath.Base(s.Path)))
	if err := f.SaveAs(tmp); err != nil {
		return err
	}
	if err := os.Rename(tmp, s.Path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
