package logger

import (
	"os"

	"go.uber.org/zap"
)

// NewLogger 创建 zap.Logger。
// FIREWATCH_ENV=production 输出 JSON，否则用开发版格式。
func NewLogger() (*zap.Logger, error) {
	if os.Getenv("FIREWATCH_ENV") == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
