// Package logger 建立整個服務共用的 zerolog logger。
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"catmatch/pkg/config"
)

// New 依照設定建立 logger，Pretty 模式輸出人類可讀格式
func New(cfg config.LogConfig) zerolog.Logger {
	return NewWithWriter(cfg, os.Stdout)
}

// NewWithWriter 與 New 相同，但可以指定輸出位置
func NewWithWriter(cfg config.LogConfig, w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	if cfg.Pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	return zerolog.New(w).Level(level).With().
		Str("service", "catmatch").
		Timestamp().
		Logger()
}
