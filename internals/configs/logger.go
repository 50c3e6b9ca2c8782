package configs

import (
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	logMu  sync.RWMutex
	logger = zap.NewNop().Sugar()
)

// InitLogger menyiapkan logger global. APP_ENV=production → JSON, selain itu console.
func InitLogger() error {
	var cfg zap.Config
	if strings.EqualFold(GetEnv("APP_ENV"), "production") {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	if lvl := strings.TrimSpace(GetEnv("LOG_LEVEL")); lvl != "" {
		var l zapcore.Level
		if err := l.UnmarshalText([]byte(lvl)); err == nil {
			cfg.Level = zap.NewAtomicLevelAt(l)
		}
	}

	z, err := cfg.Build()
	if err != nil {
		return err
	}
	SetLogger(z.Sugar())
	return nil
}

// SetLogger mengganti logger global (dipakai juga oleh test).
func SetLogger(l *zap.SugaredLogger) {
	if l == nil {
		l = zap.NewNop().Sugar()
	}
	logMu.Lock()
	logger = l
	logMu.Unlock()
}

// L mengembalikan logger global; default Nop sampai InitLogger dipanggil.
func L() *zap.SugaredLogger {
	logMu.RLock()
	defer logMu.RUnlock()
	return logger
}

// SyncLogger flush buffer sebelum proses keluar.
func SyncLogger() {
	_ = L().Sync()
}
