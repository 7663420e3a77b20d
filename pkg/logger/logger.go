package logger

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Loggers menyimpan logger per kategori yang sudah diinisialisasi.
type Loggers struct {
	Error    *zap.Logger
	Audit    *zap.Logger
	Request  *zap.Logger
	Security *zap.Logger
	System   *zap.Logger

	files []*os.File
}

func encoderConfig() zapcore.EncoderConfig {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	return encoderCfg
}

func newLogger(ws zapcore.WriteSyncer, category string, level zapcore.Level) *zap.Logger {
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig()),
		ws,
		level,
	)
	return zap.New(core).With(zap.String("category", category))
}

func openLogFile(dir, name string) (*os.File, error) {
	return os.OpenFile(filepath.Join(dir, name), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
}

// New membuat logger per kategori. Setiap kategori punya file sendiri di dir;
// dir kosong berarti semua ke stdout.
func New(dir string) (*Loggers, error) {
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
	}

	var l Loggers
	open := func(category, name string, level zapcore.Level) (*zap.Logger, error) {
		if dir == "" {
			return newLogger(zapcore.Lock(zapcore.AddSync(os.Stdout)), category, level), nil
		}
		file, err := openLogFile(dir, name)
		if err != nil {
			return nil, fmt.Errorf("cannot create %s logger: %w", category, err)
		}
		l.files = append(l.files, file)
		return newLogger(zapcore.AddSync(file), category, level), nil
	}

	var err error
	if l.Error, err = open("error", "errors.log", zapcore.ErrorLevel); err != nil {
		_ = l.Close()
		return nil, err
	}
	if l.Audit, err = open("audit", "audit.log", zapcore.InfoLevel); err != nil {
		_ = l.Close()
		return nil, err
	}
	if l.Request, err = open("request", "request.log", zapcore.InfoLevel); err != nil {
		_ = l.Close()
		return nil, err
	}
	if l.Security, err = open("security", "security.log", zapcore.WarnLevel); err != nil {
		_ = l.Close()
		return nil, err
	}
	if l.System, err = open("system", "system.log", zapcore.InfoLevel); err != nil {
		_ = l.Close()
		return nil, err
	}
	return &l, nil
}

// NewNop mengembalikan logger yang membuang semua log.
func NewNop() *Loggers {
	nop := zap.NewNop()
	return &Loggers{
		Error:    nop,
		Audit:    nop,
		Request:  nop,
		Security: nop,
		System:   nop,
	}
}

func (l *Loggers) Sync() {
	_ = l.Error.Sync()
	_ = l.Audit.Sync()
	_ = l.Request.Sync()
	_ = l.Security.Sync()
	_ = l.System.Sync()
}

// Close menutup file log. Panggil setelah Sync.
func (l *Loggers) Close() error {
	var errs []error
	for _, f := range l.files {
		errs = append(errs, f.Close())
	}
	l.files = nil
	return errors.Join(errs...)
}
