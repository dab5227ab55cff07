package logging

import (
	"fmt"
	"io"

	"gopkg.in/natefinch/lumberjack.v2"
)

// FileConfig configures an optional size-rotated log file written alongside
// stdout.
type FileConfig struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// Enabled reports whether a log file is configured.
func (f FileConfig) Enabled() bool {
	return f.Path != ""
}

func (f FileConfig) validate() error {
	if !f.Enabled() {
		return nil
	}
	if f.MaxSizeMB <= 0 {
		return fmt.Errorf("log file max size must be positive, got %d", f.MaxSizeMB)
	}
	if f.MaxBackups < 0 || f.MaxAgeDays < 0 {
		return fmt.Errorf("log file retention cannot be negative")
	}
	return nil
}

// NewFileWriter returns a writer that rotates f.Path once it reaches
// f.MaxSizeMB megabytes.
func NewFileWriter(f FileConfig) io.WriteCloser {
	return &lumberjack.Logger{
		Filename:   f.Path,
		MaxSize:    f.MaxSizeMB,
		MaxBackups: f.MaxBackups,
		MaxAge:     f.MaxAgeDays,
		Compress:   f.Compress,
	}
}
