package logging

import (
	"io"
	"log"
	"os"
	"strings"

	"github.com/natefinch/lumberjack"
)

type Options struct {
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// New builds the process logger. Output always goes to stdout; when a file
// is configured it is also written there with size-based rotation.
func New(stdout io.Writer, options Options) (*log.Logger, io.Closer) {
	if stdout == nil {
		stdout = os.Stdout
	}
	if strings.TrimSpace(options.File) == "" {
		return log.New(stdout, "", log.LstdFlags|log.LUTC), nopCloser{}
	}

	rotating := &lumberjack.Logger{
		Filename:   options.File,
		MaxSize:    options.MaxSizeMB,
		MaxBackups: options.MaxBackups,
		MaxAge:     options.MaxAgeDays,
	}
	return log.New(io.MultiWriter(stdout, rotating), "", log.LstdFlags|log.LUTC), rotating
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
