package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

func (s *Service) initializeRollingFileLogger() (*lumberjack.Logger, error) {
	name := s.Config.LogFileName
	if name == emptyString {
		name = "app"
	}
	dir := s.Config.LogFileDir
	if dir == emptyString {
		dir = "logs"
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create log directory %q: %w", ErrWriterSetup, dir, err)
	}

	path := filepath.Join(dir, name+".log")

	// Lumberjack opens lazily on first write; probe now so an unwritable
	// destination fails Init instead of the first log statement.
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("%w: open log file %q: %w", ErrWriterSetup, path, err)
	}
	_ = f.Close()

	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    s.Config.LogFileMaxSizeMB,
		MaxBackups: s.Config.LogFileMaxBackups,
		MaxAge:     s.Config.LogFileMaxAgeDays,
		Compress:   s.Config.LogFileCompress,
	}, nil
}

func (s *Service) initializeConsoleWriter() zerolog.ConsoleWriter {
	cw := zerolog.ConsoleWriter{
		Out:     os.Stderr,
		NoColor: s.Config.ConsoleNoColor,
	}
	if s.Config.ConsoleTimeFormat != emptyString {
		cw.TimeFormat = s.Config.ConsoleTimeFormat
	}
	return cw
}

func (s *Service) initializeWriters() ([]io.Writer, error) {
	if s.output != nil {
		return []io.Writer{s.output}, nil
	}

	var writers []io.Writer

	// If both channels are disabled, fall back to the file writer.
	fileLogging := s.Config.FileLogging
	if !s.Config.ConsoleLogging && !fileLogging {
		fileLogging = true
	}
	if fileLogging {
		fw, err := s.initializeRollingFileLogger()
		if err != nil {
			return nil, err
		}
		s.fileWriter = fw
		writers = append(writers, fw)
	}
	if s.Config.ConsoleLogging {
		writers = append(writers, s.initializeConsoleWriter())
	}

	return writers, nil
}
