package common

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/arbor/levels"
	"github.com/ternarybob/arbor/models"
)

// DefaultLogFileName is used when no log file is configured
const DefaultLogFileName = "share-mcp.log"

// InitLogger builds the process logger from configuration. It is called once
// at startup and the result is injected into handlers and clients.
// The file writer and the stderr console writer each carry their own level.
func InitLogger(config *Config) arbor.ILogger {
	logger := arbor.NewLogger()

	logFile, err := resolveLogFile(config.Logging.File)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to resolve log file: %v\n", err)
	} else {
		CrashLogDir = filepath.Dir(logFile)
		logger = logger.WithFileWriter(fileWriterConfig(logFile, config.Logging.Level))
	}

	if config.Logging.Console {
		logger = logger.WithConsoleWriter(consoleWriterConfig(config.Logging.ConsoleLevel))
	}

	return logger
}

func fileWriterConfig(logFile, level string) models.WriterConfiguration {
	return models.WriterConfiguration{
		Type:             models.LogWriterTypeFile,
		FileName:         logFile,
		Level:            parseLevel(level),
		TimeFormat:       "2006-01-02 15:04:05",
		MaxSize:          10 * 1024 * 1024, // 10 MB
		MaxBackups:       3,
		OutputType:       models.OutputFormatLogfmt,
		DisableTimestamp: false,
	}
}

// consoleWriterConfig writes to stderr; stdout is the MCP stdio stream
func consoleWriterConfig(level string) models.WriterConfiguration {
	return models.WriterConfiguration{
		Type:             models.LogWriterTypeConsole,
		Level:            parseLevel(level),
		TimeFormat:       "15:04:05",
		DisableTimestamp: false,
	}
}

// parseLevel maps a validated level name to an arbor level, info on error
func parseLevel(name string) levels.LogLevel {
	lvl, err := levels.ParseLevelString(name)
	if err != nil {
		return levels.InfoLevel
	}
	return levels.LogLevel(lvl)
}

// resolveLogFile returns an absolute log file path, creating its directory.
// An empty name resolves next to the executable.
func resolveLogFile(name string) (string, error) {
	if name == "" {
		execPath, err := os.Executable()
		if err != nil {
			return "", fmt.Errorf("failed to get executable path: %w", err)
		}
		name = filepath.Join(filepath.Dir(execPath), DefaultLogFileName)
	}

	abs, err := filepath.Abs(name)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", name, err)
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0755); err != nil {
		return "", fmt.Errorf("failed to create log directory: %w", err)
	}
	return abs, nil
}

// GetLogFilePath returns the configured log file path from the logger
func GetLogFilePath(logger arbor.ILogger) string {
	if logger != nil {
		return logger.GetLogFilePath()
	}
	return ""
}
