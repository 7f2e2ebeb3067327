// Package logger provides leveled, printf-style logging for HarborDrive.
//
// Output is a single line per event, either plain text or JSON, written
// to stdout, stderr, or a file. Configure is called once at startup from
// the loaded configuration; the package-level functions are safe to use
// before that with INFO/text/stdout defaults.
package logger

import (
	"encoding/json"
	"fmt"
	stdlog "log"
	"os"
	"strings"
	"sync"
	"time"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

var (
	mu           sync.Mutex
	currentLevel = LevelInfo
	format       = FormatText
	logger       = stdlog.New(os.Stdout, "", 0)
	logFile      *os.File
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Configure applies logging settings: minimum level, output format
// ("text" or "json"), and destination ("stdout", "stderr", or a file
// path).
func Configure(level, outputFormat, output string) error {
	mu.Lock()
	defer mu.Unlock()

	setLevelLocked(level)

	switch strings.ToLower(outputFormat) {
	case FormatJSON:
		format = FormatJSON
	default:
		format = FormatText
	}

	switch output {
	case "", "stdout":
		logger = stdlog.New(os.Stdout, "", 0)
	case "stderr":
		logger = stdlog.New(os.Stderr, "", 0)
	default:
		f, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file %s: %w", output, err)
		}
		if logFile != nil {
			logFile.Close()
		}
		logFile = f
		logger = stdlog.New(f, "", 0)
	}
	return nil
}

// SetLevel sets the minimum level from its string name. Unknown names
// are ignored.
func SetLevel(level string) {
	mu.Lock()
	defer mu.Unlock()
	setLevelLocked(level)
}

func setLevelLocked(level string) {
	switch strings.ToUpper(level) {
	case "DEBUG":
		currentLevel = LevelDebug
	case "INFO":
		currentLevel = LevelInfo
	case "WARN":
		currentLevel = LevelWarn
	case "ERROR":
		currentLevel = LevelError
	}
}

func log(level Level, msgFormat string, v ...any) {
	mu.Lock()
	defer mu.Unlock()

	if level < currentLevel {
		return
	}

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	message := fmt.Sprintf(msgFormat, v...)

	if format == FormatJSON {
		entry := map[string]string{
			"time":    timestamp,
			"level":   level.String(),
			"message": message,
		}
		data, err := json.Marshal(entry)
		if err != nil {
			// Fall back to text rather than dropping the event.
			logger.Printf("[%s] [%s] %s", timestamp, level.String(), message)
			return
		}
		logger.Println(string(data))
		return
	}

	logger.Printf("[%s] [%s] %s", timestamp, level.String(), message)
}

func Debug(format string, v ...any) {
	log(LevelDebug, format, v...)
}

func Info(format string, v ...any) {
	log(LevelInfo, format, v...)
}

func Warn(format string, v ...any) {
	log(LevelWarn, format, v...)
}

func Error(format string, v ...any) {
	log(LevelError, format, v...)
}
