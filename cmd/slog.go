package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/lmittmann/tint"
)

const serviceName = "merch-storefront"

var once sync.Once

func init() {
	once.Do(func() {
		logger, err := newLogger(os.Stderr, os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
		if err != nil {
			panic(err)
		}
		slog.SetDefault(logger.With("service", serviceName))
	})
}

// newLogger builds the process logger. LOG_FORMAT picks "json" or "pretty";
// when it is unset, debug level means pretty and anything else means json.
func newLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	logLevel := slog.LevelInfo
	if level != "" {
		if err := logLevel.UnmarshalText([]byte(level)); err != nil {
			return nil, fmt.Errorf("invalid LOG_LEVEL %q", level)
		}
	}

	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = "json"
		if logLevel <= slog.LevelDebug {
			format = "pretty"
		}
	}

	switch format {
	case "pretty":
		return slog.New(tint.NewHandler(w, &tint.Options{
			Level:       logLevel,
			TimeFormat:  time.TimeOnly,
			AddSource:   logLevel <= slog.LevelDebug,
			ReplaceAttr: prettyAttr,
		})), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: logLevel})), nil
	default:
		return nil, fmt.Errorf("invalid LOG_FORMAT %q, want json or pretty", format)
	}
}

// prettyAttr trims source paths to the repo and colors errors.
func prettyAttr(_ []string, a slog.Attr) slog.Attr {
	if source, ok := a.Value.Any().(*slog.Source); ok && a.Key == slog.SourceKey {
		source.File = trimSource(source.File)
	}
	if err, ok := a.Value.Any().(error); ok {
		aErr := tint.Err(err)
		aErr.Key = a.Key
		return aErr
	}
	return a
}

func trimSource(file string) string {
	if i := strings.LastIndex(file, "/"+serviceName+"/"); i >= 0 {
		return file[i+len(serviceName)+2:]
	}
	return file
}
