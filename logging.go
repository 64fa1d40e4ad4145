package main

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"golang.org/x/exp/slog"
	"gopkg.in/yaml.v3"
)

//**********************************************************
// log handler
//**********************************************************

// Writes one line per record: time, level, message and key=value attributes.
type LogHandler struct {
	h      slog.Handler
	mu     *sync.Mutex
	out    io.Writer
	attrs  []slog.Attr
	groups []string
}

func NewLogHandler(o io.Writer, opts *slog.HandlerOptions) *LogHandler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}
	return &LogHandler{
		out: o,
		h: slog.NewTextHandler(o, &slog.HandlerOptions{
			Level:     opts.Level,
			AddSource: opts.AddSource,
		}),
		mu: &sync.Mutex{},
	}
}

func (h *LogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.h.Enabled(ctx, level)
}

func (h *LogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	prefixed := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	prefixed = append(prefixed, h.attrs...)
	for _, a := range attrs {
		prefixed = append(prefixed, slog.Attr{Key: h._Key(a.Key), Value: a.Value})
	}
	return &LogHandler{h: h.h.WithAttrs(attrs), out: h.out, mu: h.mu, attrs: prefixed, groups: h.groups}
}

func (h *LogHandler) WithGroup(name string) slog.Handler {
	groups := append(append([]string{}, h.groups...), name)
	return &LogHandler{h: h.h.WithGroup(name), out: h.out, mu: h.mu, attrs: h.attrs, groups: groups}
}

func (h *LogHandler) _Key(key string) string {
	if len(h.groups) == 0 {
		return key
	}
	return strings.Join(h.groups, ".") + "." + key
}

func (h *LogHandler) Handle(ctx context.Context, r slog.Record) error {
	formatted_time := r.Time.Format("2006/01/02 15:04:05")

	var builder strings.Builder
	builder.WriteString(formatted_time)
	builder.WriteByte(' ')
	builder.WriteString(r.Level.String())
	builder.WriteByte(' ')
	builder.WriteString(r.Message)
	write := func(key string, value slog.Value) {
		builder.WriteByte(' ')
		builder.WriteString(key)
		builder.WriteByte('=')
		s := value.Resolve().String()
		if strings.ContainsAny(s, " \t\"=") {
			data, _ := json.Marshal(s)
			s = string(data)
		}
		builder.WriteString(s)
	}
	for _, a := range h.attrs {
		write(a.Key, a.Value)
	}
	r.Attrs(func(a slog.Attr) bool {
		write(h._Key(a.Key), a.Value)
		return true
	})
	builder.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, builder.String())
	return err
}

//**********************************************************
// log level
//**********************************************************

type LogLevel byte

const (
	LOG_DEBUG LogLevel = 0
	LOG_INFO  LogLevel = 1
	LOG_WARN  LogLevel = 2
	LOG_ERROR LogLevel = 3
)

func (self LogLevel) String() string {
	switch self {
	case LOG_DEBUG:
		return "debug"
	case LOG_WARN:
		return "warn"
	case LOG_ERROR:
		return "error"
	default:
		return "info"
	}
}
func (self LogLevel) Level() slog.Level {
	switch self {
	case LOG_DEBUG:
		return slog.LevelDebug
	case LOG_WARN:
		return slog.LevelWarn
	case LOG_ERROR:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
func (self LogLevel) MarshalYAML() (any, error) {
	return self.String(), nil
}
func (self *LogLevel) UnmarshalYAML(value *yaml.Node) error {
	level, err := LogLevelFromString(value.Value)
	if err != nil {
		return err
	}
	*self = level
	return nil
}

func LogLevelFromString(s string) (LogLevel, error) {
	switch strings.ToLower(s) {
	case "debug":
		return LOG_DEBUG, nil
	case "info", "":
		return LOG_INFO, nil
	case "warn", "warning":
		return LOG_WARN, nil
	case "error":
		return LOG_ERROR, nil
	default:
		return LOG_INFO, eris.Errorf("unknown log level %q", s)
	}
}

// Installs the line handler on stderr as default logger.
func InitLogger(level LogLevel) {
	handler := NewLogHandler(os.Stderr, &slog.HandlerOptions{Level: level.Level()})
	slog.SetDefault(slog.New(handler))
}
