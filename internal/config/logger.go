package config

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const diagnosticsSize = 64

// Diagnostic is a warning or error logged during this run.
type Diagnostic struct {
	Time    time.Time     `json:"time"`
	Level   logrus.Level  `json:"level"`
	Message string        `json:"message"`
	Data    logrus.Fields `json:"data,omitempty"`
}

// diagnosticsHook keeps the most recent warnings in a ring buffer so
// commands can show them after the fact. Hooks only fire for enabled
// levels, so nothing is kept when the level is above warn.
type diagnosticsHook struct {
	mu      sync.RWMutex
	entries []Diagnostic
	next    int
	full    bool
}

var (
	diagnostics     = newDiagnosticsHook(diagnosticsSize)
	diagnosticsOnce sync.Once
)

func newDiagnosticsHook(size int) *diagnosticsHook {
	return &diagnosticsHook{entries: make([]Diagnostic, size)}
}

func installDiagnostics() {
	diagnosticsOnce.Do(func() {
		logrus.AddHook(diagnostics)
	})
}

func (h *diagnosticsHook) Levels() []logrus.Level {
	return []logrus.Level{
		logrus.PanicLevel,
		logrus.FatalLevel,
		logrus.ErrorLevel,
		logrus.WarnLevel,
	}
}

func (h *diagnosticsHook) Fire(entry *logrus.Entry) error {
	data := make(logrus.Fields, len(entry.Data))
	for k, v := range entry.Data {
		if err, ok := v.(error); ok {
			v = err.Error()
		}
		data[k] = v
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries[h.next] = Diagnostic{
		Time:    entry.Time,
		Level:   entry.Level,
		Message: entry.Message,
		Data:    data,
	}
	h.next = (h.next + 1) % len(h.entries)
	if h.next == 0 {
		h.full = true
	}
	return nil
}

// recent returns up to count entries, oldest first. count <= 0 means all.
func (h *diagnosticsHook) recent(count int) []Diagnostic {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var ordered []Diagnostic
	if h.full {
		ordered = append(ordered, h.entries[h.next:]...)
	}
	ordered = append(ordered, h.entries[:h.next]...)

	if count > 0 && len(ordered) > count {
		ordered = ordered[len(ordered)-count:]
	}
	return ordered
}

func (h *diagnosticsHook) reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = make([]Diagnostic, len(h.entries))
	h.next = 0
	h.full = false
}

// RecentDiagnostics returns the last count warnings and errors logged
// since logging was set up.
func RecentDiagnostics(count int) []Diagnostic {
	return diagnostics.recent(count)
}
