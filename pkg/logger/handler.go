package logger

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"sync"

	"golang.org/x/term"
)

// textHandler writes one line per record:
//
//	LEVEL message key="value" group.key="value"
//
// Attributes added through With come before the record's own.
type textHandler struct {
	mu     *sync.Mutex
	w      io.Writer
	level  slog.Leveler
	color  bool
	source bool
	prefix string
	preset []byte
}

func newTextHandler(w io.Writer, level slog.Leveler, color, source bool) *textHandler {
	return &textHandler{
		mu:     &sync.Mutex{},
		w:      w,
		level:  level,
		color:  color && isTerminal(w),
		source: source,
	}
}

func (h *textHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *textHandler) Handle(_ context.Context, r slog.Record) error {
	buf := bytes.Buffer{}

	name := levelName(r.Level)
	if h.color {
		name = levelColor(r.Level) + name + ansiReset
	}
	buf.WriteString(name)
	buf.WriteByte(' ')
	buf.WriteString(r.Message)

	if h.source && r.PC != 0 {
		frame, _ := runtime.CallersFrames([]uintptr{r.PC}).Next()
		appendAttr(&buf, "", slog.String(slog.SourceKey, frame.File+":"+strconv.Itoa(frame.Line)))
	}

	buf.Write(h.preset)
	r.Attrs(func(a slog.Attr) bool {
		appendAttr(&buf, h.prefix, a)
		return true
	})
	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(buf.Bytes())
	return err
}

func (h *textHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	buf := bytes.NewBuffer(bytes.Clone(h.preset))
	for _, a := range attrs {
		appendAttr(buf, h.prefix, a)
	}
	cp := *h
	cp.preset = buf.Bytes()
	return &cp
}

func (h *textHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	cp := *h
	cp.prefix = h.prefix + name + "."
	return &cp
}

func appendAttr(buf *bytes.Buffer, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	if a.Value.Kind() == slog.KindGroup {
		if a.Key != "" {
			prefix += a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			appendAttr(buf, prefix, ga)
		}
		return
	}

	buf.WriteByte(' ')
	buf.WriteString(prefix)
	buf.WriteString(a.Key)
	buf.WriteByte('=')
	buf.WriteString(strconv.Quote(a.Value.String()))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
