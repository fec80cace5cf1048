// Copyright 2017 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"reflect"
	"sync"

	"github.com/holiman/uint256"
)

// HandlerOptions selects the output of NewHandler.
type HandlerOptions struct {
	// Level is the minimum level emitted. A nil Level emits everything.
	Level *slog.LevelVar
	// JSON selects one JSON object per record instead of terminal lines.
	JSON bool
	// Color enables ANSI colored levels, ignored for JSON.
	Color bool
}

// NewHandler returns the handler described by opts.
func NewHandler(wr io.Writer, opts HandlerOptions) slog.Handler {
	lvl := opts.Level
	if lvl == nil {
		lvl = new(slog.LevelVar)
		lvl.Set(levelMaxVerbosity)
	}
	if opts.JSON {
		return slog.NewJSONHandler(wr, &slog.HandlerOptions{
			ReplaceAttr: replaceJSON,
			Level:       lvl,
		})
	}
	return &TerminalHandler{
		wr:           wr,
		lvl:          lvl,
		useColor:     opts.Color,
		fieldPadding: make(map[string]int),
	}
}

// DiscardHandler returns a handler that drops every record.
func DiscardHandler() slog.Handler {
	return slog.DiscardHandler
}

// TerminalHandler writes one human readable line per record:
//
//	LEVEL[01-02|15:04:05.000] message                                  key=value key=value
type TerminalHandler struct {
	mu       sync.Mutex
	wr       io.Writer
	lvl      *slog.LevelVar
	useColor bool
	attrs    []slog.Attr
	// fieldPadding holds the widest value seen per key, so columns line up.
	fieldPadding map[string]int

	buf []byte
}

// NewTerminalHandler returns a terminal handler emitting every level.
func NewTerminalHandler(wr io.Writer, useColor bool) *TerminalHandler {
	return NewHandler(wr, HandlerOptions{Color: useColor}).(*TerminalHandler)
}

func (h *TerminalHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	buf := h.format(h.buf, r, h.useColor)
	_, err := h.wr.Write(buf)
	h.buf = buf[:0]
	return err
}

func (h *TerminalHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.lvl.Level()
}

// WithGroup is unsupported, attributes stay flat.
func (h *TerminalHandler) WithGroup(_ string) slog.Handler {
	return h
}

func (h *TerminalHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &TerminalHandler{
		wr:           h.wr,
		lvl:          h.lvl,
		useColor:     h.useColor,
		attrs:        append(append([]slog.Attr(nil), h.attrs...), attrs...),
		fieldPadding: make(map[string]int),
	}
}

// replaceJSON shortens the builtin keys and renders numbers and ids as text.
func replaceJSON(_ []string, attr slog.Attr) slog.Attr {
	switch attr.Key {
	case slog.TimeKey:
		return slog.Attr{Key: "t", Value: attr.Value}
	case slog.LevelKey:
		if l, ok := attr.Value.Any().(slog.Level); ok {
			return slog.String("lvl", LevelString(l))
		}
	}

	switch v := attr.Value.Any().(type) {
	case *big.Int:
		attr.Value = slog.StringValue(nilOr(v == nil, v))
	case *uint256.Int:
		if v == nil {
			attr.Value = slog.StringValue("<nil>")
		} else {
			attr.Value = slog.StringValue(v.Dec())
		}
	case fmt.Stringer:
		attr.Value = slog.StringValue(nilOr(v == nil || isNilPointer(v), v))
	}
	return attr
}

func nilOr(isNil bool, v fmt.Stringer) string {
	if isNil {
		return "<nil>"
	}
	return v.String()
}

func isNilPointer(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}
