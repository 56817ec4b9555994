// Package markup is a small HTML writer used by the templ components.
package markup

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// Writer writes HTML fragments, keeping the first error
type Writer struct {
	w   io.Writer
	err error
}

// New wraps w
func New(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Raw writes s unescaped
func (m *Writer) Raw(s string) {
	if m.err != nil {
		return
	}
	_, m.err = io.WriteString(m.w, s)
}

// Text writes s as escaped text
func (m *Writer) Text(s string) {
	m.Raw(templ.EscapeString(s))
}

// Attr writes ` name="value"` with value escaped
func (m *Writer) Attr(name, value string) {
	m.Raw(" " + name + `="` + templ.EscapeString(value) + `"`)
}

// BoolAttr writes ` name` when set is true
func (m *Writer) BoolAttr(name string, set bool) {
	if set {
		m.Raw(" " + name)
	}
}

// Component renders c into the same output
func (m *Writer) Component(ctx context.Context, c templ.Component) {
	if m.err != nil || c == nil {
		return
	}
	m.err = c.Render(ctx, m.w)
}

// Err returns the first write or render error
func (m *Writer) Err() error {
	return m.err
}

// Func builds a templ component from a function writing through a Writer
func Func(fn func(ctx context.Context, m *Writer)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		m := New(w)
		fn(ctx, m)
		return m.Err()
	})
}
