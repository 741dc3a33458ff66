package generator

import (
	"fmt"
	"strings"
)

// Builder accumulates source text with managed indentation. Text passed to
// Line may span several lines; each one is indented.
type Builder struct {
	buf    strings.Builder
	unit   string
	indent int
}

// NewBuilder creates a Builder that indents with unit.
func NewBuilder(unit string) *Builder {
	return &Builder{unit: unit}
}

// Line writes one formatted line at the current indentation.
func (b *Builder) Line(format string, args ...any) *Builder {
	text := format
	if len(args) > 0 {
		text = fmt.Sprintf(format, args...)
	}
	prefix := strings.Repeat(b.unit, b.indent)
	for _, line := range strings.Split(text, "\n") {
		if line != "" {
			b.buf.WriteString(prefix)
			b.buf.WriteString(line)
		}
		b.buf.WriteByte('\n')
	}
	return b
}

// Blank writes an empty line.
func (b *Builder) Blank() *Builder {
	b.buf.WriteByte('\n')
	return b
}

// Block writes open, runs body one level deeper, then writes close.
func (b *Builder) Block(open, close string, body func()) *Builder {
	b.Line(open)
	b.indent++
	body()
	b.indent--
	b.Line(close)
	return b
}

// String returns the text built so far.
func (b *Builder) String() string {
	return b.buf.String()
}
