package formatter

import (
	"bytes"
	"strings"

	"github.com/goccy/go-json"
	"github.com/mcncl/jsonshape/internal/errors"
	"github.com/mcncl/jsonshape/internal/generator"
	"github.com/mcncl/jsonshape/internal/models"
	"github.com/mcncl/jsonshape/internal/validator"
)

// Formatter prepares engine output for printing
type Formatter struct {
	indent string
}

// NewFormatter creates a new Formatter instance
func NewFormatter() *Formatter {
	return &Formatter{indent: "  "}
}

// Format normalises source text: CRLF line endings become LF, trailing
// whitespace is removed from every line and the text ends with exactly one
// newline. Blank input yields "".
func (f *Formatter) Format(code string) string {
	if strings.TrimSpace(code) == "" {
		return ""
	}

	lines := strings.Split(strings.ReplaceAll(code, "\r\n", "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n") + "\n"
}

// FormatJSON indents JSON without reordering keys.
func (f *Formatter) FormatJSON(data []byte) (string, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", f.indent); err != nil {
		return "", errors.NewFormatError("output is not valid JSON", err)
	}
	buf.WriteByte('\n')
	return buf.String(), nil
}

// FormatValue renders a value as indented JSON.
func (f *Formatter) FormatValue(v models.Value) (string, error) {
	data, err := models.MarshalValue(v)
	if err != nil {
		return "", errors.NewFormatError("value cannot be encoded", err)
	}
	return f.FormatJSON(data)
}

// FormatOutput renders an emitter output: documents as indented JSON, source
// formats as normalised text.
func (f *Formatter) FormatOutput(out generator.Output) (string, error) {
	if out.Document != nil {
		return f.FormatValue(out.Document)
	}
	return f.Format(out.Text), nil
}

// FormatResult renders a validation result as indented JSON.
func (f *Formatter) FormatResult(r validator.Result) (string, error) {
	data, err := json.MarshalNoEscape(r)
	if err != nil {
		return "", errors.NewFormatError("result cannot be encoded", err)
	}
	return f.FormatJSON(data)
}
