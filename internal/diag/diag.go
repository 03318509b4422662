// Package diag collects the diagnostics reported against one source file.
//
// Positions are rune offsets into the file; they are converted into
// line/column pairs only when an error is rendered.
package diag

import (
	"fmt"
	"sort"

	"martianoff/kitten/kiterr"
)

// NoPos marks a diagnostic without a source location.
const NoPos = -1

// Diagnostics accumulates errors for a single file.
type Diagnostics struct {
	file       string
	lineStarts []int
	errs       []error
}

// New creates the diagnostics sink for file, whose content is src.
func New(file, src string) *Diagnostics {
	d := &Diagnostics{file: file, lineStarts: []int{0}}
	offset := 0
	for _, r := range src {
		offset++
		if r == '\n' {
			d.lineStarts = append(d.lineStarts, offset)
		}
	}
	return d
}

// File returns the name of the file the diagnostics belong to.
func (d *Diagnostics) File() string {
	return d.file
}

// Position converts a rune offset into a file position.
func (d *Diagnostics) Position(pos int) kiterr.Position {
	if pos < 0 {
		return kiterr.Position{FilePath: d.file}
	}
	line := sort.Search(len(d.lineStarts), func(i int) bool {
		return d.lineStarts[i] > pos
	})
	return kiterr.Position{
		FilePath: d.file,
		Line:     line,
		Column:   pos - d.lineStarts[line-1] + 1,
	}
}

// LineColumn renders pos as "line.column".
func (d *Diagnostics) LineColumn(pos int) string {
	p := d.Position(pos)
	return fmt.Sprintf("%d.%d", p.Line, p.Column)
}

// Error records a semantic error at pos.
func (d *Diagnostics) Error(pos int, msg string) {
	d.errs = append(d.errs, kiterr.NewSemanticErrorAt(d.Position(pos), msg))
}

// Errorf records a formatted semantic error at pos.
func (d *Diagnostics) Errorf(pos int, format string, args ...any) {
	d.Error(pos, fmt.Sprintf(format, args...))
}

// SyntaxError records a syntax error at pos.
func (d *Diagnostics) SyntaxError(pos int, msg string) {
	d.errs = append(d.errs, kiterr.NewSyntaxError(d.Position(pos), msg))
}

// Report records an already constructed error, such as a load failure.
func (d *Diagnostics) Report(err error) {
	if err != nil {
		d.errs = append(d.errs, err)
	}
}

// AnyErrors reports whether at least one error was recorded.
func (d *Diagnostics) AnyErrors() bool {
	return len(d.errs) > 0
}

// Errors returns the recorded errors in reporting order.
func (d *Diagnostics) Errors() []error {
	return d.errs
}

// Err returns nil when nothing was reported, otherwise a *kiterr.MultiError.
func (d *Diagnostics) Err() error {
	if len(d.errs) == 0 {
		return nil
	}
	return &kiterr.MultiError{Errors: append([]error(nil), d.errs...)}
}
