package zerrors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"

	"golang.org/x/text/width"

	"github.com/zenlang/zen/internal/zast"
)

// Report is the canonical structured error every pass returns on its
// first failure (§7: errors propagate eagerly). It survives
// errors.As() unwrapping so the driver can recover the structured form
// even after it's been wrapped by a Go `%w`.
type Report struct {
	Schema  string         `json:"schema"`
	Code    string         `json:"code"`
	Phase   string         `json:"phase"`
	Message string         `json:"message"`
	Span    *zast.Span     `json:"span,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
}

type wrappedReport struct{ rep *Report }

func (e *wrappedReport) Error() string {
	if e.rep == nil {
		return "unknown error"
	}
	return e.rep.Code + ": " + e.rep.Message
}

// Wrap turns a Report into an `error`.
func Wrap(r *Report) error {
	if r == nil {
		return nil
	}
	return &wrappedReport{rep: r}
}

// As extracts a Report from an error chain, if present.
func As(err error) (*Report, bool) {
	var w *wrappedReport
	if stderrors.As(err, &w) {
		return w.rep, true
	}
	return nil, false
}

// New builds a Report, looking up Phase from the code registry.
func New(code, message string, span *zast.Span) *Report {
	phase := "unknown"
	if info, ok := Lookup(code); ok {
		phase = info.Phase
	}
	return &Report{
		Schema:  "zen.error/v1",
		Code:    code,
		Phase:   phase,
		Message: message,
		Span:    span,
	}
}

// WithData attaches structured data fields (e.g. search paths tried)
// and returns the same Report for chaining.
func (r *Report) WithData(key string, value any) *Report {
	if r.Data == nil {
		r.Data = map[string]any{}
	}
	r.Data[key] = value
	return r
}

// ToJSON renders the report as deterministic JSON, for IDE tooling.
func (r *Report) ToJSON(pretty bool) (string, error) {
	if pretty {
		b, err := json.MarshalIndent(r, "", "  ")
		return string(b), err
	}
	b, err := json.Marshal(r)
	return string(b), err
}

// Render produces the driver's stderr form: `file:line:col: CODE: message`
// followed by a width-aware caret line under the offending span when one
// is attached. Width-awareness matters because Zen source may contain
// full-width identifiers in string literals; a byte-column caret would
// drift under such text, so each source rune's display width (via
// golang.org/x/text/width) advances the caret the same way a terminal
// would.
func (r *Report) Render(sourceLine string) string {
	var b strings.Builder
	if r.Span != nil {
		fmt.Fprintf(&b, "%s: %s: %s\n", r.Span.Start, r.Code, r.Message)
		if sourceLine != "" {
			b.WriteString("  " + sourceLine + "\n")
			b.WriteString("  " + caretUnder(sourceLine, r.Span.Start.Column) + "\n")
		}
	} else {
		fmt.Fprintf(&b, "%s: %s\n", r.Code, r.Message)
	}
	return b.String()
}

// caretUnder builds a "^" underline that lands beneath display column
// `col` (1-based), accounting for wide runes preceding it.
func caretUnder(line string, col int) string {
	var b strings.Builder
	displayCol := 0
	for i, r := range line {
		if i >= col-1 {
			break
		}
		if width.LookupRune(r).Kind() == width.EastAsianWide || width.LookupRune(r).Kind() == width.EastAsianFullwidth {
			b.WriteString("  ")
			displayCol += 2
		} else {
			b.WriteString(" ")
			displayCol++
		}
	}
	b.WriteString("^")
	return b.String()
}
