package report

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
	"go.uber.org/zap"
)

var ErrTemplate = errors.New("template error")

// TemplateError carries the issues that stopped a render. Stage is one of
// lint, resolve, execute or output.
type TemplateError struct {
	Name   string
	Stage  string
	Issues []Issue
	Err    error
}

func (e *TemplateError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s failed", e.Name, e.Stage)
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	for i, is := range e.Issues {
		if i == 5 {
			fmt.Fprintf(&b, "; and %d more", len(e.Issues)-i)
			break
		}
		b.WriteString("; ")
		b.WriteString(is.String())
	}
	return b.String()
}

func (e *TemplateError) Is(target error) bool { return target == ErrTemplate }
func (e *TemplateError) Unwrap() error        { return e.Err }

// Engine renders Markdown templates with pongo2. Placeholders are linted and
// rewritten to pongo2 syntax before execution, and the output's tables are
// checked afterwards.
type Engine struct {
	mu     sync.Mutex // guards set
	set    *pongo2.TemplateSet
	strict bool
	logger *zap.Logger
}

type Option func(*Engine)

// WithStrict controls whether unresolved paths fail the render. Default true.
func WithStrict(strict bool) Option {
	return func(e *Engine) { e.strict = strict }
}

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

func NewEngine(opts ...Option) *Engine {
	registerFilters()
	e := &Engine{
		set:    pongo2.NewSet("festive-study", pongo2.NewFSLoader(templatesFS())),
		strict: true,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Render renders an embedded template by name.
func (e *Engine) Render(name string, ctx map[string]any) (string, error) {
	tmpl, err := Template(name)
	if err != nil {
		return "", fmt.Errorf("report: load template %q: %w", name, err)
	}
	return e.RenderString(name, tmpl, ctx)
}

// RenderFile renders a template read from disk.
func (e *Engine) RenderFile(path string, ctx map[string]any) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("report: load template %q: %w", path, err)
	}
	return e.RenderString(filepath.Base(path), string(raw), ctx)
}

func (e *Engine) RenderString(name, tmpl string, ctx map[string]any) (string, error) {
	if issues := Lint(tmpl); len(issues) > 0 {
		return "", &TemplateError{Name: name, Stage: "lint", Issues: issues}
	}
	if e.strict {
		if issues := Resolve(tmpl, ctx); len(issues) > 0 {
			return "", &TemplateError{Name: name, Stage: "resolve", Issues: issues}
		}
	}

	e.mu.Lock()
	tpl, err := e.set.FromString(Normalize(tmpl))
	e.mu.Unlock()
	if err != nil {
		return "", &TemplateError{Name: name, Stage: "execute", Err: err}
	}
	var buf bytes.Buffer
	if err := tpl.ExecuteWriter(pongo2.Context(ctx), &buf); err != nil {
		return "", &TemplateError{Name: name, Stage: "execute", Err: err}
	}

	out := buf.String()
	if issues := CheckTables(out); len(issues) > 0 {
		return "", &TemplateError{Name: name, Stage: "output", Issues: issues}
	}
	e.logger.Debug("template rendered", zap.String("template", name), zap.Int("bytes", len(out)))
	return out, nil
}

// Normalize rewrites every placeholder to pongo2 syntax. A placeholder
// without filters renders nil as NotAvailable. Malformed placeholders are
// left as they are.
func Normalize(tmpl string) string {
	phs := Placeholders(tmpl)
	if len(phs) == 0 {
		return tmpl
	}
	var b strings.Builder
	last := 0
	for _, ph := range phs {
		if ph.Err != nil {
			continue
		}
		b.WriteString(tmpl[last:ph.Start])
		b.WriteString("{{ ")
		b.WriteString(ph.Expr.Pongo())
		if len(ph.Expr.Filters) == 0 {
			b.WriteString(`|default_if_none:"` + NotAvailable + `"`)
		}
		b.WriteString(" }}")
		last = ph.End
	}
	b.WriteString(tmpl[last:])
	return b.String()
}
