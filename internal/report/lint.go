package report

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

type IssueKind string

const (
	IssueSyntax     IssueKind = "syntax"
	IssueFilter     IssueKind = "filter"
	IssueUnresolved IssueKind = "unresolved"
	IssueTable      IssueKind = "table"
)

// Issue is a problem found in a template or rendered document. Line and
// Column are 1-based; Column counts runes.
type Issue struct {
	Line    int       `json:"line"`
	Column  int       `json:"column"`
	Kind    IssueKind `json:"kind"`
	Expr    string    `json:"expr,omitempty"`
	Message string    `json:"message"`
}

func (i Issue) String() string {
	return fmt.Sprintf("%d:%d: %s: %s", i.Line, i.Column, i.Kind, i.Message)
}

// Placeholder is one `{{ ... }}` occurrence. Start and End are byte offsets
// of the delimiters; Expr is valid only when Err is nil.
type Placeholder struct {
	Start, End   int
	Line, Column int
	Body         string
	Expr         Expression
	Err          error
}

// Placeholders scans text for placeholders. An unclosed `{{` is returned
// with a non-nil Err and End set to len(text).
func Placeholders(text string) []Placeholder {
	var out []Placeholder
	pos := 0
	for {
		i := strings.Index(text[pos:], "{{")
		if i < 0 {
			return out
		}
		start := pos + i
		line, col := position(text, start)
		j := strings.Index(text[start+2:], "}}")
		if j < 0 {
			out = append(out, Placeholder{
				Start: start, End: len(text), Line: line, Column: col,
				Body: text[start+2:],
				Err:  &SyntaxError{Expr: text[start+2:], Msg: "unclosed placeholder"},
			})
			return out
		}
		end := start + 2 + j + 2
		body := text[start+2 : end-2]
		ph := Placeholder{Start: start, End: end, Line: line, Column: col, Body: body}
		if strings.Contains(body, "\n") {
			ph.Err = &SyntaxError{Expr: body, Msg: "placeholder spans lines"}
		} else {
			ph.Expr, ph.Err = ParseExpression(body)
		}
		out = append(out, ph)
		pos = end
	}
}

func position(text string, offset int) (line, col int) {
	prefix := text[:offset]
	line = strings.Count(prefix, "\n") + 1
	lineStart := strings.LastIndexByte(prefix, '\n') + 1
	col = utf8.RuneCountInString(prefix[lineStart:]) + 1
	return line, col
}

// Lint checks placeholder syntax, filter names and table shapes of a template.
func Lint(tmpl string) []Issue {
	var issues []Issue
	for _, ph := range Placeholders(tmpl) {
		if ph.Err != nil {
			issues = append(issues, Issue{
				Line: ph.Line, Column: ph.Column, Kind: IssueSyntax,
				Expr: strings.TrimSpace(ph.Body), Message: ph.Err.Error(),
			})
			continue
		}
		for _, f := range ph.Expr.Filters {
			if !KnownFilter(f.Name) {
				issues = append(issues, Issue{
					Line: ph.Line, Column: ph.Column, Kind: IssueFilter,
					Expr: ph.Expr.String(), Message: fmt.Sprintf("unknown filter %q", f.Name),
				})
			} else if err := CheckFilterArg(f); err != nil {
				issues = append(issues, Issue{
					Line: ph.Line, Column: ph.Column, Kind: IssueFilter,
					Expr: ph.Expr.String(), Message: err.Error(),
				})
			}
		}
	}
	for _, tag := range []string{"{%", "{#"} {
		pos := 0
		for {
			i := strings.Index(tmpl[pos:], tag)
			if i < 0 {
				break
			}
			line, col := position(tmpl, pos+i)
			issues = append(issues, Issue{
				Line: line, Column: col, Kind: IssueSyntax,
				Message: fmt.Sprintf("%q tags are not supported", tag),
			})
			pos += i + len(tag)
		}
	}
	issues = append(issues, CheckTables(tmpl)...)
	sortIssues(issues)
	return issues
}

// Resolve reports every well-formed placeholder whose path is missing from ctx.
func Resolve(tmpl string, ctx map[string]any) []Issue {
	var issues []Issue
	for _, ph := range Placeholders(tmpl) {
		if ph.Err != nil {
			continue
		}
		if _, err := Lookup(ctx, ph.Expr.Path); err != nil {
			issues = append(issues, Issue{
				Line: ph.Line, Column: ph.Column, Kind: IssueUnresolved,
				Expr: ph.Expr.PathString(), Message: err.Error(),
			})
		}
	}
	return issues
}

var separatorCell = regexp.MustCompile(`^:?-+:?$`)

// CheckTables verifies every Markdown table: the second row must be a
// separator and every row must match the header's cell count. Fenced code
// blocks are skipped.
func CheckTables(md string) []Issue {
	var issues []Issue
	lines := strings.Split(md, "\n")
	inFence := false
	fence := ""

	for i := 0; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])
		if inFence {
			if strings.HasPrefix(trimmed, fence) {
				inFence = false
			}
			continue
		}
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inFence, fence = true, trimmed[:3]
			continue
		}
		if !strings.HasPrefix(trimmed, "|") {
			continue
		}

		start := i
		for i < len(lines) && strings.HasPrefix(strings.TrimSpace(lines[i]), "|") {
			i++
		}
		issues = append(issues, checkTable(lines[start:i], start+1)...)
		i-- // the loop increment moves past the table
	}
	return issues
}

func checkTable(rows []string, firstLine int) []Issue {
	header := SplitRow(rows[0])
	if len(rows) < 2 || !isSeparator(SplitRow(rows[1])) {
		return []Issue{{
			Line: firstLine, Column: 1, Kind: IssueTable,
			Message: "table header is not followed by a separator row",
		}}
	}
	var issues []Issue
	for k, row := range rows[1:] {
		if n := len(SplitRow(row)); n != len(header) {
			issues = append(issues, Issue{
				Line: firstLine + 1 + k, Column: 1, Kind: IssueTable,
				Message: fmt.Sprintf("row has %d cells, header has %d", n, len(header)),
			})
		}
	}
	return issues
}

func isSeparator(cells []string) bool {
	if len(cells) == 0 {
		return false
	}
	for _, c := range cells {
		if !separatorCell.MatchString(c) {
			return false
		}
	}
	return true
}

// SplitRow splits a table row into trimmed cells. Escaped pipes and pipes
// inside placeholders do not split.
func SplitRow(row string) []string {
	masked := []byte(row)
	for _, ph := range Placeholders(row) {
		for k := ph.Start; k < ph.End; k++ {
			if masked[k] == '|' {
				masked[k] = ' '
			}
		}
	}

	var cells []string
	var cur strings.Builder
	s := strings.TrimSpace(string(masked))
	orig := strings.TrimSpace(row)
	for k := 0; k < len(s); k++ {
		switch {
		case s[k] == '\\' && k+1 < len(s) && s[k+1] == '|':
			cur.WriteString(orig[k : k+2])
			k++
		case s[k] == '|':
			cells = append(cells, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteByte(orig[k])
		}
	}
	cells = append(cells, strings.TrimSpace(cur.String()))

	// Leading and trailing pipes delimit, they do not open empty cells.
	if strings.HasPrefix(s, "|") {
		cells = cells[1:]
	}
	if len(s) > 1 && strings.HasSuffix(s, "|") && !strings.HasSuffix(s, `\|`) {
		cells = cells[:len(cells)-1]
	}
	return cells
}

func sortIssues(issues []Issue) {
	sort.SliceStable(issues, func(a, b int) bool {
		if issues[a].Line != issues[b].Line {
			return issues[a].Line < issues[b].Line
		}
		return issues[a].Column < issues[b].Column
	})
}
