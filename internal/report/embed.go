package report

import (
	"embed"
	"io/fs"
	"sort"
)

const (
	FinancialReportTemplate = "financial_report.md"
	PresentationTemplate    = "presentation.md"
)

//go:embed templates/*.md
var embedded embed.FS

func templatesFS() fs.FS {
	sub, err := fs.Sub(embedded, "templates")
	if err != nil {
		panic(err)
	}
	return sub
}

// Template returns the text of an embedded template.
func Template(name string) (string, error) {
	raw, err := fs.ReadFile(templatesFS(), name)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func TemplateNames() []string {
	entries, _ := fs.ReadDir(templatesFS(), ".")
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Name())
	}
	sort.Strings(out)
	return out
}
