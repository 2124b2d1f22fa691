package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToHTML(t *testing.T) {
	md := "# Report\n\n| Month | Revenue |\n|-------|--------:|\n| Month 1 | €750 |\n"
	page, err := ToHTML(md, "Report <Niort>")
	require.NoError(t, err)

	assert.Contains(t, page, "<title>Report &lt;Niort&gt;</title>")
	assert.Contains(t, page, "<h1>Report</h1>")
	assert.Contains(t, page, "<table>")
	assert.Contains(t, page, "<td>Month 1</td>")
}

func TestPreview(t *testing.T) {
	out, err := Preview("# Title\n\nSome **bold** text.", 80, "notty")
	require.NoError(t, err)
	assert.Contains(t, out, "Title")
	assert.Contains(t, out, "bold")
}
