package web

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplatesParse(t *testing.T) {
	tmpl, err := Templates()
	require.NoError(t, err)
	for _, name := range []string{"index.html", "dashboard.html", "table.html", "error.html"} {
		assert.NotNil(t, tmpl.Lookup(name), name)
	}
}

func TestErrorTemplateEscapes(t *testing.T) {
	tmpl, err := Templates()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, tmpl.ExecuteTemplate(&buf, "error.html", map[string]interface{}{
		"Title":   "Not found",
		"Message": "<script>alert(1)</script>",
	}))
	assert.Contains(t, buf.String(), "&lt;script&gt;")
	assert.NotContains(t, buf.String(), "<script>")
}

func TestTemplateFuncs(t *testing.T) {
	tmpl, err := Templates()
	require.NoError(t, err)

	check := func(src string, data interface{}, want string) {
		t.Helper()
		clone, err := tmpl.Clone()
		require.NoError(t, err)
		_, err = clone.New("page-check").Parse(src)
		require.NoError(t, err)
		var buf bytes.Buffer
		require.NoError(t, clone.ExecuteTemplate(&buf, "page-check", data))
		assert.Equal(t, want, buf.String())
	}
	check(`{{pct 1 4}}`, nil, "25%")
	check(`{{pct 1 0}}`, nil, "0%")
	check(`{{add 2 -1}}`, nil, "1")
	check(`{{date .}}`, time.Date(2024, 3, 1, 9, 5, 0, 0, time.UTC), "2024-03-01 09:05")
	check(`{{date .}}`, time.Time{}, "")
}
