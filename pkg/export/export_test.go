package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sample() Dataset {
	return Dataset{
		Headers: []string{"student_id", "name", "major"},
		Rows: []map[string]string{
			{"student_id": "ZS001", "name": "张三", "major": "CS"},
			{"student_id": "LS002", "name": "Li, Si", "major": "Math"},
		},
	}
}

func TestCSVRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sample())
	require.NoError(t, err)

	text := strings.TrimPrefix(string(out), "\ufeff")
	lines := strings.Split(strings.TrimSpace(text), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "student_id,name,major", lines[0])
	assert.Equal(t, "ZS001,张三,CS", lines[1])
	assert.Equal(t, `LS002,"Li, Si",Math`, lines[2])
}

func TestRenderersRequireHeaders(t *testing.T) {
	r := NewRenderer()
	for _, f := range []Format{FormatCSV, FormatPDF, FormatXLSX} {
		_, err := r.Render(f, Dataset{}, "empty")
		assert.Error(t, err, string(f))
	}
}

func TestPDFRender(t *testing.T) {
	out, err := NewPDFExporter().Render(sample(), "students")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestXLSXRender(t *testing.T) {
	out, err := NewXLSXExporter().Render(sample(), "students")
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("students")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"student_id", "name", "major"}, rows[0])
	assert.Equal(t, "张三", rows[1][1])
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	f, err = ParseFormat("XLSX")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)
	assert.Contains(t, f.ContentType(), "spreadsheetml")

	_, err = ParseFormat("docx")
	assert.Error(t, err)
}
