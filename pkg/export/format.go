package export

import (
	"fmt"
	"strings"
)

// Format identifies an export encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatPDF  Format = "pdf"
	FormatXLSX Format = "xlsx"
)

// ParseFormat normalises a query value, defaulting to CSV.
func ParseFormat(raw string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(raw))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatPDF:
		return FormatPDF, nil
	case FormatXLSX:
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", raw)
	}
}

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatPDF:
		return "application/pdf"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "text/csv; charset=utf-8"
	}
}

// Renderer dispatches a dataset to the exporter for a format.
type Renderer struct {
	csv  *CSVExporter
	pdf  *PDFExporter
	xlsx *XLSXExporter
}

// NewRenderer wires all exporters.
func NewRenderer() *Renderer {
	return &Renderer{csv: NewCSVExporter(), pdf: NewPDFExporter(), xlsx: NewXLSXExporter()}
}

// Render encodes data in the requested format. title labels the PDF heading and XLSX sheet.
func (r *Renderer) Render(format Format, data Dataset, title string) ([]byte, error) {
	switch format {
	case FormatPDF:
		return r.pdf.Render(data, title)
	case FormatXLSX:
		return r.xlsx.Render(data, title)
	case FormatCSV:
		return r.csv.Render(data)
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}
