package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Title:   "Salsa Basics roster",
		Headers: []string{"Dancer", "Status"},
		Rows:    [][]string{{"Ana Ruiz", "ACTIVE"}, {"Ben, Jr.", "DROPPED"}},
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	f, err = ParseFormat(" PDF ")
	require.NoError(t, err)
	assert.Equal(t, FormatPDF, f)
	assert.Equal(t, "application/pdf", f.ContentType())
	assert.Equal(t, "pdf", f.Extension())

	_, err = ParseFormat("xlsx")
	assert.Error(t, err)
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)
	assert.Equal(t, "Dancer,Status\nAna Ruiz,ACTIVE\n\"Ben, Jr.\",DROPPED\n", string(out))
}

func TestExportersRejectMalformedDatasets(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)

	ragged := sampleDataset()
	ragged.Rows = append(ragged.Rows, []string{"only one"})
	_, err = NewPDFExporter().Render(ragged)
	assert.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	data := sampleDataset()
	for i := 0; i < 60; i++ {
		data.Rows = append(data.Rows, []string{"Dancer", "PRESENT"})
	}
	out, err := NewPDFExporter().Render(data)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}
