package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Headers: []string{"Day", "Period 1", "Period 2", "LUNCH"},
		Rows: []map[string]string{
			{"Day": "Monday", "Period 1": "Physics Lab (Carol)", "Period 2": "Physics Lab (Carol)", "LUNCH": "LUNCH"},
			{"Day": "Tuesday", "Period 1": "Math (Alice)", "LUNCH": "LUNCH"},
		},
		Merges: []Merge{{Row: 0, Header: "Period 1", Span: 2}},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)

	assert.Equal(t, "Day,Period 1,Period 2,LUNCH\n"+
		"Monday,Physics Lab (Carol),Physics Lab (Carol),LUNCH\n"+
		"Tuesday,Math (Alice),,LUNCH\n", string(out))
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	out, err := NewPDFExporter().Render(sampleDataset(), Document{Title: "10-A", Subtitle: "1st Year", Landscape: true})
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestMergeAt(t *testing.T) {
	data := sampleDataset()
	assert.Equal(t, 2, data.mergeAt(0, "Period 1"))
	assert.Equal(t, 1, data.mergeAt(1, "Period 1"))
}
