package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRecord struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (r testRecord) TableHeaders() []string { return []string{"ID", "NAME"} }
func (r testRecord) TableRow() []string     { return []string{r.ID, r.Name} }

func TestRecordWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	w := NewRecordWriter(&buf, FormatJSON)

	require.NoError(t, w.Send(testRecord{ID: "p1:r1", Name: "Billing - Viewer"}))
	require.NoError(t, w.Send(testRecord{ID: "p1:r2", Name: "Billing - Editor"}))
	require.NoError(t, w.Flush())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.JSONEq(t, `{"id":"p1:r1","name":"Billing - Viewer"}`, lines[0])
	assert.Equal(t, 2, w.Count())
}

func TestRecordWriter_YAMLSeparatesDocuments(t *testing.T) {
	var buf bytes.Buffer
	w := NewRecordWriter(&buf, FormatYAML)

	require.NoError(t, w.Send(testRecord{ID: "a", Name: "first"}))
	require.NoError(t, w.Send(testRecord{ID: "b", Name: "second"}))

	out := buf.String()
	assert.Equal(t, 1, strings.Count(out, "---\n"))
	assert.Contains(t, out, "id: a")
	assert.Contains(t, out, "name: second")
}

func TestRecordWriter_TableBuffersUntilFlush(t *testing.T) {
	var buf bytes.Buffer
	w := NewRecordWriter(&buf, FormatTable)

	require.NoError(t, w.Send(testRecord{ID: "p1:g1", Name: "Billing - Admins"}))
	assert.Empty(t, buf.String())

	require.NoError(t, w.Flush())
	out := buf.String()
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "p1:g1")
	assert.Contains(t, out, "Billing - Admins")
}

func TestRecordWriter_TableFallsBackToYAML(t *testing.T) {
	var buf bytes.Buffer
	w := NewRecordWriter(&buf, FormatTable)

	require.NoError(t, w.Send(map[string]string{"status": "ok"}))
	assert.Contains(t, buf.String(), "status: ok")
}
