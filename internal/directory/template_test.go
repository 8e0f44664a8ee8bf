package directory

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fmuoria/interview-invite-agent/internal/logging"
)

// TestWriteTemplate_RoundTrip tests that a written template loads back as the same roster
func TestWriteTemplate_RoundTrip(t *testing.T) {
	records := SampleRecords()
	path, err := WriteTemplate(filepath.Join(t.TempDir(), "roster.xlsx"), records)
	require.NoError(t, err)

	d, err := Load(path, logging.Discard())
	require.NoError(t, err)
	assert.Equal(t, records, d.Records())
}

// TestWriteTemplate_EnsuresXlsxExtension tests that .xlsx extension is added if missing
func TestWriteTemplate_EnsuresXlsxExtension(t *testing.T) {
	base := filepath.Join(t.TempDir(), "roster")

	path, err := WriteTemplate(base, nil)
	require.NoError(t, err)
	assert.Equal(t, base+".xlsx", path)

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

// TestWriteTemplate_EmptyRoster tests that a header-only template loads as an empty directory
func TestWriteTemplate_EmptyRoster(t *testing.T) {
	path, err := WriteTemplate(filepath.Join(t.TempDir(), "empty.xlsx"), nil)
	require.NoError(t, err)

	d, err := Load(path, logging.Discard())
	require.NoError(t, err)
	assert.True(t, d.Empty())
}
