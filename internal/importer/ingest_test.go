package importer

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `name,description,status,category
Hammer,Steel claw hammer,1,tools
,missing a name,1,tools
Screwdriver,,1,tools
`

func TestReadPartitionsEveryRow(t *testing.T) {
	res, err := Read(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	assert.Len(t, res.Valid, 2)
	assert.Len(t, res.Errors, 1)
	// Every data row lands in exactly one partition.
	assert.Equal(t, 3, len(res.Valid)+len(res.Errors))
}

func TestReadLineNumbersCountHeader(t *testing.T) {
	res, err := Read(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, res.Errors, 1)
	// Header is line 1, so the bad second data row reports as line 3.
	assert.Equal(t, 3, res.Errors[0].Line)
	assert.Contains(t, res.Errors[0].Messages, "name is required")
	assert.Equal(t, "missing a name", res.Errors[0].Raw["description"])
}

func TestReadIgnoresUnrecognizedColumns(t *testing.T) {
	csv := "sku,name,status,category,color\nX-1,Hammer,1,tools,red\n"
	res, err := Read(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, res.Valid, 1)
	assert.Equal(t, "Hammer", res.Valid[0].Name)
	assert.Empty(t, res.Errors)
}

func TestReadMissingRequiredColumnIsPerRowError(t *testing.T) {
	csv := "name,status\nHammer,1\nWrench,1\n"
	res, err := Read(strings.NewReader(csv))
	require.NoError(t, err)
	assert.Empty(t, res.Valid)
	require.Len(t, res.Errors, 2)
	for _, rowErr := range res.Errors {
		assert.Contains(t, rowErr.Messages, "category is required")
	}
}

func TestReadMalformedRowIsNotFatal(t *testing.T) {
	csv := "name,description,status,category\nHammer,ok,1,tools\n\"Wrench\" oops,bad,1,tools\n"
	res, err := Read(strings.NewReader(csv))
	require.NoError(t, err)
	assert.Len(t, res.Valid, 1)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, 3, res.Errors[0].Line)
	assert.Contains(t, res.Errors[0].Messages[0], "malformed row")
}

func TestReadEmptyStream(t *testing.T) {
	res, err := Read(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, res.Valid)
	assert.Empty(t, res.Errors)
}

func TestReadIsIdempotent(t *testing.T) {
	first, err := Read(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	second, err := Read(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestReadStreamFailureAborts(t *testing.T) {
	_, err := Read(&faultyReader{data: "name,status,category\n"})
	require.Error(t, err)
	assert.ErrorIs(t, err, errDisk)
}

func TestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))

	res, err := File(path)
	require.NoError(t, err)
	assert.Len(t, res.Valid, 2)
	assert.Len(t, res.Errors, 1)
}

func TestFileMissingPath(t *testing.T) {
	_, err := File(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
}

var errDisk = errors.New("simulated disk fault")

// faultyReader serves its payload then fails, simulating an I/O fault after
// the header was read.
type faultyReader struct {
	data string
	done bool
}

func (r *faultyReader) Read(p []byte) (int, error) {
	if r.done {
		return 0, errDisk
	}
	r.done = true
	return copy(p, r.data), nil
}
