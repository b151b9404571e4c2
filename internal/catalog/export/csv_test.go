package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"testing"

	"github.com/aniskhan146/Cartify-sub000/internal/catalog/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCSV_OneRowPerVariant(t *testing.T) {
	original := 650.0
	products := []domain.Product{
		{
			ID: "p1", Name: `The "Classic" Tee`, Category: "Shirts", Description: "soft, cotton\nline two",
			Variants: []domain.Variant{
				{ID: "v1", Name: "Red / S", Price: 500, OriginalPrice: &original, Stock: 10},
				{ID: "v2", Name: "Red / M", Price: 499.5, Stock: 0},
			},
		},
		{ID: "p2", Name: "Empty", Category: "None"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, products))

	lines := bytes.Split(bytes.TrimSuffix(buf.Bytes(), []byte("\n")), []byte("\n"))
	assert.Equal(t,
		`"ID","Name","Category","Description","Variant SKU","Variant Name","Price","OriginalPrice","Stock"`,
		string(lines[0]))
	assert.Equal(t,
		`"p1","The ""Classic"" Tee","Shirts","soft, cotton`,
		string(lines[1]))

	// a standard reader must parse it back
	records, err := csv.NewReader(bytes.NewReader(buf.Bytes())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"p1", `The "Classic" Tee`, "Shirts", "soft, cotton\nline two", "v1", "Red / S", "500", "650", "10"}, records[1])
	assert.Equal(t, []string{"p1", `The "Classic" Tee`, "Shirts", "soft, cotton\nline two", "v2", "Red / M", "499.5", "", "0"}, records[2])
}

func TestWriteCSV_HeaderOnlyWhenEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("\n")))
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriteCSV_PropagatesWriteError(t *testing.T) {
	err := WriteCSV(failingWriter{}, nil)
	assert.ErrorContains(t, err, "disk full")
}
