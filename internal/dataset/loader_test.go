package dataset

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jgoulah/powercurve/pkg/models"
)

// writeYearFile writes a small load curve file for year and returns its records
func writeYearFile(t *testing.T, dir string, year int, values ...float64) []models.Record {
	t.Helper()

	records := make([]models.Record, len(values))
	for i, v := range values {
		records[i] = models.Record{
			Timestamp: time.Date(year, 1, 1, 0, 15*(i+1), 0, 0, cet),
			Value:     v,
			Status:    models.StatusFinal,
		}
	}

	f, err := os.Create(yearPath(dir, year))
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, WriteCSV(f, records))
	return records
}

func yearPath(dir string, year int) string {
	return filepath.Join(dir, fmt.Sprintf("%d_ewz_bruttolastgang.csv", year))
}

func TestLoaderConcatenatesInYearOrder(t *testing.T) {
	dir := t.TempDir()
	writeYearFile(t, dir, 2019, 1, 2)
	writeYearFile(t, dir, 2020, 3)
	writeYearFile(t, dir, 2021, 4, 5, 6)

	loader := NewLoader(func(year int) string { return yearPath(dir, year) }, cet)

	records, err := loader.Load(context.Background(), []int{2021, 2019, 2020})
	require.NoError(t, err)

	values := make([]float64, len(records))
	for i, r := range records {
		values[i] = r.Value
	}
	assert.Equal(t, []float64{4, 5, 6, 1, 2, 3}, values)
}

func TestLoaderMissingFile(t *testing.T) {
	dir := t.TempDir()
	writeYearFile(t, dir, 2019, 1)

	loader := NewLoader(func(year int) string { return yearPath(dir, year) }, cet)
	_, err := loader.Load(context.Background(), []int{2019, 2020})
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), "2020")
}

func TestLoaderMalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(yearPath(dir, 2019), []byte("zeitpunkt,bruttolastgang,status\nnot-a-date,1,E\n"), 0644))

	loader := NewLoader(func(year int) string { return yearPath(dir, year) }, cet)
	_, err := loader.Load(context.Background(), []int{2019})
	assert.Error(t, err)
}

func TestBuildStore(t *testing.T) {
	dir := t.TempDir()
	writeYearFile(t, dir, 2020, 1e6, 2e6)
	writeYearFile(t, dir, 2019, 3e6)

	loader := NewLoader(func(year int) string { return yearPath(dir, year) }, cet)
	store, err := Build(context.Background(), loader, DefaultCleaner(), []int{2020, 2019})
	require.NoError(t, err)

	assert.Equal(t, 3, store.Len())
	assert.Equal(t, []int{2019, 2020}, store.Years())
	assert.True(t, store.Latest().Equal(time.Date(2020, 1, 1, 0, 30, 0, 0, cet)))
	assert.Equal(t, 1.0, store.Records()[0].Value)
	assert.Equal(t, 2020, store.Records()[0].Year)
}

func TestBuildStoreEmpty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(yearPath(dir, 2019), []byte("zeitpunkt,bruttolastgang,status\n"), 0644))

	loader := NewLoader(func(year int) string { return yearPath(dir, year) }, cet)
	_, err := Build(context.Background(), loader, DefaultCleaner(), []int{2019})
	assert.ErrorIs(t, err, ErrNoRecords)
}
