package outputfile

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRotator_WritesHeaderOnceAndRows(t *testing.T) {
	dir := t.TempDir()
	r := New(dir, "samples", []string{"time", "tid", "comm"})
	defer r.Close()

	now := time.Date(2026, 7, 31, 14, 5, 0, 0, time.UTC)
	require.NoError(t, r.WriteRow(now, []string{"2026-07-31T14:05:00Z", "42", "bash"}))
	require.NoError(t, r.WriteRow(now.Add(time.Minute), []string{"2026-07-31T14:06:00Z", "43", "sh"}))

	path := filepath.Join(dir, "samples_2026-07-31_14.csv")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "time,tid,comm")
	assert.Contains(t, string(data), "42,bash")
	assert.Contains(t, string(data), "43,sh")
}

func TestRotator_RotatesOnHourBoundary(t *testing.T) {
	dir := t.TempDir()
	r := New(dir, "samples", []string{"time"})
	defer r.Close()

	t1 := time.Date(2026, 7, 31, 14, 59, 0, 0, time.UTC)
	t2 := time.Date(2026, 7, 31, 15, 0, 1, 0, time.UTC)
	require.NoError(t, r.WriteRow(t1, []string{"a"}))
	require.NoError(t, r.WriteRow(t2, []string{"b"}))

	_, err := os.Stat(filepath.Join(dir, "samples_2026-07-31_14.csv"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "samples_2026-07-31_15.csv"))
	assert.NoError(t, err)
}

func TestRotator_AppendsToExistingFileWithoutDuplicatingHeader(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 7, 31, 14, 0, 0, 0, time.UTC)

	r1 := New(dir, "samples", []string{"time"})
	require.NoError(t, r1.WriteRow(now, []string{"a"}))
	require.NoError(t, r1.Close())

	r2 := New(dir, "samples", []string{"time"})
	require.NoError(t, r2.WriteRow(now.Add(time.Minute), []string{"b"}))
	require.NoError(t, r2.Close())

	data, err := os.ReadFile(filepath.Join(dir, "samples_2026-07-31_14.csv"))
	require.NoError(t, err)
	assert.Equal(t, 1, countOccurrences(string(data), "time\n"))
}

func countOccurrences(haystack, needle string) int {
	count := 0
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			count++
		}
	}
	return count
}
