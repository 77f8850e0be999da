package system

import (
	"image"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImagePoolReusesBySize(t *testing.T) {
	p := NewImagePool()
	r := image.Rect(0, 0, 4, 2)

	a := p.Get(r)
	require.Equal(t, r, a.Rect)
	p.Put(a)

	b := p.Get(image.Rect(0, 0, 8, 8))
	assert.Equal(t, image.Rect(0, 0, 8, 8), b.Rect)
	assert.EqualValues(t, 2, p.Stats().Allocated+p.Stats().Reused)

	// unknown sizes are dropped silently
	p.Put(image.NewRGBA(image.Rect(0, 0, 3, 3)))
	p.Put(nil)
}

func TestBudgetWorkers(t *testing.T) {
	cases := []struct {
		name      string
		budget    Budget
		requested int
		perWorker uint64
		want      int
	}{
		{"defaults to cores", Budget{Cores: 8}, 0, 0, 8},
		{"request wins", Budget{Cores: 8}, 3, 0, 3},
		{"memory bound", Budget{Cores: 8, Available: 100}, 0, 10, 5},
		{"never below one", Budget{Cores: 8, Available: 10}, 0, 100, 1},
		{"unknown memory ignored", Budget{Cores: 2}, 0, 1 << 30, 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.budget.Workers(tc.requested, tc.perWorker))
		})
	}
}

func TestProbe(t *testing.T) {
	b := Probe()
	assert.GreaterOrEqual(t, b.Cores, 1)
	assert.GreaterOrEqual(t, Workers(0, 0), 1)
}

func TestFindLatest(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "old.yaml")
	fresh := filepath.Join(dir, "fresh.YAML")
	require.NoError(t, os.WriteFile(old, []byte("a"), 0644))
	require.NoError(t, os.WriteFile(fresh, []byte("b"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("c"), 0644))

	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(old, past, past))

	got, err := FindLatest(dir, ".yaml", ".yml")
	require.NoError(t, err)
	assert.Equal(t, fresh, got)

	_, err = FindLatest(dir, ".pdf")
	assert.Error(t, err)
}

func TestParseProbeOutput(t *testing.T) {
	d, err := parseProbeOutput([]byte("12.345000\n"))
	require.NoError(t, err)
	assert.InDelta(t, 12.345, d, 1e-9)

	_, err = parseProbeOutput([]byte("N/A"))
	assert.Error(t, err)
}

func TestRaiseOpenFileLimit(t *testing.T) {
	got, err := RaiseOpenFileLimit(64)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, got, uint64(64))
}
