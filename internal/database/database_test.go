package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradingview-telegram-relay/internal/types"
)

func openMemory(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndLoadMetrics(t *testing.T) {
	s := openMemory(t)

	require.NoError(t, s.SaveMetrics([]types.MetricSample{
		{Name: "requests_total", Labels: map[string]string{"path": "/", "code": "200"}, Value: 3},
		{Name: "deliveries_total", Labels: map[string]string{"outcome": "delivered"}, Value: 2},
	}))

	samples, err := s.LoadMetrics()
	require.NoError(t, err)
	require.Len(t, samples, 2)

	assert.Equal(t, "deliveries_total", samples[0].Name)
	assert.Equal(t, map[string]string{"outcome": "delivered"}, samples[0].Labels)
	assert.Equal(t, 2.0, samples[0].Value)
	assert.Equal(t, map[string]string{"code": "200", "path": "/"}, samples[1].Labels)
}

func TestSaveMetrics_ReplacesExisting(t *testing.T) {
	s := openMemory(t)
	labels := map[string]string{"outcome": "api_error"}

	require.NoError(t, s.SaveMetrics([]types.MetricSample{{Name: "d", Labels: labels, Value: 1}}))
	require.NoError(t, s.SaveMetrics([]types.MetricSample{{Name: "d", Labels: labels, Value: 4}}))

	samples, err := s.LoadMetrics()
	require.NoError(t, err)
	require.Len(t, samples, 1)
	assert.Equal(t, 4.0, samples[0].Value)
}

func TestLoadMetrics_Empty(t *testing.T) {
	samples, err := openMemory(t).LoadMetrics()
	require.NoError(t, err)
	assert.Empty(t, samples)
}

func TestOpen_PersistsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.SaveMetrics([]types.MetricSample{{Name: "n", Value: 7}}))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	samples, err := s.LoadMetrics()
	require.NoError(t, err)
	require.Len(t, samples, 1)
	assert.Equal(t, 7.0, samples[0].Value)
	assert.Empty(t, samples[0].Labels)
}

func TestClose_NilStore(t *testing.T) {
	var s *Store
	assert.NoError(t, s.Close())
}
