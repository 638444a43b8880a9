package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/barsql/internal/queryspec"
)

func TestLoadQuerySpec_YAML(t *testing.T) {
	spec, err := LoadQuerySpec(filepath.Join("testdata", "specs", "daily_total.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "ES", spec.Symbol)
	assert.Equal(t, queryspec.SourceDaily, spec.Source)
	assert.Equal(t, queryspec.GroupingTotal, spec.Grouping)
	require.Len(t, spec.Metrics, 2)
	assert.Equal(t, "avg_range", spec.Metrics[0].Alias)
}

func TestLoadQuerySpec_CUE(t *testing.T) {
	spec, err := LoadQuerySpec(filepath.Join("testdata", "specs", "daily_total.cue"))
	require.NoError(t, err)

	assert.Equal(t, "ES", spec.Symbol)
	assert.Equal(t, queryspec.SourceDaily, spec.Source)
	require.Len(t, spec.Metrics, 2)
	assert.Equal(t, "trading_days", spec.Metrics[1].Alias)
}

func TestLoadQuerySpec_YAMLAndCUEAgree(t *testing.T) {
	fromYAML, err := LoadQuerySpec(filepath.Join("testdata", "specs", "daily_total.yaml"))
	require.NoError(t, err)
	fromCUE, err := LoadQuerySpec(filepath.Join("testdata", "specs", "daily_total.cue"))
	require.NoError(t, err)
	assert.Equal(t, fromYAML, fromCUE)
}

func TestLoadQuerySpec_NotFound(t *testing.T) {
	_, err := LoadQuerySpec(filepath.Join("testdata", "specs", "missing.yaml"))
	require.Error(t, err)

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, ErrCodeNotFound, loadErr.Code)
}

func TestLoadQuerySpec_UnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spec.toml")
	require.NoError(t, os.WriteFile(path, []byte("symbol = \"ES\""), 0644))

	_, err := LoadQuerySpec(path)
	require.Error(t, err)

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, ErrCodeBadFormat, loadErr.Code)
}

func TestLoadQuerySpec_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("symbol: [unclosed"), 0644))

	_, err := LoadQuerySpec(path)
	require.Error(t, err)

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, ErrCodeParseFailed, loadErr.Code)
}

func TestLoadQuerySpec_MalformedCUE(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.cue")
	require.NoError(t, os.WriteFile(path, []byte("symbol: string &"), 0644))

	_, err := LoadQuerySpec(path)
	require.Error(t, err)

	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, ErrCodeBuildFailed, loadErr.Code)
}

func TestMapFieldToErrorCode(t *testing.T) {
	assert.Equal(t, ErrCodeBadSymbol, MapFieldToErrorCode("symbol"))
	assert.Equal(t, ErrCodeBadFilters, MapFieldToErrorCode("filters.conditions[0]"))
	assert.Equal(t, ErrCodeBadMetrics, MapFieldToErrorCode("metrics[2]"))
	assert.Equal(t, ErrCodeBadOp, MapFieldToErrorCode("top_n.n"))
	assert.Equal(t, ErrCodeBadOrdering, MapFieldToErrorCode("limit"))
	assert.Equal(t, ErrCodeBadCompare, MapFieldToErrorCode("compare.items"))
	assert.Equal(t, ErrCodeGeneric, MapFieldToErrorCode("something_else"))
}
