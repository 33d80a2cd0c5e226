package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/storagekit/alloc"
	"github.com/hupe1980/storagekit/storage"
	"github.com/hupe1980/storagekit/vector"
)

func TestCollector(t *testing.T) {
	tr := alloc.NewTracker(nil, alloc.WithName("bench"), alloc.WithBudget(1<<20))
	v := vector.New[int64, uint32](storage.HeapOnly(tr))
	v.Append(1, 2, 3)
	v.Append(4, 5)

	c := NewCollector(tr, "storagekit")
	reg := prometheus.NewRegistry()
	require.NoError(t, reg.Register(c))

	assert.Equal(t, 9, testutil.CollectAndCount(c))

	expected := `
# HELP storagekit_alloc_allocations_total Blocks allocated.
# TYPE storagekit_alloc_allocations_total counter
storagekit_alloc_allocations_total{allocator="bench"} 2
# HELP storagekit_alloc_frees_total Blocks freed.
# TYPE storagekit_alloc_frees_total counter
storagekit_alloc_frees_total{allocator="bench"} 1
# HELP storagekit_alloc_live_bytes Bytes currently allocated.
# TYPE storagekit_alloc_live_bytes gauge
storagekit_alloc_live_bytes{allocator="bench"} 176
# HELP storagekit_alloc_budget_bytes Byte budget, 0 if unlimited.
# TYPE storagekit_alloc_budget_bytes gauge
storagekit_alloc_budget_bytes{allocator="bench"} 1.048576e+06
`
	err := testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"storagekit_alloc_allocations_total",
		"storagekit_alloc_frees_total",
		"storagekit_alloc_live_bytes",
		"storagekit_alloc_budget_bytes",
	)
	require.NoError(t, err)

	v.Release()
	err = testutil.GatherAndCompare(reg, strings.NewReader(`
# HELP storagekit_alloc_live_blocks Blocks currently allocated.
# TYPE storagekit_alloc_live_blocks gauge
storagekit_alloc_live_blocks{allocator="bench"} 0
`), "storagekit_alloc_live_blocks")
	require.NoError(t, err)
}

func TestCollector_LintClean(t *testing.T) {
	c := NewCollector(alloc.NewTracker(nil), "storagekit")
	problems, err := testutil.CollectAndLint(c)
	require.NoError(t, err)
	assert.Empty(t, problems)
}
