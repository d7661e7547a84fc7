package atomichash_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func Test_Stats_ReflectsOccupancy_After_AddAndDelete(t *testing.T) {
	t.Parallel()
	tbl := newTestTable(t, 64)

	_, err := tbl.Add([]byte("one"), 1, 0, nil, nil)
	require.NoError(t, err)
	_, err = tbl.Add([]byte("two"), 2, 0, nil, nil)
	require.NoError(t, err)

	stats := tbl.Stats()
	require.Equal(t, uint64(2), stats.Table1.Occupied+stats.Table2.Occupied+stats.Overflow.Occupied)

	_, err = tbl.Delete([]byte("one"), nil, nil)
	require.NoError(t, err)

	stats = tbl.Stats()
	require.Equal(t, uint64(1), stats.Table1.Occupied+stats.Table2.Occupied+stats.Overflow.Occupied)
}

func Test_Stats_Report_IncludesThroughputLine_When_ElapsedGiven(t *testing.T) {
	t.Parallel()
	tbl := newTestTable(t, 64)
	_, err := tbl.Add([]byte("one"), 1, 0, nil, nil)
	require.NoError(t, err)

	report := tbl.Stats().Report(time.Second)
	require.True(t, strings.Contains(report, "ops/sec"), "report missing ops/sec line:\n%s", report)

	bare := tbl.Stats().Report(0)
	require.False(t, strings.Contains(bare, "ops/sec"), "report with zero elapsed should omit ops/sec line:\n%s", bare)
}
