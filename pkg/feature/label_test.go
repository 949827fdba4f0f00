package feature

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFutureReturnValues(t *testing.T) {
	df := testFrame([]float64{100, 101, 102, 103, 104}, 10)

	table := NewTable(df.Time)
	require.NoError(t, AttachFutureReturn(table, df.Close))

	label := table.Column(LabelFutureReturn)
	require.InDelta(t, math.Log(101.0/100.0), label[0], 1e-12)
	require.InDelta(t, math.Log(104.0/103.0), label[3], 1e-12)
	require.True(t, math.IsNaN(label[4]), "last row has no successor bar")
	require.Equal(t, ColumnLabel, table.Class(LabelFutureReturn))
}

func TestFutureReturnIndependentOfShift(t *testing.T) {
	df := testFrame([]float64{100, 101, 102, 103, 104}, 10)

	// label attached to a bare table, no features, no shift
	bare := NewTable(df.Time)
	require.NoError(t, AttachFutureReturn(bare, df.Close))

	// label attached through the full pipeline, after the causal shift
	cfg := DefaultConfig()
	cfg.IncludeLabels = true
	fs, err := Build(df, cfg)
	require.NoError(t, err)

	want := bare.Column(LabelFutureReturn)
	got := fs.Column(LabelFutureReturn)
	for i := range want {
		require.True(t, sameValue(want[i], got[i]),
			"future_ret row %d must depend only on raw closes", i)
	}
}

func TestFutureReturnRequiresMatchingLength(t *testing.T) {
	df := testFrame([]float64{100, 101, 102}, 10)

	table := NewTable(df.Time)
	err := AttachFutureReturn(table, df.Close[:2])
	require.Error(t, err)
}
