package feature

import (
	"math"

	"github.com/raykavin/quantfeat/pkg/core"
)

// AttachFutureReturn computes the training target future_ret[i] =
// ln(close[i+1]/close[i]) from raw closes and adds it to the table as a
// non-shiftable label column. The label is attached after the causal shift
// and is built directly from prices, so no shifter configuration can affect
// it. The last row has no successor bar and stays NaN.
func AttachFutureReturn(table *Table, closes core.Series[float64]) error {
	if len(closes) != table.Len() {
		return &core.SchemaError{Column: LabelFutureReturn, Reason: "close series length does not match table rows"}
	}

	label := undefinedRow(len(closes))
	for i := 0; i+1 < len(closes); i++ {
		label[i] = math.Log(closes[i+1] / closes[i])
	}

	return table.AddColumn(LabelFutureReturn, label, ColumnLabel)
}
