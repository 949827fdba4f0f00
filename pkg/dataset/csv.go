package dataset

import (
	"encoding/csv"
	"io"
	"math"
	"strconv"

	"github.com/raykavin/quantfeat/pkg/feature"
)

// WriteCSV serializes a feature set with a header row. Undefined values are
// written as empty cells, timestamps as unix seconds.
func WriteCSV(w io.Writer, fs *feature.FeatureSet) error {
	writer := csv.NewWriter(w)

	header := append([]string{"time"}, fs.Names()...)
	if err := writer.Write(header); err != nil {
		return err
	}

	for i := 0; i < fs.Len(); i++ {
		record := make([]string, 0, len(header))
		record = append(record, strconv.FormatInt(fs.Time[i].Unix(), 10))
		for _, value := range fs.Row(i) {
			if math.IsNaN(value) {
				record = append(record, "")
				continue
			}
			record = append(record, strconv.FormatFloat(value, 'f', -1, 64))
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}
