package report

import (
	"encoding/csv"
	"os"

	"github.com/rotisserie/eris"

	"github.com/sells-group/address-mapper/internal/mapper"
	"github.com/sells-group/address-mapper/internal/model"
)

// WriteCSV writes the header and one row per record to path. Absent
// coordinates are written as empty cells.
func WriteCSV(path string, policy mapper.Policy, records []model.Record) error {
	table := buildTable(policy, records)

	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "report: create csv")
	}

	w := csv.NewWriter(f)
	if err := w.Write(Columns(policy)); err != nil {
		f.Close() //nolint:errcheck
		return eris.Wrap(err, "report: write csv header")
	}
	for _, row := range table {
		values := make([]string, len(row))
		for i, c := range row {
			values[i] = c.text
		}
		if err := w.Write(values); err != nil {
			f.Close() //nolint:errcheck
			return eris.Wrap(err, "report: write csv row")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close() //nolint:errcheck
		return eris.Wrap(err, "report: flush csv")
	}
	if err := f.Close(); err != nil {
		return eris.Wrap(err, "report: close csv")
	}
	return nil
}
