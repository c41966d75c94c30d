package report

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/pkg/errors"
)

// WriteCSV renders a grouped report as UTF-8 CSV. The first column is named
// after the grouping unit ("week" or "month"), matching the on-screen table.
func WriteCSV(w io.Writer, unit PeriodUnit, rows []PeriodRow) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{string(unit), "num_leads", "converted"}); err != nil {
		return errors.Wrap(err, "write csv header")
	}
	for _, row := range rows {
		record := []string{
			strconv.Itoa(row.Period),
			strconv.Itoa(row.NumLeads),
			strconv.Itoa(row.Converted),
		}
		if err := cw.Write(record); err != nil {
			return errors.Wrap(err, "write csv row")
		}
	}

	cw.Flush()
	return errors.Wrap(cw.Error(), "flush csv")
}
