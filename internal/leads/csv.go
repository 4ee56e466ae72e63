package leads

import (
	"encoding/csv"
	"io"
	"time"

	"github.com/jonesrussell/goleads/internal/domain"
)

// csvHeader is the column layout of a lead export.
var csvHeader = []string{"timestamp", "target", "platform", "identifier", "price", "status"}

// WriteCSV writes leads to w in insertion order with a header row.
func WriteCSV(w io.Writer, rows []domain.Lead) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, lead := range rows {
		record := []string{
			lead.FirstSeen.Format(time.RFC3339),
			lead.Target,
			lead.Platform,
			lead.Identifier,
			lead.Price,
			string(lead.Status),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
