package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"attribution-pipeline/models"

	"github.com/apex/log"
)

// WriteCSV writes the channel report to a flat CSV file, overwriting any
// previous report at that path.
func WriteCSV(path string, rows []models.ChannelReportRow) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{"channel_name", "event_date", "total_cost", "total_ihc", "total_ihc_revenue", "CPO", "ROAS"}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write report header: %w", err)
	}

	for _, r := range rows {
		record := []string{
			r.ChannelName,
			r.EventDate,
			r.TotalCost.String(),
			r.TotalIHC.String(),
			r.TotalIHCRevenue.String(),
			r.CPO.String(),
			r.ROAS.String(),
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write report row for channel %s: %w", r.ChannelName, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush report file: %w", err)
	}

	log.Infof("Wrote %d report rows to %s", len(rows), path)
	return nil
}
