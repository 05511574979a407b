package database

import (
	"context"
	"database/sql"
	"fmt"

	"attribution-pipeline/models"

	"github.com/apex/log"
)

// ReplaceChannelReport wholesale replaces the channel_reporting table with
// the given rows. The report is derived purely from current state and
// cheap to recompute, so it uses replace semantics rather than appends.
func (d *Database) ReplaceChannelReport(rows []models.ChannelReportRow) error {
	ctx := context.Background()
	tx, err := d.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM channel_reporting`); err != nil {
		return fmt.Errorf("failed to clear channel_reporting: %w", err)
	}

	for _, r := range rows {
		totalCost, _ := r.TotalCost.Float64()
		totalIHC, _ := r.TotalIHC.Float64()
		totalIHCRevenue, _ := r.TotalIHCRevenue.Float64()
		if _, err := tx.Exec(`
			INSERT INTO channel_reporting
			  (channel_name, event_date, total_cost, total_ihc, total_ihc_revenue, cpo, roas)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			r.ChannelName, r.EventDate, totalCost, totalIHC, totalIHCRevenue,
			r.CPO.String(), r.ROAS.String()); err != nil {
			return fmt.Errorf("failed to insert report row for channel %s: %w", r.ChannelName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit channel report: %w", err)
	}

	log.Infof("Replaced channel_reporting with %d rows", len(rows))
	return nil
}
