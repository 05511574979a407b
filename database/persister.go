package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"attribution-pipeline/models"

	"github.com/apex/log"
)

const timestampLayout = "2006-01-02 15:04:05"

// StoreResults appends scored attribution results to the
// attribution_customer_journey table and advances the watermark cursor in
// the same transaction. The watermark is monotonic: it only moves forward,
// even if a batch arrives with older timestamps than a prior run.
//
// An empty result set is a safe no-op: no rows written, watermark
// unchanged.
func (d *Database) StoreResults(results []models.AttributionResult) (string, error) {
	if len(results) == 0 {
		log.Info("No attribution results to store, watermark unchanged")
		return "", nil
	}

	ctx := context.Background()
	tx, err := d.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, r := range results {
		if _, err := tx.Exec(`
			INSERT INTO attribution_customer_journey (conv_id, session_id, timestamp, ihc)
			VALUES (?, ?, ?, ?)`,
			r.ConvID, r.SessionID, r.Timestamp, r.IHC); err != nil {
			return "", fmt.Errorf("failed to insert attribution result for conv %s: %w", r.ConvID, err)
		}
	}

	maxTS := ""
	for _, r := range results {
		if r.Timestamp == "" {
			continue
		}
		if _, err := time.Parse(timestampLayout, r.Timestamp); err != nil {
			log.Warnf("Skipping unparseable result timestamp %q for conv %s", r.Timestamp, r.ConvID)
			continue
		}
		// Lexicographic comparison is chronological for this layout.
		if r.Timestamp > maxTS {
			maxTS = r.Timestamp
		}
	}

	newWatermark := ""
	if maxTS != "" {
		var current sql.NullString
		err := tx.QueryRow(`SELECT last_processed FROM pipeline_watermark WHERE id = ?`, watermarkRowID).Scan(&current)
		if err != nil && err != sql.ErrNoRows {
			return "", fmt.Errorf("failed to read watermark for update: %w", err)
		}

		newWatermark = maxTS
		if current.Valid && current.String > newWatermark {
			newWatermark = current.String
		}

		if _, err := tx.Exec(`
			INSERT INTO pipeline_watermark (id, last_processed) VALUES (?, ?)
			ON DUPLICATE KEY UPDATE last_processed = ?`,
			watermarkRowID, newWatermark, newWatermark); err != nil {
			return "", fmt.Errorf("failed to update watermark: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit attribution results: %w", err)
	}

	log.Infof("Stored %d attribution results, watermark now %q", len(results), newWatermark)
	d.logStoredSample()

	return newWatermark, nil
}

// logStoredSample reads back a few stored rows for diagnostic visibility.
// Failures here never affect the run.
func (d *Database) logStoredSample() {
	rows, err := d.db.Query(`SELECT conv_id, session_id, ihc FROM attribution_customer_journey LIMIT 5`)
	if err != nil {
		log.Warnf("Read-back of stored results failed: %v", err)
		return
	}
	defer rows.Close()

	for rows.Next() {
		var convID, sessionID string
		var ihc float64
		if err := rows.Scan(&convID, &sessionID, &ihc); err != nil {
			log.Warnf("Cannot scan read-back row: %v", err)
			return
		}
		log.Infof("Stored sample: conv=%s session=%s ihc=%f", convID, sessionID, ihc)
	}
}
