package database

import (
	"database/sql"
	"fmt"

	"attribution-pipeline/models"

	"github.com/apex/log"
)

// DefaultWatermark is the epoch the pipeline starts from on a fresh
// database, before any attribution result has ever been stored.
const DefaultWatermark = "2023-09-07 00:00:00"

const watermarkRowID = 1

// Watermark returns the last processed timestamp ("YYYY-MM-DD HH:MM:SS").
// It prefers the explicit pipeline_watermark cursor and falls back to the
// max timestamp over stored attribution results for databases that predate
// the cursor, then to DefaultWatermark.
func (d *Database) Watermark() (string, error) {
	var cursor sql.NullString
	err := d.db.QueryRow(`SELECT last_processed FROM pipeline_watermark WHERE id = ?`, watermarkRowID).Scan(&cursor)
	if err != nil && err != sql.ErrNoRows {
		return "", fmt.Errorf("failed to read watermark cursor: %w", err)
	}
	if cursor.Valid && cursor.String != "" {
		return cursor.String, nil
	}

	var maxTS sql.NullString
	if err := d.db.QueryRow(`SELECT MAX(timestamp) FROM attribution_customer_journey`).Scan(&maxTS); err != nil {
		return "", fmt.Errorf("failed to read max result timestamp: %w", err)
	}
	if maxTS.Valid && maxTS.String != "" {
		return maxTS.String, nil
	}

	log.Infof("No prior attribution results, starting from %s", DefaultWatermark)
	return DefaultWatermark, nil
}

// SessionsAfter returns all sessions with event_date strictly greater
// than the given date ("YYYY-MM-DD").
func (d *Database) SessionsAfter(date string) ([]models.Session, error) {
	rows, err := d.db.Query(`
		SELECT session_id, user_id, channel_name, event_date, event_time,
		       holder_engagement, closer_engagement, impression_interaction
		FROM session_sources
		WHERE event_date > ?`, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []models.Session
	for rows.Next() {
		var s models.Session
		if err := rows.Scan(
			&s.SessionID,
			&s.UserID,
			&s.ChannelName,
			&s.EventDate,
			&s.EventTime,
			&s.HolderEngagement,
			&s.CloserEngagement,
			&s.ImpressionInteraction,
		); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over session rows: %w", err)
	}

	log.Infof("Loaded %d sessions with event_date > %s", len(sessions), date)
	return sessions, nil
}

// Sessions returns the full session_sources table, used by the report
// aggregation which is not incremental.
func (d *Database) Sessions() ([]models.Session, error) {
	rows, err := d.db.Query(`
		SELECT session_id, user_id, channel_name, event_date, event_time,
		       holder_engagement, closer_engagement, impression_interaction
		FROM session_sources`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []models.Session
	for rows.Next() {
		var s models.Session
		if err := rows.Scan(
			&s.SessionID,
			&s.UserID,
			&s.ChannelName,
			&s.EventDate,
			&s.EventTime,
			&s.HolderEngagement,
			&s.CloserEngagement,
			&s.ImpressionInteraction,
		); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over session rows: %w", err)
	}
	return sessions, nil
}

// Conversions returns the full conversions table.
func (d *Database) Conversions() ([]models.Conversion, error) {
	rows, err := d.db.Query(`SELECT conv_id, user_id, conv_date, conv_time, revenue FROM conversions`)
	if err != nil {
		return nil, fmt.Errorf("failed to query conversions: %w", err)
	}
	defer rows.Close()

	var conversions []models.Conversion
	for rows.Next() {
		var c models.Conversion
		if err := rows.Scan(&c.ConvID, &c.UserID, &c.ConvDate, &c.ConvTime, &c.Revenue); err != nil {
			return nil, fmt.Errorf("failed to scan conversion: %w", err)
		}
		conversions = append(conversions, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over conversion rows: %w", err)
	}
	return conversions, nil
}

// SessionCosts returns the full session_costs table. NULL costs count as 0.
func (d *Database) SessionCosts() ([]models.SessionCost, error) {
	rows, err := d.db.Query(`SELECT session_id, cost FROM session_costs`)
	if err != nil {
		return nil, fmt.Errorf("failed to query session costs: %w", err)
	}
	defer rows.Close()

	var costs []models.SessionCost
	for rows.Next() {
		var sc models.SessionCost
		var cost sql.NullFloat64
		if err := rows.Scan(&sc.SessionID, &cost); err != nil {
			return nil, fmt.Errorf("failed to scan session cost: %w", err)
		}
		sc.Cost = cost.Float64
		costs = append(costs, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over session cost rows: %w", err)
	}
	return costs, nil
}

// AttributionResults returns the full attribution result history.
func (d *Database) AttributionResults() ([]models.AttributionResult, error) {
	rows, err := d.db.Query(`SELECT conv_id, session_id, timestamp, ihc FROM attribution_customer_journey`)
	if err != nil {
		return nil, fmt.Errorf("failed to query attribution results: %w", err)
	}
	defer rows.Close()

	var results []models.AttributionResult
	for rows.Next() {
		var r models.AttributionResult
		var ts sql.NullString
		if err := rows.Scan(&r.ConvID, &r.SessionID, &ts, &r.IHC); err != nil {
			return nil, fmt.Errorf("failed to scan attribution result: %w", err)
		}
		r.Timestamp = ts.String
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over attribution result rows: %w", err)
	}
	return results, nil
}
