package database

import (
	"fmt"

	"github.com/apex/log"
)

// InitSchema creates the pipeline tables if they don't exist
func (d *Database) InitSchema() error {
	log.Info("Initializing attribution pipeline database schema...")

	tables := []struct {
		name string
		ddl  string
	}{
		{
			name: "session_sources",
			ddl: `
			CREATE TABLE IF NOT EXISTS session_sources(
				session_id VARCHAR(255) NOT NULL,
				user_id VARCHAR(255) NOT NULL,
				channel_name VARCHAR(255) NOT NULL,
				event_date VARCHAR(10) NOT NULL,
				event_time VARCHAR(8) NOT NULL,
				holder_engagement TINYINT NOT NULL DEFAULT 0,
				closer_engagement TINYINT NOT NULL DEFAULT 0,
				impression_interaction TINYINT NOT NULL DEFAULT 0,
				PRIMARY KEY (session_id),
				INDEX user_idx (user_id),
				INDEX event_date_idx (event_date)
			)`,
		},
		{
			name: "conversions",
			ddl: `
			CREATE TABLE IF NOT EXISTS conversions(
				conv_id VARCHAR(255) NOT NULL,
				user_id VARCHAR(255) NOT NULL,
				conv_date VARCHAR(10) NOT NULL,
				conv_time VARCHAR(8) NOT NULL,
				revenue DOUBLE NOT NULL DEFAULT 0,
				PRIMARY KEY (conv_id),
				INDEX user_idx (user_id)
			)`,
		},
		{
			name: "session_costs",
			ddl: `
			CREATE TABLE IF NOT EXISTS session_costs(
				session_id VARCHAR(255) NOT NULL,
				cost DOUBLE,
				PRIMARY KEY (session_id)
			)`,
		},
		{
			name: "attribution_customer_journey",
			ddl: `
			CREATE TABLE IF NOT EXISTS attribution_customer_journey(
				conv_id VARCHAR(255) NOT NULL,
				session_id VARCHAR(255) NOT NULL,
				timestamp VARCHAR(19),
				ihc DOUBLE NOT NULL,
				INDEX session_idx (session_id),
				INDEX conv_idx (conv_id)
			)`,
		},
		{
			name: "channel_reporting",
			ddl: `
			CREATE TABLE IF NOT EXISTS channel_reporting(
				channel_name VARCHAR(255) NOT NULL,
				event_date VARCHAR(10) NOT NULL,
				total_cost DOUBLE NOT NULL,
				total_ihc DOUBLE NOT NULL,
				total_ihc_revenue DOUBLE NOT NULL,
				cpo VARCHAR(32) NOT NULL,
				roas VARCHAR(32) NOT NULL,
				PRIMARY KEY (channel_name, event_date)
			)`,
		},
		{
			name: "pipeline_watermark",
			ddl: `
			CREATE TABLE IF NOT EXISTS pipeline_watermark(
				id TINYINT NOT NULL,
				last_processed VARCHAR(19) NOT NULL,
				updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
				PRIMARY KEY (id)
			)`,
		},
	}

	for _, t := range tables {
		if _, err := d.db.Exec(t.ddl); err != nil {
			return fmt.Errorf("failed to create %s table: %w", t.name, err)
		}
	}

	log.Info("Attribution pipeline schema initialization completed")
	return nil
}
