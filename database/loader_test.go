package database

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jknair0/beforeeach"
)

var (
	db   *sql.DB
	mock sqlmock.Sqlmock
	d    *Database
)

func setUp() {
	db, mock, _ = sqlmock.New()
	d = NewFromDB(db)
}

func tearDown() {
	db.Close()
}

var it = beforeeach.Create(setUp, tearDown)

func TestWatermarkFromCursor(t *testing.T) {
	it(func() {
		mock.ExpectQuery("SELECT last_processed FROM pipeline_watermark").
			WithArgs(1).
			WillReturnRows(sqlmock.NewRows([]string{"last_processed"}).AddRow("2024-01-05 10:00:00"))

		wm, err := d.Watermark()
		if err != nil {
			t.Fatalf("Watermark(): unexpected error: %v", err)
		}
		if wm != "2024-01-05 10:00:00" {
			t.Errorf("Watermark(): want 2024-01-05 10:00:00, got %s", wm)
		}
	})
}

func TestWatermarkFallsBackToMaxTimestamp(t *testing.T) {
	it(func() {
		mock.ExpectQuery("SELECT last_processed FROM pipeline_watermark").
			WithArgs(1).
			WillReturnRows(sqlmock.NewRows([]string{"last_processed"}))
		mock.ExpectQuery(`SELECT MAX\(timestamp\) FROM attribution_customer_journey`).
			WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow("2023-12-01 08:30:00"))

		wm, err := d.Watermark()
		if err != nil {
			t.Fatalf("Watermark(): unexpected error: %v", err)
		}
		if wm != "2023-12-01 08:30:00" {
			t.Errorf("Watermark(): want 2023-12-01 08:30:00, got %s", wm)
		}
	})
}

func TestWatermarkDefaultsOnEmptyDatabase(t *testing.T) {
	it(func() {
		mock.ExpectQuery("SELECT last_processed FROM pipeline_watermark").
			WithArgs(1).
			WillReturnRows(sqlmock.NewRows([]string{"last_processed"}))
		mock.ExpectQuery(`SELECT MAX\(timestamp\) FROM attribution_customer_journey`).
			WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(nil))

		wm, err := d.Watermark()
		if err != nil {
			t.Fatalf("Watermark(): unexpected error: %v", err)
		}
		if wm != DefaultWatermark {
			t.Errorf("Watermark(): want default %s, got %s", DefaultWatermark, wm)
		}
	})
}

func TestSessionsAfter(t *testing.T) {
	it(func() {
		columns := []string{
			"session_id", "user_id", "channel_name", "event_date", "event_time",
			"holder_engagement", "closer_engagement", "impression_interaction",
		}
		mock.ExpectQuery("SELECT session_id, user_id, channel_name, event_date, event_time").
			WithArgs("2024-01-05").
			WillReturnRows(sqlmock.NewRows(columns).
				AddRow("s1", "u1", "Paid Search", "2024-01-06", "10:00:00", 1, 0, 1).
				AddRow("s2", "u2", "Social", "2024-01-07", "11:30:00", 0, 1, 0))

		sessions, err := d.SessionsAfter("2024-01-05")
		if err != nil {
			t.Fatalf("SessionsAfter(): unexpected error: %v", err)
		}
		if len(sessions) != 2 {
			t.Fatalf("SessionsAfter(): want 2 sessions, got %d", len(sessions))
		}
		if sessions[0].SessionID != "s1" || sessions[0].ChannelName != "Paid Search" || sessions[0].HolderEngagement != 1 {
			t.Errorf("SessionsAfter(): unexpected first session: %+v", sessions[0])
		}
	})
}

func TestSessionCostsNullBecomesZero(t *testing.T) {
	it(func() {
		mock.ExpectQuery("SELECT session_id, cost FROM session_costs").
			WillReturnRows(sqlmock.NewRows([]string{"session_id", "cost"}).
				AddRow("s1", 12.5).
				AddRow("s2", nil))

		costs, err := d.SessionCosts()
		if err != nil {
			t.Fatalf("SessionCosts(): unexpected error: %v", err)
		}
		if len(costs) != 2 {
			t.Fatalf("SessionCosts(): want 2 rows, got %d", len(costs))
		}
		if costs[0].Cost != 12.5 {
			t.Errorf("SessionCosts(): want cost 12.5, got %f", costs[0].Cost)
		}
		if costs[1].Cost != 0 {
			t.Errorf("SessionCosts(): NULL cost should scan as 0, got %f", costs[1].Cost)
		}
	})
}

func TestConversions(t *testing.T) {
	it(func() {
		mock.ExpectQuery("SELECT conv_id, user_id, conv_date, conv_time, revenue FROM conversions").
			WillReturnRows(sqlmock.NewRows([]string{"conv_id", "user_id", "conv_date", "conv_time", "revenue"}).
				AddRow("conv1", "u1", "2024-01-06", "09:00:00", 150.0))

		conversions, err := d.Conversions()
		if err != nil {
			t.Fatalf("Conversions(): unexpected error: %v", err)
		}
		if len(conversions) != 1 || conversions[0].Revenue != 150.0 {
			t.Errorf("Conversions(): unexpected result: %+v", conversions)
		}
	})
}

func TestLoaderSurfacesStorageErrors(t *testing.T) {
	it(func() {
		mock.ExpectQuery("SELECT session_id, user_id, channel_name, event_date, event_time").
			WithArgs("2024-01-05").
			WillReturnError(sql.ErrConnDone)

		if _, err := d.SessionsAfter("2024-01-05"); err == nil {
			t.Error("SessionsAfter(): expected error when storage is unreachable")
		}
	})
}
