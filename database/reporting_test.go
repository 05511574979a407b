package database

import (
	"database/sql"
	"testing"

	"attribution-pipeline/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
)

func TestReplaceChannelReport(t *testing.T) {
	it(func() {
		rows := []models.ChannelReportRow{
			{
				ChannelName:     "Paid Search",
				EventDate:       "2024-01-01",
				TotalCost:       decimal.NewFromInt(5),
				TotalIHC:        decimal.NewFromInt(1),
				TotalIHCRevenue: decimal.NewFromInt(100),
				CPO:             models.NumericMetric(decimal.NewFromInt(5)),
				ROAS:            models.NumericMetric(decimal.NewFromInt(20)),
			},
			{
				ChannelName:     "Organic Traffic",
				EventDate:       "2024-01-01",
				TotalCost:       decimal.NewFromInt(0),
				TotalIHC:        decimal.NewFromInt(2),
				TotalIHCRevenue: decimal.NewFromInt(50),
				CPO:             models.NumericMetric(decimal.NewFromInt(0)),
				ROAS:            models.NotApplicableMetric(),
			},
		}

		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM channel_reporting").
			WillReturnResult(sqlmock.NewResult(0, 3))
		mock.ExpectExec("INSERT INTO channel_reporting").
			WithArgs("Paid Search", "2024-01-01", 5.0, 1.0, 100.0, "5.00", "20.00").
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec("INSERT INTO channel_reporting").
			WithArgs("Organic Traffic", "2024-01-01", 0.0, 2.0, 50.0, "0.00", "N/A").
			WillReturnResult(sqlmock.NewResult(2, 1))
		mock.ExpectCommit()

		if err := d.ReplaceChannelReport(rows); err != nil {
			t.Fatalf("ReplaceChannelReport(): unexpected error: %v", err)
		}
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
	})
}

func TestReplaceChannelReportRollsBackOnError(t *testing.T) {
	it(func() {
		rows := []models.ChannelReportRow{
			{
				ChannelName: "Paid Search",
				EventDate:   "2024-01-01",
				CPO:         models.UndefinedMetric(),
				ROAS:        models.NotApplicableMetric(),
			},
		}

		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM channel_reporting").
			WillReturnError(sql.ErrConnDone)
		mock.ExpectRollback()

		if err := d.ReplaceChannelReport(rows); err == nil {
			t.Error("ReplaceChannelReport(): expected error when clearing the table fails")
		}
	})
}
