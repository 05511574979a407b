package models

import "github.com/shopspring/decimal"

// Session represents a row from the session_sources table
type Session struct {
	SessionID             string `json:"session_id"`
	UserID                string `json:"user_id"`
	ChannelName           string `json:"channel_name"`
	EventDate             string `json:"event_date"` // YYYY-MM-DD
	EventTime             string `json:"event_time"` // HH:MM:SS
	HolderEngagement      int    `json:"holder_engagement"`
	CloserEngagement      int    `json:"closer_engagement"`
	ImpressionInteraction int    `json:"impression_interaction"`
}

// Conversion represents a row from the conversions table
type Conversion struct {
	ConvID   string  `json:"conv_id"`
	UserID   string  `json:"user_id"`
	ConvDate string  `json:"conv_date"` // YYYY-MM-DD
	ConvTime string  `json:"conv_time"` // HH:MM:SS
	Revenue  float64 `json:"revenue"`
}

// SessionCost represents a row from the session_costs table.
// A session with no cost row counts as cost 0.
type SessionCost struct {
	SessionID string  `json:"session_id"`
	Cost      float64 `json:"cost"`
}

// JourneyEntry is one session inside a conversion's journey, shaped
// exactly as the scoring API expects it.
type JourneyEntry struct {
	ConversionID          string `json:"conversion_id"`
	SessionID             string `json:"session_id"`
	Timestamp             string `json:"timestamp"` // "<event_date> <event_time>", space-joined literal
	ChannelLabel          string `json:"channel_label"`
	HolderEngagement      int    `json:"holder_engagement"`
	CloserEngagement      int    `json:"closer_engagement"`
	Conversion            int    `json:"conversion"`
	ImpressionInteraction int    `json:"impression_interaction"`
}

// Journey is the ordered sequence of a user's sessions preceding one of
// their conversions. Entries may be empty when no session qualifies.
type Journey struct {
	ConvID  string
	Entries []JourneyEntry
}

// AttributionResult is one per-session weight returned by the scoring
// service. Timestamp is optional in the API response.
type AttributionResult struct {
	ConvID    string  `json:"conversion_id"`
	SessionID string  `json:"session_id"`
	Timestamp string  `json:"timestamp,omitempty"`
	IHC       float64 `json:"ihc"`
}

// ChannelReportRow is one (channel, date) row of the channel report.
type ChannelReportRow struct {
	ChannelName     string
	EventDate       string
	TotalCost       decimal.Decimal
	TotalIHC        decimal.Decimal
	TotalIHCRevenue decimal.Decimal
	CPO             Metric
	ROAS            Metric
}
