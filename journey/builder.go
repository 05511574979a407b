// Package journey turns raw session and conversion rows into ordered,
// per-conversion customer journeys for attribution scoring.
package journey

import (
	"sort"

	"attribution-pipeline/models"

	"github.com/apex/log"
)

// Build joins sessions to conversions on user_id and groups the causally
// valid touchpoints into one journey per conversion, ordered by conv_id.
//
// A session belongs to a conversion's journey iff both share a user and
// the session's (event_date, event_time) is strictly before the
// conversion's (conv_date, conv_time), date first, ties on date broken by
// time. Sessions at or after the conversion timestamp are excluded.
// Entries within a journey are ascending by (event_date, event_time).
//
// Every conversion yields a journey, empty if nothing qualifies, so the
// caller can decide what to do with empty journeys.
func Build(sessions []models.Session, conversions []models.Conversion) []models.Journey {
	sessionsByUser := make(map[string][]models.Session)
	malformed := 0
	for _, s := range sessions {
		if s.EventDate == "" || s.EventTime == "" {
			malformed++
			continue
		}
		sessionsByUser[s.UserID] = append(sessionsByUser[s.UserID], s)
	}
	if malformed > 0 {
		log.Warnf("Excluded %d sessions with missing event date or time", malformed)
	}

	journeys := make([]models.Journey, 0, len(conversions))
	for _, c := range conversions {
		j := models.Journey{ConvID: c.ConvID}
		for _, s := range sessionsByUser[c.UserID] {
			if !before(s.EventDate, s.EventTime, c.ConvDate, c.ConvTime) {
				continue
			}
			entry := models.JourneyEntry{
				ConversionID:          c.ConvID,
				SessionID:             s.SessionID,
				Timestamp:             s.EventDate + " " + s.EventTime,
				ChannelLabel:          s.ChannelName,
				HolderEngagement:      s.HolderEngagement,
				CloserEngagement:      s.CloserEngagement,
				ImpressionInteraction: s.ImpressionInteraction,
			}
			if entry.ConversionID == j.ConvID {
				entry.Conversion = 1
			}
			j.Entries = append(j.Entries, entry)
		}
		sort.SliceStable(j.Entries, func(a, b int) bool {
			return j.Entries[a].Timestamp < j.Entries[b].Timestamp
		})
		journeys = append(journeys, j)
	}

	// Deterministic order for chunk partitioning downstream.
	sort.Slice(journeys, func(a, b int) bool {
		return journeys[a].ConvID < journeys[b].ConvID
	})

	return journeys
}

// before reports whether (eventDate, eventTime) is strictly earlier than
// (convDate, convTime). Dates and times are zero-padded YYYY-MM-DD and
// HH:MM:SS strings, so lexicographic order is chronological.
func before(eventDate, eventTime, convDate, convTime string) bool {
	if eventDate != convDate {
		return eventDate < convDate
	}
	return eventTime < convTime
}
