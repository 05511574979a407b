// Package report aggregates attribution weights into the channel-level
// cost/revenue report.
package report

import (
	"sort"

	"attribution-pipeline/models"

	"github.com/apex/log"
	"github.com/shopspring/decimal"
)

type channelDay struct {
	channel string
	date    string
}

// Aggregate joins attribution results with session, cost and conversion
// data and computes one report row per (channel_name, event_date).
//
// Sessions with no cost row count as cost 0 (left join). A result whose
// session or conversion is missing from the source tables is excluded
// entirely (inner joins). Revenue is multiplied with each row's own ihc
// before summing, not after.
//
// CPO is total_cost / total_ihc; with no attributed orders it becomes the
// Undefined sentinel instead of a division error. ROAS is
// total_ihc_revenue / total_cost, except channels with zero cost and the
// designated non-paid channels report the N/A sentinel. Rows come back
// sorted by (channel_name, event_date), so identical inputs produce
// identical output.
func Aggregate(
	sessions []models.Session,
	costs []models.SessionCost,
	conversions []models.Conversion,
	results []models.AttributionResult,
	nonPaidChannels []string,
) []models.ChannelReportRow {
	sessionByID := make(map[string]models.Session, len(sessions))
	for _, s := range sessions {
		sessionByID[s.SessionID] = s
	}
	costByID := make(map[string]float64, len(costs))
	for _, c := range costs {
		costByID[c.SessionID] = c.Cost
	}
	revenueByConv := make(map[string]float64, len(conversions))
	for _, c := range conversions {
		revenueByConv[c.ConvID] = c.Revenue
	}
	nonPaid := make(map[string]bool, len(nonPaidChannels))
	for _, ch := range nonPaidChannels {
		nonPaid[ch] = true
	}

	type totals struct {
		cost       decimal.Decimal
		ihc        decimal.Decimal
		ihcRevenue decimal.Decimal
	}
	groups := make(map[channelDay]*totals)
	joined, dropped := 0, 0

	for _, r := range results {
		session, ok := sessionByID[r.SessionID]
		if !ok {
			dropped++
			continue
		}
		revenue, ok := revenueByConv[r.ConvID]
		if !ok {
			dropped++
			continue
		}
		joined++

		key := channelDay{channel: session.ChannelName, date: session.EventDate}
		t := groups[key]
		if t == nil {
			t = &totals{}
			groups[key] = t
		}

		ihc := decimal.NewFromFloat(r.IHC)
		t.cost = t.cost.Add(decimal.NewFromFloat(costByID[r.SessionID]))
		t.ihc = t.ihc.Add(ihc)
		t.ihcRevenue = t.ihcRevenue.Add(ihc.Mul(decimal.NewFromFloat(revenue)))
	}

	if dropped > 0 {
		log.Warnf("Excluded %d attribution results with no matching session or conversion", dropped)
	}
	log.Infof("Aggregated %d attribution results into %d (channel, date) groups", joined, len(groups))

	rows := make([]models.ChannelReportRow, 0, len(groups))
	for key, t := range groups {
		row := models.ChannelReportRow{
			ChannelName:     key.channel,
			EventDate:       key.date,
			TotalCost:       t.cost,
			TotalIHC:        t.ihc,
			TotalIHCRevenue: t.ihcRevenue,
		}

		if t.ihc.IsZero() {
			row.CPO = models.UndefinedMetric()
		} else {
			row.CPO = models.NumericMetric(t.cost.Div(t.ihc))
		}

		if t.cost.IsZero() || nonPaid[key.channel] {
			row.ROAS = models.NotApplicableMetric()
		} else {
			row.ROAS = models.NumericMetric(t.ihcRevenue.Div(t.cost))
		}

		rows = append(rows, row)
	}

	sort.Slice(rows, func(a, b int) bool {
		if rows[a].ChannelName != rows[b].ChannelName {
			return rows[a].ChannelName < rows[b].ChannelName
		}
		return rows[a].EventDate < rows[b].EventDate
	})

	return rows
}
