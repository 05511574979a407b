package models

import "github.com/shopspring/decimal"

// MetricKind discriminates the value states of a report metric column.
type MetricKind int

const (
	MetricNumeric MetricKind = iota
	// MetricUndefined marks a division by zero (e.g. CPO with no
	// attributed orders).
	MetricUndefined
	// MetricNotApplicable marks a metric that is meaningless for the row
	// (e.g. ROAS on a channel with no ad spend).
	MetricNotApplicable
)

// Metric is a report metric that is either a number or one of two
// sentinels. CPO and ROAS columns mix numbers with "NaN"/"N/A", so the
// value is a tagged variant rather than a bare float.
type Metric struct {
	Kind  MetricKind
	Value decimal.Decimal
}

// NumericMetric returns a numeric metric rounded to two decimal places.
func NumericMetric(value decimal.Decimal) Metric {
	return Metric{Kind: MetricNumeric, Value: value.Round(2)}
}

// UndefinedMetric returns the division-by-zero sentinel.
func UndefinedMetric() Metric {
	return Metric{Kind: MetricUndefined}
}

// NotApplicableMetric returns the not-applicable sentinel.
func NotApplicableMetric() Metric {
	return Metric{Kind: MetricNotApplicable}
}

// String renders the metric the way it is stored and exported:
// a fixed two-decimal number, "NaN", or "N/A".
func (m Metric) String() string {
	switch m.Kind {
	case MetricUndefined:
		return "NaN"
	case MetricNotApplicable:
		return "N/A"
	default:
		return m.Value.StringFixed(2)
	}
}
