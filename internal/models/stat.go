package models

// DeliveredVsRead pairs two global counters: total ledger rows ever appended
// and the number of (user, alert) preferences currently in the Read state.
// The counts have no shared denominator and are reported side by side, never
// as a ratio.
type DeliveredVsRead struct {
	Delivered int `json:"delivered"`
	Read      int `json:"read"`
}

// AnalyticsOverview is the aggregator's one-shot rollup document, recomputed
// on demand from the catalog, preference store, and ledger.
type AnalyticsOverview struct {
	TotalAlertsCreated int              `json:"total_alerts_created"`
	DeliveredVsRead    DeliveredVsRead  `json:"alerts_delivered_vs_read"`
	SnoozedPerAlert    map[int64]int    `json:"snoozed_counts_per_alert"`
	BySeverity         map[Severity]int `json:"breakdown_by_severity"`
}
