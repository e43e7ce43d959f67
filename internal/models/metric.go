package models

// MetricCard is one of the key-metric tiles at the top of the dashboard.
type MetricCard struct {
	Title string   `json:"title"`
	Value string   `json:"value"`
	Raw   Float    `json:"raw"`
	Delta *float64 `json:"delta,omitempty"` // percent change, nil when not shown
}

// DeltaColor is green for growth and red otherwise.
func (m MetricCard) DeltaColor() string {
	if m.Delta != nil && *m.Delta > 0 {
		return "green"
	}
	return "red"
}

// HasDelta reports whether the card shows a delta line. A zero delta is hidden.
func (m MetricCard) HasDelta() bool {
	return m.Delta != nil && *m.Delta != 0
}
