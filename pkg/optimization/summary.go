// Package optimization provides shared data structures for optimization results.
package optimization

// Selection captures the result of one budget-constrained subscription
// selection run.
type Selection struct {
	SpendCapPercent float64 `json:"spendCapPercent"`
	SpendCap        float64 `json:"spendCap"`
	// StartingSpend is the portfolio ILL cost with nothing subscribed.
	StartingSpend float64 `json:"startingSpend"`
	FinalSpend    float64 `json:"finalSpend"`
	// AutoSubscribed counts journals cheaper to subscribe than to serve by ILL.
	// They are subscribed regardless of the cap.
	AutoSubscribed int `json:"autoSubscribed"`
	// CapSubscribed counts journals subscribed while spend stayed within the cap.
	CapSubscribed int  `json:"capSubscribed"`
	CapReached    bool `json:"capReached"`
	// Subscribed lists subscribed journal identifiers in selection order.
	Subscribed []string `json:"subscribed"`
	Notes      []string `json:"notes,omitempty"`
}

// NumSubscribed returns the total number of subscribed journals.
func (s Selection) NumSubscribed() int {
	return s.AutoSubscribed + s.CapSubscribed
}

// Headroom returns how much of the cap is left unspent. It is negative when
// cap-exempt subscriptions alone exceed the cap.
func (s Selection) Headroom() float64 {
	return s.SpendCap - s.FinalSpend
}
