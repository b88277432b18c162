package payments

import "strings"

// CurrencyINR is the only currency plans are sold in.
const CurrencyINR = "inr"

// Plan is a one-time credit pack. Amount is in whole rupees.
type Plan struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Amount   int64    `json:"amount"`
	Credits  int      `json:"credits"`
	Currency string   `json:"currency"`
	Features []string `json:"features"`
}

// MinorAmount is the plan price in paise.
func (p Plan) MinorAmount() int64 {
	return p.Amount * 100
}

var plans = []Plan{
	{
		ID:       "starter",
		Name:     "Starter Pack",
		Amount:   499,
		Credits:  10,
		Currency: CurrencyINR,
		Features: []string{"10 AI Rewrites", "Basic Templates", "Email Support"},
	},
	{
		ID:       "pro",
		Name:     "Pro Pack",
		Amount:   1499,
		Credits:  50,
		Currency: CurrencyINR,
		Features: []string{"50 AI Rewrites", "All Templates", "Priority Support", "No Watermark"},
	},
}

// Plans lists the purchasable packs in display order.
func Plans() []Plan {
	out := make([]Plan, len(plans))
	copy(out, plans)
	return out
}

// PlanByID looks up a plan by its identifier.
func PlanByID(id string) (Plan, bool) {
	id = strings.ToLower(strings.TrimSpace(id))
	for _, p := range plans {
		if p.ID == id {
			return p, true
		}
	}
	return Plan{}, false
}
