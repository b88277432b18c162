package credits

import "time"

// DefaultStartingCredits is granted to an account the first time it is seen.
const DefaultStartingCredits = 5

// Grant is a payment-backed top-up. PaymentID is the provider-issued identifier
// and is applied at most once.
type Grant struct {
	PaymentID string
	UserID    string
	PlanID    string
	Credits   int
	Provider  string
	CreatedAt time.Time
}

// GrantResult reports whether a grant changed the balance.
type GrantResult struct {
	Applied bool `json:"applied"`
	Balance int  `json:"credits"`
}

// Balance is the API view of an account.
type Balance struct {
	UserID  string `json:"userId"`
	Credits int    `json:"credits"`
}
