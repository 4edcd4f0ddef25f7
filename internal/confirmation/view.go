package confirmation

import (
	"strconv"

	"zignasa/internal/payments"
)

const (
	notAvailable     = "N/A"
	paymentIDDisplay = 14
)

// View is the rendered form of an Outcome, for the page and the JSON API.
type View struct {
	State       State  `json:"state"`
	Loading     bool   `json:"-"`
	Message     string `json:"message,omitempty"`
	TeamName    string `json:"teamName"`
	Domain      string `json:"domain"`
	MemberCount string `json:"memberCount"`
	Amount      string `json:"amount"`
	TeamID      string `json:"teamId"`
	PaymentID   string `json:"paymentId"`
	OrderID     string `json:"orderId,omitempty"`
	// RawPaymentID is shown in full on failure for support requests.
	RawPaymentID string `json:"rawPaymentId,omitempty"`
}

// NewView fills each field from the endpoint data, then the handoff, then "N/A".
func NewView(o Outcome) View {
	v := View{
		State:   o.State,
		Loading: o.State == StateLoading || o.State == StatePending,
		Message: o.Message,
	}

	var (
		teamName, domain, paymentID string
		memberCount                 int
		amount, teamID              int64
	)
	if d := o.Data; d != nil {
		teamName, domain, paymentID = d.TeamName, d.Domain, d.PaymentID
		memberCount, amount, teamID = d.MemberCount, d.Amount, d.TeamID
	}
	if h := o.Handoff; h != nil {
		teamName = firstNonEmpty(teamName, h.TeamName)
		domain = firstNonEmpty(domain, h.Domain)
		if memberCount == 0 {
			memberCount = h.MemberCount
		}
		if amount == 0 {
			amount = h.AmountInPaise
		}
		if teamID == 0 {
			teamID = h.TeamID
		}
	}
	if teamID == 0 {
		teamID, _ = strconv.ParseInt(o.Params.TeamID, 10, 64)
	}
	paymentID = firstNonEmpty(paymentID, o.Params.PaymentID)

	v.TeamName = orNA(teamName)
	v.Domain = orNA(domain)
	v.MemberCount = notAvailable
	if memberCount > 0 {
		v.MemberCount = strconv.Itoa(memberCount)
	}
	v.Amount = notAvailable
	if amount > 0 {
		v.Amount = payments.FormatAmount(amount)
	}
	v.TeamID = notAvailable
	if teamID > 0 {
		v.TeamID = strconv.FormatInt(teamID, 10)
	}
	v.PaymentID = orNA(truncate(paymentID, paymentIDDisplay))

	if o.State == StateFailed {
		v.OrderID = o.Params.OrderID
		v.RawPaymentID = o.Params.PaymentID
	}
	return v
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

func orNA(s string) string {
	if s == "" {
		return notAvailable
	}
	return s
}
