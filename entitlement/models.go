package entitlement

// Rule names the limit that decided a Result.
type Rule string

const (
	RuleNone         Rule = ""
	RuleSubscription Rule = "subscription"
	RuleDailyCap     Rule = "daily_cap"
	RuleTotalCap     Rule = "total_cap"
	RuleProductCap   Rule = "product_cap"
)

// Result is the outcome of a policy check. Limit and Remaining are -1 when
// no ceiling applies.
type Result struct {
	Allowed   bool   `json:"allowed"`
	Rule      Rule   `json:"rule,omitempty"`
	Used      int    `json:"used"`
	Limit     int    `json:"limit"`
	Remaining int    `json:"remaining"`
	Reason    string `json:"reason,omitempty"`
}

func (r Result) Unlimited() bool { return r.Limit < 0 }
