package plan

import "github.com/xraph/digigate/types"

// TrialID is the identifier of the trial template plan.
const TrialID = "trial"

type Duration string

const (
	DurationMonthly Duration = "monthly"
	DurationYearly  Duration = "yearly"
)

type SupportTier string

const (
	SupportBasic      SupportTier = "basic"
	SupportPremium    SupportTier = "premium"
	SupportEnterprise SupportTier = "enterprise"
)

// Plan is an immutable catalog entry. A zero MaxProducts or MaxDownloads
// means the plan sets no ceiling.
type Plan struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Description  string      `json:"description"`
	Price        types.Money `json:"price"`
	Duration     Duration    `json:"duration"`
	Features     []string    `json:"features"`
	MaxProducts  int         `json:"maxProducts,omitempty"`
	MaxDownloads int         `json:"maxDownloads,omitempty"`
	Support      SupportTier `json:"supportLevel"`
	Popular      bool        `json:"isPopular,omitempty"`
}

func (p *Plan) IsTrial() bool { return p != nil && p.ID == TrialID }

func (p *Plan) HasDownloadCap() bool { return p != nil && p.MaxDownloads > 0 }

func (p *Plan) HasProductCap() bool { return p != nil && p.MaxProducts > 0 }

// Clone returns a deep copy so snapshots embedded in subscriptions never
// alias catalog memory.
func (p *Plan) Clone() *Plan {
	if p == nil {
		return nil
	}
	cp := *p
	cp.Features = append([]string(nil), p.Features...)
	return &cp
}
