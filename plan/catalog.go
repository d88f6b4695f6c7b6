package plan

import (
	"fmt"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/xraph/digigate/types"
)

var _ Source = (*Catalog)(nil)

// Catalog is an ordered, read-only list of purchasable plans plus the
// trial template handed to new users.
type Catalog struct {
	plans []*Plan
	byID  map[string]*Plan
	trial *Plan
}

// NewCatalog builds a catalog. Plan ids must be unique and must not use
// the reserved trial id.
func NewCatalog(trial *Plan, plans ...*Plan) (*Catalog, error) {
	if trial == nil {
		return nil, fmt.Errorf("plan: catalog requires a trial template")
	}
	c := &Catalog{
		byID:  make(map[string]*Plan, len(plans)),
		trial: trial.Clone(),
	}
	c.trial.ID = TrialID

	for _, p := range plans {
		switch {
		case p == nil || p.ID == "":
			return nil, fmt.Errorf("plan: catalog entry without id")
		case p.ID == TrialID:
			return nil, fmt.Errorf("plan: %q is reserved for the trial template", TrialID)
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("plan: duplicate plan id %q", p.ID)
		}
		cp := p.Clone()
		c.plans = append(c.plans, cp)
		c.byID[cp.ID] = cp
	}
	return c, nil
}

// Get returns a copy of the plan with the given id.
func (c *Catalog) Get(planID string) (*Plan, bool) {
	p, ok := c.byID[planID]
	if !ok {
		return nil, false
	}
	return p.Clone(), true
}

// List returns copies of all plans in display order.
func (c *Catalog) List() []*Plan {
	out := make([]*Plan, 0, len(c.plans))
	for _, p := range c.plans {
		out = append(out, p.Clone())
	}
	return out
}

// Trial returns a copy of the trial template.
func (c *Catalog) Trial() *Plan { return c.trial.Clone() }

// DefaultTrial is the plan snapshot granted with every new trial.
func DefaultTrial() *Plan {
	return &Plan{
		ID:          TrialID,
		Name:        "Essai Gratuit",
		Description: "Période d'essai de 7 jours",
		Price:       types.EUR(0),
		Duration:    DurationMonthly,
		Features: []string{
			"Accès limité aux produits",
			"Support par email",
			"3 téléchargements par jour",
		},
		MaxProducts:  10,
		MaxDownloads: 21,
		Support:      SupportBasic,
	}
}

// Default returns the built-in basic/premium/enterprise catalog.
func Default() *Catalog {
	c, err := NewCatalog(DefaultTrial(),
		&Plan{
			ID:          "basic",
			Name:        "Basique",
			Description: "Parfait pour commencer",
			Price:       types.EUR(999),
			Duration:    DurationMonthly,
			Features: []string{
				"Accès à tous les produits",
				"Téléchargements illimités",
				"Support par email",
				"Mises à jour gratuites",
			},
			MaxProducts:  50,
			MaxDownloads: 100,
			Support:      SupportBasic,
		},
		&Plan{
			ID:          "premium",
			Name:        "Premium",
			Description: "Le plus populaire",
			Price:       types.EUR(1999),
			Duration:    DurationMonthly,
			Features: []string{
				"Tout du plan Basique",
				"Accès prioritaire aux nouveautés",
				"Support chat en direct",
				"Contenu exclusif",
				"Analytics avancées",
			},
			MaxProducts:  200,
			MaxDownloads: 500,
			Support:      SupportPremium,
			Popular:      true,
		},
		&Plan{
			ID:          "enterprise",
			Name:        "Entreprise",
			Description: "Pour les professionnels",
			Price:       types.EUR(4999),
			Duration:    DurationMonthly,
			Features: []string{
				"Tout du plan Premium",
				"Support téléphonique 24/7",
				"Gestionnaire de compte dédié",
				"API personnalisée",
				"Intégrations avancées",
				"Formation personnalisée",
			},
			Support: SupportEnterprise,
		},
	)
	if err != nil {
		panic(err)
	}
	return c
}

// ──────────────────────────────────────────────────
// File loading
// ──────────────────────────────────────────────────

type fileCatalog struct {
	Trial filePlan   `yaml:"trial" json:"trial"`
	Plans []filePlan `yaml:"plans" json:"plans"`
}

type filePlan struct {
	ID           string   `yaml:"id" json:"id"`
	Name         string   `yaml:"name" json:"name"`
	Description  string   `yaml:"description" json:"description"`
	Price        string   `yaml:"price" json:"price"`
	Currency     string   `yaml:"currency" json:"currency"`
	Duration     string   `yaml:"duration" json:"duration"`
	Features     []string `yaml:"features" json:"features"`
	MaxProducts  int      `yaml:"max_products" json:"max_products"`
	MaxDownloads int      `yaml:"max_downloads" json:"max_downloads"`
	Support      string   `yaml:"support" json:"support"`
	Popular      bool     `yaml:"popular" json:"popular"`
}

// LoadFile reads a catalog from a YAML (or JSON/TOML) file. When the file
// omits the trial section the built-in trial template is used.
func LoadFile(path string) (*Catalog, error) {
	var fc fileCatalog
	if err := cleanenv.ReadConfig(path, &fc); err != nil {
		return nil, fmt.Errorf("plan: read catalog %s: %w", path, err)
	}

	trial := DefaultTrial()
	if !fc.Trial.isZero() {
		t, err := fc.Trial.toPlan()
		if err != nil {
			return nil, err
		}
		trial = t
	}

	plans := make([]*Plan, 0, len(fc.Plans))
	for i := range fc.Plans {
		p, err := fc.Plans[i].toPlan()
		if err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	return NewCatalog(trial, plans...)
}

func (f *filePlan) isZero() bool {
	return f.Name == "" && f.Price == "" && f.MaxProducts == 0 && f.MaxDownloads == 0 && len(f.Features) == 0
}

func (f *filePlan) toPlan() (*Plan, error) {
	currency := f.Currency
	if currency == "" {
		currency = "eur"
	}
	price := types.Zero(currency)
	if f.Price != "" {
		m, err := types.ParseMajor(f.Price, currency)
		if err != nil {
			return nil, fmt.Errorf("plan: %q: %w", f.ID, err)
		}
		price = m
	}
	if price.LessThan(types.Zero(currency)) {
		return nil, fmt.Errorf("plan: %q: price must not be negative", f.ID)
	}
	if f.MaxProducts < 0 || f.MaxDownloads < 0 {
		return nil, fmt.Errorf("plan: %q: limits must not be negative", f.ID)
	}

	p := &Plan{
		ID:           strings.TrimSpace(f.ID),
		Name:         f.Name,
		Description:  f.Description,
		Price:        price,
		Duration:     Duration(orDefault(f.Duration, string(DurationMonthly))),
		Features:     append([]string(nil), f.Features...),
		MaxProducts:  f.MaxProducts,
		MaxDownloads: f.MaxDownloads,
		Support:      SupportTier(orDefault(f.Support, string(SupportBasic))),
		Popular:      f.Popular,
	}
	switch p.Duration {
	case DurationMonthly, DurationYearly:
	default:
		return nil, fmt.Errorf("plan: %q: unknown duration %q", p.ID, p.Duration)
	}
	return p, nil
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
