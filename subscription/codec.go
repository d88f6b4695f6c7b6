package subscription

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xraph/digigate/id"
	"github.com/xraph/digigate/plan"
	"github.com/xraph/digigate/types"
)

// ErrMalformed is returned when a stored record cannot be decoded into a
// consistent subscription.
var ErrMalformed = errors.New("digigate: malformed subscription record")

// record is the persisted document. Field names match what earlier mobile
// clients wrote so their records keep decoding.
type record struct {
	ID            string     `json:"id"`
	UserID        string     `json:"userId"`
	PlanID        string     `json:"planId"`
	Plan          *planDoc   `json:"plan,omitempty"`
	Status        Status     `json:"status"`
	StartDate     time.Time  `json:"startDate"`
	EndDate       time.Time  `json:"endDate"`
	TrialEndDate  *time.Time `json:"trialEndDate,omitempty"`
	IsTrialActive bool       `json:"isTrialActive"`
	AutoRenew     bool       `json:"autoRenew"`
	CancelledAt   *time.Time `json:"cancelledAt,omitempty"`
	CreatedAt     *time.Time `json:"createdAt,omitempty"`
	UpdatedAt     *time.Time `json:"updatedAt,omitempty"`
}

// planDoc accepts both the current Money object and the bare decimal price
// older clients stored next to a currency code.
type planDoc struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Description  string           `json:"description,omitempty"`
	Price        json.RawMessage  `json:"price,omitempty"`
	Currency     string           `json:"currency,omitempty"`
	Duration     plan.Duration    `json:"duration,omitempty"`
	Features     []string         `json:"features,omitempty"`
	MaxProducts  int              `json:"maxProducts,omitempty"`
	MaxDownloads int              `json:"maxDownloads,omitempty"`
	Support      plan.SupportTier `json:"supportLevel,omitempty"`
	Popular      bool             `json:"isPopular,omitempty"`
}

// Marshal encodes s in the persisted document format.
func Marshal(s *Subscription) ([]byte, error) {
	if s == nil || s.State == nil {
		return nil, fmt.Errorf("%w: nothing to encode", ErrMalformed)
	}

	rec := record{
		ID:            s.ID.String(),
		UserID:        s.UserID,
		PlanID:        s.PlanID,
		Status:        s.Status(),
		StartDate:     s.StartDate,
		EndDate:       s.EndDate,
		IsTrialActive: s.IsTrialActive(),
		AutoRenew:     s.AutoRenew,
	}
	if !s.CreatedAt.IsZero() {
		rec.CreatedAt = timePtr(s.CreatedAt)
		rec.UpdatedAt = timePtr(s.UpdatedAt)
	}
	if end, ok := s.TrialEndDate(); ok {
		rec.TrialEndDate = timePtr(end)
	}
	if c, ok := s.State.(Cancelled); ok && !c.At.IsZero() {
		rec.CancelledAt = timePtr(c.At)
	}
	if s.Plan != nil {
		doc, err := toPlanDoc(s.Plan)
		if err != nil {
			return nil, err
		}
		rec.Plan = doc
	}

	return json.Marshal(rec)
}

// Unmarshal decodes a persisted document. The stored status is the source
// of truth; isTrialActive only matters for trial records, where a false
// value means the trial already lapsed.
func Unmarshal(data []byte) (*Subscription, error) {
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	s := &Subscription{
		UserID:    rec.UserID,
		PlanID:    rec.PlanID,
		StartDate: rec.StartDate,
		EndDate:   rec.EndDate,
		AutoRenew: rec.AutoRenew,
	}

	// Legacy ids ("sub_<millis>") are not TypeIDs; keep the record, drop the id.
	if parsed, err := id.ParseSubscriptionID(rec.ID); err == nil {
		s.ID = parsed
	}
	if rec.CreatedAt != nil {
		s.CreatedAt = *rec.CreatedAt
	}
	if rec.UpdatedAt != nil {
		s.UpdatedAt = *rec.UpdatedAt
	}

	trialEnd := time.Time{}
	if rec.TrialEndDate != nil {
		trialEnd = *rec.TrialEndDate
	}

	switch rec.Status {
	case StatusTrial:
		switch {
		case !rec.IsTrialActive:
			s.State = Expired{At: trialEnd}
		case trialEnd.IsZero():
			s.State = Trial{EndsAt: rec.StartDate.Add(TrialLength)}
		default:
			s.State = Trial{EndsAt: trialEnd}
		}
	case StatusActive:
		s.State = Active{}
	case StatusCancelled:
		c := Cancelled{TrialEndsAt: trialEnd}
		if rec.CancelledAt != nil {
			c.At = *rec.CancelledAt
		}
		s.State = c
	case StatusExpired:
		s.State = Expired{At: trialEnd}
	default:
		return nil, fmt.Errorf("%w: unknown status %q", ErrMalformed, rec.Status)
	}

	if rec.Plan != nil {
		p, err := rec.Plan.toPlan()
		if err != nil {
			return nil, err
		}
		s.Plan = p
		if s.PlanID == "" {
			s.PlanID = p.ID
		}
	}

	return s, nil
}

func toPlanDoc(p *plan.Plan) (*planDoc, error) {
	price, err := json.Marshal(p.Price)
	if err != nil {
		return nil, err
	}
	return &planDoc{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		Price:        price,
		Currency:     strings.ToUpper(p.Price.Currency),
		Duration:     p.Duration,
		Features:     p.Features,
		MaxProducts:  p.MaxProducts,
		MaxDownloads: p.MaxDownloads,
		Support:      p.Support,
		Popular:      p.Popular,
	}, nil
}

func (d *planDoc) toPlan() (*plan.Plan, error) {
	p := &plan.Plan{
		ID:           d.ID,
		Name:         d.Name,
		Description:  d.Description,
		Duration:     d.Duration,
		Features:     d.Features,
		MaxProducts:  d.MaxProducts,
		MaxDownloads: d.MaxDownloads,
		Support:      d.Support,
		Popular:      d.Popular,
		Price:        types.Zero(d.Currency),
	}

	raw := bytes.TrimSpace(d.Price)
	switch {
	case len(raw) == 0 || bytes.Equal(raw, []byte("null")):
	case raw[0] == '{':
		var m types.Money
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, fmt.Errorf("%w: plan price: %v", ErrMalformed, err)
		}
		p.Price = m
	default:
		m, err := types.ParseMajor(strings.Trim(string(raw), `"`), d.Currency)
		if err != nil {
			return nil, fmt.Errorf("%w: plan price: %v", ErrMalformed, err)
		}
		p.Price = m
	}
	return p, nil
}

func timePtr(t time.Time) *time.Time { return &t }
