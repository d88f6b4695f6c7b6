package usage

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrMalformed is returned when a stored usage record cannot be decoded.
var ErrMalformed = errors.New("digigate: malformed usage record")

// legacyDateLayout is the day format earlier mobile clients stored.
const legacyDateLayout = "Mon Jan 02 2006"

func Marshal(r Record) ([]byte, error) {
	if r.ProductsAccessed == nil {
		r.ProductsAccessed = []string{}
	}
	return json.Marshal(r)
}

// Unmarshal decodes a stored record, clamping negative counters, dropping
// duplicate products and converting legacy day strings to DateLayout.
func Unmarshal(data []byte) (Record, error) {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	r.DailyDownloads = max(0, r.DailyDownloads)
	r.TotalDownloads = max(0, r.TotalDownloads)
	if t, err := time.Parse(legacyDateLayout, r.LastResetDate); err == nil {
		r.LastResetDate = t.Format(DateLayout)
	}

	seen := make(map[string]struct{}, len(r.ProductsAccessed))
	products := make([]string, 0, len(r.ProductsAccessed))
	for _, p := range r.ProductsAccessed {
		if _, dup := seen[p]; dup || p == "" {
			continue
		}
		seen[p] = struct{}{}
		products = append(products, p)
	}
	r.ProductsAccessed = products

	return r, nil
}
