package usage_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/digigate/usage"
)

func TestDateKey(t *testing.T) {
	abidjan := time.FixedZone("GMT", 0)
	paris := time.FixedZone("CEST", 2*3600)
	at := time.Date(2026, 5, 4, 23, 30, 0, 0, time.UTC)

	assert.Equal(t, "2026-05-04", usage.DateKey(at, nil))
	assert.Equal(t, "2026-05-04", usage.DateKey(at, abidjan))
	assert.Equal(t, "2026-05-05", usage.DateKey(at, paris))
}

func TestRollover(t *testing.T) {
	r := usage.Record{DailyDownloads: 3, TotalDownloads: 9, LastResetDate: "2026-05-04", ProductsAccessed: []string{"p1"}}

	same, changed := r.Rollover("2026-05-04")
	assert.False(t, changed)
	assert.Equal(t, r, same)

	next, changed := r.Rollover("2026-05-05")
	assert.True(t, changed)
	assert.Equal(t, 0, next.DailyDownloads)
	assert.Equal(t, 9, next.TotalDownloads)
	assert.Equal(t, "2026-05-05", next.LastResetDate)
	assert.Equal(t, []string{"p1"}, next.ProductsAccessed)
	assert.Equal(t, 3, r.DailyDownloads, "receiver must not change")
}

func TestWithDownload(t *testing.T) {
	r := usage.New("2026-05-04")

	r = r.WithDownload("p1")
	r = r.WithDownload("p1")
	r = r.WithDownload("p2")

	assert.Equal(t, 3, r.DailyDownloads)
	assert.Equal(t, 3, r.TotalDownloads)
	assert.Equal(t, []string{"p1", "p2"}, r.ProductsAccessed)
	assert.Equal(t, 2, r.DistinctProducts())
}

func TestWithAccess(t *testing.T) {
	r := usage.New("2026-05-04")

	r, added := r.WithAccess("p1")
	assert.True(t, added)
	r, added = r.WithAccess("p1")
	assert.False(t, added)
	_, added = r.WithAccess("")
	assert.False(t, added)

	assert.True(t, r.HasAccessed("p1"))
	assert.False(t, r.HasAccessed("p2"))
	assert.Equal(t, 0, r.TotalDownloads)
}

func TestCloneDoesNotAlias(t *testing.T) {
	r := usage.Record{ProductsAccessed: make([]string, 1, 8)}
	r.ProductsAccessed[0] = "p1"

	a := r.WithDownload("p2")
	b := r.WithDownload("p3")
	assert.Equal(t, []string{"p1", "p2"}, a.ProductsAccessed)
	assert.Equal(t, []string{"p1", "p3"}, b.ProductsAccessed)
}

func TestUnmarshalNormalises(t *testing.T) {
	data := []byte(`{"dailyDownloads":-2,"totalDownloads":5,"lastResetDate":"Mon May 04 2026","productsAccessed":["a","b","a",""]}`)

	r, err := usage.Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, 0, r.DailyDownloads)
	assert.Equal(t, 5, r.TotalDownloads)
	assert.Equal(t, "2026-05-04", r.LastResetDate)
	assert.Equal(t, []string{"a", "b"}, r.ProductsAccessed)
}

func TestMarshalEmptyProducts(t *testing.T) {
	data, err := usage.Marshal(usage.Record{LastResetDate: "2026-05-04"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"dailyDownloads":0,"totalDownloads":0,"lastResetDate":"2026-05-04","productsAccessed":[]}`, string(data))
}

func TestUnmarshalRejectsGarbage(t *testing.T) {
	_, err := usage.Unmarshal([]byte(`not json`))
	assert.True(t, errors.Is(err, usage.ErrMalformed))
}
