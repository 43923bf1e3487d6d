package fingerprint

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/propfolio/market-engine/pkg/models"
)

func record(id uuid.UUID, avgPrice float64, updatedAt time.Time) *models.Competitor {
	return &models.Competitor{
		ID:        id,
		Name:      "Green Acres Phase II",
		City:      "Pune",
		Area:      "Baner",
		Pricing:   models.PricingInfo{PerAreaAvg: avgPrice},
		UpdatedAt: updatedAt,
	}
}

func TestCompute_Deterministic(t *testing.T) {
	ts := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	a := record(uuid.New(), 5200, ts)
	b := record(uuid.New(), 4800, ts)

	assert.Equal(t, Compute([]*models.Competitor{a, b}), Compute([]*models.Competitor{a, b}))
}

func TestCompute_OrderInsensitive(t *testing.T) {
	ts := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	a := record(uuid.New(), 5200, ts)
	b := record(uuid.New(), 4800, ts)

	assert.Equal(t, Compute([]*models.Competitor{a, b}), Compute([]*models.Competitor{b, a}))
}

func TestCompute_PriceChangeChangesFingerprint(t *testing.T) {
	ts := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	id := uuid.New()

	before := Compute([]*models.Competitor{record(id, 5200, ts)})
	after := Compute([]*models.Competitor{record(id, 5300, ts)})

	assert.NotEqual(t, before, after)
}

func TestCompute_TimestampChangeChangesFingerprint(t *testing.T) {
	id := uuid.New()
	ts := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	before := Compute([]*models.Competitor{record(id, 5200, ts)})
	after := Compute([]*models.Competitor{record(id, 5200, ts.Add(time.Hour))})

	assert.NotEqual(t, before, after)
}

func TestCompute_IgnoresDisplayOnlyFields(t *testing.T) {
	id := uuid.New()
	ts := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	a := record(id, 5200, ts)
	b := record(id, 5200, ts)
	b.Name = "Renamed Towers"
	b.Developer = "Someone Else"
	b.Amenities = []string{"gym"}

	// Display-only mutations must not thrash the cache.
	assert.Equal(t, Compute([]*models.Competitor{a}), Compute([]*models.Competitor{b}))
}

func TestCompute_EmptySetIsStable(t *testing.T) {
	assert.Equal(t, Compute(nil), Compute([]*models.Competitor{}))
	assert.NotEmpty(t, Compute(nil))
}
