// Package fingerprint computes a deterministic content hash over a
// competitor record set. The hash is the sole staleness signal for cached
// analyses: any change to a record's representative price or last-modified
// timestamp changes the fingerprint, while display-only mutations do not,
// which keeps cache thrashing down.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"

	"github.com/propfolio/market-engine/pkg/models"
)

// projection is the reduced, pricing-relevant view of one record that
// participates in the hash.
type projection struct {
	ID        string  `json:"id"`
	AvgPrice  float64 `json:"avg_price"`
	UpdatedAt int64   `json:"updated_at"`
}

// Compute returns the fingerprint of a competitor set as a hex string.
// The result is independent of input order. An empty set has a defined,
// stable fingerprint.
func Compute(records []*models.Competitor) string {
	projections := make([]projection, 0, len(records))
	for _, r := range records {
		projections = append(projections, projection{
			ID:        r.ID.String(),
			AvgPrice:  r.Pricing.PerAreaAvg,
			UpdatedAt: r.UpdatedAt.UTC().Unix(),
		})
	}
	sort.Slice(projections, func(i, j int) bool {
		return projections[i].ID < projections[j].ID
	})

	// Field order in the struct fixes the serialization, so the digest is
	// stable across processes.
	data, _ := json.Marshal(projections)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
