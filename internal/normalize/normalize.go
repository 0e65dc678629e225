// Package normalize canonicalizes coach fields and suppresses duplicates.
// Output order follows input order, so identical input yields identical
// output.
package normalize

import (
	"go.uber.org/zap"

	"github.com/sells-group/coach-directory/internal/model"
)

// DefaultHardCap bounds the final record list.
const DefaultHardCap = 15

// Record returns r with every field canonicalized. It is idempotent.
func Record(r model.CoachRecord) model.CoachRecord {
	return model.CoachRecord{
		Name:            Name(r.Name),
		Position:        Position(r.Position),
		Email:           Email(r.Email),
		Phone:           Phone(r.Phone),
		SocialHandle:    Social(r.SocialHandle),
		SourceReference: r.SourceReference,
	}
}

// Records normalizes raw field-sets in arrival order and keeps the first
// record for each (name, position) key, stopping at limit. A limit of zero
// or less uses DefaultHardCap.
func Records(raw []model.RawRecord, limit int) []model.CoachRecord {
	recs := make([]model.CoachRecord, 0, len(raw))
	for _, r := range raw {
		recs = append(recs, r.Record())
	}
	return Dedup(recs, limit)
}

// Dedup normalizes recs and drops later duplicates, stopping once limit
// records are kept.
func Dedup(recs []model.CoachRecord, limit int) []model.CoachRecord {
	if limit <= 0 {
		limit = DefaultHardCap
	}
	out := make([]model.CoachRecord, 0, min(len(recs), limit))
	seen := make(map[model.RecordKey]struct{}, len(recs))
	for _, r := range recs {
		n := Record(r)
		if n.Name == "" || n.Position == "" {
			continue
		}
		key := n.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, n)
		if len(out) >= limit {
			zap.L().Debug("normalize: reached hard cap", zap.Int("cap", limit), zap.Int("input", len(recs)))
			break
		}
	}
	return out
}
