package model

import "strings"

// CoachRecord is one staff member in the final directory. Every field is
// always present on the wire; unknown values are empty strings.
type CoachRecord struct {
	Name            string `json:"name"`
	Position        string `json:"position"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	SocialHandle    string `json:"social_handle"`
	SourceReference string `json:"source_reference"`
}

// Key returns the uniqueness key (lower name, lower position).
func (r CoachRecord) Key() RecordKey {
	return RecordKey{
		Name:     strings.ToLower(r.Name),
		Position: strings.ToLower(r.Position),
	}
}

// Map returns the flat wire mapping used at storage and transport boundaries.
func (r CoachRecord) Map() map[string]string {
	return map[string]string{
		"name":             r.Name,
		"position":         r.Position,
		"email":            r.Email,
		"phone":            r.Phone,
		"social_handle":    r.SocialHandle,
		"source_reference": r.SourceReference,
	}
}

// RecordKey identifies a coach for duplicate suppression.
type RecordKey struct {
	Name     string
	Position string
}

// RawRecord is a candidate field-set produced by a parser before
// validation and normalization.
type RawRecord struct {
	Name         string `json:"name"`
	Position     string `json:"position"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	SocialHandle string `json:"social_handle"`
	Source       string `json:"source_reference"`
}

// Complete reports whether both name and position are present.
func (r RawRecord) Complete() bool {
	return strings.TrimSpace(r.Name) != "" && strings.TrimSpace(r.Position) != ""
}

// Record converts the raw field-set into a CoachRecord without any
// normalization.
func (r RawRecord) Record() CoachRecord {
	return CoachRecord{
		Name:            r.Name,
		Position:        r.Position,
		Email:           r.Email,
		Phone:           r.Phone,
		SocialHandle:    r.SocialHandle,
		SourceReference: r.Source,
	}
}

// Query identifies the directory being searched for.
type Query struct {
	School string `json:"school"`
	Sport  string `json:"sport"`
}

// CacheKey returns the lowercased, trimmed school|sport key.
func (q Query) CacheKey() string {
	return strings.ToLower(strings.TrimSpace(q.School)) + "|" + strings.ToLower(strings.TrimSpace(q.Sport))
}
