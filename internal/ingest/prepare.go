// Package ingest turns a raw API batch into deduplicated offers ready for
// upsert: normalize, gate, score, then collapse duplicates by offer id.
package ingest

import (
	"strings"

	"ftalerts/internal/normalize"
	"ftalerts/internal/offer"
	"ftalerts/internal/rank"
	"ftalerts/internal/relevance"
	"ftalerts/internal/salary"
)

// Params controls the optional gates and the scoring context of one batch.
type Params struct {
	// Query context stamped onto every prepared offer.
	Keywords  []string
	ROMECodes []string

	// SkipRelevance disables the robotics inclusion/exclusion gate.
	SkipRelevance bool

	// RequireAll drops offers whose text lacks any of these fixed phrases
	// (case-insensitive substring match).
	RequireAll []string

	// RadiusKm, when > 0 together with base coordinates, drops offers
	// lacking coordinates or sitting beyond the radius.
	RadiusKm float64

	BaseLat *float64
	BaseLon *float64

	Weights rank.Weights
}

// Prepare normalizes, filters, scores and deduplicates a raw batch.
//
// Records with an empty identifier are dropped silently. Within a batch,
// offers sharing an id collapse to the last surviving occurrence; the output
// keeps the order in which ids were first seen. That emission order is a
// choice of this implementation and is covered by tests — callers needing a
// specific order should sort.
func Prepare(raw []offer.RawRecord, p Params) []offer.Offer {
	byID := make(map[string]int)
	var out []offer.Offer

	for _, r := range raw {
		o := normalize.Offer(r)
		if o.OfferID == "" {
			continue
		}
		if !p.SkipRelevance && !relevance.IsRelevant(o.Title, o.Description) {
			continue
		}
		if !containsAll(o, p.RequireAll) {
			continue
		}
		if !passesRadius(o, p) {
			continue
		}

		o.Keywords = append([]string(nil), p.Keywords...)
		o.ROMECodes = append([]string(nil), p.ROMECodes...)
		o.Score = rank.ScoreOffer(o, p.BaseLat, p.BaseLon, p.Weights)
		if v, ok := salary.ParseMinMonthly(o.Salary); ok {
			o.SalaryMinMonthly = &v
		}

		if i, seen := byID[o.OfferID]; seen {
			out[i] = o // last occurrence wins, slot keeps first-seen order
			continue
		}
		byID[o.OfferID] = len(out)
		out = append(out, o)
	}
	return out
}

func containsAll(o offer.Offer, phrases []string) bool {
	if len(phrases) == 0 {
		return true
	}
	text := strings.ToLower(o.Title + " " + o.Description)
	for _, ph := range phrases {
		ph = strings.ToLower(strings.TrimSpace(ph))
		if ph == "" {
			continue
		}
		if !strings.Contains(text, ph) {
			return false
		}
	}
	return true
}

func passesRadius(o offer.Offer, p Params) bool {
	if p.RadiusKm <= 0 || p.BaseLat == nil || p.BaseLon == nil {
		return true
	}
	if !o.HasCoordinates() {
		return false
	}
	return rank.HaversineKm(*p.BaseLat, *p.BaseLon, *o.Latitude, *o.Longitude) <= p.RadiusKm
}
