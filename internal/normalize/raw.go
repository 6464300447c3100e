package normalize

import (
	"fmt"
	"math"

	"ftalerts/internal/offer"
)

// Alias resolution over the raw record: each accessor takes an ordered list
// of paths and returns the first present, type-compatible value. A path is a
// key chain into nested objects ("lieuTravail", "libelle"). Anything that
// does not fit degrades to the zero value, never to an error — the upstream
// schema has renamed fields across versions and we must survive that.

type path []string

func lookup(r offer.RawRecord, p path) (any, bool) {
	var cur any = map[string]any(r)
	for _, key := range p {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[key]
		if !ok || cur == nil {
			return nil, false
		}
	}
	return cur, true
}

// firstString walks paths in order and returns the first non-empty string
// coercion. JSON numbers coerce to their decimal form so numeric ids work.
func firstString(r offer.RawRecord, paths ...path) string {
	for _, p := range paths {
		v, ok := lookup(r, p)
		if !ok {
			continue
		}
		if s := coerceString(v); s != "" {
			return s
		}
	}
	return ""
}

func coerceString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1e15 {
			return fmt.Sprintf("%.0f", t)
		}
		return fmt.Sprintf("%g", t)
	case int:
		return fmt.Sprintf("%d", t)
	case int64:
		return fmt.Sprintf("%d", t)
	case bool:
		if t {
			return "true"
		}
		return "false"
	}
	return ""
}

// firstFloat returns the first numeric value found, or nil.
func firstFloat(r offer.RawRecord, paths ...path) *float64 {
	for _, p := range paths {
		v, ok := lookup(r, p)
		if !ok {
			continue
		}
		switch t := v.(type) {
		case float64:
			f := t
			return &f
		case int:
			f := float64(t)
			return &f
		case int64:
			f := float64(t)
			return &f
		}
	}
	return nil
}

// firstBoolFlag maps a present value to 1/0 and an absent one to nil,
// keeping "unknown" distinct from "no".
func firstBoolFlag(r offer.RawRecord, paths ...path) *int {
	for _, p := range paths {
		v, ok := lookup(r, p)
		if !ok {
			continue
		}
		n := 0
		switch t := v.(type) {
		case bool:
			if t {
				n = 1
			}
		case float64:
			if t != 0 {
				n = 1
			}
		case int:
			if t != 0 {
				n = 1
			}
		case string:
			if t != "" && t != "0" && t != "false" {
				n = 1
			}
		default:
			continue
		}
		return &n
	}
	return nil
}

func hasObject(r offer.RawRecord, key string) bool {
	v, ok := r[key]
	if !ok {
		return false
	}
	_, ok = v.(map[string]any)
	return ok
}
