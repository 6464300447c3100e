package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ftalerts/internal/offer"
)

// Per-field merge policy applied on offer_id conflict. Most fields track the
// latest fetch; the two coalesce fields keep their stored value unless the
// new batch actually carries one, so a source that stops sending a signal
// does not erase it.
type mergeStrategy int

const (
	overwrite mergeStrategy = iota
	coalesce
)

var mergeColumns = []struct {
	name     string
	strategy mergeStrategy
}{
	{"title", overwrite},
	{"company", overwrite},
	{"location", overwrite},
	{"city", overwrite},
	{"department", overwrite},
	{"postal_code", overwrite},
	{"latitude", overwrite},
	{"longitude", overwrite},
	{"description", overwrite},
	{"rome_codes", overwrite},
	{"keywords", overwrite},
	{"contract_type", overwrite},
	{"published_at", overwrite},
	{"url", overwrite},
	{"apply_url", overwrite},
	{"salary", overwrite},
	{"origin_code", overwrite},
	{"score", overwrite},
	{"raw_json", overwrite},
	{"offres_manque_candidats", coalesce},
	{"salary_min_monthly", coalesce},
}

// upsertSQL is assembled from mergeColumns so the policy table above is the
// single place the conflict behavior is defined. inserted_at is written only
// on first insert; last_seen_at refreshes on every upsert. status and the
// follow-up/notification columns are never touched here.
var upsertSQL = buildUpsertSQL()

func buildUpsertSQL() string {
	cols := []string{"offer_id"}
	for _, mc := range mergeColumns {
		cols = append(cols, mc.name)
	}
	cols = append(cols, "inserted_at", "last_seen_at")

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")

	var set []string
	for _, mc := range mergeColumns {
		switch mc.strategy {
		case overwrite:
			set = append(set, fmt.Sprintf("%s=excluded.%s", mc.name, mc.name))
		case coalesce:
			set = append(set, fmt.Sprintf("%s=COALESCE(excluded.%s, offers.%s)", mc.name, mc.name, mc.name))
		}
	}
	set = append(set, "last_seen_at=excluded.last_seen_at")

	return fmt.Sprintf(
		"INSERT INTO offers (%s) VALUES (%s) ON CONFLICT(offer_id) DO UPDATE SET %s;",
		strings.Join(cols, ", "), placeholders, strings.Join(set, ", "),
	)
}

func upsertArgs(o offer.Offer, now string) []any {
	var lat, lon any
	if o.HasCoordinates() {
		lat, lon = *o.Latitude, *o.Longitude
	}
	var shortage any
	if o.ShortageFlag != nil {
		shortage = *o.ShortageFlag
	}
	var minSalary any
	if o.SalaryMinMonthly != nil {
		minSalary = *o.SalaryMinMonthly
	}
	return []any{
		o.OfferID,
		o.Title,
		o.Company,
		o.Location,
		o.City,
		o.Department,
		o.PostalCode,
		lat,
		lon,
		o.Description,
		strings.Join(o.ROMECodes, ","),
		strings.Join(o.Keywords, ","),
		o.ContractType,
		o.PublishedAt,
		o.URL,
		o.ApplyURL,
		o.Salary,
		o.OriginCode,
		o.Score,
		o.RawJSON,
		shortage,
		minSalary,
		now,
		now,
	}
}

// UpsertOffers merges a prepared batch into the store and returns the number
// of genuinely new rows (inserts, not updates). The whole batch commits as
// one transaction under the cross-process writer lock.
func (s *Store) UpsertOffers(ctx context.Context, offers []offer.Offer) (inserted int, err error) {
	err = s.withWriteLock(func() error {
		tx, err := s.Pool.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin upsert tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		now := time.Now().UTC().Format(time.RFC3339)
		for _, o := range offers {
			if o.OfferID == "" {
				continue
			}

			// Single writer under the lock, so exists-then-upsert is safe
			// and tells inserts apart from updates.
			var one int
			exists := tx.QueryRowContext(ctx,
				`SELECT 1 FROM offers WHERE offer_id = ? LIMIT 1;`, o.OfferID,
			).Scan(&one) == nil

			if _, err := tx.ExecContext(ctx, upsertSQL, upsertArgs(o, now)...); err != nil {
				return fmt.Errorf("upsert offer %s: %w", o.OfferID, err)
			}
			if !exists {
				inserted++
			}
		}
		return tx.Commit()
	})
	return inserted, err
}
