package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"ftalerts/internal/offer"
)

// OfferRow is one persisted offer plus its operator-controlled lifecycle
// fields.
type OfferRow struct {
	offer.Offer
	Source         string
	Status         offer.Status
	Followup1Due   string
	Followup2Due   string
	LastNotifiedAt string
	InsertedAt     string
	LastSeenAt     string
}

// QueryOpts filters and orders offer queries. Zero values disable a filter.
type QueryOpts struct {
	Days      int    // recency window on inserted_at, last N days
	FromDate  string // inclusive, YYYY-MM-DD or RFC3339, on inserted_at
	ToDate    string // inclusive (whole day when date-only)
	Status    string
	MinScore  *float64
	MinSalary *float64 // on parsed salary_min_monthly
	Limit     int
	OrderBy   string // score_desc | date_desc
}

const offerColumns = `offer_id, title, company, location, city, department, postal_code,
latitude, longitude, description, rome_codes, keywords, contract_type, published_at,
source, url, apply_url, salary, origin_code, offres_manque_candidats, salary_min_monthly,
score, status, followup1_due, followup2_due, last_notified_at, inserted_at, last_seen_at, raw_json`

func (s *Store) QueryOffers(ctx context.Context, opts QueryOpts) ([]OfferRow, error) {
	var where []string
	var params []any

	if opts.Days > 0 {
		start := time.Now().UTC().AddDate(0, 0, -opts.Days).Format(time.RFC3339)
		where = append(where, "inserted_at >= ?")
		params = append(params, start)
	}
	if opts.FromDate != "" {
		where = append(where, "inserted_at >= ?")
		params = append(params, opts.FromDate)
	}
	if opts.ToDate != "" {
		if len(opts.ToDate) == 10 {
			// date-only bound: include the whole day
			if d, err := time.Parse("2006-01-02", opts.ToDate); err == nil {
				where = append(where, "inserted_at < ?")
				params = append(params, d.AddDate(0, 0, 1).Format(time.RFC3339))
			}
		} else {
			where = append(where, "inserted_at <= ?")
			params = append(params, opts.ToDate)
		}
	}
	if opts.Status != "" {
		where = append(where, "status = ?")
		params = append(params, opts.Status)
	}
	if opts.MinScore != nil {
		where = append(where, "score >= ?")
		params = append(params, *opts.MinScore)
	}
	if opts.MinSalary != nil {
		where = append(where, "salary_min_monthly >= ?")
		params = append(params, *opts.MinSalary)
	}

	order := map[string]string{
		"score_desc": "score DESC, inserted_at DESC",
		"date_desc":  "inserted_at DESC, score DESC",
	}[opts.OrderBy]
	if order == "" {
		order = "score DESC, inserted_at DESC"
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 100
	}

	query := fmt.Sprintf("SELECT %s FROM offers", offerColumns)
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY %s LIMIT ?", order)
	params = append(params, limit)

	return s.selectRows(ctx, query, params...)
}

// SetStatus is the only operation that moves an offer through the workflow.
// Moving to "applied" schedules the two follow-up reminders; every other
// status clears them.
func (s *Store) SetStatus(ctx context.Context, offerID string, st offer.Status, now time.Time) error {
	var fu1, fu2 any
	if st == offer.StatusApplied {
		d1, d2 := offer.FollowupDates(now)
		fu1 = d1.Format("2006-01-02")
		fu2 = d2.Format("2006-01-02")
	}
	return s.withWriteLock(func() error {
		res, err := s.Pool.ExecContext(ctx,
			`UPDATE offers SET status=?, followup1_due=?, followup2_due=? WHERE offer_id=?;`,
			string(st), fu1, fu2, offerID,
		)
		if err != nil {
			return fmt.Errorf("set status: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("set status: offer %s not found", offerID)
		}
		return nil
	})
}

// DueFollowups lists applied offers whose follow-up reminder falls on the
// given day, best score first.
func (s *Store) DueFollowups(ctx context.Context, today time.Time) ([]OfferRow, error) {
	t := today.Format("2006-01-02")
	query := fmt.Sprintf(`SELECT %s FROM offers
WHERE status='applied' AND (followup1_due = ? OR followup2_due = ?)
ORDER BY score DESC`, offerColumns)
	return s.selectRows(ctx, query, t, t)
}

// RecentNew lists never-notified offers still in "new", freshest first.
// Used by the notifier to avoid re-alerting the same offer.
func (s *Store) RecentNew(ctx context.Context, limit int) ([]OfferRow, error) {
	if limit <= 0 {
		limit = 50
	}
	query := fmt.Sprintf(`SELECT %s FROM offers
WHERE status='new' AND (last_notified_at IS NULL OR last_notified_at = '')
ORDER BY inserted_at DESC, score DESC
LIMIT ?`, offerColumns)
	return s.selectRows(ctx, query, limit)
}

func (s *Store) MarkNotified(ctx context.Context, offerIDs []string, now time.Time) error {
	if len(offerIDs) == 0 {
		return nil
	}
	ts := now.UTC().Format(time.RFC3339)
	return s.withWriteLock(func() error {
		tx, err := s.Pool.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()
		for _, id := range offerIDs {
			if _, err := tx.ExecContext(ctx,
				`UPDATE offers SET last_notified_at=? WHERE offer_id=?;`, ts, id,
			); err != nil {
				return fmt.Errorf("mark notified %s: %w", id, err)
			}
		}
		return tx.Commit()
	})
}

// updatableColumns whitelists what UpdateFields may touch; lifecycle
// timestamps and the primary key stay off-limits.
var updatableColumns = map[string]bool{
	"title": true, "company": true, "location": true, "city": true,
	"department": true, "postal_code": true, "latitude": true, "longitude": true,
	"description": true, "contract_type": true, "published_at": true,
	"url": true, "apply_url": true, "salary": true, "salary_min_monthly": true,
	"origin_code": true, "raw_json": true,
}

// UpdateFields patches individual columns of one offer, e.g. after a detail
// lookup hydrated a fuller description.
func (s *Store) UpdateFields(ctx context.Context, offerID string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	var set []string
	var params []any
	for k, v := range fields {
		if !updatableColumns[k] {
			return fmt.Errorf("update fields: column %q not updatable", k)
		}
		set = append(set, k+"=?")
		params = append(params, v)
	}
	params = append(params, offerID)
	query := fmt.Sprintf("UPDATE offers SET %s WHERE offer_id=?;", strings.Join(set, ", "))
	return s.withWriteLock(func() error {
		if _, err := s.Pool.ExecContext(ctx, query, params...); err != nil {
			return fmt.Errorf("update fields: %w", err)
		}
		return nil
	})
}

func (s *Store) selectRows(ctx context.Context, query string, params ...any) ([]OfferRow, error) {
	rows, err := s.Pool.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []OfferRow
	for rows.Next() {
		r, err := scanOffer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func scanOffer(rows *sql.Rows) (OfferRow, error) {
	var r OfferRow
	var lat, lon, minSalary sql.NullFloat64
	var shortage sql.NullInt64
	var fu1, fu2, notified, rawJSON sql.NullString
	var romeCodes, keywords, status string

	err := rows.Scan(
		&r.OfferID, &r.Title, &r.Company, &r.Location, &r.City, &r.Department, &r.PostalCode,
		&lat, &lon, &r.Description, &romeCodes, &keywords, &r.ContractType, &r.PublishedAt,
		&r.Source, &r.URL, &r.ApplyURL, &r.Salary, &r.OriginCode, &shortage, &minSalary,
		&r.Score, &status, &fu1, &fu2, &notified, &r.InsertedAt, &r.LastSeenAt, &rawJSON,
	)
	if err != nil {
		return OfferRow{}, err
	}

	if lat.Valid && lon.Valid {
		r.Latitude, r.Longitude = &lat.Float64, &lon.Float64
	}
	if shortage.Valid {
		n := int(shortage.Int64)
		r.ShortageFlag = &n
	}
	if minSalary.Valid {
		r.SalaryMinMonthly = &minSalary.Float64
	}
	r.ROMECodes = splitList(romeCodes)
	r.Keywords = splitList(keywords)
	r.Status = offer.Status(status)
	r.Followup1Due = fu1.String
	r.Followup2Due = fu2.String
	r.LastNotifiedAt = notified.String
	r.RawJSON = rawJSON.String
	return r, nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
