// Package pipeline wires fetch → prepare → upsert → notify. Fetch may fan
// out over the network; everything after it runs sequentially in one
// invocation (single writer).
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"ftalerts/internal/config"
	"ftalerts/internal/ftapi"
	"ftalerts/internal/ingest"
	"ftalerts/internal/normalize"
	"ftalerts/internal/notify"
	"ftalerts/internal/offer"
	"ftalerts/internal/store"
)

type Pipeline struct {
	Cfg    config.Config
	Client *ftapi.Client
	Store  *store.Store
	Log    *logrus.Logger
}

// FetchParams are the per-invocation search settings; zero values fall back
// to the configured defaults.
type FetchParams struct {
	Keywords           []string
	ROMECodes          []string
	Dept               string
	RadiusKm           int
	Limit              int
	PublishedSinceDays int
}

func (fp FetchParams) withDefaults(cfg config.Config) FetchParams {
	if len(fp.Keywords) == 0 {
		fp.Keywords = cfg.Search.Keywords
	}
	if fp.Dept == "" {
		fp.Dept = cfg.Search.Dept
	}
	if fp.RadiusKm == 0 {
		fp.RadiusKm = cfg.Search.RadiusKm
	}
	if fp.Limit == 0 {
		fp.Limit = cfg.Search.Limit
	}
	if fp.PublishedSinceDays == 0 {
		fp.PublishedSinceDays = cfg.Search.PublishedSinceDays
	}
	return fp
}

// FetchAndStore runs one ingest cycle and returns (prepared, newly inserted).
func (p *Pipeline) FetchAndStore(ctx context.Context, fp FetchParams) (int, int, error) {
	fp = fp.withDefaults(p.Cfg)

	raw, err := p.Client.Search(ctx, ftapi.SearchParams{
		Keywords:           fp.Keywords,
		Dept:               fp.Dept,
		RadiusKm:           fp.RadiusKm,
		ROMECodes:          fp.ROMECodes,
		Limit:              fp.Limit,
		PublishedSinceDays: fp.PublishedSinceDays,
	})
	if err != nil {
		return 0, 0, fmt.Errorf("search: %w", err)
	}
	p.Log.Infof("[fetch] got %d raw records", len(raw))

	raw = p.hydrate(ctx, raw)

	params := ingest.Params{
		Keywords:      fp.Keywords,
		ROMECodes:     fp.ROMECodes,
		SkipRelevance: p.Cfg.Search.SkipRelevance,
		RequireAll:    p.Cfg.Search.RequireAll,
		BaseLat:       p.Cfg.Base.Lat,
		BaseLon:       p.Cfg.Base.Lon,
		Weights:       p.Cfg.Scoring.Weights,
	}
	if p.Cfg.Search.StrictRadius {
		params.RadiusKm = float64(fp.RadiusKm)
	}

	prepared := ingest.Prepare(raw, params)

	inserted, err := p.Store.UpsertOffers(ctx, prepared)
	if err != nil {
		return len(prepared), 0, fmt.Errorf("upsert: %w", err)
	}
	p.Log.Infof("[fetch] prepared=%d inserted=%d", len(prepared), inserted)
	return len(prepared), inserted, nil
}

// hydrate fetches full detail records for search hits that arrived without a
// description. Hydration is best-effort: failures keep the original record.
func (p *Pipeline) hydrate(ctx context.Context, raw []offer.RawRecord) []offer.RawRecord {
	limit := p.Cfg.Search.HydrateLimit
	if limit <= 0 {
		return raw
	}

	var g errgroup.Group
	g.SetLimit(4)

	done := 0
	for i := range raw {
		if done >= limit {
			break
		}
		if _, ok := raw[i]["description"]; ok {
			continue
		}
		o := normalize.Offer(raw[i])
		if o.OfferID == "" {
			continue
		}
		done++
		i := i
		id := o.OfferID
		g.Go(func() error {
			dctx, cancel := context.WithTimeout(ctx, 20*time.Second)
			defer cancel()
			rec, err := p.Client.Detail(dctx, id)
			if err != nil {
				p.Log.Warnf("[hydrate] %s: %v", id, err)
				return nil
			}
			raw[i] = rec
			return nil
		})
	}
	_ = g.Wait()
	return raw
}

// RunDaily is the scheduled entry point: fetch and store, then send one
// notification covering never-alerted new offers and today's due follow-ups.
func (p *Pipeline) RunDaily(ctx context.Context, fp FetchParams) error {
	if _, _, err := p.FetchAndStore(ctx, fp); err != nil {
		return err
	}

	newRows, err := p.Store.RecentNew(ctx, 30)
	if err != nil {
		return fmt.Errorf("recent new: %w", err)
	}
	newRows = filterByScore(newRows, p.Cfg.Scoring.NotifyMinScore)

	fuRows, err := p.Store.DueFollowups(ctx, time.Now())
	if err != nil {
		return fmt.Errorf("due followups: %w", err)
	}

	var parts []string
	if len(newRows) > 0 {
		parts = append(parts, "New offers:\n"+notify.FormatOffers(newRows))
	}
	if len(fuRows) > 0 {
		parts = append(parts, "Due follow-ups:\n"+notify.FormatOffers(fuRows))
	}
	if len(parts) == 0 {
		parts = append(parts, "No new offers or follow-ups today.")
	}

	if err := notify.Send(p.Cfg, "FT Job Alerts — New & Follow-ups", strings.Join(parts, "\n\n")); err != nil {
		return fmt.Errorf("notify: %w", err)
	}

	if len(newRows) > 0 {
		ids := make([]string, 0, len(newRows))
		for _, r := range newRows {
			ids = append(ids, r.OfferID)
		}
		if err := p.Store.MarkNotified(ctx, ids, time.Now()); err != nil {
			return fmt.Errorf("mark notified: %w", err)
		}
	}
	return nil
}

func filterByScore(rows []store.OfferRow, min float64) []store.OfferRow {
	if min <= 0 {
		return rows
	}
	out := rows[:0:0]
	for _, r := range rows {
		if r.Score >= min {
			out = append(out, r)
		}
	}
	return out
}
