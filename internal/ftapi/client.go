// Package ftapi is the fetch collaborator: it talks to the public job-search
// API (or a local sample in simulate mode) and hands raw records to the
// pipeline. The core never blocks on network I/O itself.
package ftapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"ftalerts/internal/config"
	"ftalerts/internal/offer"
)

type Client struct {
	cfg     config.Config
	auth    *AuthClient
	hc      *http.Client
	limiter *rate.Limiter
}

func New(cfg config.Config, auth *AuthClient) *Client {
	rps := cfg.API.RatePerSec
	if rps <= 0 {
		rps = 1
	}
	burst := cfg.API.Burst
	if burst <= 0 {
		burst = 1
	}
	return &Client{
		cfg:     cfg,
		auth:    auth,
		hc:      &http.Client{Timeout: 20 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// SearchParams mirror the partner API's search query surface.
type SearchParams struct {
	Keywords           []string
	Dept               string
	RadiusKm           int
	ROMECodes          []string
	Limit              int
	PublishedSinceDays int
}

// Search returns one page of raw records. The response may be empty,
// partially populated or shaped differently across API versions; callers
// must treat every field as optional.
func (c *Client) Search(ctx context.Context, p SearchParams) ([]offer.RawRecord, error) {
	if c.cfg.API.Simulate {
		return c.loadSample()
	}

	q := url.Values{}
	if len(p.Keywords) > 0 {
		q.Set("motsCles", strings.Join(p.Keywords, ","))
	}
	if p.Dept != "" {
		q.Set("departement", p.Dept)
	}
	if p.RadiusKm > 0 {
		q.Set("rayon", strconv.Itoa(p.RadiusKm))
	}
	if len(p.ROMECodes) > 0 {
		q.Set("codeROME", strings.Join(p.ROMECodes, ","))
	}
	limit := p.Limit
	if limit < 1 {
		limit = 1
	}
	if limit > 150 {
		limit = 150
	}
	q.Set("limit", strconv.Itoa(limit))
	if p.PublishedSinceDays > 0 {
		q.Set("publieeDepuis", strconv.Itoa(p.PublishedSinceDays))
	}

	body, err := c.get(ctx, c.cfg.API.SearchURL+"?"+q.Encode())
	if err != nil {
		return nil, err
	}
	return decodeRecords(body)
}

// Detail fetches the full record of a single offer by id.
func (c *Client) Detail(ctx context.Context, offerID string) (offer.RawRecord, error) {
	if offerID == "" {
		return nil, fmt.Errorf("detail: empty offer id")
	}
	if c.cfg.API.Simulate {
		records, err := c.loadSample()
		if err != nil {
			return nil, err
		}
		for _, r := range records {
			for _, key := range []string{"id", "offerId", "reference", "idOffre"} {
				if v, ok := r[key].(string); ok && v == offerID {
					return r, nil
				}
			}
		}
		return nil, fmt.Errorf("detail: offer %s not in sample", offerID)
	}

	u := strings.ReplaceAll(c.cfg.API.DetailURL, "{id}", url.PathEscape(offerID))
	body, err := c.get(ctx, u)
	if err != nil {
		return nil, err
	}
	var rec map[string]any
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil, fmt.Errorf("detail parse: %w", err)
	}
	return offer.RawRecord(rec), nil
}

func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	tok, err := c.auth.GetToken(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+tok)
	req.Header.Set("Accept", "application/json")

	res, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api get: %w", err)
	}
	defer res.Body.Close()
	// 206 shows up when the API serves a partial range of results.
	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("api status %d for %s", res.StatusCode, rawURL)
	}
	return io.ReadAll(io.LimitReader(res.Body, 8<<20))
}

// decodeRecords accepts both response shapes seen in the wild: an object
// with a "resultats" array, or a bare array.
func decodeRecords(body []byte) ([]offer.RawRecord, error) {
	var wrapped struct {
		Resultats []map[string]any `json:"resultats"`
	}
	if err := json.Unmarshal(body, &wrapped); err == nil && wrapped.Resultats != nil {
		return toRawRecords(wrapped.Resultats), nil
	}

	var bare []map[string]any
	if err := json.Unmarshal(body, &bare); err == nil {
		return toRawRecords(bare), nil
	}
	return nil, fmt.Errorf("unrecognized search response shape")
}

func toRawRecords(in []map[string]any) []offer.RawRecord {
	out := make([]offer.RawRecord, 0, len(in))
	for _, m := range in {
		out = append(out, offer.RawRecord(m))
	}
	return out
}

func (c *Client) loadSample() ([]offer.RawRecord, error) {
	path := filepath.Join(c.cfg.App.DataDir, "samples", "offres_sample.json")
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return decodeRecords(b)
}
