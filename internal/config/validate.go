package config

import (
	"errors"
	"fmt"
	"strings"
)

func Validate(cfg Config) error {
	var errs []string

	if cfg.App.DataDir == "" {
		errs = append(errs, "app.data_dir is required")
	}
	if !cfg.API.Simulate {
		if cfg.API.AuthURL == "" {
			errs = append(errs, "api.auth_url is required for real API calls")
		}
		if cfg.API.SearchURL == "" {
			errs = append(errs, "api.search_url is required for real API calls")
		}
	}
	if cfg.API.RatePerSec <= 0 {
		errs = append(errs, "api.rate_per_sec must be > 0")
	}
	if cfg.Search.Limit < 1 || cfg.Search.Limit > 150 {
		errs = append(errs, "search.limit must be 1..150")
	}
	if cfg.Search.RadiusKm < 0 {
		errs = append(errs, "search.radius_km must be >= 0")
	}
	if (cfg.Base.Lat == nil) != (cfg.Base.Lon == nil) {
		errs = append(errs, "base.lat and base.lon must be set together")
	}

	w := cfg.Scoring.Weights
	for name, v := range map[string]float64{
		"keyword": w.Keyword, "contract": w.Contract,
		"distance": w.Distance, "salary": w.Salary,
	} {
		if v < 0 {
			errs = append(errs, fmt.Sprintf("scoring.weights.%s must be >= 0", name))
		}
	}
	if cfg.Scoring.NotifyMinScore < 0 {
		errs = append(errs, "scoring.notify_min_score must be >= 0")
	}

	if len(errs) > 0 {
		return errors.New("config validation failed:\n- " + strings.Join(errs, "\n- "))
	}
	return nil
}
