// engine configuration: one YAML file in the data dir, credentials overlaid
// from the environment (.env supported).
package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"ftalerts/internal/rank"
)

type Config struct {
	App struct {
		DataDir string `yaml:"data_dir"`
	} `yaml:"app"`

	API struct {
		// Simulate skips the network and reads data/samples/offres_sample.json.
		Simulate   bool    `yaml:"simulate"`
		AuthURL    string  `yaml:"auth_url"`
		SearchURL  string  `yaml:"search_url"`
		DetailURL  string  `yaml:"detail_url"` // contains {id}
		ClientID   string  `yaml:"client_id"`
		Scope      string  `yaml:"scope"`
		RatePerSec float64 `yaml:"rate_per_sec"`
		Burst      int     `yaml:"burst"`
	} `yaml:"api"`

	Search struct {
		Keywords           []string `yaml:"keywords"`
		Dept               string   `yaml:"dept"`
		RadiusKm           int      `yaml:"radius_km"`
		PublishedSinceDays int      `yaml:"published_since_days"`
		Limit              int      `yaml:"limit"`
		// StrictRadius drops offers without coordinates when a radius is set.
		StrictRadius  bool     `yaml:"strict_radius"`
		RequireAll    []string `yaml:"require_all"`
		SkipRelevance bool     `yaml:"skip_relevance"`
		HydrateLimit  int      `yaml:"hydrate_limit"`
	} `yaml:"search"`

	Base struct {
		Lat *float64 `yaml:"lat"`
		Lon *float64 `yaml:"lon"`
	} `yaml:"base"`

	Scoring struct {
		Weights        rank.Weights `yaml:"weights"`
		NotifyMinScore float64      `yaml:"notify_min_score"`
	} `yaml:"scoring"`

	Email struct {
		To       string `yaml:"to"`
		SMTPHost string `yaml:"smtp_host"`
		SMTPPort int    `yaml:"smtp_port"`
		User     string `yaml:"user"`
		StartTLS bool   `yaml:"starttls"`
	} `yaml:"email"`
}

func Load(path string) (Config, error) {
	cfg := Defaults()

	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}

	overlayEnv(&cfg)
	return cfg, nil
}

func Defaults() Config {
	var cfg Config
	cfg.App.DataDir = "data"
	cfg.API.Simulate = true
	cfg.API.AuthURL = "https://entreprise.francetravail.fr/connexion/oauth2/access_token?realm=/partenaire"
	cfg.API.SearchURL = "https://api.francetravail.io/partenaire/offresdemploi/v2/offres/search"
	cfg.API.DetailURL = "https://api.francetravail.io/partenaire/offresdemploi/v2/offres/{id}"
	cfg.API.RatePerSec = 2
	cfg.API.Burst = 2
	cfg.Search.Keywords = []string{"ros2", "c++", "vision"}
	cfg.Search.Dept = "68"
	cfg.Search.RadiusKm = 50
	cfg.Search.Limit = 50
	cfg.Email.SMTPPort = 587
	cfg.Email.StartTLS = true
	cfg.Scoring.Weights = rank.DefaultWeights()
	return cfg
}

// overlayEnv lets credentials and switches come from the environment or a
// local .env file without touching the YAML on disk.
func overlayEnv(cfg *Config) {
	_ = godotenv.Load() // absent .env is fine

	if v := os.Getenv("FT_CLIENT_ID"); v != "" {
		cfg.API.ClientID = v
	}
	if v := os.Getenv("FT_API_SIMULATE"); v != "" {
		cfg.API.Simulate = envBool(v)
	}
	if v := os.Getenv("FT_SCOPE"); v != "" {
		cfg.API.Scope = v
	}
	if v := os.Getenv("EMAIL_TO"); v != "" {
		cfg.Email.To = v
	}
	if v := os.Getenv("SMTP_HOST"); v != "" {
		cfg.Email.SMTPHost = v
	}
	if v := os.Getenv("SMTP_USER"); v != "" {
		cfg.Email.User = v
	}
}

func envBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "0", "false", "no", "":
		return false
	}
	return true
}
