package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"ftalerts/internal/config"
	"ftalerts/internal/export"
	"ftalerts/internal/ftapi"
	"ftalerts/internal/offer"
	"ftalerts/internal/pipeline"
	"ftalerts/internal/profiles"
	"ftalerts/internal/scheduler"
	"ftalerts/internal/secrets"
	"ftalerts/internal/store"
)

const dbFileName = "ft_jobs.db"

// loadConfig bootstraps the data dir and config file, then loads and
// validates the result. FTALERTS_DATA_DIR overrides the configured data dir.
func loadConfig() (config.Config, error) {
	dataDir := os.Getenv("FTALERTS_DATA_DIR")
	if dataDir == "" {
		dataDir = "data"
	}

	cfgPath, err := config.EnsureUserConfig(dataDir, filepath.Join("config", "config.yml"))
	if err != nil {
		return config.Config{}, fmt.Errorf("ensure config: %w", err)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	cfg.App.DataDir = dataDir

	if err := config.Validate(cfg); err != nil {
		return config.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func openStore(cfg config.Config) (*store.Store, error) {
	s, err := store.Open(filepath.Join(cfg.App.DataDir, dbFileName))
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := s.Migrate(); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("migrate db: %w", err)
	}
	return s, nil
}

func newPipeline(cfg config.Config, s *store.Store, log *logrus.Logger) *pipeline.Pipeline {
	auth := ftapi.NewAuthClient(cfg, func() (string, error) {
		return secrets.GetClientSecret(secrets.ClientSecretAccount(cfg.API.ClientID))
	})
	return &pipeline.Pipeline{
		Cfg:    cfg,
		Client: ftapi.New(cfg, auth),
		Store:  s,
		Log:    log,
	}
}

func cmdInitDB(log *logrus.Logger) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()
	log.Infof("[init-db] database ready at %s", filepath.Join(cfg.App.DataDir, dbFileName))
	return nil
}

// fetchFlags are shared between fetch and run-daily.
type fetchFlags struct {
	keywords string
	rome     string
	autoROME bool
	dept     string
	radiusKm int
	limit    int
	sinceDys int
	profile  string
}

func (ff *fetchFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&ff.keywords, "keywords", "", "comma-separated search keywords (default: config)")
	fs.StringVar(&ff.rome, "rome", "", "comma-separated ROME codes")
	fs.BoolVar(&ff.autoROME, "auto-rome", false, "derive ROME codes from the keywords")
	fs.StringVar(&ff.dept, "dept", "", "department code, e.g. 68")
	fs.IntVar(&ff.radiusKm, "radius-km", 0, "search radius in km")
	fs.IntVar(&ff.limit, "limit", 0, "max results per search (1..150)")
	fs.IntVar(&ff.sinceDys, "published-since-days", 0, "only offers published in the last N days")
	fs.StringVar(&ff.profile, "profile", "", "named search profile from profiles.json")
}

func (ff *fetchFlags) params(cfg config.Config) (pipeline.FetchParams, error) {
	fp := pipeline.FetchParams{
		Keywords:           splitCSV(ff.keywords),
		ROMECodes:          splitCSV(ff.rome),
		Dept:               ff.dept,
		RadiusKm:           ff.radiusKm,
		Limit:              ff.limit,
		PublishedSinceDays: ff.sinceDys,
	}

	if ff.profile != "" {
		set := profiles.Load(cfg.App.DataDir)
		p, ok := set.Profiles[ff.profile]
		if !ok {
			return fp, fmt.Errorf("profile %q not found", ff.profile)
		}
		if len(fp.Keywords) == 0 {
			fp.Keywords = set.BuildKeywords(p)
		}
		if fp.Dept == "" {
			fp.Dept = p.Dept
		}
		if fp.RadiusKm == 0 {
			fp.RadiusKm = p.DistanceKm
		}
		if fp.PublishedSinceDays == 0 {
			fp.PublishedSinceDays = p.PublishedSinceDays
		}
	}

	if ff.autoROME && len(fp.ROMECodes) == 0 {
		kws := fp.Keywords
		if len(kws) == 0 {
			kws = cfg.Search.Keywords
		}
		fp.ROMECodes = ftapi.MapKeywordsToROME(kws)
	}
	return fp, nil
}

func cmdFetch(log *logrus.Logger, args []string) error {
	fs := flag.NewFlagSet("fetch", flag.ExitOnError)
	var ff fetchFlags
	ff.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	fp, err := ff.params(cfg)
	if err != nil {
		return err
	}

	ctx := interruptContext()
	p := newPipeline(cfg, s, log)
	prepared, inserted, err := p.FetchAndStore(ctx, fp)
	if err != nil {
		return err
	}
	log.Infof("[fetch] done: %d prepared, %d new", prepared, inserted)
	return nil
}

func cmdRunDaily(log *logrus.Logger, args []string) error {
	fs := flag.NewFlagSet("run-daily", flag.ExitOnError)
	var ff fetchFlags
	ff.register(fs)
	loop := fs.Bool("loop", false, "keep running on an interval instead of one shot")
	interval := fs.Duration("interval", 24*time.Hour, "interval between runs with --loop")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	fp, err := ff.params(cfg)
	if err != nil {
		return err
	}

	ctx := interruptContext()
	p := newPipeline(cfg, s, log)

	if !*loop {
		return p.RunDaily(ctx, fp)
	}

	scheduler.Every(ctx, *interval, "run-daily", log, func(ctx context.Context) error {
		return p.RunDaily(ctx, fp)
	})
	return nil
}

func cmdExport(log *logrus.Logger, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	format := fs.String("format", "txt", "txt, md, csv or jsonl")
	days := fs.Int("days", 0, "only offers inserted in the last N days")
	from := fs.String("from", "", "inserted on or after (YYYY-MM-DD)")
	to := fs.String("to", "", "inserted on or before (YYYY-MM-DD)")
	status := fs.String("status", "", "filter by workflow status")
	minScore := fs.Float64("min-score", -1, "minimum score")
	minSalary := fs.Float64("min-salary", -1, "minimum parsed monthly salary")
	top := fs.Int("top", 0, "max rows (default 100)")
	outFile := fs.String("outfile", "", "output path (default data/out/offres-<ts>.<ext>)")
	descChars := fs.Int("desc-chars", 0, "include the description, truncated to N chars")
	orderBy := fs.String("order-by", "score_desc", "score_desc or date_desc")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	opts := store.QueryOpts{
		Days:     *days,
		FromDate: *from,
		ToDate:   *to,
		Status:   *status,
		Limit:    *top,
		OrderBy:  *orderBy,
	}
	if *minScore >= 0 {
		opts.MinScore = minScore
	}
	if *minSalary >= 0 {
		opts.MinSalary = minSalary
	}

	ctx := interruptContext()
	rows, err := s.QueryOffers(ctx, opts)
	if err != nil {
		return fmt.Errorf("query offers: %w", err)
	}

	exOpts := export.Options{OutFile: *outFile, DescChars: *descChars}
	var path string
	switch *format {
	case "txt":
		path, err = export.Txt(rows, cfg.App.DataDir, exOpts)
	case "md":
		path, err = export.Markdown(rows, cfg.App.DataDir, exOpts)
	case "csv":
		path, err = export.CSV(rows, cfg.App.DataDir, exOpts)
	case "jsonl":
		path, err = export.JSONL(rows, cfg.App.DataDir, exOpts)
	default:
		return fmt.Errorf("unknown format %q", *format)
	}
	if err != nil {
		return err
	}
	log.Infof("[export] wrote %d offers to %s", len(rows), path)
	return nil
}

func cmdSetStatus(log *logrus.Logger, args []string) error {
	fs := flag.NewFlagSet("set-status", flag.ExitOnError)
	offerID := fs.String("offer-id", "", "offer id")
	statusStr := fs.String("status", "", "new, applied, rejected or to_follow")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *offerID == "" || *statusStr == "" {
		return fmt.Errorf("--offer-id and --status are required")
	}
	st, err := offer.ParseStatus(*statusStr)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.SetStatus(interruptContext(), *offerID, st, time.Now()); err != nil {
		return err
	}
	log.Infof("[set-status] %s -> %s", *offerID, st)
	return nil
}

func cmdFollowups(log *logrus.Logger) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	s, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	rows, err := s.DueFollowups(interruptContext(), time.Now())
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Println("No follow-ups due today.")
		return nil
	}
	for _, r := range rows {
		fmt.Printf("[%.2f] %s — %s — due %s / %s — %s\n",
			r.Score, r.Title, r.Company, r.Followup1Due, r.Followup2Due, r.URL)
	}
	return nil
}

func cmdSetSecret(log *logrus.Logger, args []string) error {
	fs := flag.NewFlagSet("set-secret", flag.ExitOnError)
	del := fs.Bool("delete", false, "remove the stored secret instead")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.API.ClientID == "" {
		return fmt.Errorf("set api.client_id (or FT_CLIENT_ID) before storing a secret")
	}
	account := secrets.ClientSecretAccount(cfg.API.ClientID)

	if *del {
		if err := secrets.DeleteClientSecret(account); err != nil {
			return err
		}
		log.Infof("[set-secret] removed secret for %s", cfg.API.ClientID)
		return nil
	}

	fmt.Fprint(os.Stderr, "Client secret: ")
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return fmt.Errorf("read secret: %w", err)
	}
	if err := secrets.SetClientSecret(account, strings.TrimSpace(line)); err != nil {
		return err
	}
	log.Infof("[set-secret] stored secret for %s", cfg.API.ClientID)
	return nil
}

// interruptContext is cancelled by SIGINT/SIGTERM so long runs exit cleanly.
func interruptContext() context.Context {
	ctx, _ := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	return ctx
}

func splitCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
