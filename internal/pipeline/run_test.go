package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ftalerts/internal/config"
	"ftalerts/internal/ftapi"
	"ftalerts/internal/store"
)

const sampleBatch = `{
  "resultats": [
    {
      "id": "197FDKY",
      "intitule": "Ingénieur robotique ROS2 (H/F)",
      "description": "Développement ROS2 en C++. Navigation, SLAM, lidar.",
      "typeContrat": "CDI",
      "salaire": {"libelle": "42k€ à 48k€"},
      "entreprise": {"nom": "Robotique Alsace"},
      "lieuTravail": {"libelle": "68 - Mulhouse", "codePostal": "68100", "latitude": 47.75, "longitude": 7.34}
    },
    {
      "id": "198GHTZ",
      "intitule": "Ingénieur vision industrielle (H/F)",
      "description": "Applications de vision avec OpenCV. Python et C++.",
      "typeContrat": "CDD",
      "entreprise": {"nom": "VisioTech"}
    },
    {
      "id": "199KLMN",
      "intitule": "Chauffeur livreur (H/F)",
      "description": "Livraison de colis. Permis B exigé.",
      "entreprise": {"nom": "Trans Express"}
    }
  ]
}`

// newTestPipeline wires a simulate-mode client, a temp store and a file-only
// notifier around the given config tweaks.
func newTestPipeline(t *testing.T) *Pipeline {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "samples"), 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "samples", "offres_sample.json"), []byte(sampleBatch), 0o644))

	cfg := config.Defaults()
	cfg.App.DataDir = dir
	cfg.Email.To = "" // notifications go to a file under data/out

	s, err := store.Open(filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Migrate())

	log := logrus.New()
	log.SetOutput(os.Stderr)

	return &Pipeline{
		Cfg:    cfg,
		Client: ftapi.New(cfg, ftapi.NewAuthClient(cfg, func() (string, error) { return "", nil })),
		Store:  s,
		Log:    log,
	}
}

func TestFetchAndStore(t *testing.T) {
	p := newTestPipeline(t)
	ctx := context.Background()

	prepared, inserted, err := p.FetchAndStore(ctx, FetchParams{})
	require.NoError(t, err)
	assert.Equal(t, 2, prepared, "the driver posting fails the relevance gate")
	assert.Equal(t, 2, inserted)

	// Idempotent: the same batch again inserts nothing new.
	prepared, inserted, err = p.FetchAndStore(ctx, FetchParams{})
	require.NoError(t, err)
	assert.Equal(t, 2, prepared)
	assert.Equal(t, 0, inserted)

	rows, err := p.Store.QueryOffers(ctx, store.QueryOpts{OrderBy: "score_desc"})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "197FDKY", rows[0].OfferID, "the ROS2 CDI posting scores highest")
	assert.Greater(t, rows[0].Score, rows[1].Score)
	require.NotNil(t, rows[0].SalaryMinMonthly)
	assert.InDelta(t, 3500.0, *rows[0].SalaryMinMonthly, 0.01)
}

func TestRunDailyNotifiesOnce(t *testing.T) {
	p := newTestPipeline(t)
	ctx := context.Background()

	require.NoError(t, p.RunDaily(ctx, FetchParams{}))

	outDir := filepath.Join(p.Cfg.App.DataDir, "out")
	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	b, err := os.ReadFile(filepath.Join(outDir, entries[0].Name()))
	require.NoError(t, err)
	assert.Contains(t, string(b), "New offers:")
	assert.Contains(t, string(b), "Ingénieur robotique ROS2")

	// The second run finds nothing new to alert about.
	require.NoError(t, p.RunDaily(ctx, FetchParams{}))
	entries, err = os.ReadDir(outDir)
	require.NoError(t, err)
	var contents []string
	for _, e := range entries {
		b, err := os.ReadFile(filepath.Join(outDir, e.Name()))
		require.NoError(t, err)
		contents = append(contents, string(b))
	}
	assert.Contains(t, strings.Join(contents, "\n---\n"), "No new offers or follow-ups today.")
}

func TestRunDailyRespectsMinScore(t *testing.T) {
	p := newTestPipeline(t)
	p.Cfg.Scoring.NotifyMinScore = 100 // nothing clears this bar
	ctx := context.Background()

	require.NoError(t, p.RunDaily(ctx, FetchParams{}))

	entries, err := os.ReadDir(filepath.Join(p.Cfg.App.DataDir, "out"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	b, err := os.ReadFile(filepath.Join(p.Cfg.App.DataDir, "out", entries[0].Name()))
	require.NoError(t, err)
	assert.NotContains(t, string(b), "New offers:")
}

func TestFetchParamsDefaults(t *testing.T) {
	cfg := config.Defaults()
	fp := FetchParams{}.withDefaults(cfg)
	assert.Equal(t, cfg.Search.Keywords, fp.Keywords)
	assert.Equal(t, cfg.Search.Dept, fp.Dept)
	assert.Equal(t, cfg.Search.Limit, fp.Limit)

	custom := FetchParams{Keywords: []string{"slam"}, Dept: "67"}.withDefaults(cfg)
	assert.Equal(t, []string{"slam"}, custom.Keywords)
	assert.Equal(t, "67", custom.Dept)
}
