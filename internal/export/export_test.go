package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ftalerts/internal/offer"
	"ftalerts/internal/store"
)

func sampleRows() []store.OfferRow {
	min := 3500.0
	return []store.OfferRow{
		{
			Offer: offer.Offer{
				OfferID:          "A1",
				Title:            "Ingénieur ROS2",
				Company:          "Robotique Alsace",
				Location:         "68 - Mulhouse (68)",
				ContractType:     "CDI",
				PublishedAt:      "2026-08-28T09:12:00Z",
				URL:              "https://example.test/A1",
				Salary:           "42k€",
				Description:      "<p>Développement <b>ROS2</b> en C++, OpenCV.</p>",
				Score:            8.5,
				SalaryMinMonthly: &min,
			},
			Source:     "offres_v2",
			Status:     offer.StatusNew,
			InsertedAt: "2026-09-01T08:00:00Z",
			LastSeenAt: "2026-09-01T08:00:00Z",
		},
		{
			Offer: offer.Offer{
				OfferID: "B2",
				Title:   "Ingénieur vision",
				Company: "VisioTech",
				Score:   4.2,
			},
			Status: offer.StatusApplied,
		},
	}
}

func TestTxt(t *testing.T) {
	out := filepath.Join(t.TempDir(), "offres.txt")
	path, err := Txt(sampleRows(), t.TempDir(), Options{OutFile: out, DescChars: 40})
	require.NoError(t, err)
	assert.Equal(t, out, path)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(b)
	assert.Contains(t, content, "[8.50] Ingénieur ROS2")
	assert.Contains(t, content, "ID: A1")
	assert.NotContains(t, content, "<p>", "descriptions render HTML-stripped")
}

func TestMarkdown(t *testing.T) {
	out := filepath.Join(t.TempDir(), "offres.md")
	_, err := Markdown(sampleRows(), t.TempDir(), Options{OutFile: out})
	require.NoError(t, err)

	b, err := os.ReadFile(out)
	require.NoError(t, err)
	content := string(b)
	assert.Contains(t, content, "## Ingénieur ROS2 (8.50)")
	assert.Contains(t, content, "- Statut: new")
	assert.Contains(t, content, "- Salaire min estimé: 3500 €/mois")
	assert.Contains(t, content, "core_robotics", "tags are recomputed at render time")
}

func TestCSV(t *testing.T) {
	out := filepath.Join(t.TempDir(), "offres.csv")
	_, err := CSV(sampleRows(), t.TempDir(), Options{OutFile: out})
	require.NoError(t, err)

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()

	recs, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, recs, 3) // header + 2 rows
	assert.Equal(t, csvHeader, recs[0])
	assert.Equal(t, "A1", recs[1][0])
	assert.Contains(t, recs[1][14], "ros2", "tags column is |-joined")
}

func TestJSONL(t *testing.T) {
	out := filepath.Join(t.TempDir(), "offres.jsonl")
	_, err := JSONL(sampleRows(), t.TempDir(), Options{OutFile: out})
	require.NoError(t, err)

	b, err := os.ReadFile(out)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	require.Len(t, lines, 2)

	var row jsonlRow
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &row))
	assert.Equal(t, "A1", row.OfferID)
	assert.True(t, row.Labels.CoreRobotics)
	assert.Contains(t, row.Labels.Languages, "c++")
}

func TestDefaultOutPath(t *testing.T) {
	dataDir := t.TempDir()
	path, err := Txt(sampleRows(), dataDir, Options{})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(path, filepath.Join(dataDir, "out")))
	assert.True(t, strings.HasSuffix(path, ".txt"))
	_, err = os.Stat(path)
	assert.NoError(t, err)
}
