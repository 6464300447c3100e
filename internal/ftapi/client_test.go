package ftapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ftalerts/internal/config"
)

func staticSecret(s string) SecretSource {
	return func() (string, error) { return s, nil }
}

func realAPIConfig(searchURL, detailURL string) config.Config {
	cfg := config.Defaults()
	cfg.API.Simulate = false
	cfg.API.ClientID = "test-client"
	cfg.API.SearchURL = searchURL
	cfg.API.DetailURL = detailURL
	cfg.API.RatePerSec = 100
	cfg.API.Burst = 10
	return cfg
}

func TestSearchQueryAndDecoding(t *testing.T) {
	var gotQuery map[string]string
	var gotAuth string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"resultats": [{"id": "A1", "intitule": "Ingénieur ROS2"}]}`))
	}))
	defer ts.Close()

	cfg := realAPIConfig(ts.URL, ts.URL+"/{id}")
	authTS := newTokenServer(t, "tok-123")
	defer authTS.Close()
	cfg.API.AuthURL = authTS.URL

	c := New(cfg, NewAuthClient(cfg, staticSecret("s3cret")))
	records, err := c.Search(context.Background(), SearchParams{
		Keywords:           []string{"ros2", "c++"},
		Dept:               "68",
		RadiusKm:           50,
		ROMECodes:          []string{"I1401"},
		Limit:              25,
		PublishedSinceDays: 7,
	})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "A1", records[0]["id"])

	assert.Equal(t, "Bearer tok-123", gotAuth)
	assert.Equal(t, "ros2,c++", gotQuery["motsCles"])
	assert.Equal(t, "68", gotQuery["departement"])
	assert.Equal(t, "50", gotQuery["rayon"])
	assert.Equal(t, "I1401", gotQuery["codeROME"])
	assert.Equal(t, "25", gotQuery["limit"])
	assert.Equal(t, "7", gotQuery["publieeDepuis"])
}

func TestSearchClampsLimit(t *testing.T) {
	var gotLimit string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLimit = r.URL.Query().Get("limit")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer ts.Close()

	cfg := realAPIConfig(ts.URL, ts.URL+"/{id}")
	authTS := newTokenServer(t, "tok")
	defer authTS.Close()
	cfg.API.AuthURL = authTS.URL

	c := New(cfg, NewAuthClient(cfg, staticSecret("s")))
	_, err := c.Search(context.Background(), SearchParams{Limit: 9999})
	require.NoError(t, err)
	assert.Equal(t, "150", gotLimit)
}

func TestSearchErrorStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer ts.Close()

	cfg := realAPIConfig(ts.URL, ts.URL+"/{id}")
	authTS := newTokenServer(t, "tok")
	defer authTS.Close()
	cfg.API.AuthURL = authTS.URL

	c := New(cfg, NewAuthClient(cfg, staticSecret("s")))
	_, err := c.Search(context.Background(), SearchParams{})
	assert.Error(t, err)
}

func TestDetailReplacesID(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/offres/A1", r.URL.Path)
		_, _ = w.Write([]byte(`{"id": "A1", "description": "texte complet"}`))
	}))
	defer ts.Close()

	cfg := realAPIConfig(ts.URL, ts.URL+"/offres/{id}")
	authTS := newTokenServer(t, "tok")
	defer authTS.Close()
	cfg.API.AuthURL = authTS.URL

	c := New(cfg, NewAuthClient(cfg, staticSecret("s")))
	rec, err := c.Detail(context.Background(), "A1")
	require.NoError(t, err)
	assert.Equal(t, "texte complet", rec["description"])

	_, err = c.Detail(context.Background(), "")
	assert.Error(t, err)
}

func TestSimulateModeReadsSample(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "samples"), 0o755))
	sample := `{"resultats": [{"id": "S1", "intitule": "Ingénieur vision"}]}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "samples", "offres_sample.json"), []byte(sample), 0o644))

	cfg := config.Defaults()
	cfg.App.DataDir = dir

	c := New(cfg, NewAuthClient(cfg, staticSecret("unused")))
	records, err := c.Search(context.Background(), SearchParams{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "S1", records[0]["id"])

	rec, err := c.Detail(context.Background(), "S1")
	require.NoError(t, err)
	assert.Equal(t, "Ingénieur vision", rec["intitule"])
}

func TestSimulateModeMissingSample(t *testing.T) {
	cfg := config.Defaults()
	cfg.App.DataDir = t.TempDir()

	c := New(cfg, NewAuthClient(cfg, staticSecret("unused")))
	records, err := c.Search(context.Background(), SearchParams{})
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestDecodeRecordsShapes(t *testing.T) {
	wrapped, err := decodeRecords([]byte(`{"resultats": [{"id": "A"}]}`))
	require.NoError(t, err)
	assert.Len(t, wrapped, 1)

	bare, err := decodeRecords([]byte(`[{"id": "A"}, {"id": "B"}]`))
	require.NoError(t, err)
	assert.Len(t, bare, 2)

	_, err = decodeRecords([]byte(`"just a string"`))
	assert.Error(t, err)
}

func TestMapKeywordsToROME(t *testing.T) {
	got := MapKeywordsToROME([]string{"ros2", "robot", "c++", "inconnu"})
	assert.Contains(t, got, "I1401")
	assert.Contains(t, got, "H1203")
	assert.Contains(t, got, "M1805")

	// Deduplicated and sorted, deterministic across calls.
	assert.Equal(t, got, MapKeywordsToROME([]string{"robot", "c++", "ros2"}))
	assert.Empty(t, MapKeywordsToROME(nil))
}
