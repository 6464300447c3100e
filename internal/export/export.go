// Package export renders queried offers to txt, markdown, csv or jsonl under
// data/out. Tag bundles are recomputed at render time, never read from the
// store.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ftalerts/internal/normalize"
	"ftalerts/internal/store"
	"ftalerts/internal/tags"
)

// Options shape one export run.
type Options struct {
	OutFile string // empty: data/out/offres-<ts>.<ext>
	// DescChars truncates the (HTML-stripped) description; 0 omits it.
	DescChars int
}

func outPath(dataDir, outFile, ext string) (string, error) {
	if outFile != "" {
		return outFile, nil
	}
	dir := filepath.Join(dataDir, "out")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	ts := time.Now().Format("20060102-150405")
	return filepath.Join(dir, fmt.Sprintf("offres-%s.%s", ts, ext)), nil
}

func Txt(rows []store.OfferRow, dataDir string, opts Options) (string, error) {
	path, err := outPath(dataDir, opts.OutFile, "txt")
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, r := range rows {
		fmt.Fprintf(&b, "- [%.2f] %s — %s — %s — %s — %s\n  ID: %s\n  URL: %s\n",
			r.Score, r.Title, r.Company, r.Location, r.ContractType, r.PublishedAt,
			r.OfferID, r.URL)
		if opts.DescChars > 0 && r.Description != "" {
			fmt.Fprintf(&b, "  %s\n", normalize.Truncate(normalize.StripHTML(r.Description), opts.DescChars))
		}
		b.WriteString("\n")
	}
	return path, os.WriteFile(path, []byte(b.String()), 0o644)
}

func Markdown(rows []store.OfferRow, dataDir string, opts Options) (string, error) {
	path, err := outPath(dataDir, opts.OutFile, "md")
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("# Offres (sélection)\n\n")
	for _, r := range rows {
		bundle := tags.Compute(r.Title, r.Description, r.Company)
		fmt.Fprintf(&b, "## %s (%.2f)\n", r.Title, r.Score)
		fmt.Fprintf(&b, "- Entreprise: %s\n", r.Company)
		fmt.Fprintf(&b, "- Lieu: %s\n", r.Location)
		fmt.Fprintf(&b, "- Contrat: %s\n", r.ContractType)
		fmt.Fprintf(&b, "- Publiée: %s\n", r.PublishedAt)
		fmt.Fprintf(&b, "- Statut: %s\n", r.Status)
		if ts := bundle.Flat(); len(ts) > 0 {
			fmt.Fprintf(&b, "- Tags: %s\n", strings.Join(ts, ", "))
		}
		if r.SalaryMinMonthly != nil {
			fmt.Fprintf(&b, "- Salaire min estimé: %.0f €/mois\n", *r.SalaryMinMonthly)
		}
		fmt.Fprintf(&b, "- ID: `%s`\n", r.OfferID)
		fmt.Fprintf(&b, "- URL: %s\n", r.URL)
		if opts.DescChars > 0 && r.Description != "" {
			fmt.Fprintf(&b, "\n%s\n", normalize.Truncate(normalize.StripHTML(r.Description), opts.DescChars))
		}
		b.WriteString("\n")
	}
	return path, os.WriteFile(path, []byte(b.String()), 0o644)
}

var csvHeader = []string{
	"offer_id", "title", "company", "location", "contract_type", "published_at",
	"source", "url", "salary", "salary_min_monthly", "score", "status",
	"inserted_at", "last_seen_at", "tags",
}

func CSV(rows []store.OfferRow, dataDir string, opts Options) (string, error) {
	path, err := outPath(dataDir, opts.OutFile, "csv")
	if err != nil {
		return "", err
	}

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return "", err
	}
	for _, r := range rows {
		minSalary := ""
		if r.SalaryMinMonthly != nil {
			minSalary = fmt.Sprintf("%.2f", *r.SalaryMinMonthly)
		}
		bundle := tags.Compute(r.Title, r.Description, r.Company)
		rec := []string{
			r.OfferID, r.Title, r.Company, r.Location, r.ContractType, r.PublishedAt,
			r.Source, r.URL, r.Salary, minSalary,
			fmt.Sprintf("%.3f", r.Score), string(r.Status),
			r.InsertedAt, r.LastSeenAt, strings.Join(bundle.Flat(), "|"),
		}
		if err := w.Write(rec); err != nil {
			return "", err
		}
	}
	w.Flush()
	return path, w.Error()
}

// jsonlRow is the machine-readable export shape: the stored row plus the
// recomputed label bundle.
type jsonlRow struct {
	OfferID          string       `json:"offer_id"`
	Title            string       `json:"title"`
	Company          string       `json:"company"`
	Location         string       `json:"location"`
	ContractType     string       `json:"contract_type"`
	PublishedAt      string       `json:"published_at"`
	URL              string       `json:"url"`
	ApplyURL         string       `json:"apply_url"`
	Salary           string       `json:"salary"`
	SalaryMinMonthly *float64     `json:"salary_min_monthly,omitempty"`
	Score            float64      `json:"score"`
	Status           string       `json:"status"`
	InsertedAt       string       `json:"inserted_at"`
	LastSeenAt       string       `json:"last_seen_at"`
	Labels           labelsExport `json:"labels"`
}

type labelsExport struct {
	CoreRobotics bool     `json:"core_robotics"`
	Adjacent     []string `json:"adjacent,omitempty"`
	Remote       bool     `json:"remote"`
	Seniority    string   `json:"seniority"`
	Agency       bool     `json:"agency"`
	PLC          []string `json:"plc,omitempty"`
	Languages    []string `json:"languages,omitempty"`
	Sensors      []string `json:"sensors,omitempty"`
	VisionLibs   []string `json:"vision_libs,omitempty"`
	RobotBrands  []string `json:"robot_brands,omitempty"`
	ROSStack     []string `json:"ros_stack,omitempty"`
}

func JSONL(rows []store.OfferRow, dataDir string, opts Options) (string, error) {
	path, err := outPath(dataDir, opts.OutFile, "jsonl")
	if err != nil {
		return "", err
	}

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	for _, r := range rows {
		b := tags.Compute(r.Title, r.Description, r.Company)
		if err := enc.Encode(jsonlRow{
			OfferID:          r.OfferID,
			Title:            r.Title,
			Company:          r.Company,
			Location:         r.Location,
			ContractType:     r.ContractType,
			PublishedAt:      r.PublishedAt,
			URL:              r.URL,
			ApplyURL:         r.ApplyURL,
			Salary:           r.Salary,
			SalaryMinMonthly: r.SalaryMinMonthly,
			Score:            r.Score,
			Status:           string(r.Status),
			InsertedAt:       r.InsertedAt,
			LastSeenAt:       r.LastSeenAt,
			Labels: labelsExport{
				CoreRobotics: b.CoreRobotics,
				Adjacent:     b.Adjacent,
				Remote:       b.Remote,
				Seniority:    b.Seniority,
				Agency:       b.Agency,
				PLC:          b.PLC,
				Languages:    b.Languages,
				Sensors:      b.Sensors,
				VisionLibs:   b.VisionLibs,
				RobotBrands:  b.RobotBrands,
				ROSStack:     b.ROSStack,
			},
		}); err != nil {
			return "", err
		}
	}
	return path, nil
}
