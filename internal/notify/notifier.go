// Package notify delivers batch summaries to the operator: email when SMTP
// is configured, otherwise a file under data/out plus stdout.
package notify

import (
	"fmt"
	"net/smtp"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ftalerts/internal/config"
	"ftalerts/internal/normalize"
	"ftalerts/internal/store"
)

// FormatOffers renders rows as plain-text alert lines.
func FormatOffers(rows []store.OfferRow) string {
	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		link := r.URL
		if link == "" {
			link = r.ApplyURL
		}
		if link == "" && r.OfferID != "" {
			link = fmt.Sprintf(normalize.DetailURLFormat, r.OfferID)
		}
		lines = append(lines, fmt.Sprintf("[%.2f] %s — %s — %s — %s",
			r.Score, r.Title, r.Company, r.Location, link))
	}
	return strings.Join(lines, "\n")
}

// Send emails the message when the config has a recipient and SMTP host,
// else falls back to a local notification file.
func Send(cfg config.Config, subject, body string) error {
	if cfg.Email.To != "" && cfg.Email.SMTPHost != "" {
		return sendEmail(cfg, subject, body)
	}
	return writeFileAndPrint(cfg, subject, body)
}

func sendEmail(cfg config.Config, subject, body string) error {
	from := cfg.Email.User
	if from == "" {
		from = "ftalerts"
	}

	msg := strings.Join([]string{
		"From: " + from,
		"To: " + cfg.Email.To,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		`Content-Type: text/plain; charset="utf-8"`,
		"",
		body,
	}, "\r\n")

	addr := fmt.Sprintf("%s:%d", cfg.Email.SMTPHost, cfg.Email.SMTPPort)
	var auth smtp.Auth
	if cfg.Email.User != "" {
		// smtp.SendMail negotiates STARTTLS before authenticating when the
		// server advertises it.
		auth = smtp.PlainAuth("", cfg.Email.User, os.Getenv("SMTP_PASSWORD"), cfg.Email.SMTPHost)
	}
	if err := smtp.SendMail(addr, auth, from, []string{cfg.Email.To}, []byte(msg)); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}

func writeFileAndPrint(cfg config.Config, subject, body string) error {
	outDir := filepath.Join(cfg.App.DataDir, "out")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	ts := time.Now().Format("20060102-150405")
	path := filepath.Join(outDir, "notification-"+ts+".txt")
	content := subject + "\n\n" + body + "\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return err
	}
	fmt.Println("\n=== Notification ===")
	fmt.Println(content)
	fmt.Printf("Saved to %s\n", path)
	return nil
}
