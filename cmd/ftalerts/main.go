package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

func usage() {
	fmt.Fprintf(os.Stderr, `ftalerts — France Travail job alerts pipeline

Usage:
  ftalerts init-db
  ftalerts fetch       [--keywords ...] [--rome ...] [--auto-rome] [--dept ...]
                       [--radius-km N] [--limit N] [--published-since-days N]
                       [--profile NAME]
  ftalerts run-daily   [fetch flags] [--loop] [--interval 24h]
  ftalerts export      [--format txt|md|csv|jsonl] [--days N] [--from D] [--to D]
                       [--status S] [--min-score F] [--min-salary F] [--top N]
                       [--outfile PATH] [--desc-chars N]
  ftalerts set-status  --offer-id ID --status new|applied|rejected|to_follow
  ftalerts followups
  ftalerts set-secret  [--delete]
`)
	os.Exit(2)
}

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if len(os.Args) < 2 {
		usage()
	}

	var err error
	switch os.Args[1] {
	case "init-db":
		err = cmdInitDB(log)
	case "fetch":
		err = cmdFetch(log, os.Args[2:])
	case "run-daily":
		err = cmdRunDaily(log, os.Args[2:])
	case "export":
		err = cmdExport(log, os.Args[2:])
	case "set-status":
		err = cmdSetStatus(log, os.Args[2:])
	case "followups":
		err = cmdFollowups(log)
	case "set-secret":
		err = cmdSetSecret(log, os.Args[2:])
	default:
		usage()
	}

	if err != nil {
		log.Fatalf("%s: %v", os.Args[1], err)
	}
}
