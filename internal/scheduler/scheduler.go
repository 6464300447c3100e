package scheduler

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

type Task func(ctx context.Context) error

// Every runs task immediately, then on each tick, until ctx is done.
func Every(ctx context.Context, interval time.Duration, name string, log *logrus.Logger, task Task) {
	t := time.NewTicker(interval)
	defer t.Stop()

	if err := task(ctx); err != nil {
		log.Errorf("[%s] error: %v", name, err)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := task(ctx); err != nil {
				log.Errorf("[%s] error: %v", name, err)
			}
		}
	}
}
