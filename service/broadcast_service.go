package service

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"anonbot/pkg/logger"
	"anonbot/storage"
)

// BroadcastReport is the aggregate outcome of one broadcast run.
type BroadcastReport struct {
	Total   int
	Success int
	Failed  int
}

// Broadcaster copies one admin message to every registered user. Sends run
// in rate-limited batches and individual failures never abort the run.
type Broadcaster struct {
	users     storage.IUserStorage
	copier    Copier
	batchSize int
	delay     time.Duration
	log       logger.ILogger
}

func NewBroadcaster(stg storage.IStorage, copier Copier, batchSize int, delay time.Duration, log logger.ILogger) *Broadcaster {
	if batchSize < 1 {
		batchSize = 1
	}
	return &Broadcaster{
		users:     stg.User(),
		copier:    copier,
		batchSize: batchSize,
		delay:     delay,
		log:       log,
	}
}

// Run delivers the message (fromChatID, messageID) to all users. onProgress,
// when non-nil, is called after each batch with the number processed so far.
func (b *Broadcaster) Run(ctx context.Context, fromChatID int64, messageID int, onProgress func(done, total int)) (BroadcastReport, error) {
	ids, err := b.users.AllIDs(ctx)
	if err != nil {
		return BroadcastReport{}, err
	}

	report := BroadcastReport{Total: len(ids)}
	var success, failed int64

	for start := 0; start < len(ids); start += b.batchSize {
		end := start + b.batchSize
		if end > len(ids) {
			end = len(ids)
		}

		g, _ := errgroup.WithContext(ctx)
		g.SetLimit(b.batchSize)
		for _, id := range ids[start:end] {
			id := id
			g.Go(func() error {
				if err := b.copier.Copy(id, fromChatID, messageID); err != nil {
					b.log.Warning("broadcast: send failed",
						logger.Int64("user_id", id), logger.Error(err))
					atomic.AddInt64(&failed, 1)
				} else {
					atomic.AddInt64(&success, 1)
				}
				// Always nil: one blocked bot must not stop the run.
				return nil
			})
		}
		_ = g.Wait()

		if onProgress != nil {
			onProgress(end, len(ids))
		}

		if end < len(ids) && b.delay > 0 {
			select {
			case <-ctx.Done():
				report.Success = int(atomic.LoadInt64(&success))
				report.Failed = int(atomic.LoadInt64(&failed))
				return report, ctx.Err()
			case <-time.After(b.delay):
			}
		}
	}

	report.Success = int(atomic.LoadInt64(&success))
	report.Failed = int(atomic.LoadInt64(&failed))
	return report, nil
}
