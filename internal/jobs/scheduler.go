package jobs

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Scheduler enqueues retention work onto the redis stream the worker consumes.
type Scheduler struct {
	cron   *cron.Cron
	queue  *redis.Client
	stream string
	log    zerolog.Logger
}

func NewScheduler(queue *redis.Client, stream string, log zerolog.Logger) *Scheduler {
	c := cron.New(cron.WithSeconds())
	return &Scheduler{
		cron:   c,
		queue:  queue,
		stream: stream,
		log:    log,
	}
}

func (s *Scheduler) Start() error {
	if s.queue == nil {
		return nil
	}

	if _, err := s.cron.AddFunc("0 0 0 * * *", s.enqueueReportCleanup); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("0 0 */6 * * *", s.enqueueSessionCleanup); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

// Stop waits up to five seconds for in-flight jobs to finish.
func (s *Scheduler) Stop() {
	done := s.cron.Stop().Done()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		s.log.Warn().Msg("scheduler stop timed out")
	}
}

func (s *Scheduler) enqueueReportCleanup() {
	if err := s.enqueueTask(map[string]any{
		"type": "cleanup_reports",
	}); err != nil {
		s.log.Error().Err(err).Msg("enqueue report cleanup failed")
	}
}

func (s *Scheduler) enqueueSessionCleanup() {
	if err := s.enqueueTask(map[string]any{
		"type": "cleanup_sessions",
	}); err != nil {
		s.log.Error().Err(err).Msg("enqueue session cleanup failed")
	}
}

func (s *Scheduler) enqueueTask(payload map[string]any) error {
	if s.queue == nil {
		return nil
	}
	_, err := s.queue.XAdd(context.Background(), &redis.XAddArgs{
		Stream: s.stream,
		Values: payload,
	}).Result()
	return err
}
