package tasks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"glaciercare/internal/repository"
	"glaciercare/internal/storage"
)

// Processor runs retention tasks: expired report rows and their stored
// objects are removed, along with stale auth sessions.
type Processor struct {
	reports   *repository.ReportRepository
	sessions  *repository.SessionRepository
	store     *storage.ObjectStore
	batchSize int
	logger    zerolog.Logger
}

type TaskPayload struct {
	Type string `json:"type"`
}

func NewProcessor(
	reports *repository.ReportRepository,
	sessions *repository.SessionRepository,
	store *storage.ObjectStore,
	batchSize int,
	logger zerolog.Logger,
) *Processor {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &Processor{
		reports:   reports,
		sessions:  sessions,
		store:     store,
		batchSize: batchSize,
		logger:    logger,
	}
}

func (p *Processor) Handle(ctx context.Context, msg redis.XMessage) error {
	var payload TaskPayload
	if err := decodePayload(msg.Values, &payload); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}

	switch payload.Type {
	case "cleanup_reports":
		return p.cleanupReports(ctx)
	case "cleanup_sessions":
		return p.cleanupSessions(ctx)
	default:
		p.logger.Warn().Str("type", payload.Type).Msg("unknown task type")
		return nil
	}
}

func decodePayload(values map[string]interface{}, out *TaskPayload) error {
	bytes, err := json.Marshal(values)
	if err != nil {
		return err
	}
	return json.Unmarshal(bytes, out)
}

func (p *Processor) cleanupReports(ctx context.Context) error {
	removed := 0
	for {
		expired, err := p.reports.ListExpired(ctx, p.batchSize)
		if err != nil {
			return fmt.Errorf("list expired: %w", err)
		}
		if len(expired) == 0 {
			break
		}

		for _, report := range expired {
			if report.ObjectKey != "" && p.store != nil {
				if err := p.store.Remove(ctx, report.ObjectKey); err != nil {
					p.logger.Warn().Err(err).Str("report_id", report.ID).Msg("remove stored object failed")
				}
			}
			if err := p.reports.DeleteByID(ctx, report.ID); err != nil {
				p.logger.Error().Err(err).Str("report_id", report.ID).Msg("delete report failed")
				continue
			}
			removed++
		}

		if len(expired) < p.batchSize {
			break
		}
	}

	p.logger.Info().Int("removed", removed).Msg("report cleanup finished")
	return nil
}

func (p *Processor) cleanupSessions(ctx context.Context) error {
	removed, err := p.sessions.DeleteExpired(ctx)
	if err != nil {
		return fmt.Errorf("delete expired sessions: %w", err)
	}
	p.logger.Info().Int64("removed", removed).Msg("session cleanup finished")
	return nil
}
