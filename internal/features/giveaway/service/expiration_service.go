package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	apperrors "github.com/open-builders/giveaway-bot/internal/common/errors"
	"github.com/open-builders/giveaway-bot/internal/common/logger"
	"github.com/open-builders/giveaway-bot/internal/common/metrics"
)

// ExpirationService completes giveaways once their deadline passes. A sweep
// runs on a cron schedule and hands each expired giveaway to a bounded pool.
type ExpirationService struct {
	svc      *Service
	interval time.Duration
	log      zerolog.Logger

	// processing holds ids currently being completed by a sweep
	processing sync.Map
	// processSemaphore limits concurrent completions
	processSemaphore chan struct{}

	// mu guards the fields below; each Start gets a fresh context and scheduler.
	mu      sync.Mutex
	cron    *cron.Cron
	cancel  context.CancelFunc
	started bool
}

var _ ExpirationServiceInterface = (*ExpirationService)(nil)

func NewExpirationService(svc *Service, interval time.Duration, maxConcurrent int) *ExpirationService {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrent
	}
	return &ExpirationService{
		svc:              svc,
		interval:         interval,
		log:              logger.Component("expiration"),
		processSemaphore: make(chan struct{}, maxConcurrent),
	}
}

// Start schedules the sweep. Calling it while running is a no-op; calling it
// after Stop schedules again from scratch.
func (s *ExpirationService) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return nil
	}

	cl := cronLogger{log: s.log}
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	ctx, cancel := context.WithCancel(context.Background())

	spec := fmt.Sprintf("@every %s", s.interval)
	if _, err := c.AddFunc(spec, func() { s.runSweep(ctx) }); err != nil {
		cancel()
		return fmt.Errorf("register sweep %q: %w", spec, err)
	}
	c.Start()

	s.cron = c
	s.cancel = cancel
	s.started = true

	s.log.Info().Dur("interval", s.interval).Msg("Expiration service started")
	return nil
}

// Stop cancels in-flight sweeps and waits for running completions.
func (s *ExpirationService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return
	}
	s.log.Info().Msg("Stopping expiration service")
	s.cancel()

	select {
	case <-s.cron.Stop().Done():
	case <-time.After(stopTimeout):
		s.log.Warn().Dur("timeout", stopTimeout).Msg("Sweep still running at shutdown")
	}
	s.cron = nil
	s.started = false
	s.log.Info().Msg("Expiration service stopped")
}

func (s *ExpirationService) runSweep(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Interface("panic", r).Msg("Sweep panic recovered")
		}
	}()
	if n := s.Sweep(ctx); n > 0 {
		s.log.Debug().Int("completed", n).Msg("Sweep finished")
	}
}

// Sweep completes every expired giveaway not already being processed and
// returns how many it completed.
func (s *ExpirationService) Sweep(ctx context.Context) int {
	start := time.Now()
	defer metrics.RecordSweep(start)

	ids := s.svc.ExpiredIDs()
	if len(ids) == 0 {
		return 0
	}

	var (
		wg        sync.WaitGroup
		completed atomic.Int32
	)
	for _, id := range ids {
		if _, busy := s.processing.LoadOrStore(id, struct{}{}); busy {
			continue
		}

		select {
		case s.processSemaphore <- struct{}{}:
		case <-ctx.Done():
			s.processing.Delete(id)
			wg.Wait()
			return int(completed.Load())
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-s.processSemaphore }()
			defer s.processing.Delete(id)
			defer func() {
				if r := recover(); r != nil {
					s.log.Error().Str("giveaway_id", id).Interface("panic", r).Msg("Completion panic recovered")
				}
			}()

			if _, err := s.svc.complete(ctx, id, completionTriggerSweep); err != nil {
				if apperrors.IsCode(err, apperrors.ErrCodeGiveawayNotFound) {
					s.log.Debug().Str("giveaway_id", id).Msg("Giveaway already completed")
					return
				}
				s.log.Error().Err(err).Str("giveaway_id", id).Msg("Failed to complete expired giveaway")
				return
			}
			completed.Add(1)
		}()
	}
	wg.Wait()

	return int(completed.Load())
}

// cronLogger routes cron's own logging through zerolog.
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
