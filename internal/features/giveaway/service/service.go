package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	apperrors "github.com/open-builders/giveaway-bot/internal/common/errors"
	"github.com/open-builders/giveaway-bot/internal/common/logger"
	"github.com/open-builders/giveaway-bot/internal/common/metrics"
	"github.com/open-builders/giveaway-bot/internal/common/validation"
	"github.com/open-builders/giveaway-bot/internal/features/giveaway/models"
	"github.com/open-builders/giveaway-bot/internal/features/giveaway/repository"
	"github.com/open-builders/giveaway-bot/internal/utils/duration"
)

// StartRequest carries everything needed to open a giveaway.
type StartRequest struct {
	CommunityID int64
	// ChatID is where the announcement is posted, defaults to CommunityID.
	ChatID       int64
	HostID       int64
	HostName     string
	Prize        string
	WinnersCount int
	Duration     string
}

type Options struct {
	GatewayTimeout time.Duration
	EntryEmoji     string
	Now            func() time.Time
}

// Service owns the lifecycle of giveaways: start, roster edits, completion
// and reroll. All edits to one giveaway are serialized by its id.
type Service struct {
	active    repository.ActiveRepository
	archive   repository.ArchiveRepository
	messenger Messenger
	registry  *Registry
	locks     *keyedMutex
	timeout   time.Duration
	emoji     string
	now       func() time.Time
	log       zerolog.Logger
}

func NewGiveawayService(
	active repository.ActiveRepository,
	archive repository.ArchiveRepository,
	messenger Messenger,
	opts Options,
) *Service {
	if opts.GatewayTimeout <= 0 {
		opts.GatewayTimeout = DefaultGatewayTimeout
	}
	if opts.EntryEmoji == "" {
		opts.EntryEmoji = DefaultEntryEmoji
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		active:    active,
		archive:   archive,
		messenger: messenger,
		registry:  NewRegistry(),
		locks:     newKeyedMutex(),
		timeout:   opts.GatewayTimeout,
		emoji:     opts.EntryEmoji,
		now:       opts.Now,
		log:       logger.Component("giveaway"),
	}
}

// Registry exposes the in-memory index for read-only callers such as probes.
func (s *Service) Registry() *Registry {
	return s.registry
}

// EntryEmoji is the reaction that enters a member into a giveaway.
func (s *Service) EntryEmoji() string {
	return s.emoji
}

// Load rebuilds the registry from the active store. It returns how many
// giveaways were restored.
func (s *Service) Load(ctx context.Context) (int, error) {
	gctx, cancel := s.gatewayContext(ctx)
	defer cancel()

	giveaways, err := s.active.ListActive(gctx)
	if err != nil {
		metrics.GatewayFailures.WithLabelValues("persistence", "list_active").Inc()
		return 0, apperrors.NewPersistenceError("list_active", err)
	}
	s.registry.Load(giveaways)
	metrics.ActiveGiveaways.Set(float64(s.registry.Len()))

	s.log.Info().Int("count", len(giveaways)).Msg("Active giveaways restored")
	return len(giveaways), nil
}

func (s *Service) Start(ctx context.Context, req StartRequest) (*models.Giveaway, error) {
	if req.WinnersCount < 1 {
		return nil, apperrors.NewInvalidQuotaError(req.WinnersCount)
	}
	d := duration.Parse(req.Duration)
	if d <= 0 {
		return nil, apperrors.NewInvalidDurationError(req.Duration)
	}
	prize, err := validation.ValidatePrize(req.Prize)
	if err != nil {
		return nil, apperrors.NewValidationError("prize", err.Error())
	}

	chatID := req.ChatID
	if chatID == 0 {
		chatID = req.CommunityID
	}

	now := s.now().UTC()
	g := &models.Giveaway{
		ID:           uuid.NewString(),
		CommunityID:  req.CommunityID,
		HostID:       req.HostID,
		HostName:     validation.NormalizeHostName(req.HostName),
		Prize:        prize,
		WinnersCount: req.WinnersCount,
		EndsAt:       now.Add(d),
		CreatedAt:    now,
		Participants: []int64{},
	}

	pctx, cancel := s.gatewayContext(ctx)
	ref, err := s.messenger.Publish(pctx, g.CommunityID, chatID, activeAnnouncement(g, s.emoji, now))
	cancel()
	if err != nil {
		metrics.GatewayFailures.WithLabelValues("transport", "publish").Inc()
		s.log.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to publish giveaway announcement")
		return nil, apperrors.NewTransportError("publish", err)
	}
	g.Announcement = ref

	s.locks.Lock(g.ID)
	s.registry.Put(g)
	s.persist(ctx, g, "start")
	s.locks.Unlock(g.ID)

	metrics.GiveawaysStarted.Inc()
	metrics.ActiveGiveaways.Set(float64(s.registry.Len()))
	s.log.Info().
		Str("giveaway_id", g.ID).
		Int64("community_id", g.CommunityID).
		Int64("chat_id", ref.ChatID).
		Int64("message_id", ref.MessageID).
		Time("ends_at", g.EndsAt).
		Msg("Giveaway started")

	return g.Clone(), nil
}

func (s *Service) Get(giveawayID string) (*models.Giveaway, bool) {
	return s.registry.Get(giveawayID)
}

func (s *Service) ListActive(communityID int64) []*models.Giveaway {
	return s.registry.ListByCommunity(communityID)
}

func (s *Service) Complete(ctx context.Context, giveawayID string) (*models.CompletionResult, error) {
	return s.complete(ctx, giveawayID, completionTriggerManual)
}

func (s *Service) CompleteByAnnouncement(ctx context.Context, ref models.AnnouncementRef) (*models.CompletionResult, error) {
	id, ok := s.registry.FindByAnnouncement(ref)
	if !ok {
		return nil, apperrors.NewGiveawayNotFoundError(ref.String())
	}
	return s.complete(ctx, id, completionTriggerManual)
}

// complete removes the giveaway from the registry under its lock before doing
// anything else, so racing callers see NotFound. Everything after the removal
// is best effort and never puts the giveaway back.
func (s *Service) complete(ctx context.Context, giveawayID, trigger string) (*models.CompletionResult, error) {
	s.locks.Lock(giveawayID)
	g, ok := s.registry.Remove(giveawayID)
	s.locks.Unlock(giveawayID)
	if !ok {
		return nil, apperrors.NewGiveawayNotFoundError(giveawayID)
	}
	metrics.ActiveGiveaways.Set(float64(s.registry.Len()))

	// The caller going away must not cut archival short.
	ctx = context.WithoutCancel(ctx)
	log := s.log.With().Str("giveaway_id", g.ID).Str("trigger", trigger).Logger()

	winners, err := SelectWinners(g.Participants, g.WinnersCount)
	if err != nil {
		log.Error().Err(err).Msg("Failed to draw winners")
		winners = []int64{}
	}
	endedAt := s.now().UTC()

	uctx, cancel := s.gatewayContext(ctx)
	if err := s.messenger.UpdateAnnouncement(uctx, g.Announcement, endedAnnouncement(g, winners, endedAt)); err != nil {
		metrics.GatewayFailures.WithLabelValues("transport", "update_announcement").Inc()
		log.Warn().Err(err).Str("announcement", g.Announcement.String()).Msg("Failed to update announcement")
	}
	cancel()

	result := &models.CompletionResult{
		Giveaway: g,
		Winners:  winners,
		EndedAt:  endedAt,
		Archived: true,
	}

	actx, cancel := s.gatewayContext(ctx)
	if err := s.archive.AppendArchive(actx, models.NewArchivedGiveaway(g, winners, endedAt)); err != nil {
		result.Archived = false
		metrics.GatewayFailures.WithLabelValues("persistence", "append_archive").Inc()
		log.Error().Err(err).
			Str("announcement", g.Announcement.String()).
			Interface("participants", g.Participants).
			Interface("winners", winners).
			Msg("ARCHIVE WRITE FAILED, giveaway outcome is not durable")
	}
	cancel()

	dctx, cancel := s.gatewayContext(ctx)
	if err := s.active.DeleteActive(dctx, g.ID); err != nil {
		metrics.GatewayFailures.WithLabelValues("persistence", "delete_active").Inc()
		log.Error().Err(err).Msg("Failed to delete active giveaway record")
	}
	cancel()

	if result.HasWinners() {
		sctx, cancel := s.gatewayContext(ctx)
		if err := s.messenger.Send(sctx, g.Announcement.ChatID, congratulationsText(g.Prize, winners)); err != nil {
			metrics.GatewayFailures.WithLabelValues("transport", "send").Inc()
			log.Warn().Err(err).Msg("Failed to send congratulations")
		}
		cancel()
	}

	metrics.GiveawaysCompleted.WithLabelValues(trigger).Inc()
	log.Info().
		Int("participants", len(g.Participants)).
		Int("winners", len(winners)).
		Bool("archived", result.Archived).
		Msg("Giveaway completed")

	return result, nil
}

// Reroll draws a fresh set of winners from an archived giveaway and posts them
// in the announcement's chat. The archive record is left untouched.
func (s *Service) Reroll(ctx context.Context, ref models.AnnouncementRef) ([]int64, error) {
	fctx, cancel := s.gatewayContext(ctx)
	rec, err := s.archive.FindArchiveByAnnouncement(fctx, ref)
	cancel()
	if err != nil {
		if errors.Is(err, repository.ErrArchiveNotFound) {
			return nil, apperrors.NewGiveawayNotFoundError(ref.String())
		}
		metrics.GatewayFailures.WithLabelValues("persistence", "find_archive").Inc()
		return nil, apperrors.NewPersistenceError("find_archive", err)
	}
	if len(rec.Participants) == 0 {
		return nil, apperrors.NewNoParticipantsError(ref.String())
	}

	winners, err := SelectWinners(rec.Participants, rec.WinnersCount)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to draw winners")
	}

	if len(winners) > 0 {
		sctx, cancel := s.gatewayContext(ctx)
		if err := s.messenger.Send(sctx, ref.ChatID, rerollText(rec.Prize, winners)); err != nil {
			metrics.GatewayFailures.WithLabelValues("transport", "send").Inc()
			s.log.Warn().Err(err).Str("announcement", ref.String()).Msg("Failed to send reroll message")
		}
		cancel()
	}

	metrics.Rerolls.Inc()
	s.log.Info().
		Str("announcement", ref.String()).
		Int("participants", len(rec.Participants)).
		Int("winners", len(winners)).
		Msg("Giveaway rerolled")
	return winners, nil
}

// ExpiredIDs lists giveaways whose deadline has been reached.
func (s *Service) ExpiredIDs() []string {
	return s.registry.Expired(s.now())
}

func (s *Service) gatewayContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

// persist writes the full giveaway. Failures leave memory ahead of the store
// until the next successful write.
func (s *Service) persist(ctx context.Context, g *models.Giveaway, op string) error {
	pctx, cancel := s.gatewayContext(ctx)
	defer cancel()
	if err := s.active.UpsertActive(pctx, g); err != nil {
		metrics.GatewayFailures.WithLabelValues("persistence", "upsert_active").Inc()
		s.log.Error().Err(err).Str("giveaway_id", g.ID).Str("op", op).Msg("Failed to persist giveaway")
		return apperrors.NewPersistenceError("upsert_active", err)
	}
	return nil
}
