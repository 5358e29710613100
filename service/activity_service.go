package service

import (
	"context"
	"fmt"

	"curator/activity"
	"curator/events"
	"curator/models"
	"curator/outcome"
	"curator/registry"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// activityService implements the ActivityService interface. The in-memory
// activity is authoritative; storage writes are best effort and only logged
// when they fail.
type activityService struct {
	uowFactory UnitOfWorkFactory
	emitter    EventEmitter
	metrics    Metrics
	opts       []activity.Option
}

// NewActivityService creates a new activity service. opts are applied to
// every raffle and prediction it starts.
func NewActivityService(uowFactory UnitOfWorkFactory, emitter EventEmitter, metrics Metrics, opts ...activity.Option) ActivityService {
	if metrics == nil {
		metrics = NoopMetrics{}
	}
	return &activityService{
		uowFactory: uowFactory,
		emitter:    emitter,
		metrics:    metrics,
		opts:       opts,
	}
}

func (s *activityService) StartRaffle(ctx context.Context, guild *registry.Guild, title string, winnerSlots int, startedBy string) (activity.Activity, error) {
	if winnerSlots < 1 {
		return activity.Activity{}, fmt.Errorf("winner slots must be at least 1, got %d", winnerSlots)
	}
	return s.start(ctx, guild, activity.OfRaffle(activity.NewRaffle(title, winnerSlots, s.opts...)), startedBy)
}

func (s *activityService) StartPrediction(ctx context.Context, guild *registry.Guild, title string, options []string, startedBy string) (activity.Activity, error) {
	return s.start(ctx, guild, activity.OfPrediction(activity.NewPrediction(title, options, s.opts...)), startedBy)
}

func (s *activityService) start(ctx context.Context, guild *registry.Guild, a activity.Activity, startedBy string) (activity.Activity, error) {
	res := guild.AddActivity(a)
	if !res.OK() {
		return activity.Activity{}, fmt.Errorf("failed to register %s: %w", a.Kind(), res.Err())
	}

	s.metrics.UpdateRunningActivities(a.Kind(), 1)
	s.emitter.Emit(ctx, events.ActivityStartedEvent{
		GuildID:    guild.ID(),
		ActivityID: a.ID(),
		Kind:       a.Kind(),
		Title:      a.Title(),
		StartedBy:  startedBy,
	})

	log.WithFields(log.Fields{
		"guild_id":    guild.ID(),
		"activity_id": a.ID(),
		"kind":        a.Kind(),
		"title":       a.Title(),
		"started_by":  startedBy,
	}).Info("Activity started")
	return a, nil
}

func (s *activityService) AttachMessage(guild *registry.Guild, messageID string, a activity.Activity) outcome.Result[activity.Activity] {
	return guild.MapActivityToMessage(messageID, a)
}

func (s *activityService) Current(guild *registry.Guild, kind models.ActivityKind) (activity.Activity, bool) {
	list := guild.Activities()
	for i := len(list) - 1; i >= 0; i-- {
		if list[i].Kind() == kind && list[i].Running() {
			return list[i], true
		}
	}
	return activity.Activity{}, false
}

func (s *activityService) EnterRaffle(ctx context.Context, guild *registry.Guild, raffle *activity.Raffle, user *models.User, tier models.BonusTier) outcome.Result[*models.User] {
	res := raffle.Enter(user, tier)
	if !res.OK() {
		s.metrics.RecordRejection(models.ActivityKindRaffle, "enter")
		return res
	}

	tickets, _ := raffle.TicketsFor(user.ID)
	s.metrics.RecordEntry(models.ActivityKindRaffle)
	s.emitter.Emit(ctx, events.EntryAcceptedEvent{
		GuildID:    guild.ID(),
		ActivityID: raffle.ID(),
		Kind:       models.ActivityKindRaffle,
		UserID:     user.ID,
		Amount:     int64(tickets),
	})
	return res
}

func (s *activityService) PlaceBet(ctx context.Context, guild *registry.Guild, prediction *activity.Prediction, user *models.User, stake int64, option string) outcome.Result[*models.User] {
	res := prediction.Enter(user, stake, option)
	if !res.OK() {
		s.metrics.RecordRejection(models.ActivityKindPrediction, "enter")
		return res
	}
	s.metrics.RecordEntry(models.ActivityKindPrediction)

	after := user.Tokens()
	s.persist(ctx, guild, prediction.ID(), "bet", func(uow UnitOfWork) error {
		if err := uow.UserRepository().SaveBalances(ctx, []*models.User{user}); err != nil {
			return err
		}
		if err := uow.PredictionPositionRepository().AddStake(ctx, &models.PredictionPosition{
			ActivityID: prediction.ID(),
			GuildID:    guild.ID(),
			DiscordID:  user.ID,
			Option:     option,
			Stake:      stake,
		}); err != nil {
			return err
		}
		bus := uow.EventBus()
		bus.Publish(events.EntryAcceptedEvent{
			GuildID:    guild.ID(),
			ActivityID: prediction.ID(),
			Kind:       models.ActivityKindPrediction,
			UserID:     user.ID,
			Amount:     stake,
			Option:     option,
		})
		bus.Publish(events.BalanceChangeEvent{
			GuildID:      guild.ID(),
			UserID:       user.ID,
			OldBalance:   after + stake,
			NewBalance:   after,
			ChangeAmount: -stake,
			Reason:       "prediction_bet",
		})
		return nil
	})
	return res
}

// SetRaffleEntries pauses or resumes entries of a running raffle
func (s *activityService) SetRaffleEntries(guild *registry.Guild, raffle *activity.Raffle, open bool) outcome.Result[*activity.Raffle] {
	if !raffle.Running() {
		return outcome.FailWith(raffle, "Raffle is not running")
	}

	var changed bool
	if open {
		changed = raffle.OpenEntries()
	} else {
		changed = raffle.CloseEntries()
	}
	if !changed {
		s.metrics.RecordRejection(models.ActivityKindRaffle, "entries")
		if open {
			return outcome.FailWith(raffle, "Raffle is already accepting entries")
		}
		return outcome.FailWith(raffle, "Raffle entries are already closed")
	}

	log.WithFields(log.Fields{
		"guild_id":    guild.ID(),
		"activity_id": raffle.ID(),
		"open":        open,
	}).Info("Raffle entries toggled")
	if open {
		return outcome.Pass(raffle, "Raffle entries reopened")
	}
	return outcome.Pass(raffle, "Raffle entries closed")
}

// EndRaffle closes entries, then draws. A failed draw restores entries if
// they were open before.
func (s *activityService) EndRaffle(ctx context.Context, guild *registry.Guild, raffle *activity.Raffle) outcome.Result[[]*models.User] {
	closed := raffle.CloseEntries()
	res := raffle.End()
	if !res.OK() {
		if closed && raffle.Running() {
			raffle.OpenEntries()
		}
		s.metrics.RecordRejection(models.ActivityKindRaffle, "end")
		return res
	}
	winners := res.Value()

	// entries are frozen once the raffle has ended
	entries := raffle.Entries()
	totalTickets := raffle.TotalTickets()

	entrants := make([]*models.User, len(entries))
	for i, e := range entries {
		entrants[i] = e.User
	}
	record := &models.ActivityRecord{
		ID:           raffle.ID(),
		GuildID:      guild.ID(),
		Kind:         models.ActivityKindRaffle,
		Title:        raffle.Title(),
		Status:       models.ActivityStatusSettled,
		Participants: len(entries),
		TotalPool:    int64(totalTickets),
		Winners:      userIDs(winners),
		Payouts:      map[string]int64{},
		StartedAt:    raffle.StartedAt(),
		EndedAt:      raffle.EndedAt(),
	}

	// loss counters changed for every entrant
	s.persist(ctx, guild, raffle.ID(), "end", func(uow UnitOfWork) error {
		if err := uow.UserRepository().SaveBalances(ctx, entrants); err != nil {
			return err
		}
		if err := uow.ActivityRecordRepository().Record(ctx, record); err != nil {
			return err
		}
		uow.EventBus().Publish(events.ActivitySettledEvent{
			GuildID:    guild.ID(),
			ActivityID: raffle.ID(),
			Kind:       models.ActivityKindRaffle,
			Winners:    record.Winners,
			TotalPool:  record.TotalPool,
		})
		return nil
	})

	s.retire(guild, activity.OfRaffle(raffle))
	s.metrics.RecordSettlement(models.ActivityKindRaffle, 0)
	return res
}

func (s *activityService) EndPrediction(ctx context.Context, guild *registry.Guild, prediction *activity.Prediction, option string) outcome.Result[*activity.Settlement] {
	res := prediction.End(option)
	if !res.OK() {
		s.metrics.RecordRejection(models.ActivityKindPrediction, "end")
		return res
	}
	settlement := res.Value()
	positions := prediction.Positions()

	participants := make([]*models.User, len(positions))
	for i, p := range positions {
		participants[i] = p.User
	}
	var paid int64
	for _, payout := range settlement.Payouts {
		paid += payout
	}
	winning := settlement.Option
	record := &models.ActivityRecord{
		ID:            prediction.ID(),
		GuildID:       guild.ID(),
		Kind:          models.ActivityKindPrediction,
		Title:         prediction.Title(),
		Status:        models.ActivityStatusSettled,
		WinningOption: &winning,
		Participants:  len(positions),
		TotalPool:     settlement.TotalPool,
		Winners:       userIDs(settlement.Winners),
		Payouts:       settlement.Payouts,
		StartedAt:     prediction.StartedAt(),
		EndedAt:       prediction.EndedAt(),
	}

	s.persist(ctx, guild, prediction.ID(), "end", func(uow UnitOfWork) error {
		if err := uow.UserRepository().SaveBalances(ctx, participants); err != nil {
			return err
		}
		if err := uow.ActivityRecordRepository().Record(ctx, record); err != nil {
			return err
		}
		if err := uow.PredictionPositionRepository().DeleteByActivity(ctx, prediction.ID()); err != nil {
			return err
		}
		bus := uow.EventBus()
		for _, w := range settlement.Winners {
			payout := settlement.Payouts[w.ID]
			after := w.Tokens()
			bus.Publish(events.BalanceChangeEvent{
				GuildID:      guild.ID(),
				UserID:       w.ID,
				OldBalance:   after - payout,
				NewBalance:   after,
				ChangeAmount: payout,
				Reason:       "prediction_payout",
			})
		}
		bus.Publish(events.ActivitySettledEvent{
			GuildID:       guild.ID(),
			ActivityID:    prediction.ID(),
			Kind:          models.ActivityKindPrediction,
			Winners:       record.Winners,
			Payouts:       settlement.Payouts,
			TotalPool:     settlement.TotalPool,
			WinningOption: winning,
		})
		return nil
	})

	s.retire(guild, activity.OfPrediction(prediction))
	s.metrics.RecordSettlement(models.ActivityKindPrediction, paid)
	return res
}

func (s *activityService) Reset(ctx context.Context, guild *registry.Guild, a activity.Activity) outcome.Result[activity.Activity] {
	var res outcome.Result[activity.Activity]
	switch a.Kind() {
	case models.ActivityKindRaffle:
		raffle, _ := a.Raffle()
		res = outcome.Map(raffle.Reset(), func(*activity.Raffle) activity.Activity { return a })
		if res.OK() {
			s.emitter.Emit(ctx, events.ActivityResetEvent{GuildID: guild.ID(), ActivityID: a.ID(), Kind: a.Kind()})
		}
	case models.ActivityKindPrediction:
		prediction, _ := a.Prediction()
		reset, positions := prediction.ResetWithRefunds()
		res = outcome.Map(reset, func(*activity.Prediction) activity.Activity { return a })
		if res.OK() {
			s.persistRefunds(ctx, guild, a, positions, events.ActivityResetEvent{GuildID: guild.ID(), ActivityID: a.ID(), Kind: a.Kind()}, nil)
		}
	default:
		return outcome.Fail[activity.Activity]("Unknown activity")
	}

	if !res.OK() {
		s.metrics.RecordRejection(a.Kind(), "reset")
		return res
	}
	log.WithFields(log.Fields{
		"guild_id":    guild.ID(),
		"activity_id": a.ID(),
		"kind":        a.Kind(),
	}).Info("Activity reset")
	return res
}

func (s *activityService) Cancel(ctx context.Context, guild *registry.Guild, a activity.Activity) outcome.Result[activity.Activity] {
	var (
		positions    []activity.Position
		participants int
		cancelled    bool
	)
	if prediction, ok := a.Prediction(); ok {
		positions, cancelled = prediction.CancelWithRefunds()
		participants = len(positions)
	} else {
		participants = a.Participants()
		cancelled = a.Cancel()
	}

	if !cancelled {
		s.metrics.RecordRejection(a.Kind(), "cancel")
		return outcome.FailWith(a, fmt.Sprintf("%s is not running", kindLabel(a.Kind())))
	}

	record := &models.ActivityRecord{
		ID:           a.ID(),
		GuildID:      guild.ID(),
		Kind:         a.Kind(),
		Title:        a.Title(),
		Status:       models.ActivityStatusCancelled,
		Participants: participants,
		Winners:      []string{},
		Payouts:      map[string]int64{},
		StartedAt:    a.StartedAt(),
		EndedAt:      a.EndedAt(),
	}
	s.persistRefunds(ctx, guild, a, positions, events.ActivityCancelledEvent{GuildID: guild.ID(), ActivityID: a.ID(), Kind: a.Kind()}, record)
	s.retire(guild, a)

	log.WithFields(log.Fields{
		"guild_id":    guild.ID(),
		"activity_id": a.ID(),
		"kind":        a.Kind(),
	}).Info("Activity cancelled")
	return outcome.Pass(a, fmt.Sprintf("%s cancelled", kindLabel(a.Kind())))
}

// CancelRunning cancels every running activity of a guild, refunding open
// stakes, and returns how many were cancelled
func (s *activityService) CancelRunning(ctx context.Context, guild *registry.Guild) int {
	cancelled := 0
	for _, a := range guild.Activities() {
		if !a.Running() {
			continue
		}
		if s.Cancel(ctx, guild, a).OK() {
			cancelled++
		}
	}
	return cancelled
}

// RefundOpenStakes credits back every stake still stored for a prediction
// that never settled, e.g. after a crash. It runs before any guild is loaded
// so no live record holds a stale balance.
func (s *activityService) RefundOpenStakes(ctx context.Context) (int, error) {
	var refunded int
	err := withUnitOfWork(ctx, s.uowFactory, func(uow UnitOfWork) error {
		positions, err := uow.PredictionPositionRepository().ListOpen(ctx)
		if err != nil {
			return err
		}

		var predictions []uuid.UUID
		seen := make(map[uuid.UUID]bool)
		bus := uow.EventBus()
		for _, p := range positions {
			after, err := uow.UserRepository().AdjustTokens(ctx, p.GuildID, p.DiscordID, p.Stake)
			if err != nil {
				return err
			}
			bus.Publish(events.BalanceChangeEvent{
				GuildID:      p.GuildID,
				UserID:       p.DiscordID,
				OldBalance:   after - p.Stake,
				NewBalance:   after,
				ChangeAmount: p.Stake,
				Reason:       "prediction_refund",
			})
			if !seen[p.ActivityID] {
				seen[p.ActivityID] = true
				predictions = append(predictions, p.ActivityID)
			}
		}

		for _, id := range predictions {
			if err := uow.PredictionPositionRepository().DeleteByActivity(ctx, id); err != nil {
				return err
			}
		}
		refunded = len(positions)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to refund open stakes: %w", err)
	}

	if refunded > 0 {
		log.WithField("positions", refunded).Warn("Refunded stakes of predictions that never settled")
	}
	return refunded, nil
}

func (s *activityService) History(ctx context.Context, guildID string, limit int) ([]*models.ActivityRecord, error) {
	var records []*models.ActivityRecord
	err := withUnitOfWork(ctx, s.uowFactory, func(uow UnitOfWork) error {
		var err error
		records, err = uow.ActivityRecordRepository().ListByGuild(ctx, guildID, limit)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load activity history for guild %s: %w", guildID, err)
	}
	return records, nil
}

// persistRefunds writes refunded balances, the optional archive record and
// the lifecycle event in one transaction, and clears the stored stakes
func (s *activityService) persistRefunds(ctx context.Context, guild *registry.Guild, a activity.Activity, positions []activity.Position, lifecycle events.Event, record *models.ActivityRecord) {
	s.persist(ctx, guild, a.ID(), string(lifecycle.Type()), func(uow UnitOfWork) error {
		users := make([]*models.User, len(positions))
		for i, p := range positions {
			users[i] = p.User
		}
		if len(users) > 0 {
			if err := uow.UserRepository().SaveBalances(ctx, users); err != nil {
				return err
			}
		}
		if record != nil {
			if err := uow.ActivityRecordRepository().Record(ctx, record); err != nil {
				return err
			}
		}
		if a.Kind() == models.ActivityKindPrediction {
			if err := uow.PredictionPositionRepository().DeleteByActivity(ctx, a.ID()); err != nil {
				return err
			}
		}

		bus := uow.EventBus()
		for _, p := range positions {
			after := p.User.Tokens()
			bus.Publish(events.BalanceChangeEvent{
				GuildID:      guild.ID(),
				UserID:       p.User.ID,
				OldBalance:   after - p.Stake,
				NewBalance:   after,
				ChangeAmount: p.Stake,
				Reason:       "prediction_refund",
			})
		}
		bus.Publish(lifecycle)
		return nil
	})
}

func (s *activityService) persist(ctx context.Context, guild *registry.Guild, activityID fmt.Stringer, operation string, fn func(uow UnitOfWork) error) {
	if err := withUnitOfWork(ctx, s.uowFactory, fn); err != nil {
		log.WithFields(log.Fields{
			"guild_id":    guild.ID(),
			"activity_id": activityID.String(),
			"operation":   operation,
			"error":       err,
		}).Error("Failed to persist activity change")
	}
}

// retire drops a finished activity from the live registry; its archive
// record is the durable trace
func (s *activityService) retire(guild *registry.Guild, a activity.Activity) {
	guild.RetireActivity(a.ID())
	s.metrics.UpdateRunningActivities(a.Kind(), -1)
}

func kindLabel(kind models.ActivityKind) string {
	switch kind {
	case models.ActivityKindRaffle:
		return "Raffle"
	case models.ActivityKindPrediction:
		return "Prediction"
	default:
		return "Activity"
	}
}

func userIDs(users []*models.User) []string {
	ids := make([]string, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	return ids
}
