package service

import (
	"context"
	"fmt"

	"cashier/config"
	"cashier/events"
	"cashier/models"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type sessionService struct {
	uowFactory UnitOfWorkFactory
	registry   PlatformRegistry
	transfer   AssetTransfer
	auth       Authorizer
	owner      models.Principal
	platform   models.Principal
}

// NewSessionService creates a new session service
func NewSessionService(uowFactory UnitOfWorkFactory, registry PlatformRegistry, transfer AssetTransfer, auth Authorizer, cfg *config.Config) SessionService {
	return &sessionService{
		uowFactory: uowFactory,
		registry:   registry,
		transfer:   transfer,
		auth:       auth,
		owner:      models.Principal(cfg.OwnerAccount),
		platform:   models.Principal(cfg.PlatformAccount),
	}
}

// requireGameActor authorizes the actor as the principal of the given
// game.
func (s *sessionService) requireGameActor(ctx context.Context, actor models.Principal, gameID uint64) error {
	resolved, err := resolveGameActor(ctx, s.registry, s.auth, actor)
	if err != nil {
		return err
	}
	if resolved != gameID {
		return fmt.Errorf("account %s is not the principal of game %d: %w", actor, gameID, models.ErrUnauthorized)
	}
	return nil
}

func (s *sessionService) OpenSession(ctx context.Context, actor models.Principal, gameID uint64, player models.Principal) error {
	if err := s.requireGameActor(ctx, actor, gameID); err != nil {
		return err
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	if err := screenPlayer(ctx, uow, player); err != nil {
		return err
	}

	game, err := uow.GameRepository().GetByID(ctx, gameID)
	if err != nil {
		return fmt.Errorf("failed to look up game: %w", err)
	}
	if game == nil {
		return fmt.Errorf("game not found: %w", models.ErrNotFound)
	}
	if game.Paused {
		return fmt.Errorf("the game is paused: %w", models.ErrExternalVerification)
	}
	active, err := s.registry.IsActiveGame(ctx, gameID)
	if err != nil {
		return fmt.Errorf("failed to check game upstream: %w", err)
	}
	if !active {
		return fmt.Errorf("the game is not active on the platform: %w", models.ErrExternalVerification)
	}

	if _, err := uow.GlobalStateRepository().GetOrInit(ctx, s.owner, s.platform); err != nil {
		return fmt.Errorf("failed to load global state: %w", err)
	}

	// Session state is the (count, sum) tuple at both scopes; opening
	// only moves the counts.
	if err := uow.GameRepository().AdjustSessionCount(ctx, gameID, 1); err != nil {
		return err
	}
	if err := uow.GlobalStateRepository().AdjustSessionCount(ctx, 1); err != nil {
		return err
	}
	if err := uow.PlayerStatsRepository().IncrementSessions(ctx, player); err != nil {
		return err
	}

	uow.EventBus().Publish(events.SessionOpenedEvent{GameID: gameID, Player: player})

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (s *sessionService) UpdateSessionVolume(ctx context.Context, actor models.Principal, gameID uint64, delta models.Asset) error {
	if err := s.requireGameActor(ctx, actor, gameID); err != nil {
		return err
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if _, err := validateAsset(ctx, uow, s.registry, delta); err != nil {
		return err
	}

	game, err := uow.GameRepository().GetByID(ctx, gameID)
	if err != nil {
		return fmt.Errorf("failed to look up game: %w", err)
	}
	if game == nil {
		return fmt.Errorf("game not found: %w", models.ErrNotFound)
	}

	if delta.Value < 0 {
		gameBalance, err := uow.GameRepository().GetBalance(ctx, gameID, delta.Currency)
		if err != nil {
			return err
		}
		globalBalance, err := uow.GlobalStateRepository().GetBalance(ctx, delta.Currency)
		if err != nil {
			return err
		}
		if gameBalance.ActiveSessionsSum+delta.Value < 0 || globalBalance.ActiveSessionsSum+delta.Value < 0 {
			return fmt.Errorf("session volume cannot go negative: %w", models.ErrInvariantViolation)
		}
	}

	if err := uow.GameRepository().AddSessionSum(ctx, gameID, delta.Currency, delta.Value); err != nil {
		return err
	}
	if err := uow.GlobalStateRepository().AddSessionSum(ctx, delta.Currency, delta.Value); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (s *sessionService) CloseSession(ctx context.Context, actor models.Principal, gameID uint64, amount models.Asset) error {
	if err := s.requireGameActor(ctx, actor, gameID); err != nil {
		return err
	}
	if amount.Value < 0 {
		return fmt.Errorf("close amount must not be negative: %w", models.ErrInvariantViolation)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if _, err := validateAsset(ctx, uow, s.registry, amount); err != nil {
		return err
	}

	game, err := uow.GameRepository().GetByID(ctx, gameID)
	if err != nil {
		return fmt.Errorf("failed to look up game: %w", err)
	}
	if game == nil {
		return fmt.Errorf("game not found: %w", models.ErrNotFound)
	}

	state, err := uow.GlobalStateRepository().GetOrInit(ctx, s.owner, s.platform)
	if err != nil {
		return fmt.Errorf("failed to load global state: %w", err)
	}

	if game.ActiveSessionsCount == 0 || state.ActiveSessionsCount == 0 {
		return fmt.Errorf("no active sessions: %w", models.ErrInvariantViolation)
	}

	gameBalance, err := uow.GameRepository().GetBalance(ctx, gameID, amount.Currency)
	if err != nil {
		return err
	}
	globalBalance, err := uow.GlobalStateRepository().GetBalance(ctx, amount.Currency)
	if err != nil {
		return err
	}
	if amount.Value > gameBalance.ActiveSessionsSum || amount.Value > globalBalance.ActiveSessionsSum {
		return fmt.Errorf("invalid quantity in session close: %w", models.ErrInvariantViolation)
	}

	if err := uow.GameRepository().AddSessionSum(ctx, gameID, amount.Currency, -amount.Value); err != nil {
		return err
	}
	if err := uow.GlobalStateRepository().AddSessionSum(ctx, amount.Currency, -amount.Value); err != nil {
		return err
	}
	if err := uow.GameRepository().AdjustSessionCount(ctx, gameID, -1); err != nil {
		return err
	}
	if err := uow.GlobalStateRepository().AdjustSessionCount(ctx, -1); err != nil {
		return err
	}

	uow.EventBus().Publish(events.SessionClosedEvent{GameID: gameID, Amount: amount})

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// OnLoss pays a player win through the asset transfer service and debits
// the game's profit share. The payout itself is the full amount; only
// the margin share moves on the ledger.
func (s *sessionService) OnLoss(ctx context.Context, actor models.Principal, player models.Principal, amount models.Asset) error {
	gameID, err := resolveGameActor(ctx, s.registry, s.auth, actor)
	if err != nil {
		return err
	}
	if !amount.IsPositive() {
		return fmt.Errorf("payout must be positive: %w", models.ErrInvariantViolation)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := screenPlayer(ctx, uow, player); err != nil {
		return err
	}
	if _, err := validateAsset(ctx, uow, s.registry, amount); err != nil {
		return err
	}

	game, err := uow.GameRepository().GetByID(ctx, gameID)
	if err != nil {
		return fmt.Errorf("failed to look up game: %w", err)
	}
	if game == nil {
		return fmt.Errorf("game not found: %w", models.ErrNotFound)
	}

	margin, err := s.registry.ProfitMargin(ctx, gameID)
	if err != nil {
		return fmt.Errorf("failed to get profit margin: %w", err)
	}
	profit := amount.Value * int64(margin) / 100

	if err := s.transfer.Transfer(ctx, player, amount, "payout:"+uuid.NewString()); err != nil {
		return fmt.Errorf("failed to pay player: %w", err)
	}

	if err := uow.GameRepository().AddBalance(ctx, gameID, amount.Currency, -profit); err != nil {
		return err
	}
	if err := uow.GlobalStateRepository().AddProfitSum(ctx, amount.Currency, -profit); err != nil {
		return err
	}
	if err := uow.PlayerStatsRepository().AddAmounts(ctx, player, amount.Currency, 0, 0, amount.Value, 0); err != nil {
		return err
	}

	uow.EventBus().Publish(events.LossPaidEvent{GameID: gameID, Player: player, Payout: amount})

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"gameID": gameID,
		"player": player,
		"payout": amount.String(),
	}).Info("Player win paid")
	return nil
}
