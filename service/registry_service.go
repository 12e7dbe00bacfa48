package service

import (
	"context"
	"fmt"

	"cashier/config"
	"cashier/models"

	log "github.com/sirupsen/logrus"
)

type registryService struct {
	uowFactory UnitOfWorkFactory
	registry   PlatformRegistry
	auth       Authorizer
	owner      models.Principal
	platform   models.Principal
}

// NewRegistryService creates a new registry service
func NewRegistryService(uowFactory UnitOfWorkFactory, registry PlatformRegistry, auth Authorizer, cfg *config.Config) RegistryService {
	return &registryService{
		uowFactory: uowFactory,
		registry:   registry,
		auth:       auth,
		owner:      models.Principal(cfg.OwnerAccount),
		platform:   models.Principal(cfg.PlatformAccount),
	}
}

func (s *registryService) AddCurrency(ctx context.Context, actor models.Principal, code string, precision int) error {
	if code == "" {
		return fmt.Errorf("currency code must not be empty: %w", models.ErrInvariantViolation)
	}
	if precision < 0 || precision > 18 {
		return fmt.Errorf("currency precision out of range: %w", models.ErrInvariantViolation)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	if _, err := requireOwner(ctx, uow, s.auth, s.owner, s.platform, actor); err != nil {
		return err
	}

	existing, err := uow.CurrencyRepository().GetByCode(ctx, code)
	if err != nil {
		return fmt.Errorf("failed to look up currency: %w", err)
	}
	if existing != nil {
		return fmt.Errorf("token is already in the list: %w", models.ErrInvariantViolation)
	}

	currency := &models.Currency{Code: code, Precision: precision}
	if err := uow.CurrencyRepository().Create(ctx, currency); err != nil {
		return fmt.Errorf("failed to register currency: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"code":      code,
		"precision": precision,
	}).Info("Currency registered")
	return nil
}

// RemoveCurrency deletes the currency and purges its key from every
// per-currency map it participates in. Removal is refused while any
// game still owes a balance or tracks session volume in the currency;
// purging those rows would destroy live exposure. Bounded by the
// current game count.
func (s *registryService) RemoveCurrency(ctx context.Context, actor models.Principal, code string) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if _, err := requireOwner(ctx, uow, s.auth, s.owner, s.platform, actor); err != nil {
		return err
	}

	existing, err := uow.CurrencyRepository().GetByCode(ctx, code)
	if err != nil {
		return fmt.Errorf("failed to look up currency: %w", err)
	}
	if existing == nil {
		return fmt.Errorf("token is not in the list: %w", models.ErrNotFound)
	}

	exposed, err := uow.GameRepository().HasCurrencyExposure(ctx, code)
	if err != nil {
		return err
	}
	if exposed {
		return fmt.Errorf("currency has live balances or sessions: %w", models.ErrInvariantViolation)
	}

	if err := uow.GameRepository().PurgeCurrency(ctx, code); err != nil {
		return err
	}
	if err := uow.GlobalStateRepository().DeleteBalance(ctx, code); err != nil {
		return err
	}
	if err := uow.BonusRepository().PurgeCurrency(ctx, code); err != nil {
		return err
	}
	if err := uow.PlayerStatsRepository().PurgeCurrency(ctx, code); err != nil {
		return err
	}
	if err := uow.CurrencyRepository().Delete(ctx, code); err != nil {
		return fmt.Errorf("failed to delete currency: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithField("code", code).Info("Currency removed")
	return nil
}

func (s *registryService) PauseCurrency(ctx context.Context, actor models.Principal, code string, paused bool) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if _, err := requireOwner(ctx, uow, s.auth, s.owner, s.platform, actor); err != nil {
		return err
	}

	existing, err := uow.CurrencyRepository().GetByCode(ctx, code)
	if err != nil {
		return fmt.Errorf("failed to look up currency: %w", err)
	}
	if existing == nil {
		return fmt.Errorf("token is not in the list: %w", models.ErrNotFound)
	}

	if err := uow.CurrencyRepository().SetPaused(ctx, code, paused); err != nil {
		return err
	}

	return uow.Commit()
}

func (s *registryService) AddGame(ctx context.Context, actor models.Principal, gameID uint64, params models.GameParams) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if _, err := requireOwner(ctx, uow, s.auth, s.owner, s.platform, actor); err != nil {
		return err
	}

	verified, err := s.registry.IsGameVerified(ctx, gameID)
	if err != nil {
		return fmt.Errorf("failed to check game upstream: %w", err)
	}
	if !verified {
		return fmt.Errorf("the game was not verified by the platform: %w", models.ErrExternalVerification)
	}

	existing, err := uow.GameRepository().GetByID(ctx, gameID)
	if err != nil {
		return fmt.Errorf("failed to look up game: %w", err)
	}
	if existing != nil {
		return fmt.Errorf("the game was already added: %w", models.ErrInvariantViolation)
	}

	game := &models.Game{ID: gameID, Params: params}
	if err := uow.GameRepository().Create(ctx, game); err != nil {
		return fmt.Errorf("failed to create game: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithField("gameID", gameID).Info("Game added")
	return nil
}

// RemoveGame deletes the ledger row. A game with open sessions cannot be
// removed.
func (s *registryService) RemoveGame(ctx context.Context, actor models.Principal, gameID uint64) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if _, err := requireOwner(ctx, uow, s.auth, s.owner, s.platform, actor); err != nil {
		return err
	}

	game, err := uow.GameRepository().GetByID(ctx, gameID)
	if err != nil {
		return fmt.Errorf("failed to look up game: %w", err)
	}
	if game == nil {
		return fmt.Errorf("the game was not added: %w", models.ErrNotFound)
	}
	if game.ActiveSessionsCount > 0 {
		return fmt.Errorf("trying to remove a game with non-zero active sessions: %w", models.ErrInvariantViolation)
	}

	if err := uow.GameRepository().Delete(ctx, gameID); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithField("gameID", gameID).Info("Game removed")
	return nil
}

func (s *registryService) PauseGame(ctx context.Context, actor models.Principal, gameID uint64, paused bool) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if _, err := requireOwner(ctx, uow, s.auth, s.owner, s.platform, actor); err != nil {
		return err
	}

	game, err := uow.GameRepository().GetByID(ctx, gameID)
	if err != nil {
		return fmt.Errorf("failed to look up game: %w", err)
	}
	if game == nil {
		return fmt.Errorf("the game was not added: %w", models.ErrNotFound)
	}

	if err := uow.GameRepository().SetPaused(ctx, gameID, paused); err != nil {
		return err
	}

	return uow.Commit()
}

func (s *registryService) SetOwner(ctx context.Context, actor models.Principal, newOwner models.Principal) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if _, err := requireOwner(ctx, uow, s.auth, s.owner, s.platform, actor); err != nil {
		return err
	}

	if err := uow.GlobalStateRepository().SetOwner(ctx, newOwner); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithField("owner", newOwner).Info("Ownership transferred")
	return nil
}

func (s *registryService) SetPlatform(ctx context.Context, actor models.Principal, platform models.Principal) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if _, err := requireOwner(ctx, uow, s.auth, s.owner, s.platform, actor); err != nil {
		return err
	}

	if err := uow.GlobalStateRepository().SetPlatform(ctx, platform); err != nil {
		return err
	}

	return uow.Commit()
}

func (s *registryService) RestrictBonusGame(ctx context.Context, actor models.Principal, gameID uint64) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if _, err := requireOwner(ctx, uow, s.auth, s.owner, s.platform, actor); err != nil {
		return err
	}

	restricted, err := uow.RestrictionRepository().IsNoBonusGame(ctx, gameID)
	if err != nil {
		return err
	}
	if restricted {
		return fmt.Errorf("game is already restricted: %w", models.ErrInvariantViolation)
	}

	if err := uow.RestrictionRepository().AddNoBonusGame(ctx, gameID); err != nil {
		return err
	}

	return uow.Commit()
}

func (s *registryService) UnrestrictBonusGame(ctx context.Context, actor models.Principal, gameID uint64) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if _, err := requireOwner(ctx, uow, s.auth, s.owner, s.platform, actor); err != nil {
		return err
	}

	restricted, err := uow.RestrictionRepository().IsNoBonusGame(ctx, gameID)
	if err != nil {
		return err
	}
	if !restricted {
		return fmt.Errorf("game is not restricted: %w", models.ErrInvariantViolation)
	}

	if err := uow.RestrictionRepository().RemoveNoBonusGame(ctx, gameID); err != nil {
		return err
	}

	return uow.Commit()
}

func (s *registryService) BanPlayer(ctx context.Context, actor models.Principal, player models.Principal) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if _, err := requireOwner(ctx, uow, s.auth, s.owner, s.platform, actor); err != nil {
		return err
	}

	if err := uow.RestrictionRepository().BanPlayer(ctx, player); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithField("player", player).Warn("Player banned")
	return nil
}

func (s *registryService) UnbanPlayer(ctx context.Context, actor models.Principal, player models.Principal) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if _, err := requireOwner(ctx, uow, s.auth, s.owner, s.platform, actor); err != nil {
		return err
	}

	if err := uow.RestrictionRepository().UnbanPlayer(ctx, player); err != nil {
		return err
	}

	return uow.Commit()
}

// IsActiveGame reports whether a game can accept sessions. Both the
// local pause flag and the upstream registry flag are required: the
// ledger's own flag is independent of, and does not replace, the
// registry's.
func (s *registryService) IsActiveGame(ctx context.Context, gameID uint64) (bool, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	game, err := uow.GameRepository().GetByID(ctx, gameID)
	if err != nil {
		return false, fmt.Errorf("failed to look up game: %w", err)
	}
	if game == nil || game.Paused {
		return false, nil
	}

	active, err := s.registry.IsActiveGame(ctx, gameID)
	if err != nil {
		return false, fmt.Errorf("failed to check game upstream: %w", err)
	}
	return active, nil
}
