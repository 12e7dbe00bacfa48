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

type bonusService struct {
	uowFactory UnitOfWorkFactory
	registry   PlatformRegistry
	transfer   AssetTransfer
	auth       Authorizer
	owner      models.Principal
	platform   models.Principal
	admin      models.Principal
}

// NewBonusService creates a new bonus service
func NewBonusService(uowFactory UnitOfWorkFactory, registry PlatformRegistry, transfer AssetTransfer, auth Authorizer, cfg *config.Config) BonusService {
	return &bonusService{
		uowFactory: uowFactory,
		registry:   registry,
		transfer:   transfer,
		auth:       auth,
		owner:      models.Principal(cfg.OwnerAccount),
		platform:   models.Principal(cfg.PlatformAccount),
		admin:      models.Principal(cfg.BonusAdmin),
	}
}

// requireAdmin authorizes the actor as the bonus pool administrator,
// initializing the pool singleton on first use.
func (s *bonusService) requireAdmin(ctx context.Context, uow UnitOfWork, actor models.Principal) (*models.BonusPool, error) {
	pool, err := uow.BonusRepository().GetOrInitPool(ctx, s.admin)
	if err != nil {
		return nil, fmt.Errorf("failed to load bonus pool: %w", err)
	}
	if err := s.auth.Authorize(ctx, actor, pool.Admin); err != nil {
		return nil, err
	}
	return pool, nil
}

// unassigned returns the part of the pool allocation not yet assigned
// to any player.
func unassigned(ctx context.Context, uow UnitOfWork, currency string) (int64, error) {
	poolBalance, err := uow.BonusRepository().GetPoolBalance(ctx, currency)
	if err != nil {
		return 0, err
	}
	assigned, err := uow.BonusRepository().SumPlayerBalances(ctx, currency)
	if err != nil {
		return 0, err
	}
	return poolBalance.TotalAllocated - assigned, nil
}

// requireBonusGame resolves the game actor and rejects games excluded
// from bonus play.
func (s *bonusService) requireBonusGame(ctx context.Context, uow UnitOfWork, actor models.Principal) (uint64, error) {
	gameID, err := resolveGameActor(ctx, s.registry, s.auth, actor)
	if err != nil {
		return 0, err
	}
	restricted, err := uow.RestrictionRepository().IsNoBonusGame(ctx, gameID)
	if err != nil {
		return 0, err
	}
	if restricted {
		return 0, fmt.Errorf("game is restricted to bonus: %w", models.ErrUnauthorized)
	}
	return gameID, nil
}

// WithdrawFromPool pays unassigned pool funds out of the treasury.
// Funds already assigned to players are untouchable.
func (s *bonusService) WithdrawFromPool(ctx context.Context, actor models.Principal, to models.Principal, asset models.Asset, memo string) error {
	if !asset.IsPositive() {
		return fmt.Errorf("withdraw amount must be positive: %w", models.ErrInvariantViolation)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	if _, err := s.requireAdmin(ctx, uow, actor); err != nil {
		return err
	}
	if _, err := validateAsset(ctx, uow, s.registry, asset); err != nil {
		return err
	}

	free, err := unassigned(ctx, uow, asset.Currency)
	if err != nil {
		return err
	}
	if asset.Value > free {
		return fmt.Errorf("withdraw quantity cannot exceed total bonus: %w", models.ErrInvariantViolation)
	}

	if err := uow.BonusRepository().AddAllocated(ctx, asset.Currency, -asset.Value); err != nil {
		return err
	}
	if memo == "" {
		memo = "bonus withdraw:" + uuid.NewString()
	}
	if err := s.transfer.Transfer(ctx, to, asset, memo); err != nil {
		return fmt.Errorf("failed to transfer pool funds: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{"to": to, "amount": asset.String()}).Info("Bonus pool withdrawal executed")
	return nil
}

// GrantBonus assigns unassigned pool funds to a player.
func (s *bonusService) GrantBonus(ctx context.Context, actor models.Principal, player models.Principal, asset models.Asset) error {
	if !asset.IsPositive() {
		return fmt.Errorf("bonus amount must be positive: %w", models.ErrInvariantViolation)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if _, err := s.requireAdmin(ctx, uow, actor); err != nil {
		return err
	}
	if err := screenPlayer(ctx, uow, player); err != nil {
		return err
	}
	if _, err := validateAsset(ctx, uow, s.registry, asset); err != nil {
		return err
	}

	free, err := unassigned(ctx, uow, asset.Currency)
	if err != nil {
		return err
	}
	if asset.Value > free {
		return fmt.Errorf("bonus quantity cannot exceed unassigned pool funds: %w", models.ErrInvariantViolation)
	}

	if err := uow.BonusRepository().AddPlayerBalance(ctx, player, asset.Currency, asset.Value); err != nil {
		return err
	}

	uow.EventBus().Publish(events.BonusChangedEvent{Player: player, Delta: asset, Reason: "grant"})

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// RevokeBonus takes assigned bonus back from a player. The funds return
// to the unassigned part of the pool.
func (s *bonusService) RevokeBonus(ctx context.Context, actor models.Principal, player models.Principal, asset models.Asset) error {
	if !asset.IsPositive() {
		return fmt.Errorf("bonus amount must be positive: %w", models.ErrInvariantViolation)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if _, err := s.requireAdmin(ctx, uow, actor); err != nil {
		return err
	}
	if _, err := validateAsset(ctx, uow, s.registry, asset); err != nil {
		return err
	}

	balance, err := uow.BonusRepository().GetPlayerBalance(ctx, player, asset.Currency)
	if err != nil {
		return err
	}
	if balance == 0 {
		return fmt.Errorf("player has no bonus: %w", models.ErrNotFound)
	}
	if asset.Value > balance {
		return fmt.Errorf("revoke amount cannot exceed player's bonus balance: %w", models.ErrInvariantViolation)
	}

	if err := uow.BonusRepository().AddPlayerBalance(ctx, player, asset.Currency, -asset.Value); err != nil {
		return err
	}

	delta := asset
	delta.Value = -delta.Value
	uow.EventBus().Publish(events.BonusChangedEvent{Player: player, Delta: delta, Reason: "revoke"})

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ConvertToReal pays a player's whole bonus balance in one currency out
// as real funds, retiring the matching pool allocation.
func (s *bonusService) ConvertToReal(ctx context.Context, actor models.Principal, player models.Principal, currencyCode string, memo string) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if _, err := s.requireAdmin(ctx, uow, actor); err != nil {
		return err
	}
	if err := screenPlayer(ctx, uow, player); err != nil {
		return err
	}

	currency, err := uow.CurrencyRepository().GetByCode(ctx, currencyCode)
	if err != nil {
		return fmt.Errorf("failed to look up currency: %w", err)
	}
	if currency == nil {
		return fmt.Errorf("token is not in the list: %w", models.ErrNotFound)
	}

	balance, err := uow.BonusRepository().GetPlayerBalance(ctx, player, currencyCode)
	if err != nil {
		return err
	}
	if balance == 0 {
		return fmt.Errorf("player has no bonus: %w", models.ErrNotFound)
	}

	if err := uow.BonusRepository().AddPlayerBalance(ctx, player, currencyCode, -balance); err != nil {
		return err
	}
	if err := uow.BonusRepository().AddAllocated(ctx, currencyCode, -balance); err != nil {
		return err
	}

	amount := models.NewAsset(balance, currency.Code, currency.Precision)
	if memo == "" {
		memo = "bonus convert:" + uuid.NewString()
	}
	if err := s.transfer.Transfer(ctx, player, amount, memo); err != nil {
		return fmt.Errorf("failed to pay converted bonus: %w", err)
	}

	delta := amount
	delta.Value = -delta.Value
	uow.EventBus().Publish(events.BonusChangedEvent{Player: player, Delta: delta, Reason: "convert"})

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{"player": player, "amount": amount.String()}).Info("Bonus converted to real funds")
	return nil
}

// LockForSession stakes bonus funds into a session. The stake leaves
// the player's balance but stays in the pool allocation until the
// session resolves.
func (s *bonusService) LockForSession(ctx context.Context, actor models.Principal, player models.Principal, asset models.Asset) error {
	if !asset.IsPositive() {
		return fmt.Errorf("lock amount must be positive: %w", models.ErrInvariantViolation)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if _, err := s.requireBonusGame(ctx, uow, actor); err != nil {
		return err
	}
	if err := screenPlayer(ctx, uow, player); err != nil {
		return err
	}
	if _, err := validateAsset(ctx, uow, s.registry, asset); err != nil {
		return err
	}

	balance, err := uow.BonusRepository().GetPlayerBalance(ctx, player, asset.Currency)
	if err != nil {
		return err
	}
	if asset.Value > balance {
		return fmt.Errorf("lock amount cannot exceed player's bonus balance: %w", models.ErrInvariantViolation)
	}

	if err := uow.BonusRepository().AddPlayerBalance(ctx, player, asset.Currency, -asset.Value); err != nil {
		return err
	}
	if err := uow.PlayerStatsRepository().AddAmounts(ctx, player, asset.Currency, 0, asset.Value, 0, -asset.Value); err != nil {
		return err
	}

	delta := asset
	delta.Value = -delta.Value
	uow.EventBus().Publish(events.BonusChangedEvent{Player: player, Delta: delta, Reason: "lock"})

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// CreditOnWin returns bonus winnings to a player. Winnings above the
// locked stake are new pool liability, so the allocation grows by the
// full credit.
func (s *bonusService) CreditOnWin(ctx context.Context, actor models.Principal, player models.Principal, asset models.Asset) error {
	if !asset.IsPositive() {
		return fmt.Errorf("credit amount must be positive: %w", models.ErrInvariantViolation)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if _, err := s.requireBonusGame(ctx, uow, actor); err != nil {
		return err
	}
	if err := screenPlayer(ctx, uow, player); err != nil {
		return err
	}
	if _, err := validateAsset(ctx, uow, s.registry, asset); err != nil {
		return err
	}

	if err := uow.BonusRepository().AddAllocated(ctx, asset.Currency, asset.Value); err != nil {
		return err
	}
	if err := uow.BonusRepository().AddPlayerBalance(ctx, player, asset.Currency, asset.Value); err != nil {
		return err
	}
	if err := uow.PlayerStatsRepository().AddAmounts(ctx, player, asset.Currency, 0, 0, 0, asset.Value); err != nil {
		return err
	}

	uow.EventBus().Publish(events.BonusChangedEvent{Player: player, Delta: asset, Reason: "win"})

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GreetNewPlayer grants the configured greeting bonus in every currency
// that both has one configured and has unassigned funds to cover it.
// Only accounts carrying the signup role may call it, and a player who
// already holds any bonus is never greeted twice.
func (s *bonusService) GreetNewPlayer(ctx context.Context, actor models.Principal, player models.Principal) error {
	if err := s.auth.AuthorizeRole(ctx, actor, models.RoleSignup); err != nil {
		return err
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := screenPlayer(ctx, uow, player); err != nil {
		return err
	}

	held, err := uow.BonusRepository().HasPlayerBalances(ctx, player)
	if err != nil {
		return err
	}
	if held {
		return fmt.Errorf("player already has a bonus: %w", models.ErrInvariantViolation)
	}

	greetings, err := uow.BonusRepository().ListGreetingBonuses(ctx)
	if err != nil {
		return err
	}

	for _, slice := range greetings {
		if slice.GreetingBonus <= 0 {
			continue
		}
		free, err := unassigned(ctx, uow, slice.Currency)
		if err != nil {
			return err
		}
		if free < slice.GreetingBonus {
			log.WithFields(log.Fields{"currency": slice.Currency, "player": player}).Warn("Greeting bonus skipped, pool exhausted")
			continue
		}
		if err := uow.BonusRepository().AddPlayerBalance(ctx, player, slice.Currency, slice.GreetingBonus); err != nil {
			return err
		}
		currency, err := uow.CurrencyRepository().GetByCode(ctx, slice.Currency)
		if err != nil {
			return fmt.Errorf("failed to look up currency: %w", err)
		}
		if currency == nil {
			continue
		}
		uow.EventBus().Publish(events.BonusChangedEvent{
			Player: player,
			Delta:  models.NewAsset(slice.GreetingBonus, currency.Code, currency.Precision),
			Reason: "greeting",
		})
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// SetGreetingBonus configures the per-currency greeting amount. Zero
// disables greeting in that currency.
func (s *bonusService) SetGreetingBonus(ctx context.Context, actor models.Principal, asset models.Asset) error {
	if asset.Value < 0 {
		return fmt.Errorf("greeting bonus must not be negative: %w", models.ErrInvariantViolation)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if _, err := s.requireAdmin(ctx, uow, actor); err != nil {
		return err
	}

	currency, err := uow.CurrencyRepository().GetByCode(ctx, asset.Currency)
	if err != nil {
		return fmt.Errorf("failed to look up currency: %w", err)
	}
	if currency == nil {
		return fmt.Errorf("token is not in the list: %w", models.ErrNotFound)
	}
	if currency.Precision != asset.Precision {
		return fmt.Errorf("token precision mismatch: %w", models.ErrInvariantViolation)
	}

	if err := uow.BonusRepository().SetGreetingBonus(ctx, asset.Currency, asset.Value); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// SetAdmin hands the bonus pool to a new administrator. Owner only.
func (s *bonusService) SetAdmin(ctx context.Context, actor models.Principal, admin models.Principal) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if _, err := requireOwner(ctx, uow, s.auth, s.owner, s.platform, actor); err != nil {
		return err
	}
	if _, err := uow.BonusRepository().GetOrInitPool(ctx, s.admin); err != nil {
		return fmt.Errorf("failed to load bonus pool: %w", err)
	}
	if err := uow.BonusRepository().SetAdmin(ctx, admin); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithField("admin", admin).Info("Bonus pool administrator changed")
	return nil
}
