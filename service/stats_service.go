package service

import (
	"context"
	"fmt"

	"cashier/models"
)

type statsService struct {
	uowFactory UnitOfWorkFactory
}

// NewStatsService creates a new stats service
func NewStatsService(uowFactory UnitOfWorkFactory) StatsService {
	return &statsService{uowFactory: uowFactory}
}

// GetGameBalance returns the owed-to-operator balance for one game and
// currency. Games and currencies with no ledger row read as zero.
func (s *statsService) GetGameBalance(ctx context.Context, gameID uint64, currency string) (models.Asset, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return models.Asset{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	registered, err := uow.CurrencyRepository().GetByCode(ctx, currency)
	if err != nil {
		return models.Asset{}, fmt.Errorf("failed to look up currency: %w", err)
	}
	if registered == nil {
		return models.Asset{Currency: currency}, nil
	}

	balance, err := uow.GameRepository().GetBalance(ctx, gameID, currency)
	if err != nil {
		return models.Asset{}, err
	}

	return models.NewAsset(balance.Balance, registered.Code, registered.Precision), nil
}

// GetGlobalSnapshot returns the per-currency global aggregate. Missing
// rows read as zero.
func (s *statsService) GetGlobalSnapshot(ctx context.Context, currency string) (*models.GlobalBalance, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	return uow.GlobalStateRepository().GetBalance(ctx, currency)
}

// GetPlayerStats returns a player's accumulated statistics, nil if the
// player has never played.
func (s *statsService) GetPlayerStats(ctx context.Context, player models.Principal) (*models.PlayerStats, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	return uow.PlayerStatsRepository().GetStats(ctx, player)
}

// GetBonusBalance returns a player's bonus balance in one currency,
// zero if none.
func (s *statsService) GetBonusBalance(ctx context.Context, player models.Principal, currency string) (int64, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	return uow.BonusRepository().GetPlayerBalance(ctx, player, currency)
}
