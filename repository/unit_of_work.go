package repository

import (
	"context"
	"fmt"

	"cashier/database"
	"cashier/events"
	"cashier/service"
	"github.com/jackc/pgx/v5"
)

// unitOfWork implements the UnitOfWork interface
type unitOfWork struct {
	db               *database.DB
	tx               pgx.Tx
	ctx              context.Context
	transactionalBus *events.TransactionalBus
	currencyRepo     service.CurrencyRepository
	gameRepo         service.GameRepository
	globalStateRepo  service.GlobalStateRepository
	bonusRepo        service.BonusRepository
	playerStatsRepo  service.PlayerStatsRepository
	restrictionRepo  service.RestrictionRepository
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory
func NewUnitOfWorkFactory(db *database.DB, eventBus *events.Bus) service.UnitOfWorkFactory {
	return &unitOfWorkFactory{
		db:       db,
		eventBus: eventBus,
	}
}

type unitOfWorkFactory struct {
	db       *database.DB
	eventBus *events.Bus
}

func (f *unitOfWorkFactory) Create() service.UnitOfWork {
	return &unitOfWork{
		db:               f.db,
		transactionalBus: events.NewTransactionalBus(f.eventBus),
	}
}

// Begin starts a new transaction
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	u.ctx = ctx

	// Create repositories with the transaction
	u.currencyRepo = newCurrencyRepositoryWithTx(tx)
	u.gameRepo = newGameRepositoryWithTx(tx)
	u.globalStateRepo = newGlobalStateRepositoryWithTx(tx)
	u.bonusRepo = newBonusRepositoryWithTx(tx)
	u.playerStatsRepo = newPlayerStatsRepositoryWithTx(tx)
	u.restrictionRepo = newRestrictionRepositoryWithTx(tx)

	return nil
}

// Commit commits the transaction
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	err := u.tx.Commit(u.ctx)
	if err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	u.tx = nil

	// Flush pending events after successful commit
	if u.transactionalBus != nil {
		u.transactionalBus.Flush(u.ctx)
	}

	return nil
}

// Rollback rolls back the transaction
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil // Nothing to rollback
	}

	err := u.tx.Rollback(u.ctx)
	if err != nil && err != pgx.ErrTxClosed {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}

	u.tx = nil

	// Discard pending events on rollback
	if u.transactionalBus != nil {
		u.transactionalBus.Discard()
	}

	return nil
}

// CurrencyRepository returns the currency repository for this unit of work
func (u *unitOfWork) CurrencyRepository() service.CurrencyRepository {
	if u.currencyRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.currencyRepo
}

// GameRepository returns the game ledger repository for this unit of work
func (u *unitOfWork) GameRepository() service.GameRepository {
	if u.gameRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.gameRepo
}

// GlobalStateRepository returns the global aggregate repository for this unit of work
func (u *unitOfWork) GlobalStateRepository() service.GlobalStateRepository {
	if u.globalStateRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.globalStateRepo
}

// BonusRepository returns the bonus pool repository for this unit of work
func (u *unitOfWork) BonusRepository() service.BonusRepository {
	if u.bonusRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.bonusRepo
}

// PlayerStatsRepository returns the player stats repository for this unit of work
func (u *unitOfWork) PlayerStatsRepository() service.PlayerStatsRepository {
	if u.playerStatsRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.playerStatsRepo
}

// RestrictionRepository returns the restriction repository for this unit of work
func (u *unitOfWork) RestrictionRepository() service.RestrictionRepository {
	if u.restrictionRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.restrictionRepo
}

// EventBus returns the transactional event bus for this unit of work
func (u *unitOfWork) EventBus() service.EventPublisher {
	if u.transactionalBus == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.transactionalBus
}
