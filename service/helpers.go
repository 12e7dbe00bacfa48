package service

import (
	"context"
	"fmt"

	"cashier/models"
)

// validateAsset confirms an amount is usable: its currency is registered,
// the precision matches the canonical base unit, the currency is not
// paused locally and the upstream registry reports the token active.
// Returns the registered currency on success.
func validateAsset(ctx context.Context, uow UnitOfWork, registry PlatformRegistry, asset models.Asset) (*models.Currency, error) {
	currency, err := uow.CurrencyRepository().GetByCode(ctx, asset.Currency)
	if err != nil {
		return nil, fmt.Errorf("failed to look up currency: %w", err)
	}
	if currency == nil {
		return nil, fmt.Errorf("token is not in the list: %w", models.ErrNotFound)
	}
	if currency.Precision != asset.Precision {
		return nil, fmt.Errorf("token precision mismatch: %w", models.ErrInvariantViolation)
	}
	if currency.Paused {
		return nil, fmt.Errorf("token is paused: %w", models.ErrExternalVerification)
	}

	active, err := registry.IsActiveToken(ctx, asset.Currency)
	if err != nil {
		return nil, fmt.Errorf("failed to check token upstream: %w", err)
	}
	if !active {
		return nil, fmt.Errorf("token is not supported: %w", models.ErrExternalVerification)
	}

	return currency, nil
}

// screenPlayer rejects operations on behalf of banned players. Applied by
// every operation that moves money toward or for a named player; pure
// reads and operator-scoped operations do not screen.
func screenPlayer(ctx context.Context, uow UnitOfWork, player models.Principal) error {
	banned, err := uow.RestrictionRepository().IsBanned(ctx, player)
	if err != nil {
		return fmt.Errorf("failed to check ban list: %w", err)
	}
	if banned {
		return fmt.Errorf("player %s is banned: %w", player, models.ErrUnauthorized)
	}
	return nil
}

// requireOwner authorizes the actor as the platform owner, initializing
// the singleton on first use.
func requireOwner(ctx context.Context, uow UnitOfWork, auth Authorizer, defaultOwner, defaultPlatform models.Principal, actor models.Principal) (*models.GlobalState, error) {
	state, err := uow.GlobalStateRepository().GetOrInit(ctx, defaultOwner, defaultPlatform)
	if err != nil {
		return nil, fmt.Errorf("failed to load global state: %w", err)
	}
	if err := auth.Authorize(ctx, actor, state.Owner); err != nil {
		return nil, err
	}
	return state, nil
}

// resolveGameActor resolves an acting account to its registered game id.
func resolveGameActor(ctx context.Context, registry PlatformRegistry, auth Authorizer, actor models.Principal) (uint64, error) {
	if err := auth.Authorize(ctx, actor, actor); err != nil {
		return 0, err
	}
	gameID, err := registry.GameByAccount(ctx, actor)
	if err != nil {
		return 0, fmt.Errorf("no game found for a given account: %w", models.ErrNotFound)
	}
	return gameID, nil
}
