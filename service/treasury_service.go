package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"cashier/config"
	"cashier/events"
	"cashier/models"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	claimCooldown    = 30 * 24 * time.Hour
	withdrawCooldown = 7 * 24 * time.Hour

	// Fraction of the free balance a constrained withdrawal may take,
	// expressed as a divisor.
	withdrawCapDivisor = 10

	bonusDepositMemo = "bonus"
	depositMemoTag   = "deposit:"
)

type treasuryService struct {
	uowFactory UnitOfWorkFactory
	registry   PlatformRegistry
	transfer   AssetTransfer
	auth       Authorizer
	owner      models.Principal
	platform   models.Principal
	now        func() time.Time
}

// NewTreasuryService creates a new treasury service
func NewTreasuryService(uowFactory UnitOfWorkFactory, registry PlatformRegistry, transfer AssetTransfer, auth Authorizer, cfg *config.Config) TreasuryService {
	return &treasuryService{
		uowFactory: uowFactory,
		registry:   registry,
		transfer:   transfer,
		auth:       auth,
		owner:      models.Principal(cfg.OwnerAccount),
		platform:   models.Principal(cfg.PlatformAccount),
		now:        time.Now,
	}
}

// OnCurrencyReceived routes an inbound transfer. Transfers from the
// owner or the platform are plain treasury top-ups. A "bonus" memo
// deposits into the bonus pool. A sender registered as a game account
// settles a player stake, with the player named in the memo. Anything
// else is accepted without ledger effect.
func (s *treasuryService) OnCurrencyReceived(ctx context.Context, from models.Principal, asset models.Asset, memo string) error {
	if !asset.IsPositive() {
		return fmt.Errorf("received amount must be positive: %w", models.ErrInvariantViolation)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	if _, err := validateAsset(ctx, uow, s.registry, asset); err != nil {
		return err
	}

	state, err := uow.GlobalStateRepository().GetOrInit(ctx, s.owner, s.platform)
	if err != nil {
		return fmt.Errorf("failed to load global state: %w", err)
	}

	if from == state.Owner || from == state.Platform {
		log.WithFields(log.Fields{"from": from, "amount": asset.String()}).Info("Treasury top-up received")
		return uow.Commit()
	}

	if strings.TrimSpace(memo) == bonusDepositMemo {
		if err := uow.BonusRepository().AddAllocated(ctx, asset.Currency, asset.Value); err != nil {
			return err
		}
		if err := uow.Commit(); err != nil {
			return fmt.Errorf("failed to commit transaction: %w", err)
		}
		log.WithFields(log.Fields{"from": from, "amount": asset.String()}).Info("Bonus pool deposit received")
		return nil
	}

	gameID, err := s.registry.GameByAccount(ctx, from)
	if errors.Is(err, models.ErrNotFound) {
		// Unknown senders keep their money in the treasury but settle
		// nothing. Only a definitive not-found answer takes this path;
		// a registry failure must not turn a game's stake into a no-op.
		log.WithFields(log.Fields{"from": from, "amount": asset.String()}).Warn("Transfer from unregistered account, ignoring")
		return uow.Commit()
	}
	if err != nil {
		return fmt.Errorf("failed to resolve sender: %w", err)
	}

	player := parseDepositPlayer(memo)
	if player == "" {
		log.WithFields(log.Fields{"from": from, "gameID": gameID}).Warn("Deposit without player memo, ignoring")
		return uow.Commit()
	}

	if err := s.settleDeposit(ctx, uow, gameID, player, asset); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// parseDepositPlayer extracts the staking player from a transfer memo.
// Both the tagged form ("deposit:alice") and a bare account name are
// accepted.
func parseDepositPlayer(memo string) models.Principal {
	memo = strings.TrimSpace(memo)
	if strings.HasPrefix(memo, depositMemoTag) {
		memo = strings.TrimSpace(strings.TrimPrefix(memo, depositMemoTag))
	}
	return models.Principal(memo)
}

// settleDeposit books a player stake: the margin share of the amount
// becomes claimable operator profit at both scopes, and the full amount
// accrues to the player's real volume.
func (s *treasuryService) settleDeposit(ctx context.Context, uow UnitOfWork, gameID uint64, player models.Principal, asset models.Asset) error {
	if err := screenPlayer(ctx, uow, player); err != nil {
		return err
	}

	game, err := uow.GameRepository().GetByID(ctx, gameID)
	if err != nil {
		return fmt.Errorf("failed to look up game: %w", err)
	}
	if game == nil {
		return fmt.Errorf("the game was not added: %w", models.ErrNotFound)
	}

	margin, err := s.registry.ProfitMargin(ctx, gameID)
	if err != nil {
		return fmt.Errorf("failed to get profit margin: %w", err)
	}
	profit := asset.Value * int64(margin) / 100

	if err := uow.GameRepository().AddBalance(ctx, gameID, asset.Currency, profit); err != nil {
		return err
	}
	if err := uow.GlobalStateRepository().AddProfitSum(ctx, asset.Currency, profit); err != nil {
		return err
	}
	if err := uow.PlayerStatsRepository().AddAmounts(ctx, player, asset.Currency, asset.Value, 0, -asset.Value, 0); err != nil {
		return err
	}

	uow.EventBus().Publish(events.DepositSettledEvent{
		GameID: gameID,
		Player: player,
		Stake:  asset,
		Profit: profit,
	})

	return nil
}

// ClaimProfit sweeps a game's positive balances to its platform
// beneficiary. Claims are throttled to one per month; a claim that
// finds nothing to sweep succeeds without consuming the cooldown.
func (s *treasuryService) ClaimProfit(ctx context.Context, gameID uint64) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	game, err := uow.GameRepository().GetByID(ctx, gameID)
	if err != nil {
		return fmt.Errorf("failed to look up game: %w", err)
	}
	if game == nil {
		return fmt.Errorf("the game was not added: %w", models.ErrNotFound)
	}

	now := s.now()
	if !game.LastClaimTime.IsZero() && now.Sub(game.LastClaimTime) < claimCooldown {
		return fmt.Errorf("already claimed within past month: %w", models.ErrRateLimited)
	}

	beneficiary, err := s.registry.Beneficiary(ctx, gameID)
	if err != nil {
		return fmt.Errorf("failed to resolve beneficiary: %w", err)
	}

	balances, err := uow.GameRepository().ListBalances(ctx, gameID)
	if err != nil {
		return err
	}

	swept := false
	for _, balance := range balances {
		if balance.Balance <= 0 {
			continue
		}
		currency, err := uow.CurrencyRepository().GetByCode(ctx, balance.Currency)
		if err != nil {
			return fmt.Errorf("failed to look up currency: %w", err)
		}
		if currency == nil {
			continue
		}
		amount := models.NewAsset(balance.Balance, currency.Code, currency.Precision)
		if err := s.transfer.Transfer(ctx, beneficiary, amount, "profit:"+uuid.NewString()); err != nil {
			return fmt.Errorf("failed to transfer profit: %w", err)
		}
		if err := uow.GameRepository().ZeroBalance(ctx, gameID, balance.Currency); err != nil {
			return err
		}
		if err := uow.GlobalStateRepository().AddProfitSum(ctx, balance.Currency, -balance.Balance); err != nil {
			return err
		}
		uow.EventBus().Publish(events.ProfitClaimedEvent{
			GameID:      gameID,
			Beneficiary: beneficiary,
			Amount:      amount,
		})
		swept = true
	}

	if swept {
		if err := uow.GameRepository().SetLastClaimTime(ctx, gameID, now); err != nil {
			return err
		}
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Withdraw moves treasury funds to a beneficiary chosen by the owner.
// The bonus pool allocation and the session exposure never leave. A
// withdrawal cutting into accumulated profit is capped at a tenth of
// the free balance and throttled to one per week.
func (s *treasuryService) Withdraw(ctx context.Context, actor models.Principal, beneficiary models.Principal, asset models.Asset) error {
	if !asset.IsPositive() {
		return fmt.Errorf("withdraw amount must be positive: %w", models.ErrInvariantViolation)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if _, err := requireOwner(ctx, uow, s.auth, s.owner, s.platform, actor); err != nil {
		return err
	}
	if _, err := validateAsset(ctx, uow, s.registry, asset); err != nil {
		return err
	}

	totalBalance, err := s.transfer.Balance(ctx, asset.Currency)
	if err != nil {
		return fmt.Errorf("failed to read treasury balance: %w", err)
	}
	poolBalance, err := uow.BonusRepository().GetPoolBalance(ctx, asset.Currency)
	if err != nil {
		return err
	}
	globalBalance, err := uow.GlobalStateRepository().GetBalance(ctx, asset.Currency)
	if err != nil {
		return err
	}

	available := totalBalance - poolBalance.TotalAllocated

	profitSum := globalBalance.OperatorProfitSum
	floor := globalBalance.ActiveSessionsSum
	if profitSum > 0 {
		floor += profitSum
	}

	constrained := asset.Value > available-floor
	if constrained {
		limit := available / withdrawCapDivisor
		if available-profitSum < limit {
			limit = available - profitSum
		}
		if asset.Value > limit {
			return fmt.Errorf("quantity exceeds max transfer amount: %w", models.ErrInvariantViolation)
		}

		now := s.now()
		if !globalBalance.LastWithdrawTime.IsZero() && now.Sub(globalBalance.LastWithdrawTime) < withdrawCooldown {
			return fmt.Errorf("already claimed within past week: %w", models.ErrRateLimited)
		}
		if err := uow.GlobalStateRepository().SetLastWithdrawTime(ctx, asset.Currency, now); err != nil {
			return err
		}
	}

	if err := s.transfer.Transfer(ctx, beneficiary, asset, "withdraw:"+uuid.NewString()); err != nil {
		return fmt.Errorf("failed to transfer withdrawal: %w", err)
	}

	uow.EventBus().Publish(events.WithdrawalExecutedEvent{
		Beneficiary: beneficiary,
		Amount:      asset,
		Constrained: constrained,
	})

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"beneficiary": beneficiary,
		"amount":      asset.String(),
		"constrained": constrained,
	}).Info("Treasury withdrawal executed")
	return nil
}
