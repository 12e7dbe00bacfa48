package service

import (
	"context"
	"time"

	"cashier/events"
	"cashier/models"
)

// CurrencyRepository defines the interface for currency registry access
type CurrencyRepository interface {
	// GetByCode retrieves a currency by code, nil if not registered
	GetByCode(ctx context.Context, code string) (*models.Currency, error)

	// Create registers a new currency
	Create(ctx context.Context, currency *models.Currency) error

	// Delete removes a currency from the registry
	Delete(ctx context.Context, code string) error

	// SetPaused sets the pause flag on a currency
	SetPaused(ctx context.Context, code string, paused bool) error

	// List returns all registered currencies
	List(ctx context.Context) ([]*models.Currency, error)
}

// GameRepository defines the interface for the per-game ledger rows
type GameRepository interface {
	// GetByID retrieves a game row, nil if absent
	GetByID(ctx context.Context, id uint64) (*models.Game, error)

	// Create inserts a game row together with its empty ledger state
	Create(ctx context.Context, game *models.Game) error

	// Delete removes a game row and its balances
	Delete(ctx context.Context, id uint64) error

	// SetPaused sets the local pause flag
	SetPaused(ctx context.Context, id uint64, paused bool) error

	// GetBalance returns the per-currency ledger row; a missing row
	// reads as zero, never as an error
	GetBalance(ctx context.Context, id uint64, currency string) (*models.GameBalance, error)

	// ListBalances returns all per-currency rows for a game
	ListBalances(ctx context.Context, id uint64) ([]*models.GameBalance, error)

	// AddBalance adds a signed delta to the owed-to-operator balance
	AddBalance(ctx context.Context, id uint64, currency string, delta int64) error

	// ZeroBalance resets the owed balance for one currency
	ZeroBalance(ctx context.Context, id uint64, currency string) error

	// AddSessionSum adds a signed delta to the active-session exposure
	AddSessionSum(ctx context.Context, id uint64, currency string, delta int64) error

	// AdjustSessionCount adds a signed delta to the session count
	AdjustSessionCount(ctx context.Context, id uint64, delta int64) error

	// SetLastClaimTime records a successful profit claim
	SetLastClaimTime(ctx context.Context, id uint64, t time.Time) error

	// HasCurrencyExposure reports whether any game still carries a
	// nonzero owed balance or active-session sum in a currency
	HasCurrencyExposure(ctx context.Context, code string) (bool, error)

	// PurgeCurrency removes a currency key from every game's parameter
	// map and deletes its balance rows
	PurgeCurrency(ctx context.Context, code string) error
}

// GlobalStateRepository defines the interface for the singleton aggregate
type GlobalStateRepository interface {
	// GetOrInit loads the singleton row, creating it with the given
	// principals on first use
	GetOrInit(ctx context.Context, owner, platform models.Principal) (*models.GlobalState, error)

	// SetOwner transfers platform ownership
	SetOwner(ctx context.Context, owner models.Principal) error

	// SetPlatform changes the platform principal
	SetPlatform(ctx context.Context, platform models.Principal) error

	// GetBalance returns the per-currency aggregate; missing reads as zero
	GetBalance(ctx context.Context, currency string) (*models.GlobalBalance, error)

	// AddSessionSum adds a signed delta to the global session exposure
	AddSessionSum(ctx context.Context, currency string, delta int64) error

	// AddProfitSum adds a signed delta to the global operator profit
	AddProfitSum(ctx context.Context, currency string, delta int64) error

	// AdjustSessionCount adds a signed delta to the global session count
	AdjustSessionCount(ctx context.Context, delta int64) error

	// SetLastWithdrawTime records a constrained withdrawal
	SetLastWithdrawTime(ctx context.Context, currency string, t time.Time) error

	// DeleteBalance removes the aggregate row for a purged currency
	DeleteBalance(ctx context.Context, currency string) error
}

// BonusRepository defines the interface for the bonus pool and player
// bonus balances
type BonusRepository interface {
	// GetOrInitPool loads the singleton pool row, creating it with the
	// given admin on first use
	GetOrInitPool(ctx context.Context, admin models.Principal) (*models.BonusPool, error)

	// SetAdmin changes the pool administrator
	SetAdmin(ctx context.Context, admin models.Principal) error

	// GetPoolBalance returns the per-currency pool slice; missing reads
	// as zero
	GetPoolBalance(ctx context.Context, currency string) (*models.BonusPoolBalance, error)

	// AddAllocated adds a signed delta to the total allocation
	AddAllocated(ctx context.Context, currency string, delta int64) error

	// SetGreetingBonus sets the greeting amount for a currency
	SetGreetingBonus(ctx context.Context, currency string, amount int64) error

	// ListGreetingBonuses returns pool slices with a configured greeting
	ListGreetingBonuses(ctx context.Context) ([]*models.BonusPoolBalance, error)

	// GetPlayerBalance returns a player's bonus balance, zero if absent
	GetPlayerBalance(ctx context.Context, player models.Principal, currency string) (int64, error)

	// AddPlayerBalance applies a signed delta to a player's bonus
	// balance, creating the row on first credit and deleting it when it
	// reaches exactly zero
	AddPlayerBalance(ctx context.Context, player models.Principal, currency string, delta int64) error

	// SumPlayerBalances returns the sum of all player bonus balances in
	// one currency
	SumPlayerBalances(ctx context.Context, currency string) (int64, error)

	// HasPlayerBalances reports whether the player holds any bonus
	HasPlayerBalances(ctx context.Context, player models.Principal) (bool, error)

	// PurgeCurrency removes the pool and player rows for a currency
	PurgeCurrency(ctx context.Context, currency string) error
}

// PlayerStatsRepository defines the interface for player statistics.
// Stats are pure accumulation: updated as a side effect of settlement
// operations, never independently mutated.
type PlayerStatsRepository interface {
	// IncrementSessions bumps the session counter, creating the row
	// lazily
	IncrementSessions(ctx context.Context, player models.Principal) error

	// AddAmounts accumulates signed deltas into the per-currency stats
	// row, creating it lazily
	AddAmounts(ctx context.Context, player models.Principal, currency string, volumeReal, volumeBonus, profitReal, profitBonus int64) error

	// GetStats returns the player's stats with all per-currency amounts,
	// nil if the player has none
	GetStats(ctx context.Context, player models.Principal) (*models.PlayerStats, error)

	// PurgeCurrency removes the per-currency amounts for a currency
	PurgeCurrency(ctx context.Context, currency string) error
}

// RestrictionRepository defines the interface for the no-bonus game set
// and the ban list
type RestrictionRepository interface {
	AddNoBonusGame(ctx context.Context, gameID uint64) error
	RemoveNoBonusGame(ctx context.Context, gameID uint64) error
	IsNoBonusGame(ctx context.Context, gameID uint64) (bool, error)

	BanPlayer(ctx context.Context, player models.Principal) error
	UnbanPlayer(ctx context.Context, player models.Principal) error
	IsBanned(ctx context.Context, player models.Principal) (bool, error)
}

// PlatformRegistry is the read-only upstream registry of games and
// tokens. It resolves caller identities, activity flags, profit margins
// and payout beneficiaries.
type PlatformRegistry interface {
	// GameByAccount resolves a registered account to its game id
	GameByAccount(ctx context.Context, account models.Principal) (uint64, error)

	// IsGameVerified reports whether the platform verified the game
	IsGameVerified(ctx context.Context, gameID uint64) (bool, error)

	// IsActiveGame reports the registry-side active flag
	IsActiveGame(ctx context.Context, gameID uint64) (bool, error)

	// ProfitMargin returns the percentage of a deposit retained as the
	// operator's claimable profit
	ProfitMargin(ctx context.Context, gameID uint64) (uint32, error)

	// Beneficiary returns the payout beneficiary for profit claims
	Beneficiary(ctx context.Context, gameID uint64) (models.Principal, error)

	// IsActiveToken reports whether a token is active upstream
	IsActiveToken(ctx context.Context, code string) (bool, error)
}

// AssetTransfer performs the actual movement of currency between
// accounts. A requested transfer either fully succeeds or the whole
// operation aborts.
type AssetTransfer interface {
	// Transfer moves an asset from the platform account to a recipient
	Transfer(ctx context.Context, to models.Principal, asset models.Asset, memo string) error

	// Balance returns the platform account's total balance in a currency
	Balance(ctx context.Context, currency string) (int64, error)
}

// Authorizer verifies that an operation was authorized by a specific
// principal or role.
type Authorizer interface {
	// Authorize fails unless the actor is authenticated as required
	Authorize(ctx context.Context, actor, required models.Principal) error

	// AuthorizeRole fails unless the actor carries the named platform
	// role
	AuthorizeRole(ctx context.Context, actor models.Principal, role string) error
}

// RegistryService defines the administrative surface: currencies, games,
// restriction sets and the singleton principals.
type RegistryService interface {
	AddCurrency(ctx context.Context, actor models.Principal, code string, precision int) error
	RemoveCurrency(ctx context.Context, actor models.Principal, code string) error
	PauseCurrency(ctx context.Context, actor models.Principal, code string, paused bool) error

	AddGame(ctx context.Context, actor models.Principal, gameID uint64, params models.GameParams) error
	RemoveGame(ctx context.Context, actor models.Principal, gameID uint64) error
	PauseGame(ctx context.Context, actor models.Principal, gameID uint64, paused bool) error

	SetOwner(ctx context.Context, actor models.Principal, newOwner models.Principal) error
	SetPlatform(ctx context.Context, actor models.Principal, platform models.Principal) error

	RestrictBonusGame(ctx context.Context, actor models.Principal, gameID uint64) error
	UnrestrictBonusGame(ctx context.Context, actor models.Principal, gameID uint64) error
	BanPlayer(ctx context.Context, actor models.Principal, player models.Principal) error
	UnbanPlayer(ctx context.Context, actor models.Principal, player models.Principal) error

	// IsActiveGame reports whether a game can accept sessions: the
	// ledger row exists, is not locally paused, and the upstream
	// registry reports it active
	IsActiveGame(ctx context.Context, gameID uint64) (bool, error)
}

// SessionService defines the session state machine operated by game
// principals.
type SessionService interface {
	// OpenSession starts a player session; no currency movement
	OpenSession(ctx context.Context, actor models.Principal, gameID uint64, player models.Principal) error

	// UpdateSessionVolume applies a maximum-exposure delta (may be
	// negative) to the session sums at both scopes
	UpdateSessionVolume(ctx context.Context, actor models.Principal, gameID uint64, delta models.Asset) error

	// CloseSession settles a session, releasing its tracked exposure
	CloseSession(ctx context.Context, actor models.Principal, gameID uint64, amount models.Asset) error

	// OnLoss pays a player win and debits the game's profit share
	OnLoss(ctx context.Context, actor models.Principal, player models.Principal, amount models.Asset) error
}

// TreasuryService defines the money-routing and owner-side operations.
type TreasuryService interface {
	// OnCurrencyReceived routes an inbound transfer by tag and sender
	// identity: player stake, bonus pool deposit, or plain top-up
	OnCurrencyReceived(ctx context.Context, from models.Principal, asset models.Asset, memo string) error

	// ClaimProfit sweeps a game's positive balances to its beneficiary,
	// gated by the monthly cooldown
	ClaimProfit(ctx context.Context, gameID uint64) error

	// Withdraw executes the owner's two-tier capped withdrawal
	Withdraw(ctx context.Context, actor models.Principal, beneficiary models.Principal, asset models.Asset) error
}

// BonusService defines the bonus economy operations.
type BonusService interface {
	WithdrawFromPool(ctx context.Context, actor models.Principal, to models.Principal, asset models.Asset, memo string) error
	GrantBonus(ctx context.Context, actor models.Principal, player models.Principal, asset models.Asset) error
	RevokeBonus(ctx context.Context, actor models.Principal, player models.Principal, asset models.Asset) error
	ConvertToReal(ctx context.Context, actor models.Principal, player models.Principal, currency string, memo string) error

	// LockForSession stakes bonus funds into a session (game principal)
	LockForSession(ctx context.Context, actor models.Principal, player models.Principal, asset models.Asset) error

	// CreditOnWin returns bonus winnings to the player (game principal)
	CreditOnWin(ctx context.Context, actor models.Principal, player models.Principal, asset models.Asset) error

	// GreetNewPlayer grants the configured greeting bonus; restricted
	// platform role only
	GreetNewPlayer(ctx context.Context, actor models.Principal, player models.Principal) error

	SetGreetingBonus(ctx context.Context, actor models.Principal, asset models.Asset) error
	SetAdmin(ctx context.Context, actor models.Principal, admin models.Principal) error
}

// StatsService defines the read-only reporting surface.
type StatsService interface {
	// GetGameBalance returns the owed balance for a game; an unknown
	// currency reads as zero, never as an error
	GetGameBalance(ctx context.Context, gameID uint64, currency string) (models.Asset, error)

	// GetGlobalSnapshot returns the per-currency aggregate
	GetGlobalSnapshot(ctx context.Context, currency string) (*models.GlobalBalance, error)

	// GetPlayerStats returns a player's accumulated statistics
	GetPlayerStats(ctx context.Context, player models.Principal) (*models.PlayerStats, error)

	// GetBonusBalance returns a player's bonus balance in one currency
	GetBonusBalance(ctx context.Context, player models.Principal, currency string) (int64, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork defines the interface for transactional repository
// operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Repository getters
	CurrencyRepository() CurrencyRepository
	GameRepository() GameRepository
	GlobalStateRepository() GlobalStateRepository
	BonusRepository() BonusRepository
	PlayerStatsRepository() PlayerStatsRepository
	RestrictionRepository() RestrictionRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork
// instances
type UnitOfWorkFactory interface {
	// Create creates a new UnitOfWork instance
	Create() UnitOfWork
}
