package service

import (
	"context"
	"time"

	"cashier/events"
	"cashier/models"

	"github.com/stretchr/testify/mock"
)

// MockCurrencyRepository is a mock implementation of CurrencyRepository
type MockCurrencyRepository struct {
	mock.Mock
}

func (m *MockCurrencyRepository) GetByCode(ctx context.Context, code string) (*models.Currency, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Currency), args.Error(1)
}

func (m *MockCurrencyRepository) Create(ctx context.Context, currency *models.Currency) error {
	args := m.Called(ctx, currency)
	return args.Error(0)
}

func (m *MockCurrencyRepository) Delete(ctx context.Context, code string) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}

func (m *MockCurrencyRepository) SetPaused(ctx context.Context, code string, paused bool) error {
	args := m.Called(ctx, code, paused)
	return args.Error(0)
}

func (m *MockCurrencyRepository) List(ctx context.Context) ([]*models.Currency, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Currency), args.Error(1)
}

// MockGameRepository is a mock implementation of GameRepository
type MockGameRepository struct {
	mock.Mock
}

func (m *MockGameRepository) GetByID(ctx context.Context, id uint64) (*models.Game, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Game), args.Error(1)
}

func (m *MockGameRepository) Create(ctx context.Context, game *models.Game) error {
	args := m.Called(ctx, game)
	return args.Error(0)
}

func (m *MockGameRepository) Delete(ctx context.Context, id uint64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockGameRepository) SetPaused(ctx context.Context, id uint64, paused bool) error {
	args := m.Called(ctx, id, paused)
	return args.Error(0)
}

func (m *MockGameRepository) GetBalance(ctx context.Context, id uint64, currency string) (*models.GameBalance, error) {
	args := m.Called(ctx, id, currency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GameBalance), args.Error(1)
}

func (m *MockGameRepository) ListBalances(ctx context.Context, id uint64) ([]*models.GameBalance, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.GameBalance), args.Error(1)
}

func (m *MockGameRepository) AddBalance(ctx context.Context, id uint64, currency string, delta int64) error {
	args := m.Called(ctx, id, currency, delta)
	return args.Error(0)
}

func (m *MockGameRepository) ZeroBalance(ctx context.Context, id uint64, currency string) error {
	args := m.Called(ctx, id, currency)
	return args.Error(0)
}

func (m *MockGameRepository) AddSessionSum(ctx context.Context, id uint64, currency string, delta int64) error {
	args := m.Called(ctx, id, currency, delta)
	return args.Error(0)
}

func (m *MockGameRepository) AdjustSessionCount(ctx context.Context, id uint64, delta int64) error {
	args := m.Called(ctx, id, delta)
	return args.Error(0)
}

func (m *MockGameRepository) SetLastClaimTime(ctx context.Context, id uint64, t time.Time) error {
	args := m.Called(ctx, id, t)
	return args.Error(0)
}

func (m *MockGameRepository) HasCurrencyExposure(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockGameRepository) PurgeCurrency(ctx context.Context, code string) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}

// MockGlobalStateRepository is a mock implementation of GlobalStateRepository
type MockGlobalStateRepository struct {
	mock.Mock
}

func (m *MockGlobalStateRepository) GetOrInit(ctx context.Context, owner, platform models.Principal) (*models.GlobalState, error) {
	args := m.Called(ctx, owner, platform)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GlobalState), args.Error(1)
}

func (m *MockGlobalStateRepository) SetOwner(ctx context.Context, owner models.Principal) error {
	args := m.Called(ctx, owner)
	return args.Error(0)
}

func (m *MockGlobalStateRepository) SetPlatform(ctx context.Context, platform models.Principal) error {
	args := m.Called(ctx, platform)
	return args.Error(0)
}

func (m *MockGlobalStateRepository) GetBalance(ctx context.Context, currency string) (*models.GlobalBalance, error) {
	args := m.Called(ctx, currency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GlobalBalance), args.Error(1)
}

func (m *MockGlobalStateRepository) AddSessionSum(ctx context.Context, currency string, delta int64) error {
	args := m.Called(ctx, currency, delta)
	return args.Error(0)
}

func (m *MockGlobalStateRepository) AddProfitSum(ctx context.Context, currency string, delta int64) error {
	args := m.Called(ctx, currency, delta)
	return args.Error(0)
}

func (m *MockGlobalStateRepository) AdjustSessionCount(ctx context.Context, delta int64) error {
	args := m.Called(ctx, delta)
	return args.Error(0)
}

func (m *MockGlobalStateRepository) SetLastWithdrawTime(ctx context.Context, currency string, t time.Time) error {
	args := m.Called(ctx, currency, t)
	return args.Error(0)
}

func (m *MockGlobalStateRepository) DeleteBalance(ctx context.Context, currency string) error {
	args := m.Called(ctx, currency)
	return args.Error(0)
}

// MockBonusRepository is a mock implementation of BonusRepository
type MockBonusRepository struct {
	mock.Mock
}

func (m *MockBonusRepository) GetOrInitPool(ctx context.Context, admin models.Principal) (*models.BonusPool, error) {
	args := m.Called(ctx, admin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BonusPool), args.Error(1)
}

func (m *MockBonusRepository) SetAdmin(ctx context.Context, admin models.Principal) error {
	args := m.Called(ctx, admin)
	return args.Error(0)
}

func (m *MockBonusRepository) GetPoolBalance(ctx context.Context, currency string) (*models.BonusPoolBalance, error) {
	args := m.Called(ctx, currency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BonusPoolBalance), args.Error(1)
}

func (m *MockBonusRepository) AddAllocated(ctx context.Context, currency string, delta int64) error {
	args := m.Called(ctx, currency, delta)
	return args.Error(0)
}

func (m *MockBonusRepository) SetGreetingBonus(ctx context.Context, currency string, amount int64) error {
	args := m.Called(ctx, currency, amount)
	return args.Error(0)
}

func (m *MockBonusRepository) ListGreetingBonuses(ctx context.Context) ([]*models.BonusPoolBalance, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BonusPoolBalance), args.Error(1)
}

func (m *MockBonusRepository) GetPlayerBalance(ctx context.Context, player models.Principal, currency string) (int64, error) {
	args := m.Called(ctx, player, currency)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBonusRepository) AddPlayerBalance(ctx context.Context, player models.Principal, currency string, delta int64) error {
	args := m.Called(ctx, player, currency, delta)
	return args.Error(0)
}

func (m *MockBonusRepository) SumPlayerBalances(ctx context.Context, currency string) (int64, error) {
	args := m.Called(ctx, currency)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBonusRepository) HasPlayerBalances(ctx context.Context, player models.Principal) (bool, error) {
	args := m.Called(ctx, player)
	return args.Bool(0), args.Error(1)
}

func (m *MockBonusRepository) PurgeCurrency(ctx context.Context, currency string) error {
	args := m.Called(ctx, currency)
	return args.Error(0)
}

// MockPlayerStatsRepository is a mock implementation of PlayerStatsRepository
type MockPlayerStatsRepository struct {
	mock.Mock
}

func (m *MockPlayerStatsRepository) IncrementSessions(ctx context.Context, player models.Principal) error {
	args := m.Called(ctx, player)
	return args.Error(0)
}

func (m *MockPlayerStatsRepository) AddAmounts(ctx context.Context, player models.Principal, currency string, volumeReal, volumeBonus, profitReal, profitBonus int64) error {
	args := m.Called(ctx, player, currency, volumeReal, volumeBonus, profitReal, profitBonus)
	return args.Error(0)
}

func (m *MockPlayerStatsRepository) GetStats(ctx context.Context, player models.Principal) (*models.PlayerStats, error) {
	args := m.Called(ctx, player)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PlayerStats), args.Error(1)
}

func (m *MockPlayerStatsRepository) PurgeCurrency(ctx context.Context, currency string) error {
	args := m.Called(ctx, currency)
	return args.Error(0)
}

// MockRestrictionRepository is a mock implementation of RestrictionRepository
type MockRestrictionRepository struct {
	mock.Mock
}

func (m *MockRestrictionRepository) AddNoBonusGame(ctx context.Context, gameID uint64) error {
	args := m.Called(ctx, gameID)
	return args.Error(0)
}

func (m *MockRestrictionRepository) RemoveNoBonusGame(ctx context.Context, gameID uint64) error {
	args := m.Called(ctx, gameID)
	return args.Error(0)
}

func (m *MockRestrictionRepository) IsNoBonusGame(ctx context.Context, gameID uint64) (bool, error) {
	args := m.Called(ctx, gameID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRestrictionRepository) BanPlayer(ctx context.Context, player models.Principal) error {
	args := m.Called(ctx, player)
	return args.Error(0)
}

func (m *MockRestrictionRepository) UnbanPlayer(ctx context.Context, player models.Principal) error {
	args := m.Called(ctx, player)
	return args.Error(0)
}

func (m *MockRestrictionRepository) IsBanned(ctx context.Context, player models.Principal) (bool, error) {
	args := m.Called(ctx, player)
	return args.Bool(0), args.Error(1)
}

// MockPlatformRegistry is a mock implementation of PlatformRegistry
type MockPlatformRegistry struct {
	mock.Mock
}

func (m *MockPlatformRegistry) GameByAccount(ctx context.Context, account models.Principal) (uint64, error) {
	args := m.Called(ctx, account)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *MockPlatformRegistry) IsGameVerified(ctx context.Context, gameID uint64) (bool, error) {
	args := m.Called(ctx, gameID)
	return args.Bool(0), args.Error(1)
}

func (m *MockPlatformRegistry) IsActiveGame(ctx context.Context, gameID uint64) (bool, error) {
	args := m.Called(ctx, gameID)
	return args.Bool(0), args.Error(1)
}

func (m *MockPlatformRegistry) ProfitMargin(ctx context.Context, gameID uint64) (uint32, error) {
	args := m.Called(ctx, gameID)
	return args.Get(0).(uint32), args.Error(1)
}

func (m *MockPlatformRegistry) Beneficiary(ctx context.Context, gameID uint64) (models.Principal, error) {
	args := m.Called(ctx, gameID)
	return args.Get(0).(models.Principal), args.Error(1)
}

func (m *MockPlatformRegistry) IsActiveToken(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

// MockAssetTransfer is a mock implementation of AssetTransfer
type MockAssetTransfer struct {
	mock.Mock
}

func (m *MockAssetTransfer) Transfer(ctx context.Context, to models.Principal, asset models.Asset, memo string) error {
	args := m.Called(ctx, to, asset, memo)
	return args.Error(0)
}

func (m *MockAssetTransfer) Balance(ctx context.Context, currency string) (int64, error) {
	args := m.Called(ctx, currency)
	return args.Get(0).(int64), args.Error(1)
}

// MockAuthorizer is a mock implementation of Authorizer
type MockAuthorizer struct {
	mock.Mock
}

func (m *MockAuthorizer) Authorize(ctx context.Context, actor, required models.Principal) error {
	args := m.Called(ctx, actor, required)
	return args.Error(0)
}

func (m *MockAuthorizer) AuthorizeRole(ctx context.Context, actor models.Principal, role string) error {
	args := m.Called(ctx, actor, role)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Called(event)
}

// recordingPublisher collects published events without expectations.
// Used where a test only cares about repository effects.
type recordingPublisher struct {
	published []events.Event
}

func (p *recordingPublisher) Publish(event events.Event) {
	p.published = append(p.published, event)
}

// MockUnitOfWork is a mock implementation of UnitOfWork. Repositories
// are plugged in with SetRepositories; any left nil will panic on use,
// which keeps tests honest about what they touch.
type MockUnitOfWork struct {
	mock.Mock
	currencyRepo    CurrencyRepository
	gameRepo        GameRepository
	globalStateRepo GlobalStateRepository
	bonusRepo       BonusRepository
	playerStatsRepo PlayerStatsRepository
	restrictionRepo RestrictionRepository
	eventBus        EventPublisher
}

// SetRepositories wires mock repositories into the unit of work
func (m *MockUnitOfWork) SetRepositories(
	currency CurrencyRepository,
	game GameRepository,
	globalState GlobalStateRepository,
	bonus BonusRepository,
	playerStats PlayerStatsRepository,
	restriction RestrictionRepository,
) {
	m.currencyRepo = currency
	m.gameRepo = game
	m.globalStateRepo = globalState
	m.bonusRepo = bonus
	m.playerStatsRepo = playerStats
	m.restrictionRepo = restriction
	if m.eventBus == nil {
		m.eventBus = &recordingPublisher{}
	}
}

// SetEventBus overrides the default event sink
func (m *MockUnitOfWork) SetEventBus(bus EventPublisher) {
	m.eventBus = bus
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) CurrencyRepository() CurrencyRepository {
	if m.currencyRepo == nil {
		panic("currency repository not set on mock unit of work")
	}
	return m.currencyRepo
}

func (m *MockUnitOfWork) GameRepository() GameRepository {
	if m.gameRepo == nil {
		panic("game repository not set on mock unit of work")
	}
	return m.gameRepo
}

func (m *MockUnitOfWork) GlobalStateRepository() GlobalStateRepository {
	if m.globalStateRepo == nil {
		panic("global state repository not set on mock unit of work")
	}
	return m.globalStateRepo
}

func (m *MockUnitOfWork) BonusRepository() BonusRepository {
	if m.bonusRepo == nil {
		panic("bonus repository not set on mock unit of work")
	}
	return m.bonusRepo
}

func (m *MockUnitOfWork) PlayerStatsRepository() PlayerStatsRepository {
	if m.playerStatsRepo == nil {
		panic("player stats repository not set on mock unit of work")
	}
	return m.playerStatsRepo
}

func (m *MockUnitOfWork) RestrictionRepository() RestrictionRepository {
	if m.restrictionRepo == nil {
		panic("restriction repository not set on mock unit of work")
	}
	return m.restrictionRepo
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	if m.eventBus == nil {
		m.eventBus = &recordingPublisher{}
	}
	return m.eventBus
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}
