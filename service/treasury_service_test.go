package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"cashier/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestTreasuryService_OnCurrencyReceived_DepositHalfMargin(t *testing.T) {
	ctx := context.Background()

	// Setup mocks
	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockCurrencyRepo := new(MockCurrencyRepository)
	mockGameRepo := new(MockGameRepository)
	mockGlobalRepo := new(MockGlobalStateRepository)
	mockStatsRepo := new(MockPlayerStatsRepository)
	mockRestrictionRepo := new(MockRestrictionRepository)
	mockRegistry := new(MockPlatformRegistry)
	mockTransfer := new(MockAssetTransfer)
	mockAuth := new(MockAuthorizer)

	mockUoW.SetRepositories(mockCurrencyRepo, mockGameRepo, mockGlobalRepo, nil, mockStatsRepo, mockRestrictionRepo)

	service := NewTreasuryService(mockFactory, mockRegistry, mockTransfer, mockAuth, testConfig())

	stake := models.NewAsset(2000, "BET", 4)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockCurrencyRepo.On("GetByCode", ctx, "BET").Return(betCurrency(), nil)
	mockRegistry.On("IsActiveToken", ctx, "BET").Return(true, nil)
	mockGlobalRepo.On("GetOrInit", ctx, models.Principal("owner"), models.Principal("platform")).Return(&models.GlobalState{Owner: "owner", Platform: "platform"}, nil)

	mockRegistry.On("GameByAccount", ctx, models.Principal("dicegame")).Return(uint64(7), nil)
	mockRestrictionRepo.On("IsBanned", ctx, models.Principal("alice")).Return(false, nil)
	mockGameRepo.On("GetByID", ctx, uint64(7)).Return(&models.Game{ID: 7}, nil)
	mockRegistry.On("ProfitMargin", ctx, uint64(7)).Return(uint32(50), nil)

	// Half the stake becomes claimable operator profit
	mockGameRepo.On("AddBalance", ctx, uint64(7), "BET", int64(1000)).Return(nil)
	mockGlobalRepo.On("AddProfitSum", ctx, "BET", int64(1000)).Return(nil)
	mockStatsRepo.On("AddAmounts", ctx, models.Principal("alice"), "BET", int64(2000), int64(0), int64(-2000), int64(0)).Return(nil)

	err := service.OnCurrencyReceived(ctx, "dicegame", stake, "deposit:alice")

	assert.NoError(t, err)
	mockUoW.AssertExpectations(t)
	mockGameRepo.AssertExpectations(t)
	mockGlobalRepo.AssertExpectations(t)
	mockStatsRepo.AssertExpectations(t)
}

func TestTreasuryService_OnCurrencyReceived_BonusDeposit(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockCurrencyRepo := new(MockCurrencyRepository)
	mockGlobalRepo := new(MockGlobalStateRepository)
	mockBonusRepo := new(MockBonusRepository)
	mockRegistry := new(MockPlatformRegistry)
	mockTransfer := new(MockAssetTransfer)
	mockAuth := new(MockAuthorizer)

	mockUoW.SetRepositories(mockCurrencyRepo, nil, mockGlobalRepo, mockBonusRepo, nil, nil)

	service := NewTreasuryService(mockFactory, mockRegistry, mockTransfer, mockAuth, testConfig())

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockCurrencyRepo.On("GetByCode", ctx, "BET").Return(betCurrency(), nil)
	mockRegistry.On("IsActiveToken", ctx, "BET").Return(true, nil)
	mockGlobalRepo.On("GetOrInit", ctx, models.Principal("owner"), models.Principal("platform")).Return(&models.GlobalState{Owner: "owner", Platform: "platform"}, nil)

	mockBonusRepo.On("AddAllocated", ctx, "BET", int64(5000)).Return(nil)

	err := service.OnCurrencyReceived(ctx, "somedonor", models.NewAsset(5000, "BET", 4), "bonus")

	assert.NoError(t, err)
	mockBonusRepo.AssertExpectations(t)
	mockRegistry.AssertNotCalled(t, "GameByAccount", mock.Anything, mock.Anything)
}

func TestTreasuryService_OnCurrencyReceived_OwnerTopUp(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockCurrencyRepo := new(MockCurrencyRepository)
	mockGlobalRepo := new(MockGlobalStateRepository)
	mockBonusRepo := new(MockBonusRepository)
	mockRegistry := new(MockPlatformRegistry)
	mockTransfer := new(MockAssetTransfer)
	mockAuth := new(MockAuthorizer)

	mockUoW.SetRepositories(mockCurrencyRepo, nil, mockGlobalRepo, mockBonusRepo, nil, nil)

	service := NewTreasuryService(mockFactory, mockRegistry, mockTransfer, mockAuth, testConfig())

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockCurrencyRepo.On("GetByCode", ctx, "BET").Return(betCurrency(), nil)
	mockRegistry.On("IsActiveToken", ctx, "BET").Return(true, nil)
	mockGlobalRepo.On("GetOrInit", ctx, models.Principal("owner"), models.Principal("platform")).Return(&models.GlobalState{Owner: "owner", Platform: "platform"}, nil)

	err := service.OnCurrencyReceived(ctx, "owner", models.NewAsset(100000, "BET", 4), "")

	assert.NoError(t, err)
	mockBonusRepo.AssertNotCalled(t, "AddAllocated", mock.Anything, mock.Anything, mock.Anything)
	mockRegistry.AssertNotCalled(t, "GameByAccount", mock.Anything, mock.Anything)
}

func TestTreasuryService_OnCurrencyReceived_UnknownSender(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockCurrencyRepo := new(MockCurrencyRepository)
	mockGameRepo := new(MockGameRepository)
	mockGlobalRepo := new(MockGlobalStateRepository)
	mockRegistry := new(MockPlatformRegistry)
	mockTransfer := new(MockAssetTransfer)
	mockAuth := new(MockAuthorizer)

	mockUoW.SetRepositories(mockCurrencyRepo, mockGameRepo, mockGlobalRepo, nil, nil, nil)

	service := NewTreasuryService(mockFactory, mockRegistry, mockTransfer, mockAuth, testConfig())

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockCurrencyRepo.On("GetByCode", ctx, "BET").Return(betCurrency(), nil)
	mockRegistry.On("IsActiveToken", ctx, "BET").Return(true, nil)
	mockGlobalRepo.On("GetOrInit", ctx, models.Principal("owner"), models.Principal("platform")).Return(&models.GlobalState{Owner: "owner", Platform: "platform"}, nil)

	mockRegistry.On("GameByAccount", ctx, models.Principal("stranger")).Return(uint64(0), models.ErrNotFound)

	err := service.OnCurrencyReceived(ctx, "stranger", models.NewAsset(2000, "BET", 4), "deposit:alice")

	// The money stays in the treasury, nothing settles
	assert.NoError(t, err)
	mockUoW.AssertExpectations(t)
	mockGameRepo.AssertNotCalled(t, "AddBalance", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTreasuryService_OnCurrencyReceived_RegistryOutage(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockCurrencyRepo := new(MockCurrencyRepository)
	mockGameRepo := new(MockGameRepository)
	mockGlobalRepo := new(MockGlobalStateRepository)
	mockRegistry := new(MockPlatformRegistry)
	mockTransfer := new(MockAssetTransfer)
	mockAuth := new(MockAuthorizer)

	mockUoW.SetRepositories(mockCurrencyRepo, mockGameRepo, mockGlobalRepo, nil, nil, nil)

	service := NewTreasuryService(mockFactory, mockRegistry, mockTransfer, mockAuth, testConfig())

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockCurrencyRepo.On("GetByCode", ctx, "BET").Return(betCurrency(), nil)
	mockRegistry.On("IsActiveToken", ctx, "BET").Return(true, nil)
	mockGlobalRepo.On("GetOrInit", ctx, models.Principal("owner"), models.Principal("platform")).Return(&models.GlobalState{Owner: "owner", Platform: "platform"}, nil)

	// A failed lookup is not an unknown sender
	mockRegistry.On("GameByAccount", ctx, models.Principal("dicegame")).Return(uint64(0), errors.New("platform request failed: connection refused"))

	err := service.OnCurrencyReceived(ctx, "dicegame", models.NewAsset(2000, "BET", 4), "deposit:alice")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to resolve sender")
	mockUoW.AssertNotCalled(t, "Commit")
	mockGameRepo.AssertNotCalled(t, "AddBalance", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTreasuryService_ClaimProfit(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockCurrencyRepo := new(MockCurrencyRepository)
	mockGameRepo := new(MockGameRepository)
	mockGlobalRepo := new(MockGlobalStateRepository)
	mockRegistry := new(MockPlatformRegistry)
	mockTransfer := new(MockAssetTransfer)
	mockAuth := new(MockAuthorizer)

	mockUoW.SetRepositories(mockCurrencyRepo, mockGameRepo, mockGlobalRepo, nil, nil, nil)

	service := NewTreasuryService(mockFactory, mockRegistry, mockTransfer, mockAuth, testConfig()).(*treasuryService)
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return now }

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockGameRepo.On("GetByID", ctx, uint64(7)).Return(&models.Game{ID: 7, LastClaimTime: now.Add(-40 * 24 * time.Hour)}, nil)
	mockRegistry.On("Beneficiary", ctx, uint64(7)).Return(models.Principal("gamedev"), nil)
	mockGameRepo.On("ListBalances", ctx, uint64(7)).Return([]*models.GameBalance{
		{GameID: 7, Currency: "BET", Balance: 5000},
		{GameID: 7, Currency: "USD", Balance: -300},
	}, nil)
	mockCurrencyRepo.On("GetByCode", ctx, "BET").Return(betCurrency(), nil)

	// Only the positive balance is swept
	mockTransfer.On("Transfer", ctx, models.Principal("gamedev"), models.NewAsset(5000, "BET", 4), mock.AnythingOfType("string")).Return(nil)
	mockGameRepo.On("ZeroBalance", ctx, uint64(7), "BET").Return(nil)
	mockGlobalRepo.On("AddProfitSum", ctx, "BET", int64(-5000)).Return(nil)
	mockGameRepo.On("SetLastClaimTime", ctx, uint64(7), now).Return(nil)

	err := service.ClaimProfit(ctx, 7)

	assert.NoError(t, err)
	mockUoW.AssertExpectations(t)
	mockTransfer.AssertExpectations(t)
	mockGameRepo.AssertExpectations(t)
}

func TestTreasuryService_ClaimProfit_WithinCooldown(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockGameRepo := new(MockGameRepository)
	mockRegistry := new(MockPlatformRegistry)
	mockTransfer := new(MockAssetTransfer)
	mockAuth := new(MockAuthorizer)

	mockUoW.SetRepositories(nil, mockGameRepo, nil, nil, nil, nil)

	service := NewTreasuryService(mockFactory, mockRegistry, mockTransfer, mockAuth, testConfig()).(*treasuryService)
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return now }

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockGameRepo.On("GetByID", ctx, uint64(7)).Return(&models.Game{ID: 7, LastClaimTime: now.Add(-10 * 24 * time.Hour)}, nil)

	err := service.ClaimProfit(ctx, 7)

	assert.ErrorIs(t, err, models.ErrRateLimited)
	assert.Contains(t, err.Error(), "already claimed within past month")
	mockTransfer.AssertNotCalled(t, "Transfer", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTreasuryService_ClaimProfit_NothingToSweep(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockCurrencyRepo := new(MockCurrencyRepository)
	mockGameRepo := new(MockGameRepository)
	mockGlobalRepo := new(MockGlobalStateRepository)
	mockRegistry := new(MockPlatformRegistry)
	mockTransfer := new(MockAssetTransfer)
	mockAuth := new(MockAuthorizer)

	mockUoW.SetRepositories(mockCurrencyRepo, mockGameRepo, mockGlobalRepo, nil, nil, nil)

	service := NewTreasuryService(mockFactory, mockRegistry, mockTransfer, mockAuth, testConfig())

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockGameRepo.On("GetByID", ctx, uint64(7)).Return(&models.Game{ID: 7}, nil)
	mockRegistry.On("Beneficiary", ctx, uint64(7)).Return(models.Principal("gamedev"), nil)
	mockGameRepo.On("ListBalances", ctx, uint64(7)).Return([]*models.GameBalance{}, nil)

	err := service.ClaimProfit(ctx, 7)

	// An empty claim succeeds but does not consume the cooldown
	assert.NoError(t, err)
	mockGameRepo.AssertNotCalled(t, "SetLastClaimTime", mock.Anything, mock.Anything, mock.Anything)
}

func withdrawMocks(ctx context.Context, mockUoW *MockUnitOfWork, mockFactory *MockUnitOfWorkFactory, mockCurrencyRepo *MockCurrencyRepository, mockGlobalRepo *MockGlobalStateRepository, mockAuth *MockAuthorizer, mockRegistry *MockPlatformRegistry) {
	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockGlobalRepo.On("GetOrInit", ctx, models.Principal("owner"), models.Principal("platform")).Return(&models.GlobalState{Owner: "owner", Platform: "platform"}, nil)
	mockAuth.On("Authorize", ctx, models.Principal("owner"), models.Principal("owner")).Return(nil)
	mockCurrencyRepo.On("GetByCode", ctx, "BET").Return(betCurrency(), nil)
	mockRegistry.On("IsActiveToken", ctx, "BET").Return(true, nil)
}

func TestTreasuryService_Withdraw_Unconstrained(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockCurrencyRepo := new(MockCurrencyRepository)
	mockGlobalRepo := new(MockGlobalStateRepository)
	mockBonusRepo := new(MockBonusRepository)
	mockRegistry := new(MockPlatformRegistry)
	mockTransfer := new(MockAssetTransfer)
	mockAuth := new(MockAuthorizer)

	mockUoW.SetRepositories(mockCurrencyRepo, nil, mockGlobalRepo, mockBonusRepo, nil, nil)

	service := NewTreasuryService(mockFactory, mockRegistry, mockTransfer, mockAuth, testConfig())

	withdrawMocks(ctx, mockUoW, mockFactory, mockCurrencyRepo, mockGlobalRepo, mockAuth, mockRegistry)
	mockUoW.On("Commit").Return(nil)

	// available = 100000 - 10000 = 90000, floor = 20000 + 5000 = 25000
	mockTransfer.On("Balance", ctx, "BET").Return(int64(100000), nil)
	mockBonusRepo.On("GetPoolBalance", ctx, "BET").Return(&models.BonusPoolBalance{Currency: "BET", TotalAllocated: 10000}, nil)
	mockGlobalRepo.On("GetBalance", ctx, "BET").Return(&models.GlobalBalance{Currency: "BET", ActiveSessionsSum: 20000, OperatorProfitSum: 5000}, nil)

	mockTransfer.On("Transfer", ctx, models.Principal("coldwallet"), models.NewAsset(60000, "BET", 4), mock.AnythingOfType("string")).Return(nil)

	err := service.Withdraw(ctx, "owner", "coldwallet", models.NewAsset(60000, "BET", 4))

	assert.NoError(t, err)
	mockGlobalRepo.AssertNotCalled(t, "SetLastWithdrawTime", mock.Anything, mock.Anything, mock.Anything)
	mockTransfer.AssertExpectations(t)
}

func TestTreasuryService_Withdraw_ExceedsCap(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockCurrencyRepo := new(MockCurrencyRepository)
	mockGlobalRepo := new(MockGlobalStateRepository)
	mockBonusRepo := new(MockBonusRepository)
	mockRegistry := new(MockPlatformRegistry)
	mockTransfer := new(MockAssetTransfer)
	mockAuth := new(MockAuthorizer)

	mockUoW.SetRepositories(mockCurrencyRepo, nil, mockGlobalRepo, mockBonusRepo, nil, nil)

	service := NewTreasuryService(mockFactory, mockRegistry, mockTransfer, mockAuth, testConfig())

	withdrawMocks(ctx, mockUoW, mockFactory, mockCurrencyRepo, mockGlobalRepo, mockAuth, mockRegistry)

	// available = 90000, floor = 25000, cap = min(9000, 85000) = 9000
	mockTransfer.On("Balance", ctx, "BET").Return(int64(100000), nil)
	mockBonusRepo.On("GetPoolBalance", ctx, "BET").Return(&models.BonusPoolBalance{Currency: "BET", TotalAllocated: 10000}, nil)
	mockGlobalRepo.On("GetBalance", ctx, "BET").Return(&models.GlobalBalance{Currency: "BET", ActiveSessionsSum: 20000, OperatorProfitSum: 5000}, nil)

	err := service.Withdraw(ctx, "owner", "coldwallet", models.NewAsset(70000, "BET", 4))

	assert.ErrorIs(t, err, models.ErrInvariantViolation)
	assert.Contains(t, err.Error(), "quantity exceeds max transfer amount")
	mockTransfer.AssertNotCalled(t, "Transfer", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTreasuryService_Withdraw_Throttled(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockCurrencyRepo := new(MockCurrencyRepository)
	mockGlobalRepo := new(MockGlobalStateRepository)
	mockBonusRepo := new(MockBonusRepository)
	mockRegistry := new(MockPlatformRegistry)
	mockTransfer := new(MockAssetTransfer)
	mockAuth := new(MockAuthorizer)

	mockUoW.SetRepositories(mockCurrencyRepo, nil, mockGlobalRepo, mockBonusRepo, nil, nil)

	service := NewTreasuryService(mockFactory, mockRegistry, mockTransfer, mockAuth, testConfig()).(*treasuryService)
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return now }

	withdrawMocks(ctx, mockUoW, mockFactory, mockCurrencyRepo, mockGlobalRepo, mockAuth, mockRegistry)

	// available = 90000, floor = 85000 + 4000 = 89000, request cuts into profit
	mockTransfer.On("Balance", ctx, "BET").Return(int64(100000), nil)
	mockBonusRepo.On("GetPoolBalance", ctx, "BET").Return(&models.BonusPoolBalance{Currency: "BET", TotalAllocated: 10000}, nil)
	mockGlobalRepo.On("GetBalance", ctx, "BET").Return(&models.GlobalBalance{
		Currency:          "BET",
		ActiveSessionsSum: 85000,
		OperatorProfitSum: 4000,
		LastWithdrawTime:  now.Add(-3 * 24 * time.Hour),
	}, nil)

	err := service.Withdraw(ctx, "owner", "coldwallet", models.NewAsset(5000, "BET", 4))

	assert.ErrorIs(t, err, models.ErrRateLimited)
	assert.Contains(t, err.Error(), "already claimed within past week")
	mockTransfer.AssertNotCalled(t, "Transfer", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTreasuryService_Withdraw_ConstrainedSuccess(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockCurrencyRepo := new(MockCurrencyRepository)
	mockGlobalRepo := new(MockGlobalStateRepository)
	mockBonusRepo := new(MockBonusRepository)
	mockRegistry := new(MockPlatformRegistry)
	mockTransfer := new(MockAssetTransfer)
	mockAuth := new(MockAuthorizer)

	mockUoW.SetRepositories(mockCurrencyRepo, nil, mockGlobalRepo, mockBonusRepo, nil, nil)

	service := NewTreasuryService(mockFactory, mockRegistry, mockTransfer, mockAuth, testConfig()).(*treasuryService)
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return now }

	withdrawMocks(ctx, mockUoW, mockFactory, mockCurrencyRepo, mockGlobalRepo, mockAuth, mockRegistry)
	mockUoW.On("Commit").Return(nil)

	mockTransfer.On("Balance", ctx, "BET").Return(int64(100000), nil)
	mockBonusRepo.On("GetPoolBalance", ctx, "BET").Return(&models.BonusPoolBalance{Currency: "BET", TotalAllocated: 10000}, nil)
	mockGlobalRepo.On("GetBalance", ctx, "BET").Return(&models.GlobalBalance{
		Currency:          "BET",
		ActiveSessionsSum: 85000,
		OperatorProfitSum: 4000,
	}, nil)

	mockGlobalRepo.On("SetLastWithdrawTime", ctx, "BET", now).Return(nil)
	mockTransfer.On("Transfer", ctx, models.Principal("coldwallet"), models.NewAsset(5000, "BET", 4), mock.AnythingOfType("string")).Return(nil)

	err := service.Withdraw(ctx, "owner", "coldwallet", models.NewAsset(5000, "BET", 4))

	assert.NoError(t, err)
	mockGlobalRepo.AssertExpectations(t)
	mockTransfer.AssertExpectations(t)
}
