package service

import (
	"context"
	"testing"

	"cashier/config"
	"cashier/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func testConfig() *config.Config {
	return &config.Config{
		OwnerAccount:    "owner",
		PlatformAccount: "platform",
		BonusAdmin:      "bonusadmin",
	}
}

func betCurrency() *models.Currency {
	return &models.Currency{Code: "BET", Precision: 4}
}

func TestSessionService_OpenSession(t *testing.T) {
	ctx := context.Background()

	// Setup mocks
	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockGameRepo := new(MockGameRepository)
	mockGlobalRepo := new(MockGlobalStateRepository)
	mockStatsRepo := new(MockPlayerStatsRepository)
	mockRestrictionRepo := new(MockRestrictionRepository)
	mockRegistry := new(MockPlatformRegistry)
	mockTransfer := new(MockAssetTransfer)
	mockAuth := new(MockAuthorizer)

	mockUoW.SetRepositories(nil, mockGameRepo, mockGlobalRepo, nil, mockStatsRepo, mockRestrictionRepo)

	service := NewSessionService(mockFactory, mockRegistry, mockTransfer, mockAuth, testConfig())

	// Mock expectations
	mockAuth.On("Authorize", ctx, models.Principal("dicegame"), models.Principal("dicegame")).Return(nil)
	mockRegistry.On("GameByAccount", ctx, models.Principal("dicegame")).Return(uint64(7), nil)
	mockRegistry.On("IsActiveGame", ctx, uint64(7)).Return(true, nil)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockRestrictionRepo.On("IsBanned", ctx, models.Principal("alice")).Return(false, nil)
	mockGameRepo.On("GetByID", ctx, uint64(7)).Return(&models.Game{ID: 7}, nil)
	mockGlobalRepo.On("GetOrInit", ctx, models.Principal("owner"), models.Principal("platform")).Return(&models.GlobalState{Owner: "owner", Platform: "platform"}, nil)
	mockGameRepo.On("AdjustSessionCount", ctx, uint64(7), int64(1)).Return(nil)
	mockGlobalRepo.On("AdjustSessionCount", ctx, int64(1)).Return(nil)
	mockStatsRepo.On("IncrementSessions", ctx, models.Principal("alice")).Return(nil)

	err := service.OpenSession(ctx, "dicegame", 7, "alice")

	assert.NoError(t, err)
	mockFactory.AssertExpectations(t)
	mockUoW.AssertExpectations(t)
	mockGameRepo.AssertExpectations(t)
	mockGlobalRepo.AssertExpectations(t)
	mockStatsRepo.AssertExpectations(t)
}

func TestSessionService_OpenSession_PausedGame(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockGameRepo := new(MockGameRepository)
	mockRestrictionRepo := new(MockRestrictionRepository)
	mockRegistry := new(MockPlatformRegistry)
	mockTransfer := new(MockAssetTransfer)
	mockAuth := new(MockAuthorizer)

	mockUoW.SetRepositories(nil, mockGameRepo, nil, nil, nil, mockRestrictionRepo)

	service := NewSessionService(mockFactory, mockRegistry, mockTransfer, mockAuth, testConfig())

	mockAuth.On("Authorize", ctx, models.Principal("dicegame"), models.Principal("dicegame")).Return(nil)
	mockRegistry.On("GameByAccount", ctx, models.Principal("dicegame")).Return(uint64(7), nil)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockRestrictionRepo.On("IsBanned", ctx, models.Principal("alice")).Return(false, nil)
	mockGameRepo.On("GetByID", ctx, uint64(7)).Return(&models.Game{ID: 7, Paused: true}, nil)

	err := service.OpenSession(ctx, "dicegame", 7, "alice")

	assert.ErrorIs(t, err, models.ErrExternalVerification)
	mockGameRepo.AssertNotCalled(t, "AdjustSessionCount", mock.Anything, mock.Anything, mock.Anything)
}

func TestSessionService_OpenSession_BannedPlayer(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockGameRepo := new(MockGameRepository)
	mockRestrictionRepo := new(MockRestrictionRepository)
	mockRegistry := new(MockPlatformRegistry)
	mockTransfer := new(MockAssetTransfer)
	mockAuth := new(MockAuthorizer)

	mockUoW.SetRepositories(nil, mockGameRepo, nil, nil, nil, mockRestrictionRepo)

	service := NewSessionService(mockFactory, mockRegistry, mockTransfer, mockAuth, testConfig())

	mockAuth.On("Authorize", ctx, models.Principal("dicegame"), models.Principal("dicegame")).Return(nil)
	mockRegistry.On("GameByAccount", ctx, models.Principal("dicegame")).Return(uint64(7), nil)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockRestrictionRepo.On("IsBanned", ctx, models.Principal("mallory")).Return(true, nil)

	err := service.OpenSession(ctx, "dicegame", 7, "mallory")

	assert.ErrorIs(t, err, models.ErrUnauthorized)
	mockGameRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestSessionService_OpenSession_WrongGameAccount(t *testing.T) {
	ctx := context.Background()

	mockFactory := new(MockUnitOfWorkFactory)
	mockRegistry := new(MockPlatformRegistry)
	mockTransfer := new(MockAssetTransfer)
	mockAuth := new(MockAuthorizer)

	service := NewSessionService(mockFactory, mockRegistry, mockTransfer, mockAuth, testConfig())

	mockAuth.On("Authorize", ctx, models.Principal("dicegame"), models.Principal("dicegame")).Return(nil)
	mockRegistry.On("GameByAccount", ctx, models.Principal("dicegame")).Return(uint64(7), nil)

	err := service.OpenSession(ctx, "dicegame", 8, "alice")

	assert.ErrorIs(t, err, models.ErrUnauthorized)
	mockFactory.AssertNotCalled(t, "Create")
}

func TestSessionService_UpdateSessionVolume_NegativeBelowZero(t *testing.T) {
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

	service := NewSessionService(mockFactory, mockRegistry, mockTransfer, mockAuth, testConfig())

	mockAuth.On("Authorize", ctx, models.Principal("dicegame"), models.Principal("dicegame")).Return(nil)
	mockRegistry.On("GameByAccount", ctx, models.Principal("dicegame")).Return(uint64(7), nil)
	mockRegistry.On("IsActiveToken", ctx, "BET").Return(true, nil)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockCurrencyRepo.On("GetByCode", ctx, "BET").Return(betCurrency(), nil)
	mockGameRepo.On("GetByID", ctx, uint64(7)).Return(&models.Game{ID: 7}, nil)
	mockGameRepo.On("GetBalance", ctx, uint64(7), "BET").Return(&models.GameBalance{GameID: 7, Currency: "BET", ActiveSessionsSum: 500}, nil)
	mockGlobalRepo.On("GetBalance", ctx, "BET").Return(&models.GlobalBalance{Currency: "BET", ActiveSessionsSum: 500}, nil)

	err := service.UpdateSessionVolume(ctx, "dicegame", 7, models.NewAsset(-600, "BET", 4))

	assert.ErrorIs(t, err, models.ErrInvariantViolation)
	mockGameRepo.AssertNotCalled(t, "AddSessionSum", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSessionService_CloseSession(t *testing.T) {
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

	service := NewSessionService(mockFactory, mockRegistry, mockTransfer, mockAuth, testConfig())

	mockAuth.On("Authorize", ctx, models.Principal("dicegame"), models.Principal("dicegame")).Return(nil)
	mockRegistry.On("GameByAccount", ctx, models.Principal("dicegame")).Return(uint64(7), nil)
	mockRegistry.On("IsActiveToken", ctx, "BET").Return(true, nil)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockCurrencyRepo.On("GetByCode", ctx, "BET").Return(betCurrency(), nil)
	mockGameRepo.On("GetByID", ctx, uint64(7)).Return(&models.Game{ID: 7, ActiveSessionsCount: 2}, nil)
	mockGlobalRepo.On("GetOrInit", ctx, models.Principal("owner"), models.Principal("platform")).Return(&models.GlobalState{Owner: "owner", Platform: "platform", ActiveSessionsCount: 3}, nil)
	mockGameRepo.On("GetBalance", ctx, uint64(7), "BET").Return(&models.GameBalance{GameID: 7, Currency: "BET", ActiveSessionsSum: 1000}, nil)
	mockGlobalRepo.On("GetBalance", ctx, "BET").Return(&models.GlobalBalance{Currency: "BET", ActiveSessionsSum: 1500}, nil)

	mockGameRepo.On("AddSessionSum", ctx, uint64(7), "BET", int64(-800)).Return(nil)
	mockGlobalRepo.On("AddSessionSum", ctx, "BET", int64(-800)).Return(nil)
	mockGameRepo.On("AdjustSessionCount", ctx, uint64(7), int64(-1)).Return(nil)
	mockGlobalRepo.On("AdjustSessionCount", ctx, int64(-1)).Return(nil)

	err := service.CloseSession(ctx, "dicegame", 7, models.NewAsset(800, "BET", 4))

	assert.NoError(t, err)
	mockUoW.AssertExpectations(t)
	mockGameRepo.AssertExpectations(t)
	mockGlobalRepo.AssertExpectations(t)
}

func TestSessionService_CloseSession_NoActiveSessions(t *testing.T) {
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

	service := NewSessionService(mockFactory, mockRegistry, mockTransfer, mockAuth, testConfig())

	mockAuth.On("Authorize", ctx, models.Principal("dicegame"), models.Principal("dicegame")).Return(nil)
	mockRegistry.On("GameByAccount", ctx, models.Principal("dicegame")).Return(uint64(7), nil)
	mockRegistry.On("IsActiveToken", ctx, "BET").Return(true, nil)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockCurrencyRepo.On("GetByCode", ctx, "BET").Return(betCurrency(), nil)
	mockGameRepo.On("GetByID", ctx, uint64(7)).Return(&models.Game{ID: 7, ActiveSessionsCount: 0}, nil)
	mockGlobalRepo.On("GetOrInit", ctx, models.Principal("owner"), models.Principal("platform")).Return(&models.GlobalState{Owner: "owner", Platform: "platform", ActiveSessionsCount: 0}, nil)

	err := service.CloseSession(ctx, "dicegame", 7, models.NewAsset(100, "BET", 4))

	assert.ErrorIs(t, err, models.ErrInvariantViolation)
	assert.Contains(t, err.Error(), "no active sessions")
}

func TestSessionService_CloseSession_ExceedsTrackedVolume(t *testing.T) {
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

	service := NewSessionService(mockFactory, mockRegistry, mockTransfer, mockAuth, testConfig())

	mockAuth.On("Authorize", ctx, models.Principal("dicegame"), models.Principal("dicegame")).Return(nil)
	mockRegistry.On("GameByAccount", ctx, models.Principal("dicegame")).Return(uint64(7), nil)
	mockRegistry.On("IsActiveToken", ctx, "BET").Return(true, nil)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockCurrencyRepo.On("GetByCode", ctx, "BET").Return(betCurrency(), nil)
	mockGameRepo.On("GetByID", ctx, uint64(7)).Return(&models.Game{ID: 7, ActiveSessionsCount: 1}, nil)
	mockGlobalRepo.On("GetOrInit", ctx, models.Principal("owner"), models.Principal("platform")).Return(&models.GlobalState{Owner: "owner", Platform: "platform", ActiveSessionsCount: 1}, nil)
	mockGameRepo.On("GetBalance", ctx, uint64(7), "BET").Return(&models.GameBalance{GameID: 7, Currency: "BET", ActiveSessionsSum: 100}, nil)
	mockGlobalRepo.On("GetBalance", ctx, "BET").Return(&models.GlobalBalance{Currency: "BET", ActiveSessionsSum: 100}, nil)

	err := service.CloseSession(ctx, "dicegame", 7, models.NewAsset(200, "BET", 4))

	assert.ErrorIs(t, err, models.ErrInvariantViolation)
	assert.Contains(t, err.Error(), "invalid quantity in session close")
}

func TestSessionService_OnLoss_HalfMargin(t *testing.T) {
	ctx := context.Background()

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

	service := NewSessionService(mockFactory, mockRegistry, mockTransfer, mockAuth, testConfig())

	payout := models.NewAsset(2000, "BET", 4)

	mockAuth.On("Authorize", ctx, models.Principal("dicegame"), models.Principal("dicegame")).Return(nil)
	mockRegistry.On("GameByAccount", ctx, models.Principal("dicegame")).Return(uint64(7), nil)
	mockRegistry.On("IsActiveToken", ctx, "BET").Return(true, nil)
	mockRegistry.On("ProfitMargin", ctx, uint64(7)).Return(uint32(50), nil)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockRestrictionRepo.On("IsBanned", ctx, models.Principal("alice")).Return(false, nil)
	mockCurrencyRepo.On("GetByCode", ctx, "BET").Return(betCurrency(), nil)
	mockGameRepo.On("GetByID", ctx, uint64(7)).Return(&models.Game{ID: 7}, nil)

	mockTransfer.On("Transfer", ctx, models.Principal("alice"), payout, mock.AnythingOfType("string")).Return(nil)

	// 50% of the payout comes out of the operator's claimable profit
	mockGameRepo.On("AddBalance", ctx, uint64(7), "BET", int64(-1000)).Return(nil)
	mockGlobalRepo.On("AddProfitSum", ctx, "BET", int64(-1000)).Return(nil)
	mockStatsRepo.On("AddAmounts", ctx, models.Principal("alice"), "BET", int64(0), int64(0), int64(2000), int64(0)).Return(nil)

	err := service.OnLoss(ctx, "dicegame", "alice", payout)

	assert.NoError(t, err)
	mockUoW.AssertExpectations(t)
	mockTransfer.AssertExpectations(t)
	mockGameRepo.AssertExpectations(t)
	mockGlobalRepo.AssertExpectations(t)
	mockStatsRepo.AssertExpectations(t)
}
