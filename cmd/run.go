package cmd

import (
	"context"
	"fmt"
	"time"

	"cashier/config"
	"cashier/database"
	"cashier/events"
	"cashier/platform"
	"cashier/repository"
	"cashier/service"

	log "github.com/sirupsen/logrus"
)

// App bundles the wired service layer. Whatever surface fronts the
// ledger (an RPC server, a chain event consumer) embeds this.
type App struct {
	Registry service.RegistryService
	Sessions service.SessionService
	Treasury service.TreasuryService
	Bonus    service.BonusService
	Stats    service.StatsService
	Events   *events.Bus
}

// Run initializes and starts the application
func Run(ctx context.Context) error {
	cfg := config.Get()

	configureLogging(cfg)
	log.Info("Starting cashier...")

	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info("Database connection established successfully")

	eventBus := events.NewBus()
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	log.Info("Initializing services...")
	client := platform.NewClient(cfg)
	auth := platform.NewTrustedAuthorizer(cfg)

	app := &App{
		Registry: service.NewRegistryService(uowFactory, client, auth, cfg),
		Sessions: service.NewSessionService(uowFactory, client, client, auth, cfg),
		Treasury: service.NewTreasuryService(uowFactory, client, client, auth, cfg),
		Bonus:    service.NewBonusService(uowFactory, client, client, auth, cfg),
		Stats:    service.NewStatsService(uowFactory),
		Events:   eventBus,
	}
	subscribeAuditLog(app.Events)
	log.Info("Services initialized successfully")

	log.Infof("Cashier is running in %s mode...", cfg.Environment)
	<-ctx.Done()

	log.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	log.Info("Closing database connection...")
	db.Close()

	select {
	case <-shutdownCtx.Done():
		log.Warn("Shutdown timeout exceeded")
	case <-time.After(1 * time.Second):
		log.Info("Shutdown completed")
	}

	return nil
}

func configureLogging(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Environment == "production" {
		log.SetFormatter(&log.JSONFormatter{})
	}
}

// subscribeAuditLog writes every settlement event to the log. The
// audit trail is append-only by construction: events only flush after
// their transaction commits.
func subscribeAuditLog(bus *events.Bus) {
	bus.Subscribe(events.EventTypeSessionOpened, func(ctx context.Context, event events.Event) {
		e := event.(events.SessionOpenedEvent)
		log.WithFields(log.Fields{"gameID": e.GameID, "player": e.Player}).Info("Session opened")
	})
	bus.Subscribe(events.EventTypeSessionClosed, func(ctx context.Context, event events.Event) {
		e := event.(events.SessionClosedEvent)
		log.WithFields(log.Fields{"gameID": e.GameID, "amount": e.Amount.String()}).Info("Session closed")
	})
	bus.Subscribe(events.EventTypeDepositSettled, func(ctx context.Context, event events.Event) {
		e := event.(events.DepositSettledEvent)
		log.WithFields(log.Fields{
			"gameID": e.GameID,
			"player": e.Player,
			"stake":  e.Stake.String(),
			"profit": e.Profit,
		}).Info("Deposit settled")
	})
	bus.Subscribe(events.EventTypeLossPaid, func(ctx context.Context, event events.Event) {
		e := event.(events.LossPaidEvent)
		log.WithFields(log.Fields{"gameID": e.GameID, "player": e.Player, "payout": e.Payout.String()}).Info("Loss paid")
	})
	bus.Subscribe(events.EventTypeProfitClaimed, func(ctx context.Context, event events.Event) {
		e := event.(events.ProfitClaimedEvent)
		log.WithFields(log.Fields{
			"gameID":      e.GameID,
			"beneficiary": e.Beneficiary,
			"amount":      e.Amount.String(),
		}).Info("Profit claimed")
	})
	bus.Subscribe(events.EventTypeWithdrawalExecuted, func(ctx context.Context, event events.Event) {
		e := event.(events.WithdrawalExecutedEvent)
		log.WithFields(log.Fields{
			"beneficiary": e.Beneficiary,
			"amount":      e.Amount.String(),
			"constrained": e.Constrained,
		}).Info("Withdrawal executed")
	})
	bus.Subscribe(events.EventTypeBonusChanged, func(ctx context.Context, event events.Event) {
		e := event.(events.BonusChangedEvent)
		log.WithFields(log.Fields{
			"player": e.Player,
			"delta":  e.Delta.String(),
			"reason": e.Reason,
		}).Info("Bonus changed")
	})
}
