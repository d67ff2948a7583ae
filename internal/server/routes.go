package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"

	"reflexa/internal/analytics"
	"reflexa/internal/broadcast"
	"reflexa/internal/config"
	"reflexa/internal/db"
	"reflexa/internal/events"
	"reflexa/internal/logger"
	"reflexa/internal/memstore"
	"reflexa/internal/mongostore"
	"reflexa/internal/publisher"
	"reflexa/internal/rounds"
	"reflexa/internal/signer"
	"reflexa/internal/wshub"
)

const shutdownTimeout = 10 * time.Second

// Run wires the service from configuration and serves until ctx is cancelled.
func Run(ctx context.Context) error {
	appCfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log, err := logger.New(logger.Config{
		Level:       appCfg.LogLevel,
		Environment: appCfg.Environment,
		ServiceName: appCfg.ServiceName,
	})
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer log.Sync()

	store, err := openStore(ctx, appCfg.Store, log)
	if err != nil {
		return err
	}
	defer store.Close()

	sig, err := signer.New(appCfg.Signer.PrivateKey)
	if err != nil {
		return fmt.Errorf("loading signer key: %w", err)
	}
	if sig.Configured() {
		log.Info("signer loaded", zap.String("address", sig.Address().Hex()), zap.Int64("chain_id", appCfg.Signer.ChainID))
	} else {
		log.Warn("SIGNER_PRIVATE_KEY not set, score and badge signing disabled")
	}

	bus := events.NewBus()
	hub := wshub.NewHub()
	relay := broadcast.NewRelay(bus, log, hub)
	if len(appCfg.Kafka.Brokers) > 0 {
		pub := publisher.NewKafkaPublisher(publisher.Config{
			Brokers: appCfg.Kafka.Brokers,
			Topic:   appCfg.Kafka.Topic,
		})
		defer pub.Close()
		relay.Add(pub)
		log.Info("publishing live events to kafka", zap.Strings("brokers", appCfg.Kafka.Brokers), zap.String("topic", pub.Topic()))
	}

	queries := analytics.NewQueries(store)
	srv := &Server{
		Store:          store,
		Rounds:         rounds.NewService(store, sig, queries, bus, appCfg.Round.Game(), log),
		Queries:        queries,
		Claimer:        analytics.NewClaimer(queries, sig, bus),
		Signer:         sig,
		Hub:            hub,
		Log:            log,
		ChainID:        appCfg.Signer.ChainID,
		Verifier:       appCfg.Signer.VerifierAddress,
		AllowedOrigins: appCfg.AllowedOrigins,
	}

	// Registered after pub.Close, so sinks are idle before the writer closes.
	stopRelay := startRelay(relay)
	defer stopRelay()

	// Hijacked WebSocket connections outlive Shutdown; they end when baseCtx does.
	baseCtx, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()

	httpSrv := &http.Server{
		Addr:              "0.0.0.0:" + appCfg.Port,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return baseCtx },
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", "http://localhost:"+appCfg.Port), zap.String("store", appCfg.Store.Driver))
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", err)
	}
	cancelBase()
	stopRelay()
	return nil
}

// startRelay runs relay in the background. The returned stop function
// cancels it and waits until every sink has finished its last delivery; it is
// safe to call more than once.
func startRelay(relay *broadcast.Relay) func() {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		relay.Run(ctx)
	}()
	return func() {
		cancel()
		<-done
	}
}

// openStore connects the configured back end. Unlike an unset DATABASE_URL,
// a configured store that cannot be reached is fatal.
func openStore(ctx context.Context, cfg config.StoreConfig, log *logger.Logger) (db.Store, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connecting to postgres: %w", err)
		}
		applied, err := database.Migrate(ctx)
		if err != nil {
			database.Close()
			return nil, fmt.Errorf("migrating postgres: %w", err)
		}
		log.Info("postgres connected", zap.Strings("migrations_applied", applied))
		return database, nil

	case config.DriverMongo:
		store, err := mongostore.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, fmt.Errorf("connecting to mongodb: %w", err)
		}
		log.Info("mongodb connected", zap.String("database", cfg.MongoDatabase))
		return store, nil

	default:
		log.Warn("no database configured, running with in-memory store")
		return memstore.NewStore(), nil
	}
}
