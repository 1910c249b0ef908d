package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"golang.org/x/sync/errgroup"

	"scholarchain/internal/authority"
	authorityhandler "scholarchain/internal/authority/handler"
	"scholarchain/internal/bank"
	bankhandler "scholarchain/internal/bank/handler"
	"scholarchain/internal/chain"
	disputehandler "scholarchain/internal/dispute/handler"
	disputeservice "scholarchain/internal/dispute/service"
	disputestore "scholarchain/internal/dispute/store"
	"scholarchain/internal/events"
	identityhandler "scholarchain/internal/identity/handler"
	identityservice "scholarchain/internal/identity/service"
	identitystore "scholarchain/internal/identity/store"
	papershandler "scholarchain/internal/papers/handler"
	papersservice "scholarchain/internal/papers/service"
	papersstore "scholarchain/internal/papers/store"
	"scholarchain/internal/platform/config"
	"scholarchain/internal/platform/httpserver"
	"scholarchain/internal/platform/logger"
	"scholarchain/internal/platform/metrics"
	reputationhandler "scholarchain/internal/reputation/handler"
	reputationservice "scholarchain/internal/reputation/service"
	reputationstore "scholarchain/internal/reputation/store"
	reviewshandler "scholarchain/internal/reviews/handler"
	reviewsservice "scholarchain/internal/reviews/service"
	reviewsstore "scholarchain/internal/reviews/store"
	"scholarchain/internal/token"
	tokenhandler "scholarchain/internal/token/handler"
	httptransport "scholarchain/internal/transport/http"
)

// main wires dependencies and owns the process lifecycle. Business logic
// lives in the internal service packages.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		logger.New().Error("invalid configuration", "error", err.Error())
		os.Exit(1)
	}
	log := logger.New()
	m := metrics.New()

	clock := chain.NewClock()
	exec := chain.NewExecutor(clock,
		chain.WithLogger(log),
		chain.WithObserver(m),
	)

	// Event pipeline. The in-memory sink always runs; Postgres and Kafka
	// join the tee when configured.
	sinks := []events.Store{events.NewInMemoryStore()}
	if cfg.PostgresDSN != "" {
		db, err := sql.Open("pgx", cfg.PostgresDSN)
		if err != nil {
			log.Error("postgres open failed", "error", err.Error())
			os.Exit(1)
		}
		pg := events.NewPostgres(db)
		if err := pg.Migrate(context.Background()); err != nil {
			log.Error("postgres migrate failed", "error", err.Error())
			os.Exit(1)
		}
		sinks = append(sinks, pg)
	}
	var kafkaStore *events.KafkaStore
	if cfg.KafkaBrokers != "" {
		ks, err := events.NewKafkaStore(strings.Split(cfg.KafkaBrokers, ","), cfg.KafkaTopic)
		if err != nil {
			log.Error("kafka connect failed", "error", err.Error())
			os.Exit(1)
		}
		kafkaStore = ks
		sinks = append(sinks, ks)
	}
	publisher := events.NewPublisher(events.Tee(sinks...),
		events.WithLogger(log),
		events.WithAsyncBuffer(1024),
	)

	registry := authority.NewRegistry()
	ledger := bank.NewLedger()
	gov := cfg.Governance

	identity := identityservice.New(identitystore.NewInMemory(), ledger, registry, exec,
		gov.MinStake, gov.IdentityTrustThreshold,
		identityservice.WithLogger(log),
		identityservice.WithMetrics(m),
		identityservice.WithPublisher(publisher),
	)
	reputation := reputationservice.New(reputationstore.NewInMemory(), identity, registry, exec,
		gov.VotingPeriod, gov.MaxReputation,
		reputationservice.WithLogger(log),
		reputationservice.WithMetrics(m),
		reputationservice.WithPublisher(publisher),
	)
	disputes := disputeservice.New(disputestore.NewInMemory(), identity, registry, exec,
		gov.DisputeVotePeriod, gov.DisputePenalty, gov.TrustThreshold,
		disputeservice.WithLogger(log),
		disputeservice.WithMetrics(m),
		disputeservice.WithPublisher(publisher),
	)
	papers := papersservice.New(papersstore.NewInMemory(), identity, ledger, registry, exec,
		gov.SubmissionFee,
		papersservice.WithLogger(log),
		papersservice.WithPublisher(publisher),
	)
	reviews := reviewsservice.New(reviewsstore.NewInMemory(), identity, papers, registry, exec,
		reviewsservice.WithLogger(log),
		reviewsservice.WithPublisher(publisher),
	)
	authorities := authority.NewService(registry, exec,
		authority.WithLogger(log),
		authority.WithPublisher(publisher),
	)
	bankService := bank.NewService(ledger, registry, exec,
		bank.WithLogger(log),
		bank.WithPublisher(publisher),
	)
	tokens := token.NewService(cfg.JWTSigningKey)

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:    log,
		Metrics:   m,
		Validator: tokens,
		Token:     tokenhandler.New(tokens, log),
		Handlers: []httptransport.Registrar{
			identityhandler.New(identity, log),
			reputationhandler.New(reputation, log),
			disputehandler.New(disputes, log),
			authorityhandler.New(authorities, log),
			bankhandler.New(bankService, log),
			papershandler.New(papers, log),
			reviewshandler.New(reviews, log),
		},
	})
	srv := httpserver.New(cfg.Addr, router)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	publisher.Close()
	if kafkaStore != nil {
		kafkaStore.Close()
	}
	if err != nil {
		log.Error("server exited", "error", err.Error())
		os.Exit(1)
	}
}
