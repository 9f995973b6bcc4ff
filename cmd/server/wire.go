package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"

	accounthandler "examreg/internal/account/handler"
	accountservice "examreg/internal/account/service"
	accountstore "examreg/internal/account/store"
	examineehandler "examreg/internal/examinee/handler"
	examineemetrics "examreg/internal/examinee/metrics"
	"examreg/internal/examinee/sequence"
	examineeservice "examreg/internal/examinee/service"
	examineestore "examreg/internal/examinee/store"
	jwttoken "examreg/internal/jwt_token"
	lookupcache "examreg/internal/lookup/cache"
	lookuphandler "examreg/internal/lookup/handler"
	lookupmetrics "examreg/internal/lookup/metrics"
	lookupservice "examreg/internal/lookup/service"
	lookupstore "examreg/internal/lookup/store"
	"examreg/internal/platform/config"
	"examreg/internal/platform/metrics"
	"examreg/internal/platform/postgres"
	"examreg/internal/platform/redis"
	"examreg/internal/reconcile"
	httptransport "examreg/internal/transport/http"
	"examreg/pkg/platform/audit"
	"examreg/pkg/platform/audit/publisher"
	"examreg/pkg/platform/audit/publishers/compliance"
	"examreg/pkg/platform/audit/publishers/kafka"
	auditmemory "examreg/pkg/platform/audit/store/memory"
	auditpostgres "examreg/pkg/platform/audit/store/postgres"
	"examreg/pkg/platform/audit/worker"
	"examreg/pkg/platform/circuit"
	authmw "examreg/pkg/platform/middleware/auth"
	txcontext "examreg/pkg/platform/tx"
)

// auditBackend is the append, read and relay sides of the audit store.
type auditBackend interface {
	publisher.Store
	audit.Outbox
}

// lookupBackend is a lookup store that can also be seeded.
type lookupBackend interface {
	lookupservice.Store
	lookupstore.Upserter
}

type backends struct {
	lookups   lookupBackend
	examinees examineeservice.Store
	examTx    examineeservice.TxRunner
	accounts  accountservice.Store
	accountTx reconcile.TxRunner
	audit     auditBackend
	db        *sql.DB
}

type app struct {
	router  http.Handler
	relay   *worker.Relay
	closers []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func openBackends(ctx context.Context, cfg *config.Config, log *slog.Logger) (*backends, error) {
	if cfg.Database.URL == "" {
		log.Warn("EXAMREG_DATABASE_URL not set, running with in-memory stores")
		lookups := lookupstore.NewInMemory()
		if err := lookupstore.SeedDefaults(ctx, lookups); err != nil {
			return nil, fmt.Errorf("seed lookups: %w", err)
		}
		examinees := examineestore.NewInMemory()
		accounts := accountstore.NewInMemory()
		return &backends{
			lookups:   lookups,
			examinees: examinees,
			examTx:    examinees,
			accounts:  accounts,
			accountTx: accounts,
			audit:     auditmemory.NewInMemoryStore(),
		}, nil
	}

	db, err := postgres.Open(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := postgres.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	runner := txcontext.NewRunner(db, cfg.Database.TxTimeout)
	return &backends{
		lookups:   lookupstore.NewPostgres(db),
		examinees: examineestore.NewPostgres(db),
		examTx:    runner,
		accounts:  accountstore.NewPostgres(db),
		accountTx: runner,
		audit:     auditpostgres.New(db),
		db:        db,
	}, nil
}

func build(ctx context.Context, cfg *config.Config, log *slog.Logger) (*app, error) {
	out := &app{}
	b, err := openBackends(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	health := map[string]httptransport.HealthCheck{}
	if b.db != nil {
		out.closers = append(out.closers, func() { _ = b.db.Close() })
		health["postgres"] = b.db.PingContext
	}

	var lookupSource lookupservice.Store = b.lookups
	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	if redisClient != nil {
		out.closers = append(out.closers, func() { _ = redisClient.Close() })
		health["redis"] = redisClient.Health
		lookupSource = lookupcache.NewRedisCache(redisClient, b.lookups, cfg.Lookup.CacheTTL, log)
	}

	catalog := lookupservice.New(lookupSource,
		lookupservice.WithLogger(log),
		lookupservice.WithMetrics(lookupmetrics.New()),
		lookupservice.WithLocation(cfg.Registration.Location),
		lookupservice.WithBreaker(circuit.New("lookup")),
	)

	complianceAudit := compliance.New(b.audit, compliance.WithLogger(log))
	opsAudit := publisher.NewPublisher(b.audit, publisher.WithAsyncBuffer(256), publisher.WithLogger(log))
	out.closers = append(out.closers, opsAudit.Close)

	examMetrics := examineemetrics.New()
	examinees := examineeservice.New(b.examinees, b.examTx, catalog,
		examineeservice.WithLogger(log),
		examineeservice.WithMetrics(examMetrics),
		examineeservice.WithAllocator(sequence.New(
			sequence.WithBase(cfg.Registration.SequenceBase),
			sequence.WithLogger(log),
			sequence.WithMetrics(examMetrics),
		)),
		examineeservice.WithComplianceAudit(complianceAudit),
		examineeservice.WithOpsAudit(opsAudit),
		examineeservice.WithTracer(otel.Tracer("examreg/examinee")),
		examineeservice.WithMaxSubmitAttempts(cfg.Registration.MaxSubmitAttempts),
	)
	accounts := accountservice.New(b.accounts, b.accountTx, catalog,
		accountservice.WithLogger(log),
		accountservice.WithComplianceAudit(complianceAudit),
	)

	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.AuditTopic)
		if err != nil {
			return nil, err
		}
		out.closers = append(out.closers, producer.Close)
		if err := producer.EnsureTopic(ctx, 1, 1); err != nil {
			log.Warn("audit topic not ensured", "topic", cfg.Kafka.AuditTopic, "error", err)
		}
		health["kafka"] = producer.Ping
		out.relay = worker.NewRelay(b.audit, producer,
			worker.WithInterval(cfg.Kafka.PollInterval),
			worker.WithLogger(log),
			worker.WithMetrics(worker.NewMetrics()),
		)
	}

	jwtService := jwttoken.NewJWTService(cfg.Server.JWT.SigningKey, cfg.Server.JWT.Issuer, config.JWTAudience)
	examineeHandler := examineehandler.New(examinees, log)
	accountHandler := accounthandler.New(accounts, log)
	lookupHandler := lookuphandler.New(catalog, log)

	out.router = httptransport.NewRouter(httptransport.Config{
		Logger:     log,
		Metrics:    metrics.New(),
		AdminToken: cfg.Server.AdminToken,
		Security:   opsAudit,
		Bearer:     authmw.RequireBearer(jwttoken.NewAdapter(jwtService), accounts, opsAudit, log),
		Public:     []httptransport.Registrar{lookupHandler.Register},
		Applicant:  []httptransport.Registrar{examineeHandler.RegisterApplicant},
		Admin: []httptransport.Registrar{
			examineeHandler.RegisterAdmin,
			accountHandler.RegisterAdmin,
		},
		Health: health,
	})
	return out, nil
}
