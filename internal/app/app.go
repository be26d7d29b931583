package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	"github.com/poolhaus/fantasy-pool/external/castgen"
	"github.com/poolhaus/fantasy-pool/external/showfeed"
	"github.com/poolhaus/fantasy-pool/internal/config"
	"github.com/poolhaus/fantasy-pool/internal/domain/bonus"
	"github.com/poolhaus/fantasy-pool/internal/domain/contestant"
	"github.com/poolhaus/fantasy-pool/internal/domain/entry"
	"github.com/poolhaus/fantasy-pool/internal/domain/event"
	"github.com/poolhaus/fantasy-pool/internal/domain/pool"
	"github.com/poolhaus/fantasy-pool/internal/domain/scoringrule"
	"github.com/poolhaus/fantasy-pool/internal/domain/weeklyresult"
	"github.com/poolhaus/fantasy-pool/internal/infrastructure/account/introspect"
	"github.com/poolhaus/fantasy-pool/internal/infrastructure/repository/memory"
	"github.com/poolhaus/fantasy-pool/internal/infrastructure/repository/postgres"
	"github.com/poolhaus/fantasy-pool/internal/interfaces/httpapi"
	idgen "github.com/poolhaus/fantasy-pool/internal/platform/id"
	"github.com/poolhaus/fantasy-pool/internal/platform/logging"
	"github.com/poolhaus/fantasy-pool/internal/platform/resilience"
	"github.com/poolhaus/fantasy-pool/internal/usecase"
)

type repositories struct {
	pools       pool.Repository
	contestants contestant.Repository
	entries     entry.Repository
	events      event.Repository
	bonuses     bonus.Repository
	rules       scoringrule.Repository
	results     weeklyresult.Repository
}

// NewHTTPServer wires repositories, services and the HTTP router. The
// returned cleanup func releases backend resources and must run on shutdown.
func NewHTTPServer(cfg config.Config, logger *logging.Logger) (*http.Server, func(context.Context) error, error) {
	if logger == nil {
		logger = logging.Default()
	}

	repos, cleanup, err := newRepositories(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	ids := idgen.NewRandomGenerator()

	var generator usecase.ProfileGenerator
	if cfg.CastgenEnabled {
		generator = castgen.NewClient(castgen.ClientConfig{
			BaseURL:    cfg.CastgenBaseURL,
			APIKey:     cfg.CastgenAPIKey,
			Timeout:    cfg.CastgenTimeout,
			MaxRetries: cfg.CastgenMaxRetries,
			Logger:     logger,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.CastgenCircuitEnabled,
				FailureThreshold: cfg.CastgenCircuitFailureCount,
				OpenTimeout:      cfg.CastgenCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.CastgenCircuitHalfOpenReq,
			},
		})
	}

	var verifier usecase.ShowDataVerifier
	if cfg.ShowfeedEnabled {
		verifier = showfeed.NewClient(showfeed.ClientConfig{
			FetchTimeout: cfg.ShowfeedFetchTimeout,
			MaxParallel:  cfg.ShowfeedMaxParallel,
			Logger:       logger,
		})
	}

	contestantSvc := usecase.NewContestantService(repos.contestants, generator, verifier, ids, logger)
	poolSvc := usecase.NewPoolService(repos.pools, contestantSvc, ids, logger)
	ruleLookup := usecase.NewRuleLookup(repos.rules, cfg.RuleCacheTTL)
	ruleSvc := usecase.NewRuleService(repos.rules, ruleLookup, ids, logger)
	pointsSvc := usecase.NewPointsService(repos.entries, repos.events, repos.bonuses, logger)
	specialSvc := usecase.NewSpecialEventService(repos.contestants, repos.events, ruleLookup, ids, logger)
	weekSvc := usecase.NewWeekSubmissionService(
		repos.pools,
		repos.contestants,
		repos.events,
		repos.results,
		ruleLookup,
		specialSvc,
		pointsSvc,
		ids,
		logger,
	)
	entrySvc := usecase.NewEntryService(repos.pools, repos.entries, repos.contestants, repos.bonuses, ids, logger)
	bonusSvc := usecase.NewBonusService(repos.bonuses, pointsSvc, ids, logger)

	tokenVerifier := introspect.NewClient(
		&http.Client{Timeout: cfg.AuthTimeout},
		cfg.AuthBaseURL,
		cfg.AuthIntrospectPath,
		logger,
	)

	handler := httpapi.NewHandler(poolSvc, contestantSvc, entrySvc, bonusSvc, ruleSvc, weekSvc, pointsSvc, logger)
	router := httpapi.NewRouter(handler, tokenVerifier, logger, cfg.CORSAllowedOrigins)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, cleanup, nil
}

func newRepositories(cfg config.Config, logger *logging.Logger) (repositories, func(context.Context) error, error) {
	switch cfg.StorageDriver {
	case config.StorageMemory:
		logger.Info("storage driver selected", "driver", config.StorageMemory)
		rules := memory.NewScoringRuleRepository(nil)
		pools := memory.NewPoolRepository()
		// Mirrors the seed_new_pool_defaults SQL function in postgres mode.
		pools.SeedRulesInto(rules)
		return repositories{
			pools:       pools,
			contestants: memory.NewContestantRepository(),
			entries:     memory.NewEntryRepository(),
			events:      memory.NewEventRepository(),
			bonuses:     memory.NewBonusRepository(),
			rules:       rules,
			results:     memory.NewWeeklyResultRepository(),
		}, func(context.Context) error { return nil }, nil

	case config.StoragePostgres:
		db, err := openDatabase(cfg)
		if err != nil {
			return repositories{}, nil, fmt.Errorf("open database: %w", err)
		}
		logger.Info("storage driver selected",
			"driver", config.StoragePostgres,
			"database", dbNameFromURL(cfg.DBURL),
		)
		return repositories{
				pools:       postgres.NewPoolRepository(db),
				contestants: postgres.NewContestantRepository(db),
				entries:     postgres.NewEntryRepository(db),
				events:      postgres.NewEventRepository(db),
				bonuses:     postgres.NewBonusRepository(db),
				rules:       postgres.NewScoringRuleRepository(db),
				results:     postgres.NewWeeklyResultRepository(db),
			}, func(context.Context) error {
				return db.Close()
			}, nil

	default:
		return repositories{}, nil, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}
}

func openDatabase(cfg config.Config) (*sqlx.DB, error) {
	db, err := otelsqlx.Connect(
		"postgres",
		normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary),
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, err
	}

	return db, nil
}
