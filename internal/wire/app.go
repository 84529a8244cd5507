package wire

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alanyang/agent-market/internal/adapter/agentapi"
	"github.com/alanyang/agent-market/internal/adapter/memory"
	pgdb "github.com/alanyang/agent-market/internal/adapter/postgres"
	pgagent "github.com/alanyang/agent-market/internal/adapter/postgres/agent"
	pgcredit "github.com/alanyang/agent-market/internal/adapter/postgres/credit"
	pgdeployment "github.com/alanyang/agent-market/internal/adapter/postgres/deployment"
	pgeventbus "github.com/alanyang/agent-market/internal/adapter/postgres/eventbus"
	pgidempotency "github.com/alanyang/agent-market/internal/adapter/postgres/idempotency"
	pglocker "github.com/alanyang/agent-market/internal/adapter/postgres/locker"
	pgnotification "github.com/alanyang/agent-market/internal/adapter/postgres/notification"
	pgprofile "github.com/alanyang/agent-market/internal/adapter/postgres/profile"
	pgusage "github.com/alanyang/agent-market/internal/adapter/postgres/usage"

	"github.com/alanyang/agent-market/internal/domain/route"

	accountsvc "github.com/alanyang/agent-market/internal/service/account"
	catalogsvc "github.com/alanyang/agent-market/internal/service/catalog"
	contactsvc "github.com/alanyang/agent-market/internal/service/contact"
	"github.com/alanyang/agent-market/internal/service/coordinator"
	devsvc "github.com/alanyang/agent-market/internal/service/developer"
	"github.com/alanyang/agent-market/internal/service/inbox"

	"github.com/alanyang/agent-market/internal/transport"
	mcptransport "github.com/alanyang/agent-market/internal/transport/mcp"
	wshandler "github.com/alanyang/agent-market/internal/transport/ws"
)

// App holds the top-level resources needed to run and gracefully stop the server.
type App struct {
	Pool        *pgxpool.Pool
	Server      *http.Server
	Cache       *memory.Cache
	Coordinator *coordinator.Coordinator
	MCPServer   *mcptransport.Server

	stopRealtime func()
}

// Build is the composition root: the only place concrete types are wired to their
// interface dependencies.
func Build(ctx context.Context) (*App, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}

	// ── Database ─────────────────────────────────────────────────────────────
	pool, err := pgdb.Connect(ctx, cfg.DatabaseURL, pgdb.PoolOptions{MaxConns: cfg.DBMaxConns})
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	// ── Adapters ─────────────────────────────────────────────────────────────
	agentRepo := pgagent.New(pool)
	profileRepo := pgprofile.New(pool)
	creditRepo := pgcredit.New(pool)
	usageRepo := pgusage.New(pool)
	notificationRepo := pgnotification.New(pool)
	deploymentRepo := pgdeployment.New(pool)
	idemStore := pgidempotency.New(pool)
	locker := pglocker.New(pool)
	eventBus := pgeventbus.New(pool)
	agentAPI := agentapi.New(cfg.ContactTimeout)

	// ── Query cache + coordinator ────────────────────────────────────────────
	cache := memory.NewCache(memory.WithGCTime(cfg.GCTime))
	cache.StartJanitor(ctx, cfg.GCTime/2)

	coord, err := coordinator.New(cache, route.DefaultTable)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("building coordinator: %w", err)
	}

	// ── Services ─────────────────────────────────────────────────────────────
	reg := mcptransport.NewSessionRegistry()

	inboxSvc := inbox.NewService(notificationRepo, eventBus, reg) // reg implements port/notifier.ViewerNotifier
	catalogSvc := catalogsvc.NewService(agentRepo, cache, eventBus, cfg.StaleTime)
	contactSvc := contactsvc.NewService(agentRepo, creditRepo, usageRepo, agentAPI, inboxSvc, locker, cache, eventBus)
	developerSvc := devsvc.NewService(agentRepo, deploymentRepo, usageRepo, agentAPI, inboxSvc, cache, eventBus, cfg.StaleTime)
	accountSvc := accountsvc.NewService(
		profileRepo,
		usageRepo,
		creditRepo,
		notificationRepo,
		inboxSvc,
		locker,
		idemStore,
		cache,
		eventBus,
		cfg.StaleTime,
	)

	mcpServer := mcptransport.New(reg, mcptransport.Services{
		Profiles: profileRepo,
		Catalog:  catalogSvc,
		Contact:  contactSvc,
		Account:  accountSvc,
	})

	// ── Transport ─────────────────────────────────────────────────────────────
	hub := wshandler.NewHub(coord)
	router := transport.NewRouter(
		profileRepo,
		catalogSvc,
		contactSvc,
		developerSvc,
		accountSvc,
		coord,
		hub,
		mcpServer,
	)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	slog.Info("application wired", "port", cfg.Port, "stale_time", cfg.StaleTime, "gc_time", cfg.GCTime)

	// ── Realtime: NOTIFY → cache invalidation + websocket push ───────────────
	stop := startRealtime(ctx, eventBus, cache, hub, cfg.Coalesce)

	return &App{
		Pool:         pool,
		Server:       server,
		Cache:        cache,
		Coordinator:  coord,
		MCPServer:    mcpServer,
		stopRealtime: stop,
	}, nil
}

// Close releases what Build started, after the HTTP server has stopped.
func (a *App) Close() {
	a.stopRealtime()
	a.Cache.Wait()
	a.Pool.Close()
}
