// README: Entry point; loads config, wires stores and generation backends, starts the HTTP server.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"tripmate/internal/ai"
	"tripmate/internal/config"
	httptransport "tripmate/internal/http"
	"tripmate/internal/infra"
	"tripmate/internal/logger"
	"tripmate/internal/maps"
	"tripmate/internal/modules/aiusage"
	"tripmate/internal/modules/itinerary"
	"tripmate/internal/modules/session"
	"tripmate/migrations"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	lg := logger.New(cfg.Log.Level, cfg.Log.Format)
	defer func() { _ = lg.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		store  session.Store = session.NewMemoryStore()
		locker session.Locker
	)
	if cfg.Redis.Addr != "" {
		client, err := infra.NewRedis(ctx, cfg.Redis.Addr)
		if err != nil {
			lg.Fatal("redis init", zap.Error(err))
		}
		defer client.Close()
		store = session.NewRedisStore(client, cfg.Session.TTL)
		locker = session.NewRedisLocker(client, cfg.Session.LockLease)
		lg.Info("session store: redis", zap.String("addr", cfg.Redis.Addr), zap.Duration("ttl", cfg.Session.TTL))
	} else {
		lg.Info("session store: memory")
	}

	gen, closeGen := buildGenerator(ctx, cfg, lg)
	defer closeGen()

	deps := session.ServiceDeps{Store: store, Generator: gen, Locker: locker, Logger: lg}
	routerDeps := httptransport.RouterDeps{Logger: lg}

	if cfg.DB.DSN != "" {
		db, err := infra.NewDB(ctx, cfg.DB.DSN)
		if err != nil {
			lg.Fatal("postgres init", zap.Error(err))
		}
		defer db.Close()
		if err := infra.Migrate(ctx, db, migrations.FS); err != nil {
			lg.Fatal("apply migrations", zap.Error(err))
		}
		archive := itinerary.NewStore(db)
		usage := aiusage.NewService(aiusage.NewStore(db), cfg.AI.MonthlyQuota)
		deps.Usage = usage
		deps.Archive = archive
		routerDeps.Quota = usage
		routerDeps.Itineraries = archive
	}

	if cfg.Maps.APIKey != "" {
		places, err := maps.NewPlacesService(cfg.Maps.APIKey)
		if err != nil {
			lg.Fatal("maps init", zap.Error(err))
		}
		routerDeps.Places = places
	}

	if cfg.Firebase.ProjectID != "" {
		verifier, err := infra.NewFirebaseVerifier(ctx, cfg.Firebase.ProjectID, cfg.Firebase.CredentialsFile)
		if err != nil {
			lg.Fatal("firebase init", zap.Error(err))
		}
		routerDeps.Verifier = verifier
	} else {
		lg.Warn("firebase not configured; requests are anonymous and quota is not enforced")
	}

	routerDeps.Sessions = session.NewService(deps)
	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: httptransport.NewRouter(routerDeps)}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("http shutdown", zap.Error(err))
		}
	}()

	lg.Info("http server listening", zap.String("addr", cfg.HTTP.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		lg.Fatal("http server", zap.Error(err))
	}
}

// buildGenerator prefers Gemini and falls back to OpenAI when both keys are set.
func buildGenerator(ctx context.Context, cfg config.Config, lg *zap.Logger) (ai.Generator, func()) {
	var primary, secondary ai.Generator
	closeFn := func() {}

	if cfg.AI.GeminiKey != "" {
		gemini, err := ai.NewGeminiProvider(ctx, cfg.AI.GeminiKey, cfg.AI.GeminiModel)
		if err != nil {
			lg.Fatal("gemini init", zap.Error(err))
		}
		primary = gemini
		closeFn = gemini.Close
	}
	if cfg.AI.OpenAIKey != "" {
		secondary = ai.NewOpenAIProvider(cfg.AI.OpenAIKey, cfg.AI.OpenAIModel)
	}

	switch {
	case primary != nil && secondary != nil:
		return ai.Fallback{Primary: primary, Secondary: secondary}, closeFn
	case primary != nil:
		return primary, closeFn
	case secondary != nil:
		return secondary, closeFn
	default:
		lg.Warn("no generation backend configured; chat replies will use the fallback text")
		return nil, closeFn
	}
}
