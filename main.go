package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/imjustneko/Travel-web/auth"
	"github.com/imjustneko/Travel-web/catalog"
	"github.com/imjustneko/Travel-web/config"
	"github.com/imjustneko/Travel-web/db"
	"github.com/imjustneko/Travel-web/favorites"
	"github.com/imjustneko/Travel-web/jobs"
	"github.com/imjustneko/Travel-web/livefeed"
	"github.com/imjustneko/Travel-web/middleware"
	"github.com/imjustneko/Travel-web/mq"
	"github.com/imjustneko/Travel-web/profile"
	"github.com/imjustneko/Travel-web/ratelim"
	"github.com/imjustneko/Travel-web/rdx"
	"github.com/imjustneko/Travel-web/reservations"
	"github.com/imjustneko/Travel-web/reviews"
	"github.com/imjustneko/Travel-web/routes"
	"github.com/imjustneko/Travel-web/search"
	"github.com/imjustneko/Travel-web/storage/memory"
	"github.com/imjustneko/Travel-web/store"
	"github.com/imjustneko/Travel-web/subscription"
	"github.com/imjustneko/Travel-web/uploads"

	"github.com/rs/cors"
	log "github.com/sirupsen/logrus"
)

// app holds everything main starts and stops.
type app struct {
	handler       http.Handler
	subscriptions *subscription.Service
	hub           *livefeed.Hub
	limiter       *ratelim.RateLimiter
}

// newApp wires services and handlers over st. sessions may be nil.
func newApp(cfg *config.Config, st store.Store, sessions *rdx.Sessions, events mq.Emitter, hub *livefeed.Hub) *app {
	var (
		checker  middleware.SessionChecker
		registry auth.SessionStore
	)
	if sessions != nil {
		checker, registry = sessions, sessions
	}
	tokens := middleware.NewAuth([]byte(cfg.JWTSecret), checker)
	limiter := ratelim.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	identity := auth.NewService(st, tokens, registry, cfg.AccessTokenTTL)
	subs := subscription.NewService(st, events)
	files := uploads.NewStore(cfg.UploadDir)
	if err := files.Init(); err != nil {
		log.WithError(err).Warn("could not create upload directory")
	}

	router := routes.New(routes.Deps{
		Auth:          tokens,
		Limiter:       limiter,
		Identity:      auth.NewHandler(identity),
		Profile:       profile.NewHandler(profile.NewService(st, identity)),
		Catalog:       catalog.NewHandler(catalog.NewService(st, events)),
		Reservations:  reservations.NewHandler(reservations.NewService(st, events, reservations.NewSigner([]byte(cfg.ReceiptSecret)))),
		Reviews:       reviews.NewHandler(reviews.NewService(st, events)),
		Subscriptions: subscription.NewHandler(subs),
		Favorites:     favorites.NewHandler(favorites.NewService(st)),
		Search:        search.NewHandler(search.NewService(st)),
		Uploads:       uploads.NewHandler(files),
		Live:          hub,
	})

	// CORS → security headers → logging → router
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(router)

	return &app{
		handler:       middleware.Logging(middleware.SecurityHeaders(corsHandler)),
		subscriptions: subs,
		hub:           hub,
		limiter:       limiter,
	}
}

// openStore picks the persistence backend named by STORE_DRIVER.
func openStore(ctx context.Context, cfg *config.Config) (store.Store, func(context.Context), error) {
	if cfg.StoreDriver == "memory" {
		log.Warn("using in-memory store; data is lost on restart")
		return memory.New(), func(context.Context) {}, nil
	}
	st, err := db.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		return nil, nil, err
	}
	return st, func(ctx context.Context) {
		if err := st.Disconnect(ctx); err != nil {
			log.WithError(err).Warn("mongodb disconnect failed")
		}
	}, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ config: %v", err)
	}
	cfg.ConfigureLogging()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("❌ store: %v", err)
	}

	hub := livefeed.NewHub()
	go hub.Run()

	dispatcher := mq.NewDispatcher()
	dispatcher.Subscribe(reviews.RatingSync(st))
	dispatcher.Subscribe(hub.Forward())

	var (
		events   mq.Emitter
		sessions *rdx.Sessions
	)
	if cfg.RedisEnabled() {
		client, err := rdx.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Fatalf("❌ redis: %v", err)
		}
		defer client.Close()
		sessions = rdx.NewSessions(client)
		events = mq.NewRedisEmitter(client)
		go mq.RunWorker(ctx, client, dispatcher)
	} else {
		log.Info("REDIS_ADDR not set; events dispatched in-process and sessions not tracked")
		events = mq.NewLocalEmitter(dispatcher)
	}

	a := newApp(cfg, st, sessions, events, hub)

	limiterStop := make(chan struct{})
	go a.limiter.Run(limiterStop)

	scheduler, err := jobs.NewScheduler(cfg.ExpirySweepSpec, a.subscriptions)
	if err != nil {
		log.Fatalf("❌ scheduler: %v", err)
	}
	scheduler.Start()

	server := &http.Server{
		Addr:              cfg.Port,
		Handler:           a.handler,
		ReadTimeout:       7 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
	}

	server.RegisterOnShutdown(func() {
		log.Info("🛑 Shutting down live feed hub...")
		a.hub.Stop()
		close(limiterStop)
	})

	go func() {
		log.Infof("🚀 Server listening on %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ ListenAndServe error: %v", err)
		}
	}()

	<-ctx.Done()

	log.Info("🛑 Shutdown signal received; shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorf("❌ Graceful shutdown failed: %v", err)
	}
	scheduler.Stop(shutdownCtx)
	closeStore(shutdownCtx)

	log.Info("✅ Server stopped cleanly")
}
