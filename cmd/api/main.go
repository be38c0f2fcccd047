package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	v1 "github.com/Akhielesh/secure-chat/cmd/api/router/v1"
	"github.com/Akhielesh/secure-chat/internal/config"
	cacheAdapter "github.com/Akhielesh/secure-chat/internal/infrastructure/cache/adapter"
	"github.com/Akhielesh/secure-chat/internal/infrastructure/database"
	fanoutAdapter "github.com/Akhielesh/secure-chat/internal/infrastructure/fanout/adapter"
	fport "github.com/Akhielesh/secure-chat/internal/infrastructure/fanout/port"
	"github.com/Akhielesh/secure-chat/internal/infrastructure/logger"
	queueAdapter "github.com/Akhielesh/secure-chat/internal/infrastructure/queue/adapter"
	"github.com/Akhielesh/secure-chat/internal/infrastructure/realtime"
	"github.com/Akhielesh/secure-chat/internal/pkg/auth"
	chat "github.com/Akhielesh/secure-chat/internal/pkg/chat/application/domain"
	"github.com/Akhielesh/secure-chat/internal/pkg/chat/application/task"
	"github.com/Akhielesh/secure-chat/internal/pkg/chat/application/usecase"
	repoAdapter "github.com/Akhielesh/secure-chat/internal/pkg/chat/persistence/repository/adapter"
	repository "github.com/Akhielesh/secure-chat/internal/pkg/chat/persistence/repository/port"
	httpHandler "github.com/Akhielesh/secure-chat/internal/pkg/chat/presentation/http"
	"github.com/Akhielesh/secure-chat/internal/pkg/chat/presentation/controller"
	"github.com/Akhielesh/secure-chat/internal/pkg/media"
	"github.com/Akhielesh/secure-chat/internal/pkg/presence"
	"github.com/Akhielesh/secure-chat/internal/pkg/ratelimit"
)

const receiptPruneInterval = time.Hour

func main() {
	cfg, err := config.Load("config")
	if err != nil {
		panic(err)
	}
	log, err := logger.NewLogger(cfg)
	if err != nil {
		panic(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := cacheAdapter.NewRedisAdapter(ctx, cfg.Redis.URL)
	if err != nil {
		log.Fatal("failed to connect to redis", "err", err)
	}
	defer store.Close()

	var (
		repo     repository.ChatRepository
		resolver media.Resolver
		dbPinger controller.Pinger
	)
	switch cfg.Store.Driver {
	case "memory":
		repo = repoAdapter.NewMemoryChatRepository(nil)
		resolver = media.NewMemoryResolver(cfg.Media.BaseURL)
		log.Warn("using in-memory store; data is lost on restart")
	default:
		dbCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		pool, err := database.NewPool(dbCtx, cfg.Postgres)
		cancel()
		if err != nil {
			log.Fatal("failed to connect to database", "err", err)
		}
		defer pool.Close()
		repo = repoAdapter.NewPgChatRepository(pool)
		resolver = media.NewPgResolver(pool, cfg.Media.BaseURL)
		dbPinger = pool
	}

	router := realtime.NewRouter()
	defer router.Close()

	fanout, err := newFanout(cfg, store, router, log)
	if err != nil {
		log.Fatal("failed to start fanout", "err", err)
	}
	defer fanout.Close()

	tracker := presence.NewTracker(store, cfg.Presence, log)
	limiter := ratelimit.NewLimiter(store, cfg.RateLimit)

	origins, ignored := realtime.NewOriginPolicy(cfg.Server.AllowedOrigins)
	for _, o := range ignored {
		log.Warn("ignoring invalid allowed origin", "origin", o)
	}

	// Background workers: outbox dispatch, presence sweep and receipt pruning.
	worker, err := queueAdapter.NewAsynqServer(cfg.Redis.URL, cfg.Queue, log)
	if err != nil {
		log.Fatal("failed to create task server", "err", err)
	}
	task.RegisterOutboxDispatchTask(worker, usecase.NewDispatchOutboxUseCase(repo, cfg.Outbox.BatchSize, log), log)
	task.RegisterReceiptPruneTask(worker, usecase.NewPruneDeliveriesUseCase(repo, cfg.Chat.ReceiptTTL, log))
	task.RegisterPresenceSweepTask(worker, tracker)

	queue, err := queueAdapter.NewAsynqClient(cfg.Redis.URL)
	if err != nil {
		log.Fatal("failed to create task client", "err", err)
	}
	defer queue.Close()

	scheduler, err := queueAdapter.NewAsynqScheduler(cfg.Redis.URL, log)
	if err != nil {
		log.Fatal("failed to create scheduler", "err", err)
	}
	err = task.SchedulePeriodic(scheduler, task.Intervals{
		OutboxDispatch: cfg.Outbox.Interval,
		PresenceSweep:  cfg.Presence.SweepInterval,
		ReceiptPrune:   receiptPruneInterval,
	})
	if err != nil {
		log.Fatal("failed to schedule periodic tasks", "err", err)
	}

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	v1.RegisterRoutes(r, httpHandler.Dependencies{
		Config:   cfg,
		Repo:     repo,
		Presence: tracker,
		Limiter:  limiter,
		Media:    resolver,
		Router:   router,
		Fanout:   fanout,
		Verifier: auth.NewJWTVerifier(cfg.JWT.Secret),
		Origins:  origins,
		IDs:      chat.NewIDGenerator(nil),
		Outbox:   task.NewOutboxKicker(queue, log),
		Log:      log,
	}, controller.NewHealthController(dbPinger, store, 2*time.Second))

	go runBackground(ctx, log, "fanout", fanout.Run)
	go runBackground(ctx, log, "task server", worker.Run)
	go runBackground(ctx, log, "scheduler", scheduler.Run)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info("http server listening", "addr", srv.Addr, "store", cfg.Store.Driver, "fanout", cfg.Fanout.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("ListenAndServe error", "err", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "err", err)
	}
}

func newFanout(cfg *config.Config, store *cacheAdapter.RedisStore, router *realtime.Router, log *logger.Logger) (fport.Publisher, error) {
	switch cfg.Fanout.Driver {
	case "local":
		return fanoutAdapter.NewLocalFanout(router), nil
	case "nats":
		nc, err := fanoutAdapter.ConnectNats(cfg.Fanout.NatsURL, log)
		if err != nil {
			return nil, err
		}
		return fanoutAdapter.NewNatsFanout(nc, fanoutAdapter.DefaultNatsSubject, router, log), nil
	default:
		return fanoutAdapter.NewRedisFanout(store.Client(), cfg.Fanout.Channel, router, log), nil
	}
}

func runBackground(ctx context.Context, log *logger.Logger, name string, run func(context.Context) error) {
	if err := run(ctx); err != nil {
		log.Error("background worker stopped", "worker", name, "err", err)
	}
}
