package main

import (
	"context"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"
	"github.com/julienschmidt/httprouter"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	authapi "github.com/desain-gratis/blog/delivery/auth-api"
	blogapi "github.com/desain-gratis/blog/delivery/blog-api"
	chatapi "github.com/desain-gratis/blog/delivery/chat-api"
	notifierapi "github.com/desain-gratis/blog/delivery/notifier-api"
	"github.com/desain-gratis/blog/lib/notifier"
	"github.com/desain-gratis/blog/repository/blog"
	"github.com/desain-gratis/blog/repository/comment"
	"github.com/desain-gratis/blog/repository/limiter"
	"github.com/desain-gratis/blog/repository/user"

	notifier_impl "github.com/desain-gratis/blog/lib/notifier/impl"
	blog_inmemory "github.com/desain-gratis/blog/repository/blog/inmemory"
	blog_postgres "github.com/desain-gratis/blog/repository/blog/postgres"
	comment_inmemory "github.com/desain-gratis/blog/repository/comment/inmemory"
	comment_postgres "github.com/desain-gratis/blog/repository/comment/postgres"
	limiter_redis "github.com/desain-gratis/blog/repository/limiter/redis"
	user_inmemory "github.com/desain-gratis/blog/repository/user/inmemory"
	user_postgres "github.com/desain-gratis/blog/repository/user/postgres"
	account_handler "github.com/desain-gratis/blog/usecase/account/handler"
	blog_handler "github.com/desain-gratis/blog/usecase/blog/handler"
	chat_handler "github.com/desain-gratis/blog/usecase/chat/handler"
	notification_handler "github.com/desain-gratis/blog/usecase/notification/handler"
)

func init() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
}

func main() {
	ctx := context.Background()

	var c string
	flag.StringVar(&c, "c", "config.yaml", "config path")
	flag.Parse()

	cfg := initConfig(ctx, c)

	users, blogs, comments := initRepositories(cfg)
	rate := initLimiter(cfg)

	alerts := notifier_impl.NewRegistry()
	rooms := notifier_impl.NewRegistry()

	accountUC := account_handler.New(users, cfg.Auth.Issuer, cfg.Auth.HMACKeys, cfg.Auth.KeyID, cfg.Auth.AccessExpiry, cfg.Auth.RefreshExpiry)
	notificationUC := notification_handler.New(alerts, cfg.Stream.Keepalive, cfg.Stream.QueueSize)
	blogUC := blog_handler.New(blogs, notificationUC)
	chatUC := chat_handler.New(rooms, blogs, comments, cfg.Stream.Keepalive, cfg.Stream.QueueSize)

	authAPI := authapi.New(accountUC, rate, cfg.RateLimit.Limit, cfg.RateLimit.Window)
	blogAPI := blogapi.New(blogUC, accountUC)
	notifierAPI := notifierapi.New(notificationUC, accountUC, &hubMetric{alerts: alerts, rooms: rooms})
	chatAPI := chatapi.New(chatUC, accountUC, cfg.OriginPatterns)

	router := httprouter.New()

	router.POST("/api/auth/register", authAPI.Register)
	router.POST("/api/auth/login", authAPI.Login)
	router.POST("/api/auth/refresh", authAPI.Refresh)
	router.GET("/api/auth/me", authAPI.Me)

	router.GET("/api/blogs", blogAPI.List)
	router.POST("/api/blogs", blogAPI.Create)
	router.GET("/api/blogs/:id", blogAPI.Get)
	router.PUT("/api/blogs/:id", blogAPI.Update)
	router.DELETE("/api/blogs/:id", blogAPI.Delete)
	router.POST("/api/blogs/:id/approve", blogAPI.Approve)
	router.POST("/api/blogs/:id/reject", blogAPI.Reject)

	router.GET("/api/moderation/pending", blogAPI.ListPending)

	router.GET("/api/blogs/:id/ws", chatAPI.Room)
	router.GET("/api/blogs/:id/comments", chatAPI.Comments)

	router.GET("/api/notifications/sse", notifierAPI.Subscribe)
	router.GET("/api/notifications/metrics", notifierAPI.Metrics)

	// provides a way for long running connections to stop cleanly
	ctx, stop := context.WithCancel(ctx)
	server := http.Server{
		Addr:    cfg.Address,
		Handler: router,

		// no WriteTimeout: the SSE and websocket endpoints hold the
		// connection open and manage their own deadlines
		ReadHeaderTimeout: 10 * time.Second,

		BaseContext: func(l net.Listener) context.Context { return ctx },
	}

	idleConnsClosed := make(chan struct{})
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt)
		<-sigint

		stop()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		log.Info().Msgf("Shutting down HTTP server..")
		if err := server.Shutdown(ctx); err != nil {
			log.Err(err).Msgf("HTTP server Shutdown")
		}
		log.Info().Msgf("Stopped serving new connections.")
		close(idleConnsClosed)
	}()

	log.Info().Msgf("Serving at %v..\n", cfg.Address)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatal().Msgf("HTTP server ListenAndServe: %v", err)
	}

	<-idleConnsClosed
	log.Info().Msgf("Bye bye")
}

func initRepositories(cfg config) (user.Repository, blog.Repository, comment.Repository) {
	if cfg.Postgres.DSN == "" {
		log.Info().Msgf("no postgres DSN configured, using in-memory storage")
		return user_inmemory.New(), blog_inmemory.New(), comment_inmemory.New()
	}

	db, err := sqlx.Connect("postgres", cfg.Postgres.DSN)
	if err != nil {
		log.Panic().Msgf("failed to connect to postgres: %v", err)
	}
	return user_postgres.New(db), blog_postgres.New(db), comment_postgres.New(db)
}

func initLimiter(cfg config) limiter.Repository {
	if cfg.Redis.Address == "" {
		log.Info().Msgf("no redis address configured, rate limiting disabled")
		return limiter.NewUnlimited()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	return limiter_redis.New(client, "ratelimit")
}

// hubMetric exposes both registries under one endpoint.
type hubMetric struct {
	alerts notifier.Metric
	rooms  notifier.Metric
}

func (m *hubMetric) GetMetric() any {
	return map[string]any{
		"alerts": m.alerts.GetMetric(),
		"rooms":  m.rooms.GetMetric(),
	}
}
