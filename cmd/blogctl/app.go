package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/anonto42/nano-blog/internal/client/api"
	"github.com/anonto42/nano-blog/internal/client/config"
	"github.com/anonto42/nano-blog/internal/client/prefs"
	"github.com/anonto42/nano-blog/internal/client/store"
	"github.com/anonto42/nano-blog/internal/client/syncer"
	"github.com/anonto42/nano-blog/internal/client/viewed"
	"github.com/anonto42/nano-blog/internal/kv"
)

const redisKeyPrefix = "blogctl:"

// app holds everything a command needs, built once per invocation
type app struct {
	cfg      *config.Config
	log      *zap.Logger
	posts    *store.PostStore
	comments *store.CommentStore
	viewed   *viewed.Set
	prefs    *prefs.Prefs
	ctrl     *syncer.Controller
	closers  []func()
}

// writerNotifier prints failures to the command's error stream
type writerNotifier struct {
	w io.Writer
}

func (n writerNotifier) Error(title, message string) {
	fmt.Fprintf(n.w, "%s: %s\n", title, message)
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	cfg.DisableStacktrace = true
	return cfg.Build()
}

// openStore connects the configured kv backend. The returned func releases it
func openStore(ctx context.Context, s config.StorageConfig) (kv.Store, func(), error) {
	switch s.Backend {
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{Addr: s.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis at %s: %w", s.RedisAddr, err)
		}
		return kv.NewRedisStore(client, redisKeyPrefix), func() { _ = client.Close() }, nil
	case config.BackendMongo:
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(s.MongoURI))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to mongo: %w", err)
		}
		if err := client.Ping(connectCtx, nil); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, nil, fmt.Errorf("failed to ping mongo: %w", err)
		}
		closer := func() { _ = client.Disconnect(context.Background()) }
		return kv.NewMongoStore(client.Database(s.MongoDatabase)), closer, nil
	default:
		return kv.NewFileStore(s.Path), func() {}, nil
	}
}

func newApp(ctx context.Context, cfg *config.Config, log *zap.Logger, errOut io.Writer) (*app, error) {
	kvStore, closeStore, err := openStore(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}

	client, err := api.NewClient(cfg.BaseURL, cfg.Token, cfg.Timeout)
	if err != nil {
		closeStore()
		return nil, err
	}

	a := &app{
		cfg:      cfg,
		log:      log,
		posts:    store.NewPostStore(),
		comments: store.NewCommentStore(),
		viewed:   viewed.New(kvStore, log),
		prefs:    prefs.New(kvStore, log),
		closers:  []func(){closeStore},
	}
	a.viewed.Load(ctx)
	a.ctrl = syncer.New(syncer.Deps{
		API:      client,
		Posts:    a.posts,
		Comments: a.comments,
		Viewed:   a.viewed,
		Notifier: writerNotifier{w: errOut},
		Logger:   log,
	}, syncer.Options{CountConcurrency: cfg.CountConcurrency})
	return a, nil
}

func (a *app) Close() {
	for _, c := range a.closers {
		c()
	}
	_ = a.log.Sync()
}
