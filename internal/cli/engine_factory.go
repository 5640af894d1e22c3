package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/leadchat"
	"github.com/aretw0/leadchat/internal/config"
	"github.com/aretw0/leadchat/pkg/adapters/file"
	"github.com/aretw0/leadchat/pkg/adapters/formrelay"
	"github.com/aretw0/leadchat/pkg/adapters/memory"
	"github.com/aretw0/leadchat/pkg/adapters/process"
	"github.com/aretw0/leadchat/pkg/adapters/redis"
	"github.com/aretw0/leadchat/pkg/domain"
	"github.com/aretw0/leadchat/pkg/persistence/middleware"
	"github.com/aretw0/leadchat/pkg/ports"
)

// redisPrefix namespaces sessions and locks in Redis.
const redisPrefix = "leadchat:"

// createBot loads the flow and wires delivery with standard CLI conventions.
func createBot(cfg config.Config, logger *slog.Logger, hooks ...domain.LifecycleHooks) (*leadchat.Bot, error) {
	deliverer, err := createDeliverer(cfg, logger)
	if err != nil {
		return nil, err
	}

	opts := []leadchat.Option{
		leadchat.WithLogger(logger),
		leadchat.WithDeliverer(deliverer),
		leadchat.WithDeliveryTimeout(cfg.RelayTimeout),
	}
	if cfg.ContactEmail != "" {
		opts = append(opts, leadchat.WithContactFallback(cfg.ContactEmail))
	}
	for _, h := range hooks {
		opts = append(opts, leadchat.WithLifecycleHooks(h))
	}

	bot, err := leadchat.New(cfg.Flow, opts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing leadchat: %w", err)
	}
	return bot, nil
}

// createDeliverer chains the form relay and the delivery command, whichever
// are configured. With neither, submissions fail and the visitor is shown
// the fallback message.
func createDeliverer(cfg config.Config, logger *slog.Logger) (ports.LeadDeliverer, error) {
	var relay, command ports.LeadDeliverer

	if cfg.RelayURL != "" {
		relay = formrelay.New(cfg.RelayURL,
			formrelay.WithAccessKey(cfg.RelayAccessKey),
			formrelay.WithAttempts(cfg.RelayAttempts),
			formrelay.WithFromName("leadchat"),
			formrelay.WithLogger(logger),
		)
	}
	if cfg.DeliverConfig != "" {
		pc, err := process.LoadConfig(cfg.DeliverConfig)
		if err != nil {
			return nil, err
		}
		command = process.NewDeliverer(pc, process.WithLogger(logger))
	}

	d := ports.Chain(relay, command)
	if d == nil {
		logger.Warn("no lead delivery configured; set LEADCHAT_RELAY_URL or LEADCHAT_DELIVER_CONFIG")
	}
	return d, nil
}

// storeBundle is a conversation store plus what the session manager needs
// to share it across processes.
type storeBundle struct {
	Store  ports.ConversationStore
	Locker ports.DistributedLocker
	Close  func() error
}

// createStore builds the configured conversation store, encrypted at rest
// when LEADCHAT_STORE_KEY is set.
func createStore(ctx context.Context, cfg config.Config) (storeBundle, error) {
	stores, err := openBackend(ctx, cfg)
	if err != nil || cfg.StoreKey == "" {
		return stores, err
	}

	keys, err := middleware.ParseKeys(cfg.StoreKey, cfg.StoreFallbackKeys)
	if err != nil {
		_ = stores.Close()
		return storeBundle{}, fmt.Errorf("LEADCHAT_STORE_KEY: %w", err)
	}
	encrypt, err := middleware.NewEncryption(keys)
	if err != nil {
		_ = stores.Close()
		return storeBundle{}, err
	}
	stores.Store = middleware.Chain(stores.Store, encrypt)
	return stores, nil
}

func openBackend(ctx context.Context, cfg config.Config) (storeBundle, error) {
	nop := func() error { return nil }

	switch cfg.Store {
	case config.StoreFile:
		dir := cfg.SessionDir
		if dir == "" {
			dir = file.DefaultSessionDir
		}
		return storeBundle{Store: file.NewStore(dir), Close: nop}, nil

	case config.StoreRedis:
		rs := redis.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB,
			redis.WithTTL(cfg.SessionTTL),
			redis.WithPrefix(redisPrefix+"session:"),
		)
		if err := rs.Ping(ctx); err != nil {
			_ = rs.Close()
			return storeBundle{}, fmt.Errorf("connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		return storeBundle{
			Store:  rs,
			Locker: redis.NewLocker(rs.Client(), redisPrefix),
			Close:  rs.Close,
		}, nil

	default:
		return storeBundle{Store: memory.NewStore(), Close: nop}, nil
	}
}

// OpenStore opens the configured conversation store for maintenance
// commands. The memory store falls back to the file store, which is where
// the terminal chat keeps its sessions.
func OpenStore(ctx context.Context, cfg config.Config) (ports.ConversationStore, func() error, error) {
	if cfg.Store == config.StoreMemory {
		cfg.Store = config.StoreFile
	}
	stores, err := createStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return stores.Store, stores.Close, nil
}
