package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/toncenter/ton-indexer/ton-retrace-go/retrace/backend"
	"github.com/toncenter/ton-indexer/ton-retrace-go/retrace/cache"
	"github.com/toncenter/ton-indexer/ton-retrace-go/retrace/emulator"
	"github.com/toncenter/ton-indexer/ton-retrace-go/retrace/links"
	"github.com/toncenter/ton-indexer/ton-retrace-go/retrace/masterchain"
	"github.com/toncenter/ton-indexer/ton-retrace-go/retrace/models"
	"github.com/toncenter/ton-indexer/ton-retrace-go/retrace/ratelimit"
	"github.com/toncenter/ton-indexer/ton-retrace-go/retrace/runner"
)

const lookupCachePrefix = "retrace:lookup"

// App is the wired set of services shared by the CLI commands and the REST API.
type App struct {
	Sources     backend.Networks
	Links       *links.Resolver
	Masterchain *masterchain.Resolver
	Runner      *runner.Runner

	closers []func()
}

func newRedisClient(dsn string) (*redis.Client, error) {
	if strings.Contains(dsn, "://") {
		options, err := redis.ParseURL(dsn)
		if err != nil {
			return nil, err
		}
		return redis.NewClient(options), nil
	}
	return redis.NewClient(&redis.Options{Addr: dsn}), nil
}

func NewApp(ctx context.Context, conf Config, logger *logrus.Logger) (*App, error) {
	app := &App{Sources: backend.Networks{}}

	// one budget for every outbound call of this process
	limiter := ratelimit.New(time.Duration(conf.RateLimitMs) * time.Millisecond)
	timeout := time.Duration(conf.RequestTimeoutMs) * time.Millisecond

	liteConfigs := map[models.Network]string{
		models.Mainnet: conf.LiteConfig,
		models.Testnet: conf.TestnetLiteConfig,
	}
	for _, network := range []models.Network{models.Mainnet, models.Testnet} {
		source, err := app.newSource(conf, network, timeout, limiter)
		if err != nil {
			app.Close()
			return nil, err
		}
		if source == nil {
			logger.WithField("network", network).Warn("no transaction backend configured")
			continue
		}
		if url := liteConfigs[network]; len(url) > 0 {
			chain, err := backend.NewLiteChain(ctx, url, limiter)
			if err != nil {
				app.Close()
				return nil, fmt.Errorf("failed to connect to %s liteservers: %w", network, err)
			}
			source = backend.Combine(source, chain)
		}
		app.Sources[network] = source
	}

	rdb, err := newRedisClient(conf.Redis)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("invalid redis dsn: %w", err)
	}
	app.closers = append(app.closers, func() { rdb.Close() })

	opts := []links.Option{
		links.WithStrictNetwork(conf.StrictNetwork),
		links.WithLogger(logger),
	}
	if conf.CacheTTLSec > 0 {
		ttl := time.Duration(conf.CacheTTLSec) * time.Second
		opts = append(opts, links.WithCache(cache.New[models.TxLocator](rdb, lookupCachePrefix, ttl)))
	}
	app.Links = links.NewResolver(app.Sources, opts...)
	app.Masterchain = masterchain.NewResolver(app.Sources.Chains(), logger)

	emulatorTimeout := time.Duration(conf.EmulatorTimeoutMs) * time.Millisecond
	emu := emulator.NewClient(rdb, conf.EmulatorQueue, emulatorTimeout, limiter, logger)
	app.Runner = runner.NewRunner(app.Links, app.Sources, emu, logger)
	return app, nil
}

func (app *App) newSource(conf Config, network models.Network, timeout time.Duration, limiter *ratelimit.Limiter) (backend.Backend, error) {
	switch conf.Backend {
	case "toncenter":
		endpoint := conf.MainnetEndpoint
		if network.IsTestnet() {
			endpoint = conf.TestnetEndpoint
		}
		return backend.NewToncenter(endpoint, conf.ApiKey, network, timeout, limiter), nil
	case "postgres":
		dsn := conf.PgDsn
		if network.IsTestnet() {
			dsn = conf.TestnetPgDsn
		}
		if len(dsn) == 0 {
			return nil, nil
		}
		db, err := backend.NewDbClient(dsn, conf.MaxConns, conf.MinConns, network, limiter)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to %s database: %w", network, err)
		}
		app.closers = append(app.closers, db.Close)
		return db, nil
	default:
		return nil, fmt.Errorf("unknown backend '%s'", conf.Backend)
	}
}

func (app *App) Close() {
	for i := len(app.closers) - 1; i >= 0; i-- {
		app.closers[i]()
	}
	app.closers = nil
}
