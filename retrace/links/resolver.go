package links

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/toncenter/ton-indexer/ton-retrace-go/retrace/backend"
	"github.com/toncenter/ton-indexer/ton-retrace-go/retrace/cache"
	"github.com/toncenter/ton-indexer/ton-retrace-go/retrace/models"
)

// Resolver turns any accepted link into a TxLocator, looking the
// transaction up when the link alone does not determine it.
type Resolver struct {
	sources backend.Networks
	strict  bool
	cache   *cache.Cache[models.TxLocator]
	logger  *logrus.Logger
}

type Option func(*Resolver)

// WithStrictNetwork makes inputs without a network (bare hash, lt:hash)
// fail with models.ErrNetworkRequired instead of trying mainnet then testnet.
func WithStrictNetwork(strict bool) Option {
	return func(r *Resolver) {
		r.strict = strict
	}
}

// WithCache stores lookup results; transactions never change once final.
func WithCache(c *cache.Cache[models.TxLocator]) Option {
	return func(r *Resolver) {
		r.cache = c
	}
}

func WithLogger(logger *logrus.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

func NewResolver(sources backend.Networks, opts ...Option) *Resolver {
	r := &Resolver{sources: sources, logger: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// networks returns the networks to query in order. An explicit flag wins
// over the host, which wins over trying both.
func (r *Resolver) networks(rec Recognized, testnet *bool) ([]models.Network, error) {
	switch {
	case testnet != nil:
		return []models.Network{models.NetworkOf(*testnet)}, nil
	case rec.Network != nil:
		return []models.Network{*rec.Network}, nil
	case r.strict:
		return nil, models.ErrNetworkRequired
	default:
		return []models.Network{models.Mainnet, models.Testnet}, nil
	}
}

// Parse resolves input to a locator. testnet pins the network when set.
func (r *Resolver) Parse(ctx context.Context, input string, testnet *bool) (models.TxLocator, error) {
	rec, err := Recognize(input)
	if err != nil {
		return models.TxLocator{}, err
	}
	networks, err := r.networks(rec, testnet)
	if err != nil {
		return models.TxLocator{}, err
	}
	// a link naming lt, hash and account needs no lookup; a wrong account
	// surfaces as TransactionNotFoundError when the transaction is fetched
	if rec.Lt > 0 && rec.Address != nil && len(networks) == 1 {
		return models.NewTxLocator(rec.Lt, rec.Hash, *rec.Address, networks[0])
	}

	for i, network := range networks {
		loc, err := r.lookup(ctx, rec, network)
		if err == nil {
			return loc, nil
		}
		if !errors.As(err, &models.TransactionNotFoundError{}) {
			return models.TxLocator{}, err
		}
		if i+1 < len(networks) {
			r.logger.WithFields(logrus.Fields{
				"input":   input,
				"network": network,
				"next":    networks[i+1],
			}).Debug("transaction not found, trying next network")
		}
	}
	return models.TxLocator{}, models.TransactionNotFoundError{Ref: input, Networks: networks}
}

func lookupKey(rec Recognized, network models.Network) string {
	return fmt.Sprintf("%s:%s:%d", network, rec.Hash.Hex(), rec.Lt)
}

func (r *Resolver) lookup(ctx context.Context, rec Recognized, network models.Network) (models.TxLocator, error) {
	key := lookupKey(rec, network)
	loc, err := r.cache.Get(ctx, key)
	if err == nil {
		return loc, nil
	}
	if !errors.Is(err, cache.ErrNotFound) {
		r.logger.WithError(err).Warn("lookup cache read failed")
	}

	source, err := r.sources.Get(network)
	if err != nil {
		return models.TxLocator{}, err
	}
	tx, err := source.LookupTransaction(ctx, rec.Hash, rec.Lt)
	if err != nil {
		return models.TxLocator{}, err
	}
	if err := r.cache.Set(ctx, key, tx.Locator); err != nil {
		r.logger.WithError(err).Warn("lookup cache write failed")
	}
	return tx.Locator, nil
}
