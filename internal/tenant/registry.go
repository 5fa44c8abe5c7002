// Package tenant resolves tenant identifiers and hands out per-tenant
// repository sets over a shared mongo client.
package tenant

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"golang.org/x/sync/singleflight"

	"github.com/mirantsoa/clinic-api/internal/config"
	"github.com/mirantsoa/clinic-api/internal/store"
)

// Registry maps tenant identifiers to their repository sets. One mongo client
// is shared by every tenant; each tenant gets its own database named
// prefix+tenant. Entries are created on first use, guarded by singleflight so
// concurrent first requests for an unseen tenant do not race the setup, and
// live for the rest of the process.
type Registry struct {
	client *mongo.Client
	cfg    config.MongoConfig
	log    *logrus.Logger

	mu    sync.RWMutex
	repos map[string]*store.Repos
	sf    singleflight.Group

	stock store.StockStore
}

// Connect dials mongo and builds the registry. The stock store is bound
// eagerly since its database is shared and known up front.
func Connect(ctx context.Context, cfg config.MongoConfig, log *logrus.Logger) (*Registry, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, err
	}
	return &Registry{
		client: client,
		cfg:    cfg,
		log:    log,
		repos:  make(map[string]*store.Repos),
		stock:  store.NewStockStore(client.Database(cfg.StockDatabase)),
	}, nil
}

// ForTenant returns the repository set for the named tenant, setting it up on
// first use. Repeated calls return the same set.
func (r *Registry) ForTenant(ctx context.Context, tenant string) (*store.Repos, error) {
	r.mu.RLock()
	repos, ok := r.repos[tenant]
	r.mu.RUnlock()
	if ok {
		return repos, nil
	}

	v, err, _ := r.sf.Do(tenant, func() (interface{}, error) {
		r.mu.RLock()
		repos, ok := r.repos[tenant]
		r.mu.RUnlock()
		if ok {
			return repos, nil
		}

		db := r.client.Database(r.cfg.DatabasePrefix + tenant)

		idxCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := store.EnsureIndexes(idxCtx, db); err != nil {
			return nil, err
		}

		repos = store.New(db)
		r.mu.Lock()
		r.repos[tenant] = repos
		r.mu.Unlock()

		r.log.WithField("tenant", tenant).Info("tenant database initialized")
		return repos, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*store.Repos), nil
}

// Stock returns the shared stock store. Inventory is shared across the whole
// clinic group, so it deliberately bypasses tenant isolation.
func (r *Registry) Stock() store.StockStore {
	return r.stock
}

// Close tears down the underlying client. Only used on shutdown; tenant
// handles need no individual teardown.
func (r *Registry) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
