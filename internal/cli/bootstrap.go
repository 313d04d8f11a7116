package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/Ogstevyn/shade/internal/config"
	"github.com/Ogstevyn/shade/internal/eventlog"
	"github.com/Ogstevyn/shade/internal/host"
	"github.com/Ogstevyn/shade/internal/host/production"
	"github.com/Ogstevyn/shade/internal/host/store"
	"github.com/Ogstevyn/shade/internal/host/store/goleveldb"
	"github.com/Ogstevyn/shade/internal/host/store/pebble"
	"github.com/Ogstevyn/shade/internal/indexer"
	"github.com/Ogstevyn/shade/internal/indexer/archive"
	"github.com/Ogstevyn/shade/internal/shade"
)

// runtime bundles every collaborator shaded serve and shaded
// sweep-subscriptions open, and owns closing them in reverse order.
type runtime struct {
	host     *production.Host
	contract *shade.Contract
	idx      *indexer.Indexer
	arc      *archive.Sink
	events   *eventlog.Recorder

	closers []func() error
}

func (r *runtime) Close() error {
	var first error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// openBackend picks the physical key/value engine named by cfg.Storage.
func openBackend(cfg *config.Config) (store.Backend, error) {
	switch cfg.Storage.Backend {
	case "pebble":
		return pebble.Open(cfg.Storage.Path)
	case "goleveldb":
		return goleveldb.Open(cfg.Storage.Path)
	default:
		return nil, fmt.Errorf("cli: unsupported storage backend %q", cfg.Storage.Backend)
	}
}

// bootstrap opens storage, builds a production.Host, wires the indexer,
// the optional Postgres archive sink, and the local event log, and returns
// a ready-to-use *shade.Contract. selfAddress identifies the contract's
// own escrowed-fee holding account.
func bootstrap(ctx context.Context, cfg *config.Config, selfAddress host.Address) (*runtime, error) {
	backend, err := openBackend(cfg)
	if err != nil {
		return nil, err
	}
	r := &runtime{closers: []func() error{backend.Close}}

	ph, err := production.New(backend, cfg.Storage.CacheSize)
	if err != nil {
		return nil, err
	}
	r.host = ph

	if cfg.Indexer.SQLitePath != "" {
		idx, err := indexer.Open(cfg.Indexer.SQLitePath)
		if err != nil {
			return nil, err
		}
		r.idx = idx
		r.closers = append(r.closers, idx.Close)
		ph.AddSubscriber(idx.Handle)
	}

	if cfg.Indexer.PostgresDSN != "" {
		sink, err := archive.Open(ctx, cfg.Indexer.PostgresDSN)
		if err != nil {
			return nil, err
		}
		r.arc = sink
		r.closers = append(r.closers, sink.Close)
		ph.AddSubscriber(func(topic string, payload any) {
			_ = sink.Handle(ctx, topic, payload)
		})
	}

	logPath := filepath.Join(filepath.Dir(cfg.Storage.Path), "events.log")
	rec, err := eventlog.Open(logPath)
	if err != nil {
		return nil, err
	}
	r.events = rec
	r.closers = append(r.closers, rec.Close)
	ph.AddSubscriber(rec.Handle)

	r.contract = shade.NewContract(ph, selfAddress)
	return r, nil
}
