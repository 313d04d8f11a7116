// Package archive forwards the event stream internal/indexer consumes to a
// durable Postgres sink, for merchant statements and audit trails that must
// outlive the SQLite read-model. It is write-only: nothing in shaded ever
// reads contract state back out of it.
package archive

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/Ogstevyn/shade/internal/host"
	"github.com/Ogstevyn/shade/internal/money"
)

// Sink owns a Postgres connection and appends one row per recognized
// contract event it is handed via Handle; other topics are ignored. It
// never updates or deletes a row: archival history
// is append-only by construction.
type Sink struct {
	db *sql.DB
}

// Open connects to dsn and ensures the archive schema exists.
func Open(ctx context.Context, dsn string) (*Sink, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("archive: open: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("archive: ping: %w", err)
	}

	s := &Sink{db: db}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Sink) migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS contract_events (
	seq BIGSERIAL PRIMARY KEY,
	topic VARCHAR(64) NOT NULL,
	merchant_id BIGINT,
	invoice_id BIGINT,
	subscription_id BIGINT,
	amount TEXT,
	token VARCHAR(64),
	counterparty VARCHAR(64),
	recorded_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_contract_events_merchant ON contract_events(merchant_id);
CREATE INDEX IF NOT EXISTS idx_contract_events_topic ON contract_events(topic);
`)
	if err != nil {
		return fmt.Errorf("archive: migrate: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *Sink) Close() error { return s.db.Close() }

func addrHex(a host.Address) string { return fmt.Sprintf("%x", a[:]) }

// row is the common shape every archived event reduces to before the
// INSERT; fields that don't apply to a given topic are left zero.
type row struct {
	merchantID     sql.NullInt64
	invoiceID      sql.NullInt64
	subscriptionID sql.NullInt64
	amount         sql.NullString
	token          sql.NullString
	counterparty   sql.NullString
}

// Handle appends one archive row for topics it recognizes. Unlike
// internal/indexer, a failed write is returned to the caller: the archive
// is the durable copy and a silent drop here would be a real data loss, not
// a best-effort miss.
func (s *Sink) Handle(ctx context.Context, topic string, payload any) error {
	r, ok := reduce(topic, payload)
	if !ok {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO contract_events (topic, merchant_id, invoice_id, subscription_id, amount, token, counterparty)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		topic, r.merchantID, r.invoiceID, r.subscriptionID, r.amount, r.token, r.counterparty,
	)
	if err != nil {
		return fmt.Errorf("archive: insert %s: %w", topic, err)
	}
	return nil
}

func reduce(topic string, payload any) (row, bool) {
	switch topic {
	case "InvoiceCreated":
		p, ok := payload.(struct {
			InvoiceID uint64
			Merchant  host.Address
			Amount    money.Amount
			Token     host.Address
		})
		if !ok {
			return row{}, false
		}
		return row{
			invoiceID: valid(int64(p.InvoiceID)),
			amount:    validStr(p.Amount.String()),
			token:     validStr(addrHex(p.Token)),
		}, true

	case "InvoicePaid":
		p, ok := payload.(struct {
			InvoiceID       uint64
			MerchantID      uint64
			MerchantAccount host.Address
			Payer           host.Address
			Amount          money.Amount
			Fee             money.Amount
			Token           host.Address
			Timestamp       time.Time
		})
		if !ok {
			return row{}, false
		}
		return row{
			invoiceID:    valid(int64(p.InvoiceID)),
			merchantID:   valid(int64(p.MerchantID)),
			amount:       validStr(p.Amount.String()),
			token:        validStr(addrHex(p.Token)),
			counterparty: validStr(addrHex(p.Payer)),
		}, true

	case "InvoiceRefunded", "InvoicePartiallyRefunded":
		p, ok := payload.(struct {
			InvoiceID uint64
			Amount    money.Amount
			Payer     host.Address
		})
		if !ok {
			return row{}, false
		}
		return row{
			invoiceID:    valid(int64(p.InvoiceID)),
			amount:       validStr(p.Amount.String()),
			counterparty: validStr(addrHex(p.Payer)),
		}, true

	case "InvoiceCancelled":
		p, ok := payload.(struct{ InvoiceID uint64 })
		if !ok {
			return row{}, false
		}
		return row{invoiceID: valid(int64(p.InvoiceID))}, true

	case "SubscriptionCharged":
		p, ok := payload.(struct {
			SubscriptionID  uint64
			PlanID          uint64
			Customer        host.Address
			MerchantID      uint64
			MerchantAccount host.Address
			Amount          money.Amount
			Fee             money.Amount
			Token           host.Address
			Timestamp       time.Time
		})
		if !ok {
			return row{}, false
		}
		return row{
			subscriptionID: valid(int64(p.SubscriptionID)),
			amount:         validStr(p.Amount.String()),
			token:          validStr(addrHex(p.Token)),
			counterparty:   validStr(addrHex(p.MerchantAccount)),
		}, true

	case "MerchantRegistered":
		p, ok := payload.(struct {
			ID      uint64
			Address host.Address
		})
		if !ok {
			return row{}, false
		}
		return row{merchantID: valid(int64(p.ID)), counterparty: validStr(addrHex(p.Address))}, true

	default:
		return row{}, false
	}
}

func valid(v int64) sql.NullInt64    { return sql.NullInt64{Int64: v, Valid: true} }
func validStr(v string) sql.NullString { return sql.NullString{String: v, Valid: true} }
