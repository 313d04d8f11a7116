// Package indexer maintains a queryable SQLite read-model of the Shade
// ledger, built by handling the same events internal/shade publishes
// through host.EventBus. It is strictly additive: disabling it changes no
// contract semantics, and it never feeds state back into the core façade.
package indexer

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Ogstevyn/shade/internal/host"
	"github.com/Ogstevyn/shade/internal/money"
)

// Indexer owns a SQLite connection and keeps its invoices/merchants tables
// in sync with events it is handed via Handle.
type Indexer struct {
	db *sql.DB
}

// Open opens (creating if necessary) the SQLite database at path and
// ensures the read-model schema exists.
func Open(path string) (*Indexer, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("indexer: open %s: %w", path, err)
	}
	idx := &Indexer{db: db}
	if err := idx.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return idx, nil
}

func (idx *Indexer) migrate() error {
	_, err := idx.db.Exec(`
CREATE TABLE IF NOT EXISTS merchants (
	id INTEGER PRIMARY KEY,
	address TEXT NOT NULL UNIQUE,
	active INTEGER NOT NULL,
	verified INTEGER NOT NULL,
	registered_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS invoices (
	id INTEGER PRIMARY KEY,
	merchant_id INTEGER NOT NULL,
	status INTEGER NOT NULL,
	amount TEXT NOT NULL,
	amount_paid TEXT NOT NULL,
	amount_refunded TEXT NOT NULL,
	token TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_invoices_merchant ON invoices(merchant_id);
CREATE INDEX IF NOT EXISTS idx_invoices_status ON invoices(status);
`)
	if err != nil {
		return fmt.Errorf("indexer: migrate: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (idx *Indexer) Close() error { return idx.db.Close() }

func addrHex(a host.Address) string { return fmt.Sprintf("%x", a[:]) }

// Handle is an host.EventBus subscriber: wire it up as
// host.Events().Publish's consumer (or a decorator around one) to keep the
// read-model current. Unrecognized topics are ignored.
func (idx *Indexer) Handle(topic string, payload any) {
	var err error
	switch topic {
	case "MerchantRegistered":
		err = idx.onMerchantRegistered(payload)
	case "InvoiceCreated":
		err = idx.onInvoiceCreated(payload)
	case "InvoicePaid":
		err = idx.onInvoicePaid(payload)
	case "InvoiceRefunded", "InvoicePartiallyRefunded":
		err = idx.onInvoiceRefunded(payload)
	case "InvoiceCancelled":
		err = idx.onInvoiceCancelled(payload)
	case "InvoiceAmended":
		err = idx.onInvoiceAmended(payload)
	default:
		return
	}
	if err != nil {
		// The indexer is a best-effort side channel; a malformed or
		// unexpected payload shape must never take down the caller that
		// is busy committing real contract state.
		return
	}
}

func (idx *Indexer) onMerchantRegistered(payload any) error {
	p, ok := payload.(struct {
		ID      uint64
		Address host.Address
	})
	if !ok {
		return fmt.Errorf("indexer: unexpected MerchantRegistered payload %T", payload)
	}
	_, err := idx.db.Exec(
		`INSERT INTO merchants (id, address, active, verified, registered_at) VALUES (?, ?, 1, 0, 0)
		 ON CONFLICT(id) DO NOTHING`,
		p.ID, addrHex(p.Address),
	)
	return err
}

func (idx *Indexer) onInvoiceCreated(payload any) error {
	p, ok := payload.(struct {
		InvoiceID uint64
		Merchant  host.Address
		Amount    money.Amount
		Token     host.Address
	})
	if !ok {
		return fmt.Errorf("indexer: unexpected InvoiceCreated payload %T", payload)
	}
	_, err := idx.db.Exec(
		`INSERT INTO invoices (id, merchant_id, status, amount, amount_paid, amount_refunded, token, created_at, updated_at)
		 VALUES (?, 0, 0, ?, '0', '0', ?, 0, 0)
		 ON CONFLICT(id) DO NOTHING`,
		p.InvoiceID, p.Amount.String(), addrHex(p.Token),
	)
	return err
}

func (idx *Indexer) onInvoicePaid(payload any) error {
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
		return fmt.Errorf("indexer: unexpected InvoicePaid payload %T", payload)
	}
	_, err := idx.db.Exec(
		`UPDATE invoices SET merchant_id = ?, status = 1, amount_paid = ?, updated_at = ? WHERE id = ?`,
		p.MerchantID, p.Amount.String(), p.Timestamp.Unix(), p.InvoiceID,
	)
	return err
}

func (idx *Indexer) onInvoiceRefunded(payload any) error {
	p, ok := payload.(struct {
		InvoiceID uint64
		Amount    money.Amount
		Payer     host.Address
	})
	if !ok {
		return fmt.Errorf("indexer: unexpected refund payload %T", payload)
	}
	_, err := idx.db.Exec(
		`UPDATE invoices SET amount_refunded = ? WHERE id = ?`,
		p.Amount.String(), p.InvoiceID,
	)
	return err
}

func (idx *Indexer) onInvoiceCancelled(payload any) error {
	p, ok := payload.(struct{ InvoiceID uint64 })
	if !ok {
		return fmt.Errorf("indexer: unexpected InvoiceCancelled payload %T", payload)
	}
	_, err := idx.db.Exec(`UPDATE invoices SET status = 2 WHERE id = ?`, p.InvoiceID)
	return err
}

func (idx *Indexer) onInvoiceAmended(payload any) error {
	p, ok := payload.(struct {
		InvoiceID uint64
		OldAmount money.Amount
		NewAmount money.Amount
	})
	if !ok {
		return fmt.Errorf("indexer: unexpected InvoiceAmended payload %T", payload)
	}
	_, err := idx.db.Exec(`UPDATE invoices SET amount = ? WHERE id = ?`, p.NewAmount.String(), p.InvoiceID)
	return err
}

// InvoiceSummary is one row of the read-model's invoices table.
type InvoiceSummary struct {
	ID             uint64
	MerchantID     uint64
	Status         int
	Amount         string
	AmountPaid     string
	AmountRefunded string
	Token          string
}

// InvoicesByMerchant queries the read-model directly, the fast path
// spec.md §9 calls for in place of the façade's linear scan.
func (idx *Indexer) InvoicesByMerchant(merchantID uint64) ([]InvoiceSummary, error) {
	rows, err := idx.db.Query(
		`SELECT id, merchant_id, status, amount, amount_paid, amount_refunded, token
		 FROM invoices WHERE merchant_id = ? ORDER BY id`,
		merchantID,
	)
	if err != nil {
		return nil, fmt.Errorf("indexer: query: %w", err)
	}
	defer rows.Close()

	var out []InvoiceSummary
	for rows.Next() {
		var s InvoiceSummary
		if err := rows.Scan(&s.ID, &s.MerchantID, &s.Status, &s.Amount, &s.AmountPaid, &s.AmountRefunded, &s.Token); err != nil {
			return nil, fmt.Errorf("indexer: scan: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
