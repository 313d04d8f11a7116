// Package eventlog appends every contract event to a local, append-only
// file so an operator can ship it offline later (see internal/export),
// independent of internal/indexer's SQLite read-model or
// internal/indexer/archive's Postgres sink. It plays no part in contract
// semantics; losing or truncating it changes nothing about ledger state.
package eventlog

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/ugorji/go/codec"
)

var mh codec.MsgpackHandle

// Record is one logged event: the topic a façade call published under,
// the wall-clock time it was recorded, and its payload flattened into a
// generic map by the msgpack encoder (the payload's concrete anonymous
// struct type is not recoverable on read, which is fine — export-events
// output is for human/offline consumption, not for feeding back into the
// façade).
type Record struct {
	Topic   string
	At      time.Time
	Payload any
}

// Recorder appends length-prefixed, msgpack-encoded Records to a file.
// Safe for concurrent use; internal/sweep's concurrent charges and
// internal/grpc's concurrent requests may all publish events at once.
type Recorder struct {
	mu   sync.Mutex
	file *os.File
}

// Open opens (creating and appending to) the event log at path.
func Open(path string) (*Recorder, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("eventlog: open %s: %w", path, err)
	}
	return &Recorder{file: f}, nil
}

// Close closes the underlying file.
func (r *Recorder) Close() error { return r.file.Close() }

// Handle matches production.Subscriber's signature, so a Recorder can be
// registered directly via Host.AddSubscriber.
func (r *Recorder) Handle(topic string, payload any) {
	_ = r.Append(topic, time.Now().UTC(), payload)
}

// Append writes one record. Handle discards its error, so a failure here
// is never propagated into a façade call's result: the event log is a
// side channel, not a source of truth.
func (r *Recorder) Append(topic string, at time.Time, payload any) error {
	var buf []byte
	enc := codec.NewEncoderBytes(&buf, &mh)
	if err := enc.Encode(Record{Topic: topic, At: at, Payload: payload}); err != nil {
		return fmt.Errorf("eventlog: encode: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var lenPrefix [4]byte
	binary.BigEndian.PutUint32(lenPrefix[:], uint32(len(buf)))
	if _, err := r.file.Write(lenPrefix[:]); err != nil {
		return fmt.Errorf("eventlog: write length: %w", err)
	}
	if _, err := r.file.Write(buf); err != nil {
		return fmt.Errorf("eventlog: write record: %w", err)
	}
	return nil
}

// ReadAll reads every record from path in order, for tests and for
// internal/export to consume without re-implementing the framing.
func ReadAll(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("eventlog: open %s: %w", path, err)
	}
	defer f.Close()

	var out []Record
	for {
		var lenPrefix [4]byte
		if _, err := io.ReadFull(f, lenPrefix[:]); err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("eventlog: read length: %w", err)
		}
		n := binary.BigEndian.Uint32(lenPrefix[:])
		buf := make([]byte, n)
		if _, err := io.ReadFull(f, buf); err != nil {
			return nil, fmt.Errorf("eventlog: read record: %w", err)
		}
		var rec Record
		dec := codec.NewDecoderBytes(buf, &mh)
		if err := dec.Decode(&rec); err != nil {
			return nil, fmt.Errorf("eventlog: decode: %w", err)
		}
		out = append(out, rec)
	}
	return out, nil
}
