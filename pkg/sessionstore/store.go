// Package sessionstore persists per-field session state in a document
// store. Callers address a single field of a single session with a
// composite key of the form "field:sessionId"; records carry a reserved
// integer expires field (epoch seconds) that invalidates the whole
// record once it passes.
package sessionstore

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/catalystkit/docsession/pkg/sessionstore/codec"
)

// ExpiresField is the reserved field name. Its value bypasses the codec
// and is stored as a raw epoch-seconds integer so the backend can run
// range queries against it.
const ExpiresField = "expires"

// A record with this many data fields or fewer is dropped outright when
// one of them is deleted; a near-empty shell is not worth keeping.
const keepRecordThreshold = 2

var (
	ErrMalformedKey       = errors.New("sessionstore: composite key has no field separator")
	ErrStorageUnavailable = errors.New("sessionstore: storage unavailable")
	ErrExpiresNotInt      = errors.New("sessionstore: expires requires an integer value")
)

// Store implements field-level session CRUD plus expiry over a Backend.
// It is stateless per call and safe for concurrent use.
type Store struct {
	backend        Backend
	now            func() time.Time
	cleanupTimeout time.Duration
	cleanups       sync.WaitGroup
}

func NewStore(backend Backend) *Store {
	return &Store{
		backend:        backend,
		now:            time.Now,
		cleanupTimeout: 5 * time.Second,
	}
}

// SplitKey splits a composite key on its first colon into field and
// session id. Field names must not contain a colon; session ids may.
func SplitKey(compositeKey string) (field, sessionID string, err error) {
	i := strings.IndexByte(compositeKey, ':')
	if i < 0 {
		return "", "", errors.Wrapf(ErrMalformedKey, "%q", compositeKey)
	}
	return compositeKey[:i], compositeKey[i+1:], nil
}

// Get returns the value stored at the addressed field, or false if the
// session, the field, or both are absent. A record whose expires
// deadline has passed reads as absent and is cleaned up in the
// background.
func (s *Store) Get(ctx context.Context, compositeKey string) (codec.Value, bool, error) {
	field, sessionID, err := SplitKey(compositeKey)
	if err != nil {
		return codec.Value{}, false, err
	}

	record, found, err := s.backend.FindProjected(ctx, sessionID, field, ExpiresField)
	if err != nil {
		return codec.Value{}, false, storageErr(err)
	}
	if !found {
		return codec.Value{}, false, nil
	}

	if raw, ok := record[ExpiresField]; ok {
		deadline, ok := raw.(int64)
		if !ok {
			return codec.Value{}, false, errors.Wrapf(codec.ErrCorruptPayload, "expires holds %T, want int64", raw)
		}
		if s.now().Unix() > deadline {
			s.cleanupExpired(sessionID)
			return codec.Value{}, false, nil
		}
		if field == ExpiresField {
			return codec.Int(deadline), true, nil
		}
	}

	raw, ok := record[field]
	if !ok {
		return codec.Value{}, false, nil
	}
	payload, ok := raw.(string)
	if !ok {
		return codec.Value{}, false, errors.Wrapf(codec.ErrCorruptPayload, "field %q holds %T, want string", field, raw)
	}
	value, err := codec.Decode(payload)
	if err != nil {
		return codec.Value{}, false, err
	}
	return value, true, nil
}

// Put upserts the addressed field. The reserved expires field must be
// an integer and is stored raw; everything else goes through the codec.
func (s *Store) Put(ctx context.Context, compositeKey string, value codec.Value) error {
	field, sessionID, err := SplitKey(compositeKey)
	if err != nil {
		return err
	}
	if field == ExpiresField {
		if value.Kind != codec.KindInt {
			return errors.Wrapf(ErrExpiresNotInt, "session %q", sessionID)
		}
		return storageErr(s.backend.SetField(ctx, sessionID, ExpiresField, value.Int))
	}
	return storageErr(s.backend.SetField(ctx, sessionID, field, codec.Encode(value)))
}

// Delete removes the addressed field. A record left with two or fewer
// data fields would only be a shell, so the whole record is dropped
// instead of unsetting the field. Absent sessions and absent fields are
// no-ops.
func (s *Store) Delete(ctx context.Context, compositeKey string) error {
	field, sessionID, err := SplitKey(compositeKey)
	if err != nil {
		return err
	}
	record, found, err := s.backend.FindProjected(ctx, sessionID)
	if err != nil {
		return storageErr(err)
	}
	if !found {
		return nil
	}
	if _, ok := record[field]; !ok {
		return nil
	}
	if len(record) > keepRecordThreshold {
		return storageErr(s.backend.UnsetField(ctx, sessionID, field))
	}
	return storageErr(s.backend.DeleteRecord(ctx, sessionID))
}

// SweepExpired bulk-deletes every record whose expires deadline is
// strictly before the current time.
func (s *Store) SweepExpired(ctx context.Context) error {
	return storageErr(s.backend.DeleteExpiredBefore(ctx, s.now().Unix()))
}

// Close waits for in-flight expiry cleanups, then closes the backend.
func (s *Store) Close(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.cleanups.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return s.backend.Close(ctx)
}

// cleanupExpired deletes an expired record off the read path. Failures
// are logged, never surfaced to the reader; the absent result already
// stands, and a second reader racing the same delete hits a no-op.
func (s *Store) cleanupExpired(sessionID string) {
	s.cleanups.Add(1)
	go func() {
		defer s.cleanups.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.cleanupTimeout)
		defer cancel()
		if err := s.backend.DeleteRecord(ctx, sessionID); err != nil {
			log.Warn().Err(err).Str("session_id", sessionID).Msg("expired session cleanup failed")
		}
	}()
}

func storageErr(err error) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(ErrStorageUnavailable, err.Error())
}
