package sessionstore

import "context"

// Backend is the document-store contract the session store runs on.
// A record is a set of named top-level fields keyed by session id; the
// backend's identity key is never reported as a data field.
//
// Stored field values are strings (codec payloads), except the reserved
// expires field which is an int64 so the backend can compare it in a
// range query.
type Backend interface {
	// FindProjected looks up one record and returns the requested
	// fields; with no fields given it returns the whole record.
	// Requested fields absent from the record are simply missing from
	// the result. The bool is false when no record exists.
	FindProjected(ctx context.Context, sessionID string, fields ...string) (map[string]any, bool, error)

	// SetField sets one field on the record, creating the record if it
	// does not exist. The update is atomic per record: concurrent
	// SetField calls on sibling fields must not lose each other.
	SetField(ctx context.Context, sessionID, field string, value any) error

	// UnsetField removes one field from an existing record.
	UnsetField(ctx context.Context, sessionID, field string) error

	// DeleteRecord removes the whole record. Deleting an absent record
	// is not an error.
	DeleteRecord(ctx context.Context, sessionID string) error

	// DeleteExpiredBefore removes every record whose expires field is
	// strictly less than cutoff. Records without expires are untouched.
	DeleteExpiredBefore(ctx context.Context, cutoff int64) error

	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
