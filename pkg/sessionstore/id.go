package sessionstore

import gonanoid "github.com/matoous/go-nanoid/v2"

const sessionIDLength = 32

// NewSessionID mints a random session id for hosts that do not bring
// their own. Ids are opaque to the store; any non-empty string works as
// a session id.
func NewSessionID() (string, error) {
	return gonanoid.New(sessionIDLength)
}
