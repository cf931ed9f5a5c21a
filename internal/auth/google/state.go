package google

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
)

// stateStore maps in-flight CSRF state tokens to the community being
// connected. Entries are consumed on callback.
var (
	stateMu    sync.Mutex
	stateStore = make(map[string]string)
)

// newState registers a fresh state token for a community and returns it.
func newState(communityID string) string {
	b := make([]byte, 16)
	rand.Read(b)
	state := hex.EncodeToString(b)

	stateMu.Lock()
	stateStore[state] = communityID
	stateMu.Unlock()
	return state
}

// takeState consumes a state token, returning the community it was issued
// for. A token can be used once.
func takeState(state string) (string, bool) {
	stateMu.Lock()
	defer stateMu.Unlock()
	communityID, ok := stateStore[state]
	if ok {
		delete(stateStore, state)
	}
	return communityID, ok
}
