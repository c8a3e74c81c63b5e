package server

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sync"

	"github.com/dev-x-infinite/imagestudio"
)

// ErrMissingAPIKey is returned when neither the session nor the server
// has a key.
var ErrMissingAPIKey = errors.New("no API key configured")

// ClientFactory builds a GenerationClient for an API key.
type ClientFactory func(ctx context.Context, apiKey string) (imagestudio.GenerationClient, error)

// ClientCache builds at most one client per distinct key and shares it
// between the sessions using that key. Keys are held only as SHA-256
// digests. A client is dropped once no session references it.
type ClientCache struct {
	mu      sync.Mutex
	factory ClientFactory
	clients map[string]imagestudio.GenerationClient
	owners  map[string]string // session ID -> digest
	refs    map[string]int    // digest -> number of owners
}

// NewClientCache creates a cache around factory.
func NewClientCache(factory ClientFactory) *ClientCache {
	return &ClientCache{
		factory: factory,
		clients: make(map[string]imagestudio.GenerationClient),
		owners:  make(map[string]string),
		refs:    make(map[string]int),
	}
}

// Get returns the client for apiKey on behalf of owner, building it on
// first use. Construction errors are not cached. If owner previously used
// another key, that reference is released.
func (cc *ClientCache) Get(ctx context.Context, owner, apiKey string) (imagestudio.GenerationClient, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	sum := sha256.Sum256([]byte(apiKey))
	digest := hex.EncodeToString(sum[:])

	cc.mu.Lock()
	defer cc.mu.Unlock()

	client, ok := cc.clients[digest]
	if !ok {
		var err error
		client, err = cc.factory(ctx, apiKey)
		if err != nil {
			return nil, err
		}
		cc.clients[digest] = client
	}

	if prev, ok := cc.owners[owner]; !ok || prev != digest {
		if ok {
			cc.releaseLocked(prev)
		}
		cc.owners[owner] = digest
		cc.refs[digest]++
	}
	return client, nil
}

// Release drops owner's reference, discarding the client when it was the
// last one.
func (cc *ClientCache) Release(owner string) {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	digest, ok := cc.owners[owner]
	if !ok {
		return
	}
	delete(cc.owners, owner)
	cc.releaseLocked(digest)
}

func (cc *ClientCache) releaseLocked(digest string) {
	cc.refs[digest]--
	if cc.refs[digest] <= 0 {
		delete(cc.refs, digest)
		delete(cc.clients, digest)
	}
}

// Len returns the number of cached clients.
func (cc *ClientCache) Len() int {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return len(cc.clients)
}
