package cart

import (
	"context"
	"errors"
	"sync"

	jsoniter "github.com/json-iterator/go"
)

var (
	ErrEncodingCartFailed = errors.New("encoding cart failed")
	ErrDecodingCartFailed = errors.New("decoding cart failed")
)

// Store persists carts per session. Load returns an empty cart for an unknown session.
type Store interface {
	Load(ctx context.Context, sessionID string) (*Cart, error)
	Save(ctx context.Context, sessionID string, c *Cart) error
	Delete(ctx context.Context, sessionID string) error
}

// SessionCodec converts cart lines to and from the JSON document held by a session backend
// (cookie, browser storage bridge, key-value store).
type SessionCodec struct{}

type sessionDocument struct {
	Version int    `json:"v"`
	Lines   []Line `json:"lignes"`
}

const sessionDocumentVersion = 1

func (SessionCodec) Encode(c *Cart) ([]byte, error) {
	data, err := jsoniter.ConfigFastest.Marshal(sessionDocument{Version: sessionDocumentVersion, Lines: c.Lines()})
	if err != nil {
		return nil, errors.Join(ErrEncodingCartFailed, err)
	}

	return data, nil
}

// Decode rebuilds a cart; empty input yields an empty cart.
func (SessionCodec) Decode(data []byte) (*Cart, error) {
	if len(data) == 0 {
		return New(), nil
	}

	var doc sessionDocument
	if err := jsoniter.ConfigFastest.Unmarshal(data, &doc); err != nil {
		return nil, errors.Join(ErrDecodingCartFailed, err)
	}

	return FromLines(doc.Lines), nil
}

// MemoryStore keeps encoded carts in memory. It is safe for concurrent use across sessions.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string][]byte
	codec    SessionCodec
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string][]byte)}
}

func (s *MemoryStore) Load(ctx context.Context, sessionID string) (*Cart, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	data := s.sessions[sessionID]
	s.mu.Unlock()

	return s.codec.Decode(data)
}

func (s *MemoryStore) Save(ctx context.Context, sessionID string, c *Cart) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := s.codec.Encode(c)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.sessions[sessionID] = data
	s.mu.Unlock()

	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, sessionID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	return nil
}
