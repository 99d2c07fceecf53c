package storage

import (
	"context"
	"errors"
	"sync"
)

// ErrInjected is returned by a MemoryBackend whose failure switches are on.
var ErrInjected = errors.New("injected storage failure")

// MemoryBackend keeps documents in process memory. FailReads and FailWrites
// make the matching calls return ErrInjected.
type MemoryBackend struct {
	mu         sync.Mutex
	docs       map[string][]byte
	failReads  bool
	failWrites bool
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		docs: map[string][]byte{},
	}
}

func (b *MemoryBackend) FailReads(fail bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failReads = fail
}

func (b *MemoryBackend) FailWrites(fail bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failWrites = fail
}

// Raw returns a copy of the stored document.
func (b *MemoryBackend) Raw(name string) ([]byte, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	data, ok := b.docs[name]
	if !ok {
		return nil, false
	}

	return append([]byte(nil), data...), true
}

func (b *MemoryBackend) Exists(_ context.Context, name string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.failReads {
		return false, ErrInjected
	}

	_, ok := b.docs[name]

	return ok, nil
}

func (b *MemoryBackend) Read(_ context.Context, name string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.failReads {
		return nil, ErrInjected
	}

	data, ok := b.docs[name]
	if !ok {
		return nil, ErrNotFound
	}

	return append([]byte(nil), data...), nil
}

func (b *MemoryBackend) Write(_ context.Context, name string, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.failWrites {
		return ErrInjected
	}

	b.docs[name] = append([]byte(nil), data...)

	return nil
}

func (b *MemoryBackend) Close() error {
	return nil
}
