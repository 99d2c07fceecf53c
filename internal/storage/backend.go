// Package storage persists the content collections as whole JSON documents.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Backend.Read when the document does not exist.
var ErrNotFound = errors.New("document not found")

// Backend persists named raw documents. Each Write replaces the whole
// document.
type Backend interface {
	Exists(ctx context.Context, name string) (bool, error)
	Read(ctx context.Context, name string) ([]byte, error)
	Write(ctx context.Context, name string, data []byte) error
	Close() error
}

// DirEnsurer is implemented by backends that keep documents in a directory.
type DirEnsurer interface {
	EnsureDir() error
}
