package domain

import (
	"context"
	"io"
)

// SourceReader supplies the raw content of the input files, in a deterministic order
type SourceReader interface {
	ReadSources(ctx context.Context) ([]SourceFile, error)
}

// SessionRepository stores per-user session state.
// Values are returned by reference; implementations must not copy them.
type SessionRepository[T any] interface {
	Get(ctx context.Context, id string) (T, error)
	Put(ctx context.Context, id string, value T) error
	Delete(ctx context.Context, id string) error
	Len() int
}

// DocumentRenderer turns a shopping list document into a paginated binary document
type DocumentRenderer interface {
	Render(doc *Document, w io.Writer) error
}
