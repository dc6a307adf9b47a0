package domain

import (
	"bytes"
	"context"

	"repolens.dev/pkg/repolens/internal/adapter"
	"repolens.dev/pkg/repolens/internal/controller"
	m "repolens.dev/pkg/repolens/internal/model"
)

// Process serializes an in-memory file set with no filesystem access,
// suitable for non-native execution environments. Semantics match a
// filesystem run over the same tree: identical inputs produce
// identical bytes.
func Process(files []m.MemoryFile, opts m.Options) ([]byte, error) {
	var buf bytes.Buffer

	emitter := NewEmitter(adapter.NewMemorySourceFS(files), controller.NewNoopUI())

	if _, err := emitter.Run(context.Background(), ".", opts, &buf); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
