package statesync

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/hongminglow/medtour-be/internal/models"
	"github.com/hongminglow/medtour-be/internal/storage"
)

// Remote is the durable, cross-device side of a synchronized document.
// Upsert replaces whatever is stored under key.
type Remote interface {
	Read(ctx context.Context, key models.StateKey) (payload json.RawMessage, found bool, err error)
	Upsert(ctx context.Context, key models.StateKey, payload json.RawMessage) error
}

// StoreRemote adapts a storage.StateStore so the synchronizer can run
// in-process against the server's own persistence.
type StoreRemote struct {
	Store storage.StateStore
}

var _ Remote = StoreRemote{}

func (r StoreRemote) Read(ctx context.Context, key models.StateKey) (json.RawMessage, bool, error) {
	rec, err := r.Store.ReadState(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return rec.Payload, true, nil
}

func (r StoreRemote) Upsert(ctx context.Context, key models.StateKey, payload json.RawMessage) error {
	_, err := r.Store.UpsertState(ctx, key, payload)
	return err
}
