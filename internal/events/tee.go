package events

import (
	"context"
	"errors"
)

type teeStore struct {
	stores []Store
}

// Tee fans appends out to every sink. All sinks are attempted; errors are
// joined so one failing sink does not starve the others.
func Tee(stores ...Store) Store {
	if len(stores) == 1 {
		return stores[0]
	}
	return &teeStore{stores: stores}
}

func (t *teeStore) Append(ctx context.Context, event Event) error {
	var errs []error
	for _, s := range t.stores {
		if err := s.Append(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
