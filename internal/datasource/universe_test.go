package datasource

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/cb-sentinel/internal/models"
)

type universeFunc func(ctx context.Context) ([]models.CBInstrument, error)

func (f universeFunc) FetchUniverse(ctx context.Context) ([]models.CBInstrument, error) { return f(ctx) }

type memoryStore struct {
	instruments []models.CBInstrument
	upsertErr   error
}

func (m *memoryStore) FetchUniverse(ctx context.Context) ([]models.CBInstrument, error) {
	return m.instruments, nil
}

func (m *memoryStore) UpsertBatch(ctx context.Context, instruments []models.CBInstrument) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.instruments = instruments
	return nil
}

func TestStoredUniverseRefreshesStore(t *testing.T) {
	store := &memoryStore{}
	upstream := universeFunc(func(ctx context.Context) ([]models.CBInstrument, error) {
		return []models.CBInstrument{{BondID: "15821", UnderlyingID: "1582"}}, nil
	})

	got, err := NewStoredUniverse(upstream, store, nil).FetchUniverse(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Len(t, store.instruments, 1)
}

func TestStoredUniverseFallsBack(t *testing.T) {
	down := NewDataSourceError("finmind", ErrCodeServerError, "503", ErrServerError)
	upstream := universeFunc(func(ctx context.Context) ([]models.CBInstrument, error) { return nil, down })

	store := &memoryStore{instruments: []models.CBInstrument{{BondID: "24581"}}}
	got, err := NewStoredUniverse(upstream, store, nil).FetchUniverse(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "24581", got[0].BondID)

	_, err = NewStoredUniverse(upstream, &memoryStore{}, nil).FetchUniverse(context.Background())
	assert.True(t, errors.Is(err, models.ErrFetchFailed))
}

func TestStoredUniverseIgnoresStoreFailure(t *testing.T) {
	upstream := universeFunc(func(ctx context.Context) ([]models.CBInstrument, error) {
		return []models.CBInstrument{{BondID: "15821"}}, nil
	})
	got, err := NewStoredUniverse(upstream, &memoryStore{upsertErr: errors.New("db down")}, nil).FetchUniverse(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
