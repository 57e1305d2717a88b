package store_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/actuarial/reinsurance-engine/underwriting"
	"github.com/actuarial/reinsurance-engine/underwriting/store"
)

func TestMemory_GetMissing(t *testing.T) {
	m := store.NewMemory()

	records, ok, err := m.Get(context.Background(), "risk-bands")

	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, records)
}

func TestMemory_PutAndGetHandOutCopies(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	original := underwriting.NewRecord()
	original.PremiumWritten = 100

	require.NoError(t, m.Put(ctx, "k", []*underwriting.Record{original}))

	// WHEN: the caller mutates its own record after Put
	original.PremiumWritten = 1

	first, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, first, 1)
	assert.Equal(t, 100.0, first[0].PremiumWritten)
	assert.Equal(t, original.Key, first[0].Key)

	// WHEN: a reader mutates what it got
	first[0].PremiumWritten = 5

	second, _, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, 100.0, second[0].PremiumWritten)
	assert.NotSame(t, first[0], second[0])
}

func TestMemory_KeysAndReset(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	require.NoError(t, m.Put(ctx, "b", nil))
	require.NoError(t, m.Put(ctx, "a", []*underwriting.Record{underwriting.NewRecord()}))

	assert.Equal(t, []string{"a", "b"}, m.Keys())

	m.Reset()
	assert.Empty(t, m.Keys())
}

func TestMemory_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory()
	r := underwriting.NewRecord()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = m.Put(ctx, "shared", []*underwriting.Record{r})
			_, _, _ = m.Get(ctx, "shared")
		}()
	}
	wg.Wait()

	got, ok, err := m.Get(ctx, "shared")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Len(t, got, 1)
}
