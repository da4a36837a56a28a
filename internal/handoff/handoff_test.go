package handoff

import (
	"context"
	"errors"
	"testing"

	"github.com/fjod/kasikota/internal/domain"
	"github.com/fjod/kasikota/internal/logger"
	"github.com/fjod/kasikota/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSnapshot() domain.OrderSnapshot {
	return domain.OrderSnapshot{
		Name:       "Thandi Mokoena",
		Email:      "thandi@example.co.za",
		Phone:      "+27 82 555 0101",
		Address:    "12 Vilakazi Street",
		City:       "Soweto",
		PostalCode: "1804",
		Items: []domain.OrderItem{
			{ID: "kota-1", Name: "Classic Kota", Price: 45, Quantity: 2},
			{ID: "kota-2", Name: "Russian Kota", Price: 35, Quantity: 1},
		},
		Total:     125,
		OrderDate: "2025-03-14T09:26:53.589Z",
	}
}

func newSessionStore(t *testing.T) *storage.MemoryStore {
	s := storage.NewMemoryStore()
	t.Cleanup(s.Close)
	return s
}

func TestConsume_FreshSessionIsAbsent(t *testing.T) {
	h := New(newSessionStore(t), logger.Discard())

	_, ok := h.Consume(context.Background())
	assert.False(t, ok)
}

func TestPublishConsumeRetire(t *testing.T) {
	h := New(newSessionStore(t), logger.Discard())
	ctx := context.Background()
	want := sampleSnapshot()

	require.NoError(t, h.Publish(ctx, want))

	got, ok := h.Consume(ctx)
	require.True(t, ok)
	assert.Equal(t, want, got)

	h.Retire(ctx)
	_, ok = h.Consume(ctx)
	assert.False(t, ok)
}

func TestPublish_OverwritesPending(t *testing.T) {
	h := New(newSessionStore(t), logger.Discard())
	ctx := context.Background()

	first := sampleSnapshot()
	second := sampleSnapshot()
	second.Name = "Sipho Dlamini"

	require.NoError(t, h.Publish(ctx, first))
	require.NoError(t, h.Publish(ctx, second))

	got, ok := h.Consume(ctx)
	require.True(t, ok)
	assert.Equal(t, "Sipho Dlamini", got.Name)
}

func TestConsume_MalformedRecordIsAbsent(t *testing.T) {
	st := newSessionStore(t)
	require.NoError(t, st.Set(context.Background(), SessionKey, []byte(`{"name":`)))
	h := New(st, logger.Discard())

	_, ok := h.Consume(context.Background())
	assert.False(t, ok)
}

func TestConsume_ReadsFrontEndRecord(t *testing.T) {
	st := newSessionStore(t)
	raw := `{"name":"Thandi","email":"t@example.co.za","phone":"0825550101","address":"12 Vilakazi St","city":"Soweto","postalCode":"1804","items":[{"id":"kota-1","name":"Classic Kota","price":45,"quantity":1}],"total":45,"orderDate":"2025-03-14T09:26:53.589Z"}`
	require.NoError(t, st.Set(context.Background(), SessionKey, []byte(raw)))
	h := New(st, logger.Discard())

	got, ok := h.Consume(context.Background())
	require.True(t, ok)
	assert.Equal(t, "1804", got.PostalCode)
	assert.Equal(t, 45.0, got.Total)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "kota-1", got.Items[0].ID)
}

type brokenStore struct{ err error }

func (b brokenStore) Get(context.Context, string) ([]byte, error) { return nil, b.err }
func (b brokenStore) Set(context.Context, string, []byte) error   { return b.err }
func (b brokenStore) Delete(context.Context, string) error        { return b.err }

func TestHandoff_StorageFailures(t *testing.T) {
	h := New(brokenStore{err: errors.New("quota exceeded")}, logger.Discard())
	ctx := context.Background()

	err := h.Publish(ctx, sampleSnapshot())
	require.ErrorContains(t, err, "quota exceeded")

	_, ok := h.Consume(ctx)
	assert.False(t, ok)

	assert.NotPanics(t, func() { h.Retire(ctx) })
}
