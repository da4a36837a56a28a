package basket

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/fjod/kasikota/internal/domain"
	"github.com/fjod/kasikota/internal/logger"
	"github.com/fjod/kasikota/internal/storage"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	kotaA = domain.CatalogItem{ID: "kota-1", Name: "Classic Kota", Price: 45, ImageRef: "/img/classic.jpg"}
	kotaB = domain.CatalogItem{ID: "kota-2", Name: "Russian Kota", Price: 35, ImageRef: "/img/russian.jpg"}
	kotaC = domain.CatalogItem{ID: "kota-3", Name: "Full House", Price: 89.5, ImageRef: "/img/full.jpg"}
)

type mockStorage struct {
	m      sync.Mutex
	data   map[string][]byte
	getErr error
	setErr error
	sets   int
}

func newMockStorage() *mockStorage {
	return &mockStorage{data: map[string][]byte{}}
}

func (m *mockStorage) Get(_ context.Context, key string) ([]byte, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return v, nil
}

func (m *mockStorage) Set(_ context.Context, key string, value []byte) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.sets++
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	return nil
}

func (m *mockStorage) Delete(_ context.Context, key string) error {
	m.m.Lock()
	defer m.m.Unlock()
	delete(m.data, key)
	return nil
}

type recordingNotifier struct {
	got []Notification
}

func (r *recordingNotifier) Notify(_ context.Context, n Notification) {
	r.got = append(r.got, n)
}

func newTestStore(st storage.Store) (*Store, *recordingNotifier) {
	n := &recordingNotifier{}
	return NewStore(st, n, logger.Discard()), n
}

func TestLoad_EmptyWhenNothingStored(t *testing.T) {
	sut, _ := newTestStore(newMockStorage())

	b := sut.Load(context.Background())
	assert.True(t, b.IsEmpty())
}

func TestLoad_CorruptRecordYieldsEmptyBasket(t *testing.T) {
	st := newMockStorage()
	st.data[StorageKey] = []byte(`[{"id":"kota-1","quan`)
	sut, _ := newTestStore(st)

	b := sut.Load(context.Background())
	assert.True(t, b.IsEmpty())

	// still usable afterwards
	sut.Add(context.Background(), kotaA)
	assert.Len(t, sut.Load(context.Background()).Lines, 1)
}

func TestLoad_StorageErrorYieldsEmptyBasket(t *testing.T) {
	st := newMockStorage()
	st.getErr = errors.New("storage unavailable")
	sut, _ := newTestStore(st)

	assert.True(t, sut.Load(context.Background()).IsEmpty())
}

func TestLoad_StorageErrorDoesNotOverwriteStoredBasket(t *testing.T) {
	st := newMockStorage()
	st.data[StorageKey] = []byte(`[{"id":"kota-1","name":"Classic Kota","price":45,"quantity":1},{"id":"kota-2","name":"Russian Kota","price":35,"quantity":2}]`)
	st.getErr = errors.New("i/o timeout")
	sut, _ := newTestStore(st)
	ctx := context.Background()

	sut.Add(ctx, kotaC)
	assert.Equal(t, 0, st.sets)

	// storage is back: the next mutation starts from the stored record
	st.getErr = nil
	sut.Add(ctx, kotaC)

	reloaded, _ := newTestStore(st)
	lines := reloaded.Load(ctx).Lines
	require.Len(t, lines, 3)
	assert.Equal(t, "kota-1", lines[0].ID)
	assert.Equal(t, 2, lines[1].Quantity)
	assert.Equal(t, "kota-3", lines[2].ID)
	assert.Equal(t, 1, lines[2].Quantity)
}

func TestClear_DuringStorageErrorStillSaves(t *testing.T) {
	st := newMockStorage()
	st.data[StorageKey] = []byte(`[{"id":"kota-1","name":"Classic Kota","price":45,"quantity":1}]`)
	st.getErr = errors.New("i/o timeout")
	sut, _ := newTestStore(st)

	sut.Clear(context.Background())

	assert.JSONEq(t, `[]`, string(st.data[StorageKey]))
}

func TestLoad_HydratesFrontEndRecord(t *testing.T) {
	st := newMockStorage()
	st.data[StorageKey] = []byte(`[{"id":"kota-1","name":"Classic Kota","price":45,"quantity":2,"imageUrl":"/img/classic.jpg"}]`)
	sut, _ := newTestStore(st)

	b := sut.Load(context.Background())
	require.Len(t, b.Lines, 1)
	assert.Equal(t, domain.BasketLine{ID: "kota-1", Name: "Classic Kota", Price: 45, Quantity: 2, ImageRef: "/img/classic.jpg"}, b.Lines[0])
}

func TestLoad_DropsInvalidStoredLines(t *testing.T) {
	st := newMockStorage()
	st.data[StorageKey] = []byte(`[
		{"id":"kota-1","price":45,"quantity":1},
		{"id":"kota-2","price":35,"quantity":0},
		{"id":"","price":10,"quantity":1},
		{"id":"kota-1","price":45,"quantity":4}
	]`)
	sut, _ := newTestStore(st)

	b := sut.Load(context.Background())
	require.Len(t, b.Lines, 1)
	assert.Equal(t, "kota-1", b.Lines[0].ID)
	assert.Equal(t, 1, b.Lines[0].Quantity)
}

func TestAdd_SameItemTwiceThenAnother(t *testing.T) {
	sut, n := newTestStore(newMockStorage())
	ctx := context.Background()

	sut.Add(ctx, kotaA)
	sut.Add(ctx, kotaA)
	sut.Add(ctx, kotaB)

	b := sut.Load(ctx)
	require.Len(t, b.Lines, 2)
	assert.Equal(t, "kota-1", b.Lines[0].ID)
	assert.Equal(t, 2, b.Lines[0].Quantity)
	assert.Equal(t, "kota-2", b.Lines[1].ID)
	assert.Equal(t, 1, b.Lines[1].Quantity)

	require.Len(t, n.got, 3)
	assert.Equal(t, KindItemAdded, n.got[0].Kind)
	assert.Equal(t, "Classic Kota added to your order", n.got[0].Description)
	assert.Equal(t, KindQuantityIncreased, n.got[1].Kind)
	assert.Equal(t, "Classic Kota quantity increased", n.got[1].Description)
	assert.Equal(t, KindItemAdded, n.got[2].Kind)
}

func TestAdd_ExistingLineKeepsItsFields(t *testing.T) {
	sut, _ := newTestStore(newMockStorage())
	ctx := context.Background()

	sut.Add(ctx, kotaA)
	stale := kotaA
	stale.Price = 99
	stale.Name = "Renamed"
	sut.Add(ctx, stale)

	line := sut.Load(ctx).Lines[0]
	assert.Equal(t, 45.0, line.Price)
	assert.Equal(t, "Classic Kota", line.Name)
	assert.Equal(t, 2, line.Quantity)
}

func TestRemove(t *testing.T) {
	sut, n := newTestStore(newMockStorage())
	ctx := context.Background()
	sut.Add(ctx, kotaA)
	sut.Add(ctx, kotaB)
	sut.Add(ctx, kotaC)

	sut.Remove(ctx, "kota-2")

	b := sut.Load(ctx)
	require.Len(t, b.Lines, 2)
	assert.Equal(t, "kota-1", b.Lines[0].ID)
	assert.Equal(t, "kota-3", b.Lines[1].ID)
	assert.Equal(t, KindItemRemoved, n.got[len(n.got)-1].Kind)
}

func TestRemove_AbsentIsNoop(t *testing.T) {
	st := newMockStorage()
	sut, n := newTestStore(st)
	ctx := context.Background()
	sut.Add(ctx, kotaA)
	setsBefore := st.sets
	notesBefore := len(n.got)

	sut.Remove(ctx, "nope")

	assert.Len(t, sut.Load(ctx).Lines, 1)
	assert.Equal(t, setsBefore, st.sets)
	assert.Len(t, n.got, notesBefore)
}

func TestSetQuantity(t *testing.T) {
	sut, _ := newTestStore(newMockStorage())
	ctx := context.Background()
	sut.Add(ctx, kotaA)

	sut.SetQuantity(ctx, "kota-1", 7)
	assert.Equal(t, 7, sut.Load(ctx).Lines[0].Quantity)

	sut.SetQuantity(ctx, "missing", 3)
	assert.Len(t, sut.Load(ctx).Lines, 1)
}

func TestSetQuantityZeroEqualsRemove(t *testing.T) {
	ctx := context.Background()

	viaSet, _ := newTestStore(newMockStorage())
	viaSet.Add(ctx, kotaA)
	viaSet.Add(ctx, kotaB)
	viaSet.SetQuantity(ctx, "kota-1", 0)

	viaRemove, _ := newTestStore(newMockStorage())
	viaRemove.Add(ctx, kotaA)
	viaRemove.Add(ctx, kotaB)
	viaRemove.Remove(ctx, "kota-1")

	never, _ := newTestStore(newMockStorage())
	never.Add(ctx, kotaB)

	assert.Equal(t, never.Load(ctx), viaSet.Load(ctx))
	assert.Equal(t, never.Load(ctx), viaRemove.Load(ctx))

	negative, _ := newTestStore(newMockStorage())
	negative.Add(ctx, kotaA)
	negative.Add(ctx, kotaB)
	negative.SetQuantity(ctx, "kota-1", -3)
	assert.Equal(t, never.Load(ctx), negative.Load(ctx))
}

func TestClear(t *testing.T) {
	st := newMockStorage()
	sut, _ := newTestStore(st)
	ctx := context.Background()
	sut.Add(ctx, kotaA)
	sut.Add(ctx, kotaB)

	sut.Clear(ctx)

	assert.True(t, sut.Load(ctx).IsEmpty())
	assert.Equal(t, "[]", string(st.data[StorageKey]))
}

func TestDerive_RecomputedAfterEveryMutation(t *testing.T) {
	sut, _ := newTestStore(newMockStorage())
	ctx := context.Background()

	sut.Add(ctx, kotaA)
	sut.Add(ctx, kotaA)
	sut.Add(ctx, kotaB)
	sum := sut.Derive(ctx)
	assert.True(t, decimal.NewFromInt(125).Equal(sum.Total), sum.Total.String())
	assert.Equal(t, 3, sum.Count)

	sut.SetQuantity(ctx, "kota-1", 1)
	sum = sut.Derive(ctx)
	assert.True(t, decimal.NewFromInt(80).Equal(sum.Total))
	assert.Equal(t, 2, sum.Count)

	sut.Add(ctx, kotaC)
	assert.Equal(t, "169.5", sut.Derive(ctx).Total.String())

	sut.Clear(ctx)
	sum = sut.Derive(ctx)
	assert.True(t, sum.Total.IsZero())
	assert.Equal(t, 0, sum.Count)
}

func TestPersistThenReload(t *testing.T) {
	mem := storage.NewMemoryStore()
	defer mem.Close()
	ctx := context.Background()

	first, _ := newTestStore(mem)
	first.Add(ctx, kotaB)
	first.Add(ctx, kotaA)
	first.Add(ctx, kotaB)
	first.Add(ctx, kotaC)
	first.SetQuantity(ctx, "kota-3", 4)

	// simulates a page reload: a fresh store over the same durable storage
	reloaded, _ := newTestStore(mem)
	assert.Equal(t, first.Load(ctx), reloaded.Load(ctx))
}

func TestPersistFailureKeepsBasketUsable(t *testing.T) {
	st := newMockStorage()
	st.setErr = storage.ErrQuotaExceeded
	sut, _ := newTestStore(st)
	ctx := context.Background()

	sut.Add(ctx, kotaA)
	sut.Add(ctx, kotaA)

	b := sut.Load(ctx)
	require.Len(t, b.Lines, 1)
	assert.Equal(t, 2, b.Lines[0].Quantity)
	assert.Empty(t, st.data)
}

func TestLoad_ReturnsCopy(t *testing.T) {
	sut, _ := newTestStore(newMockStorage())
	ctx := context.Background()
	sut.Add(ctx, kotaA)

	b := sut.Load(ctx)
	b.Lines[0].Quantity = 50

	assert.Equal(t, 1, sut.Load(ctx).Lines[0].Quantity)
}

func TestConcurrentAdds(t *testing.T) {
	sut, _ := newTestStore(newMockStorage())
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sut.Add(ctx, kotaA)
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, sut.Derive(ctx).Count)
}
