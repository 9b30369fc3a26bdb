package repository

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"halawa/internal/clock"
	"halawa/internal/events"
	"halawa/internal/models"
	"halawa/internal/storage"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockKV struct {
	mock.Mock
}

func (m *mockKV) Get(ctx context.Context, key string) (string, bool, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *mockKV) Set(ctx context.Context, key, value string) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *mockKV) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

var today = time.Date(2026, 1, 22, 15, 30, 0, 0, time.UTC)

func setupStore(t *testing.T) (*BookingStore, *storage.MemoryStore, *storage.MemoryStore, *events.EventBus) {
	t.Helper()
	primary := storage.NewMemoryStore()
	session := storage.NewMemoryStore()
	bus := events.NewEventBus()
	logger := zerolog.New(io.Discard)
	store := NewBookingStore(primary, session, clock.NewFixed(today), time.UTC, 30, bus, &logger)
	return store, primary, session, bus
}

func booking(id string, date models.DateKey, party int) models.Booking {
	return models.Booking{
		ID:         id,
		Date:       date,
		GuestName:  "Guest " + id,
		GuestPhone: "0790000000",
		PartySize:  party,
		TotalPrice: int64(party) * models.DefaultPrice,
		CreatedAt:  today,
		Status:     models.StatusConfirmed,
	}
}

func seed(t *testing.T, kv *storage.MemoryStore, bookings models.BookingMap) {
	t.Helper()
	raw, err := json.Marshal(bookings)
	require.NoError(t, err)
	require.NoError(t, kv.Set(context.Background(), models.KeyBookings, string(raw)))
}

func TestBookingStore_LoadEmpty(t *testing.T) {
	store, _, _, _ := setupStore(t)

	got, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Empty(t, store.BookingsFor("2026-01-22"))
}

func TestBookingStore_LoadCorrupt(t *testing.T) {
	store, primary, _, _ := setupStore(t)
	ctx := context.Background()
	require.NoError(t, primary.Set(ctx, models.KeyBookings, "{not json"))

	got, err := store.Load(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPersistenceReadCorrupt))
	assert.NotNil(t, got)
	assert.Empty(t, got)

	// corrupt data is left in place until the next successful save
	raw, ok, err := primary.Get(ctx, models.KeyBookings)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "{not json", raw)
}

func TestBookingStore_LoadEvictsAndWritesBack(t *testing.T) {
	store, primary, _, _ := setupStore(t)
	ctx := context.Background()

	seed(t, primary, models.BookingMap{
		"2025-12-22": {booking("old", "2025-12-22", 2)},    // 31 days ago
		"2025-12-23": {booking("edge", "2025-12-23", 2)},   // exactly 30 days ago
		"2025-12-24": {booking("recent", "2025-12-24", 3)}, // 29 days ago
		"2026-01-22": {booking("today", "2026-01-22", 4)},
		"garbage":    {booking("bad", "garbage", 1)},
	})

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Contains(t, got, models.DateKey("2025-12-24"))
	assert.Contains(t, got, models.DateKey("2026-01-22"))
	assert.NotContains(t, got, models.DateKey("2025-12-23"), "the boundary day is evicted")

	raw, ok, err := primary.Get(ctx, models.KeyBookings)
	require.NoError(t, err)
	require.True(t, ok)
	var persisted models.BookingMap
	require.NoError(t, json.Unmarshal([]byte(raw), &persisted))
	assert.Equal(t, got, persisted)

	// a second load evicts nothing more
	again, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, got, again)
}

func TestBookingStore_SaveLoadRoundTrip(t *testing.T) {
	store, _, _, _ := setupStore(t)
	ctx := context.Background()

	m := models.BookingMap{
		"2026-01-22": {booking("a", "2026-01-22", 4), booking("b", "2026-01-22", 6)},
		"2026-01-23": {booking("c", "2026-01-23", 1)},
	}
	require.NoError(t, store.Save(ctx, m))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, m.Count(), got.Count())
	assert.Equal(t, 10, got.SeatsBooked("2026-01-22"))
	assert.Len(t, store.BookingsFor("2026-01-23"), 1)
}

func TestBookingStore_SaveFallsBackToSession(t *testing.T) {
	primary := new(mockKV)
	session := storage.NewMemoryStore()
	logger := zerolog.New(io.Discard)
	store := NewBookingStore(primary, session, clock.NewFixed(today), time.UTC, 30, nil, &logger)
	ctx := context.Background()

	primary.On("Set", ctx, models.KeyBookings, mock.Anything).Return(storage.ErrQuotaExceeded).Once()

	m := models.BookingMap{"2026-01-22": {booking("a", "2026-01-22", 2)}}
	require.NoError(t, store.Save(ctx, m))

	raw, ok, err := session.Get(ctx, models.KeyBookings)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Contains(t, raw, `"a"`)
	assert.Len(t, store.BookingsFor("2026-01-22"), 1)
	primary.AssertExpectations(t)
}

func TestBookingStore_SaveBothFail(t *testing.T) {
	primary := new(mockKV)
	session := new(mockKV)
	logger := zerolog.New(io.Discard)
	store := NewBookingStore(primary, session, clock.NewFixed(today), time.UTC, 30, nil, &logger)
	ctx := context.Background()

	primary.On("Set", ctx, models.KeyBookings, mock.Anything).Return(storage.ErrQuotaExceeded).Once()
	session.On("Set", ctx, models.KeyBookings, mock.Anything).Return(errors.New("session unavailable")).Once()

	m := models.BookingMap{"2026-01-22": {booking("a", "2026-01-22", 2)}}
	err := store.Save(ctx, m)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPersistenceWriteFailed))

	// in-memory state stays authoritative
	assert.Len(t, store.BookingsFor("2026-01-22"), 1)
	assert.Equal(t, 1, store.Snapshot().Count())
	primary.AssertExpectations(t)
	session.AssertExpectations(t)
}

func TestBookingStore_LoadReadError(t *testing.T) {
	primary := new(mockKV)
	logger := zerolog.New(io.Discard)
	store := NewBookingStore(primary, nil, clock.NewFixed(today), time.UTC, 30, nil, &logger)
	ctx := context.Background()

	primary.On("Set", ctx, models.KeyBookings, mock.Anything).Return(nil).Once()
	require.NoError(t, store.Save(ctx, models.BookingMap{"2026-01-22": {booking("a", "2026-01-22", 2)}}))

	primary.On("Get", ctx, models.KeyBookings).Return("", false, errors.New("disk gone")).Once()

	got, err := store.Load(ctx)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrPersistenceReadCorrupt))
	assert.Equal(t, 1, got.Count())
	assert.Len(t, store.BookingsFor("2026-01-22"), 1)
	primary.AssertExpectations(t)
}

func TestBookingStore_SavePublishesChange(t *testing.T) {
	store, _, _, bus := setupStore(t)
	ctx := context.Background()

	var received []events.StorageChangedPayload
	bus.Subscribe(events.EventBookingsChanged, func(e *events.Event) error {
		var p events.StorageChangedPayload
		if err := json.Unmarshal(e.Payload, &p); err != nil {
			return err
		}
		received = append(received, p)
		return nil
	})

	m := models.BookingMap{"2026-01-22": {booking("a", "2026-01-22", 2), booking("b", "2026-01-22", 3)}}
	require.NoError(t, store.Save(ctx, m))

	require.Len(t, received, 1)
	assert.Equal(t, models.KeyBookings, received[0].Key)
	assert.Equal(t, 1, received[0].Dates)
	assert.Equal(t, 2, received[0].Bookings)
}

func TestBookingStore_SnapshotIsCopy(t *testing.T) {
	store, _, _, _ := setupStore(t)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, models.BookingMap{"2026-01-22": {booking("a", "2026-01-22", 2)}}))

	snap := store.Snapshot()
	snap["2026-01-22"] = append(snap["2026-01-22"], booking("x", "2026-01-22", 5))
	snap["2026-01-22"][0].PartySize = 99

	assert.Equal(t, 2, store.Snapshot().SeatsBooked("2026-01-22"))

	list := store.BookingsFor("2026-01-22")
	list[0].PartySize = 77
	assert.Equal(t, 2, store.BookingsFor("2026-01-22")[0].PartySize)
}
