package booking

import (
	"context"
	"sync"
	"time"

	"github.com/SCRMS-FPT/court-booking-service/internal/court"
	"github.com/SCRMS-FPT/court-booking-service/internal/promotion"
	"github.com/SCRMS-FPT/court-booking-service/internal/schedule"
)

type fakeCourts map[string]*court.Court

func (f fakeCourts) GetByID(_ context.Context, id string) (*court.Court, error) {
	c, ok := f[id]
	if !ok {
		return nil, court.ErrNotFound
	}
	return c, nil
}

func (f fakeCourts) List(context.Context, court.Filter) ([]*court.Court, int, error) {
	return nil, 0, nil
}

type fakeSchedules map[string][]schedule.Schedule

func (f fakeSchedules) GetByCourt(_ context.Context, courtID string) ([]schedule.Schedule, error) {
	return f[courtID], nil
}
func (f fakeSchedules) GetByID(context.Context, string) (*schedule.Schedule, error) {
	return nil, schedule.ErrNotFound
}
func (f fakeSchedules) Create(context.Context, *schedule.Schedule) error { return nil }
func (f fakeSchedules) Update(context.Context, *schedule.Schedule) error { return nil }
func (f fakeSchedules) Delete(context.Context, string) error             { return nil }
func (f fakeSchedules) WithCourtLock(_ context.Context, _ string, fn func(schedule.Repository) error) error {
	return fn(f)
}

type fakePromotions map[string][]promotion.Promotion

func (f fakePromotions) GetValidForCourt(_ context.Context, courtID string, from, to time.Time) ([]promotion.Promotion, error) {
	var out []promotion.Promotion
	for _, p := range f[courtID] {
		if !p.ValidFrom.After(to) && !p.ValidTo.Before(from) {
			out = append(out, p)
		}
	}
	return out, nil
}
func (f fakePromotions) GetByCourt(_ context.Context, courtID string) ([]promotion.Promotion, error) {
	return f[courtID], nil
}
func (f fakePromotions) GetByID(context.Context, string) (*promotion.Promotion, error) {
	return nil, promotion.ErrNotFound
}
func (f fakePromotions) Create(context.Context, *promotion.Promotion) error { return nil }
func (f fakePromotions) Update(context.Context, *promotion.Promotion) error { return nil }
func (f fakePromotions) Delete(context.Context, string) error               { return nil }

// memStore is an in-memory Repository that honours WithCourtDays locking and
// discards every write of a failed transaction.
type memStore struct {
	mu       sync.Mutex
	bookings map[string]Booking
	locks    map[string]*sync.Mutex
}

func newMemStore() *memStore {
	return &memStore{
		bookings: map[string]Booking{},
		locks:    map[string]*sync.Mutex{},
	}
}

func (m *memStore) lockFor(key string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[key]
	if !ok {
		l = &sync.Mutex{}
		m.locks[key] = l
	}
	return l
}

func (m *memStore) GetByID(_ context.Context, id string) (*Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	b.Details = cloneDetails(b.Details)
	return &b, nil
}

func (m *memStore) List(_ context.Context, filter Filter) ([]*Booking, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Booking
	for _, b := range m.bookings {
		if filter.UserID != "" && b.UserID != filter.UserID {
			continue
		}
		b := b
		out = append(out, &b)
	}
	return out, len(out), nil
}

func (m *memStore) GetInRange(_ context.Context, courtID string, from, to time.Time) ([]Occupied, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return occupiedIn(m.bookings, courtID, from, to), nil
}

func occupiedIn(bookings map[string]Booking, courtID string, from, to time.Time) []Occupied {
	var out []Occupied
	for _, b := range bookings {
		if !b.Status.Occupies() || b.BookingDate.Before(dateOnly(from)) || b.BookingDate.After(dateOnly(to)) {
			continue
		}
		for _, d := range b.Details {
			if d.CourtID != courtID {
				continue
			}
			out = append(out, Occupied{
				BookingID: b.ID, UserID: b.UserID, CourtID: d.CourtID,
				Date: b.BookingDate, StartTime: d.StartTime, EndTime: d.EndTime,
			})
		}
	}
	return out
}

func (m *memStore) Update(_ context.Context, b *Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.applyUpdate(b)
}

func (m *memStore) applyUpdate(b *Booking) error {
	cur, ok := m.bookings[b.ID]
	if !ok {
		return ErrNotFound
	}
	if cur.Version != b.Version {
		return ErrRetryable
	}
	b.Version++
	stored := *b
	stored.Details = cloneDetails(b.Details)
	m.bookings[b.ID] = stored
	return nil
}

func (m *memStore) WithCourtDays(ctx context.Context, keys []DayKey, fn func(tx TxRepository) error) error {
	for _, k := range SortKeys(keys) {
		l := m.lockFor(k.String())
		l.Lock()
		defer l.Unlock()
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	tx := &memTx{store: m, staged: map[string]Booking{}}
	if err := fn(tx); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for id, b := range tx.staged {
		m.bookings[id] = b
	}
	return nil
}

type memTx struct {
	store  *memStore
	staged map[string]Booking
}

func (t *memTx) view() map[string]Booking {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	out := make(map[string]Booking, len(t.store.bookings)+len(t.staged))
	for id, b := range t.store.bookings {
		out[id] = b
	}
	for id, b := range t.staged {
		out[id] = b
	}
	return out
}

func (t *memTx) GetInRange(_ context.Context, courtID string, from, to time.Time) ([]Occupied, error) {
	return occupiedIn(t.view(), courtID, from, to), nil
}

func (t *memTx) Add(_ context.Context, b *Booking) error {
	b.Version = 1
	stored := *b
	stored.Details = cloneDetails(b.Details)
	t.staged[b.ID] = stored
	return nil
}

func (t *memTx) AddDetails(context.Context, *Booking, []Detail) error {
	return nil
}

func (t *memTx) Update(_ context.Context, b *Booking) error {
	cur, ok := t.view()[b.ID]
	if !ok {
		return ErrNotFound
	}
	if cur.Version != b.Version {
		return ErrRetryable
	}
	b.Version++
	stored := *b
	stored.Details = cloneDetails(b.Details)
	t.staged[b.ID] = stored
	return nil
}

type recorder struct {
	mu          sync.Mutex
	invalidated []string
	events      []string
}

func (r *recorder) Invalidate(_ context.Context, courtID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.invalidated = append(r.invalidated, courtID)
	return nil
}

func (r *recorder) PublishJSON(_ context.Context, key string, _ any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, key)
	return nil
}
