package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/stocklane/inventory-service/internal/domains/inventory/domain"
	"github.com/stocklane/inventory-service/internal/domains/inventory/ports"
	"github.com/stocklane/inventory-service/internal/shared/query"
)

var _ ports.TxManager = (*Store)(nil)

type txKey struct{}

// Store is the in-memory inventory persistence adapter, used as the DSN-less
// fallback and by unit tests. One store backs all three repositories so a
// transaction can snapshot and roll back the whole state; transactions are
// serialized by the store lock, the postgres adapter does row-level locking
// instead.
type Store struct {
	mu    sync.Mutex
	state *state
}

type state struct {
	items        map[string]*domain.Item
	levels       map[string]*domain.Level
	levelByPair  map[string]string
	reservations map[string]*domain.Reservation
}

// NewStore builds an empty in-memory store.
func NewStore() *Store {
	return &Store{state: &state{
		items:        map[string]*domain.Item{},
		levels:       map[string]*domain.Level{},
		levelByPair:  map[string]string{},
		reservations: map[string]*domain.Reservation{},
	}}
}

// WithinTx runs fn atomically: on error every mutation fn made is rolled
// back. Nested calls join the ambient transaction.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := s.state.clone()
	if err := fn(context.WithValue(ctx, txKey{}, struct{}{})); err != nil {
		s.state = snapshot
		return err
	}
	return nil
}

// unlock acquires the store lock unless the caller already holds it through
// an ambient transaction.
func (s *Store) unlock(ctx context.Context) func() {
	if ctx.Value(txKey{}) != nil {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (st *state) clone() *state {
	out := &state{
		items:        make(map[string]*domain.Item, len(st.items)),
		levels:       make(map[string]*domain.Level, len(st.levels)),
		levelByPair:  make(map[string]string, len(st.levelByPair)),
		reservations: make(map[string]*domain.Reservation, len(st.reservations)),
	}
	for id, item := range st.items {
		c := *item
		out.items[id] = &c
	}
	for id, level := range st.levels {
		c := *level
		out.levels[id] = &c
	}
	for pair, id := range st.levelByPair {
		out.levelByPair[pair] = id
	}
	for id, r := range st.reservations {
		c := *r
		c.Metadata = cloneMeta(r.Metadata)
		out.reservations[id] = &c
	}
	return out
}

func cloneMeta(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func pairKey(itemID, locationID string) string { return itemID + "\x00" + locationID }

func contains(haystack []string, needle string) bool {
	for _, v := range haystack {
		if v == needle {
			return true
		}
	}
	return false
}

func paginate[T any](in []T, page query.Page) []T {
	if page.Skip > 0 {
		if page.Skip >= len(in) {
			return nil
		}
		in = in[page.Skip:]
	}
	if !page.Unbounded() && page.Take < len(in) {
		in = in[:page.Take]
	}
	return in
}

// --- items ---

func (s *Store) Create(ctx context.Context, items []*domain.Item) error {
	defer s.unlock(ctx)()
	now := time.Now().UTC()
	for _, item := range items {
		c := *item
		c.CreatedAt, c.UpdatedAt = now, now
		s.state.items[c.ID] = &c
		item.CreatedAt, item.UpdatedAt = now, now
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (*domain.Item, error) {
	defer s.unlock(ctx)()
	item, ok := s.state.items[id]
	if !ok {
		return nil, ports.ErrItemNotFound
	}
	c := *item
	return &c, nil
}

func (s *Store) List(ctx context.Context, filter ports.ItemFilter, page query.Page) ([]*domain.Item, error) {
	defer s.unlock(ctx)()
	return paginate(s.state.matchItems(filter), page), nil
}

func (s *Store) ListAndCount(ctx context.Context, filter ports.ItemFilter, page query.Page) ([]*domain.Item, int64, error) {
	defer s.unlock(ctx)()
	all := s.state.matchItems(filter)
	return paginate(all, page), int64(len(all)), nil
}

func (st *state) matchItems(filter ports.ItemFilter) []*domain.Item {
	var out []*domain.Item
	for _, item := range st.items {
		if item.IsDeleted() && !filter.IncludeDeleted {
			continue
		}
		if len(filter.IDs) > 0 && !contains(filter.IDs, item.ID) {
			continue
		}
		if len(filter.SKUs) > 0 && !contains(filter.SKUs, item.SKU) {
			continue
		}
		c := *item
		out = append(out, &c)
	}
	sortByCreated(out, func(i *domain.Item) (time.Time, string) { return i.CreatedAt, i.ID })
	return out
}

func (s *Store) Update(ctx context.Context, item *domain.Item) error {
	defer s.unlock(ctx)()
	if _, ok := s.state.items[item.ID]; !ok {
		return ports.ErrItemNotFound
	}
	c := *item
	c.UpdatedAt = time.Now().UTC()
	s.state.items[c.ID] = &c
	item.UpdatedAt = c.UpdatedAt
	return nil
}

func (s *Store) SKUExists(ctx context.Context, sku string, excludeID string) (bool, error) {
	defer s.unlock(ctx)()
	for _, item := range s.state.items {
		if item.SKU == sku && !item.IsDeleted() && item.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) SoftDelete(ctx context.Context, ids []string, at time.Time) ([]string, error) {
	defer s.unlock(ctx)()
	var affected []string
	for _, id := range ids {
		item, ok := s.state.items[id]
		if !ok || item.IsDeleted() {
			continue
		}
		item.SoftDelete(at)
		item.UpdatedAt = at
		affected = append(affected, id)
	}
	return affected, nil
}

func (s *Store) Restore(ctx context.Context, ids []string) ([]string, error) {
	defer s.unlock(ctx)()
	var affected []string
	for _, id := range ids {
		item, ok := s.state.items[id]
		if !ok || !item.IsDeleted() {
			continue
		}
		item.Restore()
		item.UpdatedAt = time.Now().UTC()
		affected = append(affected, id)
	}
	return affected, nil
}

func (s *Store) HardDelete(ctx context.Context, ids []string) error {
	defer s.unlock(ctx)()
	for _, id := range ids {
		delete(s.state.items, id)
	}
	return nil
}

// --- levels ---

func (s *Store) CreateLevels(ctx context.Context, levels []*domain.Level) error {
	defer s.unlock(ctx)()
	now := time.Now().UTC()
	for _, level := range levels {
		key := pairKey(level.ItemID, level.LocationID)
		if _, exists := s.state.levelByPair[key]; exists {
			return ports.ErrDuplicateLevel
		}
		c := *level
		c.CreatedAt, c.UpdatedAt = now, now
		s.state.levels[c.ID] = &c
		s.state.levelByPair[key] = c.ID
		level.CreatedAt, level.UpdatedAt = now, now
	}
	return nil
}

func (s *Store) GetLevel(ctx context.Context, id string) (*domain.Level, error) {
	defer s.unlock(ctx)()
	level, ok := s.state.levels[id]
	if !ok {
		return nil, ports.ErrLevelNotFound
	}
	c := *level
	return &c, nil
}

func (s *Store) GetByItemAndLocation(ctx context.Context, itemID, locationID string) (*domain.Level, error) {
	defer s.unlock(ctx)()
	return s.state.levelByPairKey(itemID, locationID)
}

// GetByItemAndLocationForUpdate behaves like GetByItemAndLocation; the store
// lock held by the ambient transaction is the write barrier here.
func (s *Store) GetByItemAndLocationForUpdate(ctx context.Context, itemID, locationID string) (*domain.Level, error) {
	return s.GetByItemAndLocation(ctx, itemID, locationID)
}

func (st *state) levelByPairKey(itemID, locationID string) (*domain.Level, error) {
	id, ok := st.levelByPair[pairKey(itemID, locationID)]
	if !ok {
		return nil, ports.ErrLevelNotFound
	}
	c := *st.levels[id]
	return &c, nil
}

func (s *Store) GetByItemAndLocations(ctx context.Context, itemID string, locationIDs []string) ([]*domain.Level, error) {
	defer s.unlock(ctx)()
	var out []*domain.Level
	for _, level := range s.state.levels {
		if level.ItemID != itemID || !contains(locationIDs, level.LocationID) {
			continue
		}
		c := *level
		out = append(out, &c)
	}
	sortByCreated(out, func(l *domain.Level) (time.Time, string) { return l.CreatedAt, l.ID })
	return out, nil
}

func (s *Store) ListLevels(ctx context.Context, filter ports.LevelFilter, page query.Page) ([]*domain.Level, error) {
	defer s.unlock(ctx)()
	return paginate(s.state.matchLevels(filter), page), nil
}

func (s *Store) ListAndCountLevels(ctx context.Context, filter ports.LevelFilter, page query.Page) ([]*domain.Level, int64, error) {
	defer s.unlock(ctx)()
	all := s.state.matchLevels(filter)
	return paginate(all, page), int64(len(all)), nil
}

func (st *state) matchLevels(filter ports.LevelFilter) []*domain.Level {
	var out []*domain.Level
	for _, level := range st.levels {
		if len(filter.IDs) > 0 && !contains(filter.IDs, level.ID) {
			continue
		}
		if len(filter.ItemIDs) > 0 && !contains(filter.ItemIDs, level.ItemID) {
			continue
		}
		if len(filter.LocationIDs) > 0 && !contains(filter.LocationIDs, level.LocationID) {
			continue
		}
		c := *level
		out = append(out, &c)
	}
	sortByCreated(out, func(l *domain.Level) (time.Time, string) { return l.CreatedAt, l.ID })
	return out
}

func (s *Store) SaveLevel(ctx context.Context, level *domain.Level) error {
	defer s.unlock(ctx)()
	if _, ok := s.state.levels[level.ID]; !ok {
		return ports.ErrLevelNotFound
	}
	c := *level
	c.UpdatedAt = time.Now().UTC()
	s.state.levels[c.ID] = &c
	level.UpdatedAt = c.UpdatedAt
	return nil
}

func (s *Store) DeleteLevel(ctx context.Context, itemID, locationID string) error {
	defer s.unlock(ctx)()
	key := pairKey(itemID, locationID)
	id, ok := s.state.levelByPair[key]
	if !ok {
		return ports.ErrLevelNotFound
	}
	delete(s.state.levels, id)
	delete(s.state.levelByPair, key)
	return nil
}

func (s *Store) DeleteByLocations(ctx context.Context, locationIDs []string) ([]string, error) {
	defer s.unlock(ctx)()
	return s.state.deleteLevelsWhere(func(l *domain.Level) bool {
		return contains(locationIDs, l.LocationID)
	}), nil
}

func (s *Store) DeleteByItems(ctx context.Context, itemIDs []string) ([]string, error) {
	defer s.unlock(ctx)()
	return s.state.deleteLevelsWhere(func(l *domain.Level) bool {
		return contains(itemIDs, l.ItemID)
	}), nil
}

func (st *state) deleteLevelsWhere(match func(*domain.Level) bool) []string {
	var deleted []string
	for id, level := range st.levels {
		if !match(level) {
			continue
		}
		deleted = append(deleted, id)
		delete(st.levelByPair, pairKey(level.ItemID, level.LocationID))
		delete(st.levels, id)
	}
	sort.Strings(deleted)
	return deleted
}

// --- reservations ---

func (s *Store) CreateReservations(ctx context.Context, reservations []*domain.Reservation) error {
	defer s.unlock(ctx)()
	now := time.Now().UTC()
	for _, r := range reservations {
		c := *r
		c.Metadata = cloneMeta(r.Metadata)
		c.CreatedAt, c.UpdatedAt = now, now
		s.state.reservations[c.ID] = &c
		r.CreatedAt, r.UpdatedAt = now, now
	}
	return nil
}

func (s *Store) GetReservation(ctx context.Context, id string) (*domain.Reservation, error) {
	defer s.unlock(ctx)()
	r, ok := s.state.reservations[id]
	if !ok {
		return nil, ports.ErrReservationNotFound
	}
	c := *r
	c.Metadata = cloneMeta(r.Metadata)
	return &c, nil
}

func (s *Store) ListReservations(ctx context.Context, filter ports.ReservationFilter, page query.Page) ([]*domain.Reservation, error) {
	defer s.unlock(ctx)()
	return paginate(s.state.matchReservations(filter), page), nil
}

func (s *Store) ListAndCountReservations(ctx context.Context, filter ports.ReservationFilter, page query.Page) ([]*domain.Reservation, int64, error) {
	defer s.unlock(ctx)()
	all := s.state.matchReservations(filter)
	return paginate(all, page), int64(len(all)), nil
}

func (st *state) matchReservations(filter ports.ReservationFilter) []*domain.Reservation {
	var out []*domain.Reservation
	for _, r := range st.reservations {
		if len(filter.IDs) > 0 && !contains(filter.IDs, r.ID) {
			continue
		}
		if len(filter.ItemIDs) > 0 && !contains(filter.ItemIDs, r.ItemID) {
			continue
		}
		if len(filter.LocationIDs) > 0 && !contains(filter.LocationIDs, r.LocationID) {
			continue
		}
		if len(filter.LineItemIDs) > 0 && !contains(filter.LineItemIDs, r.LineItemID) {
			continue
		}
		c := *r
		c.Metadata = cloneMeta(r.Metadata)
		out = append(out, &c)
	}
	sortByCreated(out, func(r *domain.Reservation) (time.Time, string) { return r.CreatedAt, r.ID })
	return out
}

func (s *Store) SaveReservation(ctx context.Context, r *domain.Reservation) error {
	defer s.unlock(ctx)()
	if _, ok := s.state.reservations[r.ID]; !ok {
		return ports.ErrReservationNotFound
	}
	c := *r
	c.Metadata = cloneMeta(r.Metadata)
	c.UpdatedAt = time.Now().UTC()
	s.state.reservations[c.ID] = &c
	r.UpdatedAt = c.UpdatedAt
	return nil
}

func (s *Store) DeleteReservations(ctx context.Context, ids []string) error {
	defer s.unlock(ctx)()
	for _, id := range ids {
		delete(s.state.reservations, id)
	}
	return nil
}

// Items exposes the store as an ItemRepository.
func (s *Store) Items() ports.ItemRepository { return itemRepo{s} }

// Levels exposes the store as a LevelRepository.
func (s *Store) Levels() ports.LevelRepository { return levelRepo{s} }

// Reservations exposes the store as a ReservationRepository.
func (s *Store) Reservations() ports.ReservationRepository { return reservationRepo{s} }

type itemRepo struct{ s *Store }

func (r itemRepo) Create(ctx context.Context, items []*domain.Item) error {
	return r.s.Create(ctx, items)
}
func (r itemRepo) Get(ctx context.Context, id string) (*domain.Item, error) { return r.s.Get(ctx, id) }
func (r itemRepo) List(ctx context.Context, filter ports.ItemFilter, page query.Page) ([]*domain.Item, error) {
	return r.s.List(ctx, filter, page)
}
func (r itemRepo) ListAndCount(ctx context.Context, filter ports.ItemFilter, page query.Page) ([]*domain.Item, int64, error) {
	return r.s.ListAndCount(ctx, filter, page)
}
func (r itemRepo) Update(ctx context.Context, item *domain.Item) error {
	return r.s.Update(ctx, item)
}
func (r itemRepo) SKUExists(ctx context.Context, sku, excludeID string) (bool, error) {
	return r.s.SKUExists(ctx, sku, excludeID)
}
func (r itemRepo) SoftDelete(ctx context.Context, ids []string, at time.Time) ([]string, error) {
	return r.s.SoftDelete(ctx, ids, at)
}
func (r itemRepo) Restore(ctx context.Context, ids []string) ([]string, error) {
	return r.s.Restore(ctx, ids)
}
func (r itemRepo) HardDelete(ctx context.Context, ids []string) error {
	return r.s.HardDelete(ctx, ids)
}

type levelRepo struct{ s *Store }

func (r levelRepo) Create(ctx context.Context, levels []*domain.Level) error {
	return r.s.CreateLevels(ctx, levels)
}
func (r levelRepo) Get(ctx context.Context, id string) (*domain.Level, error) {
	return r.s.GetLevel(ctx, id)
}
func (r levelRepo) GetByItemAndLocation(ctx context.Context, itemID, locationID string) (*domain.Level, error) {
	return r.s.GetByItemAndLocation(ctx, itemID, locationID)
}
func (r levelRepo) GetByItemAndLocationForUpdate(ctx context.Context, itemID, locationID string) (*domain.Level, error) {
	return r.s.GetByItemAndLocationForUpdate(ctx, itemID, locationID)
}
func (r levelRepo) GetByItemAndLocations(ctx context.Context, itemID string, locationIDs []string) ([]*domain.Level, error) {
	return r.s.GetByItemAndLocations(ctx, itemID, locationIDs)
}
func (r levelRepo) List(ctx context.Context, filter ports.LevelFilter, page query.Page) ([]*domain.Level, error) {
	return r.s.ListLevels(ctx, filter, page)
}
func (r levelRepo) ListAndCount(ctx context.Context, filter ports.LevelFilter, page query.Page) ([]*domain.Level, int64, error) {
	return r.s.ListAndCountLevels(ctx, filter, page)
}
func (r levelRepo) Save(ctx context.Context, level *domain.Level) error {
	return r.s.SaveLevel(ctx, level)
}
func (r levelRepo) Delete(ctx context.Context, itemID, locationID string) error {
	return r.s.DeleteLevel(ctx, itemID, locationID)
}
func (r levelRepo) DeleteByLocations(ctx context.Context, locationIDs []string) ([]string, error) {
	return r.s.DeleteByLocations(ctx, locationIDs)
}
func (r levelRepo) DeleteByItems(ctx context.Context, itemIDs []string) ([]string, error) {
	return r.s.DeleteByItems(ctx, itemIDs)
}

type reservationRepo struct{ s *Store }

func (r reservationRepo) Create(ctx context.Context, reservations []*domain.Reservation) error {
	return r.s.CreateReservations(ctx, reservations)
}
func (r reservationRepo) Get(ctx context.Context, id string) (*domain.Reservation, error) {
	return r.s.GetReservation(ctx, id)
}
func (r reservationRepo) List(ctx context.Context, filter ports.ReservationFilter, page query.Page) ([]*domain.Reservation, error) {
	return r.s.ListReservations(ctx, filter, page)
}
func (r reservationRepo) ListAndCount(ctx context.Context, filter ports.ReservationFilter, page query.Page) ([]*domain.Reservation, int64, error) {
	return r.s.ListAndCountReservations(ctx, filter, page)
}
func (r reservationRepo) Save(ctx context.Context, reservation *domain.Reservation) error {
	return r.s.SaveReservation(ctx, reservation)
}
func (r reservationRepo) Delete(ctx context.Context, ids []string) error {
	return r.s.DeleteReservations(ctx, ids)
}

var (
	_ ports.ItemRepository        = itemRepo{}
	_ ports.LevelRepository       = levelRepo{}
	_ ports.ReservationRepository = reservationRepo{}
)

func sortByCreated[T any](in []T, key func(T) (time.Time, string)) {
	sort.Slice(in, func(i, j int) bool {
		ti, idi := key(in[i])
		tj, idj := key(in[j])
		if ti.Equal(tj) {
			return idi < idj
		}
		return ti.Before(tj)
	})
}
