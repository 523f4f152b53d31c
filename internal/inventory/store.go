package inventory

import (
	"sync"

	"farmdash/internal/farm"
)

// Store mirrors the server's crops and orders. Newest entities come first.
//
// The mirror is never authoritative: it is only patched after confirmed
// gateway calls (and, for optimistic status changes, before them).
// Commands run on their own goroutines, so access is locked.
type Store struct {
	mu       sync.RWMutex
	crops    []farm.Crop
	orders   []farm.Order
	onChange func()
}

func NewStore() *Store {
	return &Store{}
}

// OnChange registers fn to run after every mutation. fn runs without the
// lock held and must not block.
func (s *Store) OnChange(fn func()) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

func (s *Store) changed() {
	s.mu.RLock()
	fn := s.onChange
	s.mu.RUnlock()
	if fn != nil {
		fn()
	}
}

func (s *Store) Crops() []farm.Crop {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]farm.Crop, len(s.crops))
	copy(out, s.crops)
	return out
}

func (s *Store) Orders() []farm.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]farm.Order, len(s.orders))
	copy(out, s.orders)
	return out
}

func (s *Store) Crop(id farm.ID) (farm.Crop, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.crops {
		if c.ID == id {
			return c, true
		}
	}
	return farm.Crop{}, false
}

func (s *Store) Order(id farm.ID) (farm.Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, o := range s.orders {
		if o.ID == id {
			return o, true
		}
	}
	return farm.Order{}, false
}

func (s *Store) PrependCrop(c farm.Crop) {
	s.mu.Lock()
	s.crops = append([]farm.Crop{c}, s.crops...)
	s.mu.Unlock()
	s.changed()
}

func (s *Store) PrependOrder(o farm.Order) {
	s.mu.Lock()
	s.orders = append([]farm.Order{o}, s.orders...)
	s.mu.Unlock()
	s.changed()
}

// UpdateCrop merges patch into the crop with the given id. It reports
// whether a crop was found; a miss is a no-op.
func (s *Store) UpdateCrop(id farm.ID, patch farm.CropPatch) bool {
	s.mu.Lock()
	found := false
	for i := range s.crops {
		if s.crops[i].ID == id {
			patch.Apply(&s.crops[i])
			found = true
			break
		}
	}
	s.mu.Unlock()
	if found {
		s.changed()
	}
	return found
}

func (s *Store) UpdateOrder(id farm.ID, patch farm.OrderPatch) bool {
	s.mu.Lock()
	found := false
	for i := range s.orders {
		if s.orders[i].ID == id {
			patch.Apply(&s.orders[i])
			found = true
			break
		}
	}
	s.mu.Unlock()
	if found {
		s.changed()
	}
	return found
}

func (s *Store) RemoveCrop(id farm.ID) {
	s.mu.Lock()
	out := s.crops[:0:0]
	for _, c := range s.crops {
		if c.ID != id {
			out = append(out, c)
		}
	}
	s.crops = out
	s.mu.Unlock()
	s.changed()
}

func (s *Store) RemoveOrder(id farm.ID) {
	s.mu.Lock()
	out := s.orders[:0:0]
	for _, o := range s.orders {
		if o.ID != id {
			out = append(out, o)
		}
	}
	s.orders = out
	s.mu.Unlock()
	s.changed()
}

func (s *Store) ReplaceCrops(crops []farm.Crop) {
	s.mu.Lock()
	s.crops = append([]farm.Crop(nil), crops...)
	s.mu.Unlock()
	s.changed()
}

func (s *Store) ReplaceOrders(orders []farm.Order) {
	s.mu.Lock()
	s.orders = append([]farm.Order(nil), orders...)
	s.mu.Unlock()
	s.changed()
}

func (s *Store) Clear() {
	s.mu.Lock()
	s.crops = nil
	s.orders = nil
	s.mu.Unlock()
	s.changed()
}
