package service

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"payment-webhook/internal/webhook/data"
)

// memoryStore is an OrderRepository whose CompareAndSetStatus is atomic under a
// mutex, the same guarantee the SQL statement gives.
type memoryStore struct {
	mux       sync.Mutex
	orders    map[uuid.UUID]data.Order
	writes    map[uuid.UUID]int
	lookupErr error
	casErr    error
	// beforeCAS runs once, right before the first compare-and-set, and can be
	// used to simulate a concurrent delivery winning the race.
	beforeCAS func(s *memoryStore)
}

func newMemoryStore(orders ...data.Order) *memoryStore {
	s := &memoryStore{
		orders: make(map[uuid.UUID]data.Order),
		writes: make(map[uuid.UUID]int),
	}
	for _, order := range orders {
		s.orders[order.ID] = order
	}
	return s
}

func (s *memoryStore) FindOrderByID(_ context.Context, orderID uuid.UUID) (data.Order, error) {
	s.mux.Lock()
	defer s.mux.Unlock()
	if s.lookupErr != nil {
		return data.Order{}, s.lookupErr
	}
	order, ok := s.orders[orderID]
	if !ok {
		return data.Order{}, data.ErrOrderNotFound
	}
	return order, nil
}

func (s *memoryStore) FindOrderByPaymentReference(_ context.Context, paymentReference string) (data.Order, error) {
	s.mux.Lock()
	defer s.mux.Unlock()
	if s.lookupErr != nil {
		return data.Order{}, s.lookupErr
	}
	for _, order := range s.orders {
		if order.PaymentReference != nil && *order.PaymentReference == paymentReference {
			return order, nil
		}
	}
	return data.Order{}, data.ErrOrderNotFound
}

func (s *memoryStore) CompareAndSetStatus(
	_ context.Context,
	orderID uuid.UUID,
	expected *data.Status,
	newStatus data.Status,
	paymentReference *string,
) (bool, error) {
	if hook := s.takeHook(); hook != nil {
		hook(s)
	}
	s.mux.Lock()
	defer s.mux.Unlock()
	if s.casErr != nil {
		return false, s.casErr
	}
	order, ok := s.orders[orderID]
	if !ok {
		return false, nil
	}
	if expected != nil && order.Status != *expected {
		return false, nil
	}
	order.Status = newStatus
	if order.PaymentReference == nil && paymentReference != nil {
		ref := *paymentReference
		order.PaymentReference = &ref
	}
	s.orders[orderID] = order
	s.writes[orderID]++
	return true, nil
}

func (s *memoryStore) takeHook() func(s *memoryStore) {
	s.mux.Lock()
	defer s.mux.Unlock()
	hook := s.beforeCAS
	s.beforeCAS = nil
	return hook
}

func (s *memoryStore) order(orderID uuid.UUID) data.Order {
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.orders[orderID]
}

func (s *memoryStore) writeCount(orderID uuid.UUID) int {
	s.mux.Lock()
	defer s.mux.Unlock()
	return s.writes[orderID]
}

func (s *memoryStore) setStatus(orderID uuid.UUID, status data.Status) {
	order := s.orders[orderID]
	order.Status = status
	s.orders[orderID] = order
}
