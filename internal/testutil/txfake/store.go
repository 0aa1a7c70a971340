// Package txfake is an in-memory ordertx.Runner for service tests. Transactions are serialized
// and roll back on error, savepoints included.
package txfake

import (
	"context"
	"sort"
	"sync"
	"time"

	"order-service/internal/apperr"
	"order-service/internal/domain"
	"order-service/internal/ports/ordertx"
)

// Store holds committed rows.
type Store struct {
	mu sync.Mutex
	state

	// FailOn makes the named Repository method return the error.
	FailOn map[string]error
	// Commits counts successful top-level transactions.
	Commits int
}

type state struct {
	nextID      int64
	orders      map[int64]domain.Order
	drivers     map[int64]domain.Driver
	assignments map[int64]domain.Assignment
	history     []domain.StatusHistory
	proofs      map[int64]domain.ProofOfDelivery
}

// New returns an empty Store.
func New() *Store {
	return &Store{state: state{
		nextID:      1000,
		orders:      map[int64]domain.Order{},
		drivers:     map[int64]domain.Driver{},
		assignments: map[int64]domain.Assignment{},
		proofs:      map[int64]domain.ProofOfDelivery{},
	}}
}

func (s state) clone() state {
	c := state{
		nextID:      s.nextID,
		orders:      make(map[int64]domain.Order, len(s.orders)),
		drivers:     make(map[int64]domain.Driver, len(s.drivers)),
		assignments: make(map[int64]domain.Assignment, len(s.assignments)),
		history:     append([]domain.StatusHistory(nil), s.history...),
		proofs:      make(map[int64]domain.ProofOfDelivery, len(s.proofs)),
	}
	for k, v := range s.orders {
		c.orders[k] = v
	}
	for k, v := range s.drivers {
		c.drivers[k] = v
	}
	for k, v := range s.assignments {
		c.assignments[k] = v
	}
	for k, v := range s.proofs {
		c.proofs[k] = v
	}
	return c
}

// PutOrder stores o as committed.
func (s *Store) PutOrder(o domain.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[o.ID] = o
}

// PutDriver stores d as committed.
func (s *Store) PutDriver(d domain.Driver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drivers[d.ID] = d
}

// PutAssignment stores a as committed.
func (s *Store) PutAssignment(a domain.Assignment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assignments[a.ID] = a
}

// Order returns a committed order.
func (s *Store) Order(id int64) domain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orders[id]
}

// Driver returns a committed driver.
func (s *Store) Driver(id int64) domain.Driver {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drivers[id]
}

// Assignments returns the committed assignments of an order by id.
func (s *Store) Assignments(orderID int64) []domain.Assignment {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Assignment
	for _, a := range s.assignments {
		if a.OrderID == orderID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// History returns the committed history rows of an order.
func (s *Store) History(orderID int64) []domain.StatusHistory {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.StatusHistory
	for _, h := range s.history {
		if h.OrderID == orderID {
			out = append(out, h)
		}
	}
	return out
}

// Proof returns the committed proof of delivery of an order.
func (s *Store) Proof(orderID int64) (domain.ProofOfDelivery, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.proofs[orderID]
	return p, ok
}

// WithTx implements ordertx.Runner.
func (s *Store) WithTx(ctx context.Context, fn func(tx ordertx.Repository) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.state.clone()
	if err := fn(&tx{s: s}); err != nil {
		s.state = snap
		return err
	}
	if err := ctx.Err(); err != nil {
		s.state = snap
		return err
	}
	s.Commits++
	return nil
}

var _ ordertx.Runner = (*Store)(nil)

type tx struct {
	s *Store
}

var _ ordertx.Repository = (*tx)(nil)

func (t *tx) fail(op string) error {
	if t.s.FailOn == nil {
		return nil
	}
	return t.s.FailOn[op]
}

func (t *tx) id() int64 {
	t.s.nextID++
	return t.s.nextID
}

func (t *tx) Savepoint(_ context.Context, fn func(tx ordertx.Repository) error) error {
	snap := t.s.state.clone()
	if err := fn(t); err != nil {
		t.s.state = snap
		return err
	}
	return nil
}

func (t *tx) InsertOrder(_ context.Context, o *domain.Order) error {
	if err := t.fail("InsertOrder"); err != nil {
		return err
	}
	o.ID = t.id()
	now := time.Now().UTC()
	o.CreatedAt, o.UpdatedAt = now, now
	t.s.orders[o.ID] = *o
	return nil
}

func (t *tx) GetOrderForUpdate(_ context.Context, id int64) (*domain.Order, error) {
	if err := t.fail("GetOrderForUpdate"); err != nil {
		return nil, err
	}
	o, ok := t.s.orders[id]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

func (t *tx) UpdateOrderStatus(_ context.Context, id int64, status domain.OrderStatus) error {
	if err := t.fail("UpdateOrderStatus"); err != nil {
		return err
	}
	o := t.s.orders[id]
	o.Status = status
	t.s.orders[id] = o
	return nil
}

func (t *tx) UpdateOrderPriority(_ context.Context, id int64, p domain.Priority) error {
	if err := t.fail("UpdateOrderPriority"); err != nil {
		return err
	}
	o := t.s.orders[id]
	o.Priority = p
	t.s.orders[id] = o
	return nil
}

func (t *tx) GetDriverForUpdate(_ context.Context, id int64) (*domain.Driver, error) {
	if err := t.fail("GetDriverForUpdate"); err != nil {
		return nil, err
	}
	d, ok := t.s.drivers[id]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

func (t *tx) UpdateDriverStatus(_ context.Context, id int64, status domain.DriverStatus) error {
	if err := t.fail("UpdateDriverStatus"); err != nil {
		return err
	}
	d := t.s.drivers[id]
	d.Status = status
	t.s.drivers[id] = d
	return nil
}

func (t *tx) GetActiveAssignmentForUpdate(_ context.Context, orderID int64) (*domain.Assignment, error) {
	if err := t.fail("GetActiveAssignmentForUpdate"); err != nil {
		return nil, err
	}
	for _, a := range t.s.assignments {
		if a.OrderID == orderID && a.Status != domain.AssignmentCancelled {
			return &a, nil
		}
	}
	return nil, nil
}

func (t *tx) InsertAssignment(_ context.Context, a *domain.Assignment) error {
	if err := t.fail("InsertAssignment"); err != nil {
		return err
	}
	for _, cur := range t.s.assignments {
		if cur.OrderID == a.OrderID && cur.Status != domain.AssignmentCancelled {
			return apperr.Conflict("order is already assigned")
		}
	}
	a.ID = t.id()
	t.s.assignments[a.ID] = *a
	return nil
}

func (t *tx) CancelAssignment(_ context.Context, id int64, adminNote string) error {
	if err := t.fail("CancelAssignment"); err != nil {
		return err
	}
	a := t.s.assignments[id]
	a.Status = domain.AssignmentCancelled
	switch {
	case adminNote == "":
	case a.AdminNotes == "":
		a.AdminNotes = adminNote
	default:
		a.AdminNotes += "\n" + adminNote
	}
	t.s.assignments[id] = a
	return nil
}

func (t *tx) MarkAssignmentAccepted(_ context.Context, id int64, at time.Time) error {
	a := t.s.assignments[id]
	a.Status = domain.AssignmentAccepted
	a.AcceptedAt = &at
	t.s.assignments[id] = a
	return nil
}

func (t *tx) MarkAssignmentStarted(_ context.Context, id int64, at time.Time) error {
	a := t.s.assignments[id]
	a.Status = domain.AssignmentInProgress
	a.StartedAt = &at
	a.ActualPickup = &at
	if a.AcceptedAt == nil {
		a.AcceptedAt = &at
	}
	t.s.assignments[id] = a
	return nil
}

func (t *tx) MarkAssignmentCompleted(_ context.Context, id int64, at time.Time) error {
	a := t.s.assignments[id]
	a.Status = domain.AssignmentCompleted
	a.CompletedAt = &at
	a.ActualDelivery = &at
	t.s.assignments[id] = a
	return nil
}

func (t *tx) AppendHistory(_ context.Context, h *domain.StatusHistory) error {
	if err := t.fail("AppendHistory"); err != nil {
		return err
	}
	h.ID = t.id()
	t.s.history = append(t.s.history, *h)
	return nil
}

func (t *tx) UpsertProofOfDelivery(_ context.Context, p *domain.ProofOfDelivery) error {
	if err := t.fail("UpsertProofOfDelivery"); err != nil {
		return err
	}
	if cur, ok := t.s.proofs[p.OrderID]; ok {
		p.ID = cur.ID
	} else {
		p.ID = t.id()
	}
	t.s.proofs[p.OrderID] = *p
	return nil
}
