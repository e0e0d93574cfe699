package mocks

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/iho/clinicdesk/internal/domain"
	"github.com/iho/clinicdesk/internal/usecase"
)

// MemoryLedger is an in-memory ledger store for use case tests. It emulates
// the database guarantees the use cases rely on: the advisory/row lock is a
// single token held until commit or rollback, writes are buffered per
// transaction, shift updates are compare-and-swap on version, and the
// (shift_id, idempotency_key) and one-refund-per-original indexes are
// enforced on insert and again on commit.
type MemoryLedger struct {
	mu       sync.Mutex
	token    chan struct{}
	shifts   map[string]*domain.Shift
	txns     []*domain.Transaction
	audits   []*domain.AuditLog
	events   []*domain.OutboxEvent
	patients map[string]bool
	visits   map[string][]time.Time

	// BeforeCreateTransaction runs before a transaction insert is checked
	// against the unique indexes. Tests use it to inject a competing commit.
	BeforeCreateTransaction func(t *domain.Transaction)
	// AuditErr, when set, is returned by every audit write.
	AuditErr error
	// CommitErr, when set, is returned by the next commit instead of applying it.
	CommitErr error
}

// NewMemoryLedger creates an empty MemoryLedger.
func NewMemoryLedger() *MemoryLedger {
	l := &MemoryLedger{
		token:    make(chan struct{}, 1),
		shifts:   make(map[string]*domain.Shift),
		patients: make(map[string]bool),
		visits:   make(map[string][]time.Time),
	}
	return l
}

// Deps wires the ledger into usecase.LedgerDeps.
func (l *MemoryLedger) Deps(idGen usecase.IDGenerator) usecase.LedgerDeps {
	return usecase.LedgerDeps{
		TxManager:    &memTxManager{l: l},
		Shifts:       &memShiftRepo{l: l},
		Transactions: &memTransactionRepo{l: l},
		Audit:        &memAuditRepo{l: l},
		Outbox:       &memOutboxRepo{l: l},
		Locker:       &memLocker{},
		IDGen:        idGen,
	}
}

// Patients returns a PatientDirectory over AddPatient.
func (l *MemoryLedger) Patients() usecase.PatientDirectory { return &memPatients{l: l} }

// Visits returns a VisitChecker over AddVisit.
func (l *MemoryLedger) Visits() usecase.VisitChecker { return &memVisits{l: l} }

// AddPatient registers a known patient.
func (l *MemoryLedger) AddPatient(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.patients[id] = true
}

// AddVisit records an appointment for patientID created at createdAt.
func (l *MemoryLedger) AddVisit(patientID string, createdAt time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.visits[patientID] = append(l.visits[patientID], createdAt)
}

// Shift returns a copy of the committed shift.
func (l *MemoryLedger) Shift(id string) *domain.Shift {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.shifts[id]
	if !ok {
		return nil
	}
	c := *s
	return &c
}

// Transactions returns copies of the committed non-deleted transactions of a shift.
func (l *MemoryLedger) Transactions(shiftID string) []*domain.Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []*domain.Transaction
	for _, t := range l.txns {
		if t.ShiftID == shiftID && t.DeletedAt == nil {
			c := *t
			out = append(out, &c)
		}
	}
	return out
}

// AuditLogs returns the committed audit entries.
func (l *MemoryLedger) AuditLogs() []*domain.AuditLog {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]*domain.AuditLog(nil), l.audits...)
}

// Events returns the committed outbox events.
func (l *MemoryLedger) Events() []*domain.OutboxEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]*domain.OutboxEvent(nil), l.events...)
}

// Tamper overwrites the stored totals of a shift without touching its
// transactions.
func (l *MemoryLedger) Tamper(shiftID string, totals domain.Totals) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.shifts[shiftID].Totals = totals
}

// InsertCommitted stores t as if another request had committed it.
func (l *MemoryLedger) InsertCommitted(t *domain.Transaction) {
	l.mu.Lock()
	defer l.mu.Unlock()
	c := *t
	l.txns = append(l.txns, &c)
	s := l.shifts[t.ShiftID]
	s.Totals = s.Totals.Add(t.Deltas())
	s.Version++
}

// memTx buffers writes until commit.
type memTx struct {
	l          *MemoryLedger
	holdsToken bool
	done       bool
	newShifts  []*domain.Shift
	updates    map[string]*domain.Shift
	txns       []*domain.Transaction
	audits     []*domain.AuditLog
	events     []*domain.OutboxEvent
}

func (t *memTx) acquire(ctx context.Context) error {
	if t.holdsToken {
		return nil
	}
	select {
	case t.l.token <- struct{}{}:
		t.holdsToken = true
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", domain.ErrConflict, ctx.Err())
	}
}

func (t *memTx) release() {
	if t.holdsToken {
		<-t.l.token
		t.holdsToken = false
	}
}

func (t *memTx) Commit(ctx context.Context) error {
	if t.done {
		return errors.New("transaction already finished")
	}
	t.done = true
	defer t.release()

	t.l.mu.Lock()
	defer t.l.mu.Unlock()

	if t.l.CommitErr != nil {
		err := t.l.CommitErr
		t.l.CommitErr = nil
		return err
	}

	for _, n := range t.txns {
		if err := t.l.checkUniqueLocked(n, nil); err != nil {
			return err
		}
	}

	for _, s := range t.newShifts {
		if s.IsOpen() {
			for _, existing := range t.l.shifts {
				if existing.IsOpen() {
					return domain.ErrShiftAlreadyOpen
				}
			}
		}
		t.l.shifts[s.ID] = s
	}
	for id, s := range t.updates {
		t.l.shifts[id] = s
	}
	t.l.txns = append(t.l.txns, t.txns...)
	t.l.audits = append(t.l.audits, t.audits...)
	t.l.events = append(t.l.events, t.events...)
	return nil
}

func (t *memTx) Rollback(ctx context.Context) error {
	if t.done {
		return nil
	}
	t.done = true
	t.release()
	return nil
}

func asMemTx(tx usecase.Transaction) *memTx {
	if tx == nil {
		return nil
	}
	return tx.(*memTx)
}

// shiftLocked returns the shift as seen by tx.
func (l *MemoryLedger) shiftLocked(tx *memTx, id string) (*domain.Shift, bool) {
	if tx != nil {
		if s, ok := tx.updates[id]; ok {
			return s, true
		}
		for _, s := range tx.newShifts {
			if s.ID == id {
				return s, true
			}
		}
	}
	s, ok := l.shifts[id]
	return s, ok
}

func (l *MemoryLedger) allShiftsLocked(tx *memTx) []*domain.Shift {
	seen := make(map[string]bool)
	var out []*domain.Shift
	if tx != nil {
		for _, s := range tx.newShifts {
			out = append(out, s)
			seen[s.ID] = true
		}
	}
	for id := range l.shifts {
		if seen[id] {
			continue
		}
		s, _ := l.shiftLocked(tx, id)
		out = append(out, s)
	}
	return out
}

func (l *MemoryLedger) allTxnsLocked(tx *memTx) []*domain.Transaction {
	out := append([]*domain.Transaction(nil), l.txns...)
	if tx != nil {
		out = append(out, tx.txns...)
	}
	return out
}

func (l *MemoryLedger) checkUniqueLocked(n *domain.Transaction, tx *memTx) error {
	for _, e := range l.allTxnsLocked(tx) {
		if e == n || e.DeletedAt != nil {
			continue
		}
		if n.IdempotencyKey != nil && e.IdempotencyKey != nil &&
			e.ShiftID == n.ShiftID && *e.IdempotencyKey == *n.IdempotencyKey {
			return domain.ErrDuplicateIdempotencyKey
		}
		if n.RelatedTransactionID != nil && e.RelatedTransactionID != nil &&
			*e.RelatedTransactionID == *n.RelatedTransactionID {
			return domain.ErrDuplicateRefund
		}
	}
	return nil
}

type memTxManager struct{ l *MemoryLedger }

func (m *memTxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &memTx{l: m.l, updates: make(map[string]*domain.Shift)}, nil
}

type memLocker struct{}

func (memLocker) Lock(ctx context.Context, tx usecase.Transaction) error {
	return asMemTx(tx).acquire(ctx)
}

type memShiftRepo struct{ l *MemoryLedger }

func (r *memShiftRepo) Create(ctx context.Context, tx usecase.Transaction, shift *domain.Shift) error {
	mt := asMemTx(tx)
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	for _, s := range r.l.allShiftsLocked(mt) {
		if s.IsOpen() {
			return domain.ErrShiftAlreadyOpen
		}
	}
	c := *shift
	mt.newShifts = append(mt.newShifts, &c)
	return nil
}

func (r *memShiftRepo) GetByID(ctx context.Context, id string) (*domain.Shift, error) {
	return r.get(nil, id)
}

func (r *memShiftRepo) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Shift, error) {
	if err := asMemTx(tx).acquire(ctx); err != nil {
		return nil, err
	}
	return r.get(asMemTx(tx), id)
}

func (r *memShiftRepo) get(tx *memTx, id string) (*domain.Shift, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	s, ok := r.l.shiftLocked(tx, id)
	if !ok || s.DeletedAt != nil {
		return nil, domain.ErrShiftNotFound
	}
	c := *s
	return &c, nil
}

func (r *memShiftRepo) GetActive(ctx context.Context) (*domain.Shift, error) {
	return r.active(nil)
}

func (r *memShiftRepo) GetActiveForUpdate(ctx context.Context, tx usecase.Transaction) (*domain.Shift, error) {
	if err := asMemTx(tx).acquire(ctx); err != nil {
		return nil, err
	}
	return r.active(asMemTx(tx))
}

func (r *memShiftRepo) active(tx *memTx) (*domain.Shift, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	for _, s := range r.l.allShiftsLocked(tx) {
		if s.IsOpen() {
			c := *s
			return &c, nil
		}
	}
	return nil, domain.ErrNoOpenShift
}

func (r *memShiftRepo) ApplyTotals(ctx context.Context, tx usecase.Transaction, id string, expectedVersion int64, deltas domain.Totals) (*domain.Shift, error) {
	mt := asMemTx(tx)
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	s, ok := r.l.shiftLocked(mt, id)
	if !ok || !s.IsOpen() || s.Version != expectedVersion || !s.Totals.Add(deltas).NonNegative() {
		return nil, domain.ErrVersionConflict
	}
	c := *s
	c.Totals = c.Totals.Add(deltas)
	c.Version++
	mt.updates[id] = &c
	out := c
	return &out, nil
}

func (r *memShiftRepo) Close(ctx context.Context, tx usecase.Transaction, id string, expectedVersion int64, endTime time.Time) (*domain.Shift, error) {
	mt := asMemTx(tx)
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	s, ok := r.l.shiftLocked(mt, id)
	if !ok || !s.IsOpen() || s.Version != expectedVersion {
		return nil, domain.ErrVersionConflict
	}
	c := *s
	c.IsClosed = true
	end := endTime
	c.EndTime = &end
	c.Version++
	mt.updates[id] = &c
	out := c
	return &out, nil
}

func (r *memShiftRepo) GetLastClosed(ctx context.Context) (*domain.Shift, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	var last *domain.Shift
	for _, s := range r.l.shifts {
		if !s.IsClosed || s.DeletedAt != nil || s.EndTime == nil {
			continue
		}
		if last == nil || s.EndTime.After(*last.EndTime) {
			last = s
		}
	}
	if last == nil {
		return nil, domain.ErrShiftNotFound
	}
	c := *last
	return &c, nil
}

type memTransactionRepo struct{ l *MemoryLedger }

func (r *memTransactionRepo) Create(ctx context.Context, tx usecase.Transaction, t *domain.Transaction) error {
	if r.l.BeforeCreateTransaction != nil {
		r.l.BeforeCreateTransaction(t)
	}
	mt := asMemTx(tx)
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	if err := r.l.checkUniqueLocked(t, mt); err != nil {
		return err
	}
	c := *t
	mt.txns = append(mt.txns, &c)
	return nil
}

func (r *memTransactionRepo) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	return r.GetByIDTx(ctx, nil, id)
}

func (r *memTransactionRepo) GetByIDTx(ctx context.Context, tx usecase.Transaction, id string) (*domain.Transaction, error) {
	return r.find(asMemTx(tx), func(t *domain.Transaction) bool { return t.ID == id })
}

func (r *memTransactionRepo) FindByIdempotencyKey(ctx context.Context, tx usecase.Transaction, shiftID, key string) (*domain.Transaction, error) {
	return r.find(asMemTx(tx), func(t *domain.Transaction) bool {
		return t.ShiftID == shiftID && t.IdempotencyKey != nil && *t.IdempotencyKey == key
	})
}

func (r *memTransactionRepo) FindRefund(ctx context.Context, tx usecase.Transaction, originalID string) (*domain.Transaction, error) {
	return r.find(asMemTx(tx), func(t *domain.Transaction) bool {
		return t.RelatedTransactionID != nil && *t.RelatedTransactionID == originalID
	})
}

func (r *memTransactionRepo) find(tx *memTx, match func(*domain.Transaction) bool) (*domain.Transaction, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	for _, t := range r.l.allTxnsLocked(tx) {
		if t.DeletedAt == nil && match(t) {
			c := *t
			return &c, nil
		}
	}
	return nil, domain.ErrTransactionNotFound
}

func (r *memTransactionRepo) SumByShift(ctx context.Context, tx usecase.Transaction, shiftID string) (domain.Totals, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	var sum domain.Totals
	for _, t := range r.l.allTxnsLocked(asMemTx(tx)) {
		if t.ShiftID == shiftID && t.DeletedAt == nil {
			sum = sum.Add(t.Deltas())
		}
	}
	return sum, nil
}

func (r *memTransactionRepo) ListByShift(ctx context.Context, shiftID string, limit, offset int) ([]*domain.Transaction, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	var out []*domain.Transaction
	for _, t := range r.l.txns {
		if t.ShiftID == shiftID && t.DeletedAt == nil {
			c := *t
			out = append(out, &c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if offset >= len(out) {
		return []*domain.Transaction{}, nil
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

type memAuditRepo struct{ l *MemoryLedger }

func (r *memAuditRepo) CreateTx(ctx context.Context, tx usecase.Transaction, log *domain.AuditLog) error {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	if r.l.AuditErr != nil {
		return r.l.AuditErr
	}
	mt := asMemTx(tx)
	mt.audits = append(mt.audits, log)
	return nil
}

type memOutboxRepo struct{ l *MemoryLedger }

func (r *memOutboxRepo) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	mt := asMemTx(tx)
	mt.events = append(mt.events, event)
	return nil
}

func (r *memOutboxRepo) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	var out []*domain.OutboxEvent
	for _, e := range r.l.events {
		if !e.Published && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *memOutboxRepo) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	for _, e := range r.l.events {
		if e.ID == id {
			e.Published = true
			at := publishedAt
			e.PublishedAt = &at
		}
	}
	return nil
}

func (r *memOutboxRepo) DeletePublished(ctx context.Context, before time.Time) error {
	r.l.mu.Lock()
	defer r.l.mu.Unlock()
	kept := r.l.events[:0]
	for _, e := range r.l.events {
		if e.Published && e.PublishedAt != nil && e.PublishedAt.Before(before) {
			continue
		}
		kept = append(kept, e)
	}
	r.l.events = kept
	return nil
}

type memPatients struct{ l *MemoryLedger }

func (p *memPatients) Exists(ctx context.Context, patientID string) (bool, error) {
	p.l.mu.Lock()
	defer p.l.mu.Unlock()
	return p.l.patients[patientID], nil
}

type memVisits struct{ l *MemoryLedger }

func (v *memVisits) HasVisitSince(ctx context.Context, patientID string, since time.Time) (bool, error) {
	v.l.mu.Lock()
	defer v.l.mu.Unlock()
	for _, at := range v.l.visits[patientID] {
		if !at.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

// SequenceIDGenerator returns prefix-1, prefix-2, ...
type SequenceIDGenerator struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequenceIDGenerator creates a SequenceIDGenerator.
func NewSequenceIDGenerator(prefix string) *SequenceIDGenerator {
	return &SequenceIDGenerator{prefix: prefix}
}

func (g *SequenceIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%d", g.prefix, g.n)
}

// MemoryIdempotencyStore is an in-memory IdempotencyStore.
type MemoryIdempotencyStore struct {
	mu   sync.Mutex
	keys map[string][]byte
}

// NewMemoryIdempotencyStore creates an empty MemoryIdempotencyStore.
func NewMemoryIdempotencyStore() *MemoryIdempotencyStore {
	return &MemoryIdempotencyStore{keys: make(map[string][]byte)}
}

func (m *MemoryIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.keys[key]; ok {
		return true, existing, nil
	}
	m.keys[key] = response
	return false, nil, nil
}

func (m *MemoryIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys[key] = response
	return nil
}

func (m *MemoryIdempotencyStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.keys, key)
	return nil
}
