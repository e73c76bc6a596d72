package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"wallet_service/internal/domain"

	"github.com/shopspring/decimal"
)

// MemoryStore is an in-memory Store used by tests. InTransaction hands fn a
// child view that journals every mutation it makes; on error the journal is
// replayed in reverse, undoing exactly that view's writes. Writes made
// through the root store (the status ledger path) commit immediately and are
// untouched by a sibling rollback, matching the gorm store's independent
// transaction semantics.
type MemoryStore struct {
	data *memoryData
	undo *undoLog // nil on the root store
}

type memoryData struct {
	mu sync.Mutex

	users        map[uint]domain.User
	wallets      map[uint]domain.Wallet
	transactions map[uint]domain.Transaction
	payments     map[uint]domain.ScheduledPayment
	addresses    map[uint]domain.PaymentAddress
	contacts     map[uint]domain.Contact
	audits       []domain.AuditLog

	nextUserID        uint
	nextWalletID      uint
	nextTransactionID uint
	nextPaymentID     uint
	nextAddressID     uint
	nextContactID     uint

	// failure hooks for tests
	walletSaveErr      error
	transactionSaveErr error
	paymentSaveErr     error
	auditCreateErr     error
}

type undoLog struct {
	steps []func()
}

func (l *undoLog) add(step func()) {
	l.steps = append(l.steps, step)
}

func (l *undoLog) rollback() {
	for i := len(l.steps) - 1; i >= 0; i-- {
		l.steps[i]()
	}
	l.steps = nil
}

// NewMemoryStore builds an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: &memoryData{
		users:        make(map[uint]domain.User),
		wallets:      make(map[uint]domain.Wallet),
		transactions: make(map[uint]domain.Transaction),
		payments:     make(map[uint]domain.ScheduledPayment),
		addresses:    make(map[uint]domain.PaymentAddress),
		contacts:     make(map[uint]domain.Contact),
	}}
}

func (m *MemoryStore) Users() UserRepository                         { return &memUsers{m} }
func (m *MemoryStore) Wallets() WalletRepository                     { return &memWallets{m} }
func (m *MemoryStore) Transactions() TransactionRepository           { return &memTransactions{m} }
func (m *MemoryStore) ScheduledPayments() ScheduledPaymentRepository { return &memScheduledPayments{m} }
func (m *MemoryStore) Addresses() AddressRepository                  { return &memAddresses{m} }
func (m *MemoryStore) Contacts() ContactRepository                   { return &memContacts{m} }
func (m *MemoryStore) AuditLogs() AuditLogRepository                 { return &memAuditLogs{m} }

func (m *MemoryStore) InTransaction(ctx context.Context, fn func(Store) error) error {
	if m.undo != nil {
		// already transactional: join the surrounding unit of work
		return fn(m)
	}
	child := &MemoryStore{data: m.data, undo: &undoLog{}}
	if err := fn(child); err != nil {
		m.data.mu.Lock()
		child.undo.rollback()
		m.data.mu.Unlock()
		return err
	}
	return nil
}

// ===== test hooks =====

// FailWalletSave makes every subsequent wallet save return err.
func (m *MemoryStore) FailWalletSave(err error) { m.data.walletSaveErr = err }

// FailTransactionSave makes every subsequent transaction save return err.
func (m *MemoryStore) FailTransactionSave(err error) { m.data.transactionSaveErr = err }

// FailPaymentSave makes every subsequent scheduled payment save return err.
func (m *MemoryStore) FailPaymentSave(err error) { m.data.paymentSaveErr = err }

// FailAuditCreate makes every subsequent audit insert return err.
func (m *MemoryStore) FailAuditCreate(err error) { m.data.auditCreateErr = err }

// ===== seeding helpers =====

// SeedUser inserts a user directly, assigning an id when missing.
func (m *MemoryStore) SeedUser(u domain.User) domain.User {
	m.data.mu.Lock()
	defer m.data.mu.Unlock()
	if u.ID == 0 {
		m.data.nextUserID++
		u.ID = m.data.nextUserID
	}
	m.data.users[u.ID] = u
	return u
}

// SeedWallet inserts a wallet directly, assigning an id when missing.
func (m *MemoryStore) SeedWallet(w domain.Wallet) domain.Wallet {
	m.data.mu.Lock()
	defer m.data.mu.Unlock()
	if w.ID == 0 {
		m.data.nextWalletID++
		w.ID = m.data.nextWalletID
	}
	m.data.wallets[w.ID] = w
	return w
}

// SeedAddress inserts a payment address directly, assigning an id when missing.
func (m *MemoryStore) SeedAddress(a domain.PaymentAddress) domain.PaymentAddress {
	m.data.mu.Lock()
	defer m.data.mu.Unlock()
	if a.ID == 0 {
		m.data.nextAddressID++
		a.ID = m.data.nextAddressID
	}
	m.data.addresses[a.ID] = a
	return a
}

// SeedTransaction inserts a transaction directly, assigning an id when missing.
func (m *MemoryStore) SeedTransaction(t domain.Transaction) domain.Transaction {
	m.data.mu.Lock()
	defer m.data.mu.Unlock()
	if t.ID == 0 {
		m.data.nextTransactionID++
		t.ID = m.data.nextTransactionID
	}
	m.data.transactions[t.ID] = t
	return t
}

// SeedPayment inserts a scheduled payment directly, assigning an id when missing.
func (m *MemoryStore) SeedPayment(p domain.ScheduledPayment) domain.ScheduledPayment {
	m.data.mu.Lock()
	defer m.data.mu.Unlock()
	if p.ID == 0 {
		m.data.nextPaymentID++
		p.ID = m.data.nextPaymentID
	}
	m.data.payments[p.ID] = p
	return p
}

// AuditEntries returns a copy of the recorded audit trail.
func (m *MemoryStore) AuditEntries() []domain.AuditLog {
	m.data.mu.Lock()
	defer m.data.mu.Unlock()
	out := make([]domain.AuditLog, len(m.data.audits))
	copy(out, m.data.audits)
	return out
}

// ===== users =====

type memUsers struct{ s *MemoryStore }

func (r *memUsers) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	r.s.data.mu.Lock()
	defer r.s.data.mu.Unlock()
	u, ok := r.s.data.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (r *memUsers) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.s.data.mu.Lock()
	defer r.s.data.mu.Unlock()
	for _, u := range r.s.data.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *memUsers) Create(ctx context.Context, user *domain.User) error {
	r.s.data.mu.Lock()
	defer r.s.data.mu.Unlock()
	r.s.data.nextUserID++
	user.ID = r.s.data.nextUserID
	id := user.ID
	if r.s.undo != nil {
		r.s.undo.add(func() { delete(r.s.data.users, id) })
	}
	r.s.data.users[id] = *user
	return nil
}

func (r *memUsers) Save(ctx context.Context, user *domain.User) error {
	r.s.data.mu.Lock()
	defer r.s.data.mu.Unlock()
	if user.ID == 0 {
		r.s.data.nextUserID++
		user.ID = r.s.data.nextUserID
	}
	id := user.ID
	if r.s.undo != nil {
		prev, existed := r.s.data.users[id]
		r.s.undo.add(func() {
			if existed {
				r.s.data.users[id] = prev
			} else {
				delete(r.s.data.users, id)
			}
		})
	}
	r.s.data.users[id] = *user
	return nil
}

func (r *memUsers) Count(ctx context.Context) (int64, error) {
	r.s.data.mu.Lock()
	defer r.s.data.mu.Unlock()
	return int64(len(r.s.data.users)), nil
}

func (r *memUsers) List(ctx context.Context, offset, limit int) ([]domain.User, error) {
	r.s.data.mu.Lock()
	defer r.s.data.mu.Unlock()
	users := make([]domain.User, 0, len(r.s.data.users))
	for _, u := range r.s.data.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return paginate(users, offset, limit), nil
}

// ===== wallets =====

type memWallets struct{ s *MemoryStore }

func (r *memWallets) FindByID(ctx context.Context, id uint) (*domain.Wallet, error) {
	r.s.data.mu.Lock()
	defer r.s.data.mu.Unlock()
	w, ok := r.s.data.wallets[id]
	if !ok {
		return nil, domain.ErrWalletNotFound
	}
	return &w, nil
}

func (r *memWallets) FindByIDForUpdate(ctx context.Context, id uint) (*domain.Wallet, error) {
	return r.FindByID(ctx, id)
}

func (r *memWallets) FindByUserID(ctx context.Context, userID uint) (*domain.Wallet, error) {
	r.s.data.mu.Lock()
	defer r.s.data.mu.Unlock()
	for _, w := range r.s.data.wallets {
		if w.UserID == userID {
			w := w
			return &w, nil
		}
	}
	return nil, domain.ErrWalletNotFound
}

func (r *memWallets) Create(ctx context.Context, wallet *domain.Wallet) error {
	return r.Save(ctx, wallet)
}

func (r *memWallets) Save(ctx context.Context, wallet *domain.Wallet) error {
	r.s.data.mu.Lock()
	defer r.s.data.mu.Unlock()
	if err := r.s.data.walletSaveErr; err != nil {
		return err
	}
	if wallet.ID == 0 {
		r.s.data.nextWalletID++
		wallet.ID = r.s.data.nextWalletID
	}
	id := wallet.ID
	if r.s.undo != nil {
		prev, existed := r.s.data.wallets[id]
		r.s.undo.add(func() {
			if existed {
				r.s.data.wallets[id] = prev
			} else {
				delete(r.s.data.wallets, id)
			}
		})
	}
	r.s.data.wallets[id] = *wallet
	return nil
}

// ===== transactions =====

type memTransactions struct{ s *MemoryStore }

func (r *memTransactions) Save(ctx context.Context, tx *domain.Transaction) error {
	r.s.data.mu.Lock()
	defer r.s.data.mu.Unlock()
	if err := r.s.data.transactionSaveErr; err != nil {
		return err
	}
	if tx.ID == 0 {
		r.s.data.nextTransactionID++
		tx.ID = r.s.data.nextTransactionID
	}
	id := tx.ID
	if r.s.undo != nil {
		prev, existed := r.s.data.transactions[id]
		r.s.undo.add(func() {
			if existed {
				r.s.data.transactions[id] = prev
			} else {
				delete(r.s.data.transactions, id)
			}
		})
	}
	r.s.data.transactions[id] = *tx
	return nil
}

func (r *memTransactions) all() []domain.Transaction {
	out := make([]domain.Transaction, 0, len(r.s.data.transactions))
	for _, t := range r.s.data.transactions {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out
}

func (r *memTransactions) ListByWallet(ctx context.Context, walletID uint, offset, limit int) ([]domain.Transaction, error) {
	r.s.data.mu.Lock()
	defer r.s.data.mu.Unlock()
	var matched []domain.Transaction
	for _, t := range r.all() {
		if t.FromWalletID == walletID || t.ToWalletID == walletID {
			matched = append(matched, t)
		}
	}
	return paginate(matched, offset, limit), nil
}

func (r *memTransactions) CountByWallet(ctx context.Context, walletID uint) (int64, error) {
	r.s.data.mu.Lock()
	defer r.s.data.mu.Unlock()
	var total int64
	for _, t := range r.s.data.transactions {
		if t.FromWalletID == walletID || t.ToWalletID == walletID {
			total++
		}
	}
	return total, nil
}

func (r *memTransactions) List(ctx context.Context, offset, limit int) ([]domain.Transaction, error) {
	r.s.data.mu.Lock()
	defer r.s.data.mu.Unlock()
	return paginate(r.all(), offset, limit), nil
}

func (r *memTransactions) Count(ctx context.Context) (int64, error) {
	r.s.data.mu.Lock()
	defer r.s.data.mu.Unlock()
	return int64(len(r.s.data.transactions)), nil
}

func (r *memTransactions) CountByStatus(ctx context.Context, status domain.TransactionStatus) (int64, error) {
	r.s.data.mu.Lock()
	defer r.s.data.mu.Unlock()
	var total int64
	for _, t := range r.s.data.transactions {
		if t.Status == status {
			total++
		}
	}
	return total, nil
}

func (r *memTransactions) SumAmountByStatus(ctx context.Context, status domain.TransactionStatus) (decimal.Decimal, error) {
	r.s.data.mu.Lock()
	defer r.s.data.mu.Unlock()
	sum := decimal.Zero
	for _, t := range r.s.data.transactions {
		if t.Status == status {
			sum = sum.Add(t.Amount)
		}
	}
	return sum, nil
}

func (r *memTransactions) ExistsTransfer(ctx context.Context, fromWalletID, toWalletID uint) (bool, error) {
	r.s.data.mu.Lock()
	defer r.s.data.mu.Unlock()
	for _, t := range r.s.data.transactions {
		if t.FromWalletID == fromWalletID && t.ToWalletID == toWalletID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memTransactions) CountOutgoingSince(ctx context.Context, fromWalletID uint, since time.Time) (int64, error) {
	r.s.data.mu.Lock()
	defer r.s.data.mu.Unlock()
	var total int64
	for _, t := range r.s.data.transactions {
		if t.FromWalletID == fromWalletID && t.Timestamp.After(since) {
			total++
		}
	}
	return total, nil
}

// ===== scheduled payments =====

type memScheduledPayments struct{ s *MemoryStore }

func (r *memScheduledPayments) Create(ctx context.Context, p *domain.ScheduledPayment) error {
	return r.Save(ctx, p)
}

func (r *memScheduledPayments) Save(ctx context.Context, p *domain.ScheduledPayment) error {
	r.s.data.mu.Lock()
	defer r.s.data.mu.Unlock()
	if err := r.s.data.paymentSaveErr; err != nil {
		return err
	}
	if p.ID == 0 {
		r.s.data.nextPaymentID++
		p.ID = r.s.data.nextPaymentID
	}
	id := p.ID
	if r.s.undo != nil {
		prev, existed := r.s.data.payments[id]
		r.s.undo.add(func() {
			if existed {
				r.s.data.payments[id] = prev
			} else {
				delete(r.s.data.payments, id)
			}
		})
	}
	r.s.data.payments[id] = *p
	return nil
}

func (r *memScheduledPayments) FindByID(ctx context.Context, id uint) (*domain.ScheduledPayment, error) {
	r.s.data.mu.Lock()
	defer r.s.data.mu.Unlock()
	p, ok := r.s.data.payments[id]
	if !ok {
		return nil, domain.ErrScheduleNotFound
	}
	return &p, nil
}

func (r *memScheduledPayments) FindDue(ctx context.Context, now time.Time) ([]domain.ScheduledPayment, error) {
	r.s.data.mu.Lock()
	defer r.s.data.mu.Unlock()
	var due []domain.ScheduledPayment
	for _, p := range r.s.data.payments {
		if !p.Executed && p.Status == domain.StatusPending && !p.ScheduledAt.After(now) {
			due = append(due, p)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].ScheduledAt.Before(due[j].ScheduledAt) })
	return due, nil
}

func (r *memScheduledPayments) ListBySender(ctx context.Context, senderID uint) ([]domain.ScheduledPayment, error) {
	r.s.data.mu.Lock()
	defer r.s.data.mu.Unlock()
	var out []domain.ScheduledPayment
	for _, p := range r.s.data.payments {
		if p.SenderID == senderID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledAt.After(out[j].ScheduledAt) })
	return out, nil
}

// ===== payment addresses =====

type memAddresses struct{ s *MemoryStore }

func (r *memAddresses) Create(ctx context.Context, a *domain.PaymentAddress) error {
	r.s.data.mu.Lock()
	defer r.s.data.mu.Unlock()
	if a.ID == 0 {
		r.s.data.nextAddressID++
		a.ID = r.s.data.nextAddressID
	}
	id := a.ID
	if r.s.undo != nil {
		r.s.undo.add(func() { delete(r.s.data.addresses, id) })
	}
	r.s.data.addresses[id] = *a
	return nil
}

func (r *memAddresses) FindByID(ctx context.Context, id uint) (*domain.PaymentAddress, error) {
	r.s.data.mu.Lock()
	defer r.s.data.mu.Unlock()
	a, ok := r.s.data.addresses[id]
	if !ok {
		return nil, domain.ErrAddressNotFound
	}
	return &a, nil
}

func (r *memAddresses) FindByHandle(ctx context.Context, handle string) (*domain.PaymentAddress, error) {
	r.s.data.mu.Lock()
	defer r.s.data.mu.Unlock()
	for _, a := range r.s.data.addresses {
		if a.Handle == handle {
			a := a
			return &a, nil
		}
	}
	return nil, domain.ErrAddressNotFound
}

func (r *memAddresses) FindByUserID(ctx context.Context, userID uint) (*domain.PaymentAddress, error) {
	r.s.data.mu.Lock()
	defer r.s.data.mu.Unlock()
	for _, a := range r.s.data.addresses {
		if a.UserID == userID {
			a := a
			return &a, nil
		}
	}
	return nil, domain.ErrAddressNotFound
}

func (r *memAddresses) HandleExists(ctx context.Context, handle string) (bool, error) {
	_, err := r.FindByHandle(ctx, handle)
	if err == domain.ErrAddressNotFound {
		return false, nil
	}
	return err == nil, err
}

// ===== contacts =====

type memContacts struct{ s *MemoryStore }

func (r *memContacts) Create(ctx context.Context, c *domain.Contact) error {
	r.s.data.mu.Lock()
	defer r.s.data.mu.Unlock()
	if c.ID == 0 {
		r.s.data.nextContactID++
		c.ID = r.s.data.nextContactID
	}
	id := c.ID
	if r.s.undo != nil {
		r.s.undo.add(func() { delete(r.s.data.contacts, id) })
	}
	r.s.data.contacts[id] = *c
	return nil
}

func (r *memContacts) ListByOwner(ctx context.Context, ownerID uint) ([]domain.Contact, error) {
	r.s.data.mu.Lock()
	defer r.s.data.mu.Unlock()
	var out []domain.Contact
	for _, c := range r.s.data.contacts {
		if c.OwnerID == ownerID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memContacts) FindByIDAndOwner(ctx context.Context, id, ownerID uint) (*domain.Contact, error) {
	r.s.data.mu.Lock()
	defer r.s.data.mu.Unlock()
	c, ok := r.s.data.contacts[id]
	if !ok || c.OwnerID != ownerID {
		return nil, domain.ErrContactNotFound
	}
	return &c, nil
}

func (r *memContacts) Delete(ctx context.Context, c *domain.Contact) error {
	r.s.data.mu.Lock()
	defer r.s.data.mu.Unlock()
	id := c.ID
	if r.s.undo != nil {
		prev, existed := r.s.data.contacts[id]
		if existed {
			r.s.undo.add(func() { r.s.data.contacts[id] = prev })
		}
	}
	delete(r.s.data.contacts, id)
	return nil
}

// ===== audit logs =====

type memAuditLogs struct{ s *MemoryStore }

func (r *memAuditLogs) Create(ctx context.Context, entry *domain.AuditLog) error {
	r.s.data.mu.Lock()
	defer r.s.data.mu.Unlock()
	if err := r.s.data.auditCreateErr; err != nil {
		return err
	}
	entry.ID = uint(len(r.s.data.audits) + 1)
	if r.s.undo != nil {
		n := len(r.s.data.audits)
		r.s.undo.add(func() { r.s.data.audits = r.s.data.audits[:n] })
	}
	r.s.data.audits = append(r.s.data.audits, *entry)
	return nil
}

func (r *memAuditLogs) CountByActionAndOutcome(ctx context.Context, action, outcome string) (int64, error) {
	r.s.data.mu.Lock()
	defer r.s.data.mu.Unlock()
	var total int64
	for _, e := range r.s.data.audits {
		if e.Action == action && e.Outcome == outcome {
			total++
		}
	}
	return total, nil
}

func (r *memAuditLogs) List(ctx context.Context, offset, limit int) ([]domain.AuditLog, error) {
	r.s.data.mu.Lock()
	defer r.s.data.mu.Unlock()
	out := make([]domain.AuditLog, len(r.s.data.audits))
	copy(out, r.s.data.audits)
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return paginate(out, offset, limit), nil
}

func paginate[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
