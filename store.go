package folio

import (
	"fmt"
	"slices"
	"sync"
)

// Store is the in-memory working set of a reconciliation session:
// snapshots, transactions, symbol mappings and the lot book, for any
// number of accounts. It is safe for concurrent use.
//
// A Store holds data, never conclusions: discrepancies and change sets
// are computed from it on demand and are not persisted.
type Store struct {
	mu        sync.RWMutex
	cfg       Config
	snapshots map[string][]Snapshot // per account, sorted by date
	txs       []Transaction
	mappings  *MappingSet
	lots      *LotBook
}

// NewStore creates an empty store using the given configuration for its
// lot book and tolerance checks.
func NewStore(cfg Config) *Store {
	cfg = cfg.normalized()
	return &Store{
		cfg:       cfg,
		snapshots: make(map[string][]Snapshot),
		mappings:  NewMappingSet(),
		lots:      NewLotBook(cfg),
	}
}

// Config returns the store's configuration.
func (s *Store) Config() Config { return s.cfg }

// AddSnapshot records a snapshot. A snapshot for the same account and
// date replaces the previous one; snapshots stay sorted by date.
func (s *Store) AddSnapshot(snap Snapshot) error {
	if snap.Account == "" {
		return fmt.Errorf("snapshot has no account")
	}
	if snap.Date.IsZero() {
		return fmt.Errorf("snapshot for %q has no date", snap.Account)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.snapshots[snap.Account]
	list = slices.DeleteFunc(list, func(x Snapshot) bool { return x.Date.Equal(snap.Date) })
	list = append(list, snap)
	slices.SortFunc(list, func(a, b Snapshot) int { return a.Date.Compare(b.Date) })
	s.snapshots[snap.Account] = list
	return nil
}

// Snapshots returns the account's snapshots sorted by date.
func (s *Store) Snapshots(account string) []Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.snapshots[account])
}

// SnapshotOn returns the account's snapshot taken on the given date.
func (s *Store) SnapshotOn(account string, on Date) (Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, snap := range s.snapshots[account] {
		if snap.Date.Equal(on) {
			return snap, true
		}
	}
	return Snapshot{}, false
}

// LatestSnapshot returns the account's most recent snapshot.
func (s *Store) LatestSnapshot(account string) (Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := s.snapshots[account]
	if len(list) == 0 {
		return Snapshot{}, false
	}
	return list[len(list)-1], true
}

// Accounts returns every account that has a snapshot or a transaction,
// sorted.
func (s *Store) Accounts() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]struct{}, len(s.snapshots))
	for account := range s.snapshots {
		seen[account] = struct{}{}
	}
	for _, tx := range s.txs {
		seen[tx.Account] = struct{}{}
	}
	accounts := make([]string, 0, len(seen))
	for account := range seen {
		accounts = append(accounts, account)
	}
	slices.Sort(accounts)
	return accounts
}

// AddTransactions appends transactions to the log, keeping it sorted by
// date. Order of same-day transactions is insertion order.
func (s *Store) AddTransactions(txs ...Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txs = append(s.txs, txs...)
	slices.SortStableFunc(s.txs, func(a, b Transaction) int { return a.Date.Compare(b.Date) })
}

// Transactions returns the full transaction log sorted by date.
func (s *Store) Transactions() []Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.txs)
}

// TransactionsByAccount returns the account's transactions sorted by date.
func (s *Store) TransactionsByAccount(account string) []Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Transaction
	for _, tx := range s.txs {
		if tx.Account == account {
			out = append(out, tx)
		}
	}
	return out
}

// TransactionsBySymbol returns the account's transactions on one symbol.
func (s *Store) TransactionsBySymbol(account, symbol string) []Transaction {
	symbol = NormalizeSymbol(symbol)
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Transaction
	for _, tx := range s.txs {
		if tx.Account == account && tx.Symbol == symbol {
			out = append(out, tx)
		}
	}
	return out
}

// TransactionsBetween returns the account's transactions dated strictly
// after from and up to and including to.
func (s *Store) TransactionsBetween(account string, from, to Date) []Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Transaction
	for _, tx := range s.txs {
		if tx.Account != account {
			continue
		}
		if !tx.Date.After(from) || tx.Date.After(to) {
			continue
		}
		out = append(out, tx)
	}
	return out
}

// AnnotateTransaction patches the memo of the i-th transaction in date
// order without touching any other field.
func (s *Store) AnnotateTransaction(i int, memo string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.txs) {
		return fmt.Errorf("no transaction #%d", i)
	}
	s.txs[i].Memo = memo
	return nil
}

// Mappings returns the store's symbol mapping set.
func (s *Store) Mappings() *MappingSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mappings
}

// AddMapping records a symbol mapping.
func (s *Store) AddMapping(m SymbolMapping) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mappings.Add(m)
}

// LotBook returns the store's lot book.
func (s *Store) LotBook() *LotBook {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lots
}

// PurgeAccount removes every trace of an account: its snapshots, its
// transactions and its lots. Mappings are symbol-level and are kept.
func (s *Store) PurgeAccount(account string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.snapshots, account)
	s.txs = slices.DeleteFunc(s.txs, func(tx Transaction) bool { return tx.Account == account })
	s.lots.PurgeAccount(account)
}
