package core

import (
	"sort"
	"strings"
	"sync"
	"time"

	"frontdesk/pkg/domain"
)

// Entry is the contract a value must satisfy to be kept in a Ledger.
type Entry[E any] interface {
	EntryID() int64
	WithEntryID(id int64) E
	EntityRef() string
	EntryKind() string
	EntryDate() string
	EntryTime() string
	SearchText() []string
	Clone() E
}

// LedgerStats summarises a ledger for dashboards.
type LedgerStats[E any] struct {
	Total  int            `json:"total"`
	ByType map[string]int `json:"byType"`
	// OpenEntities is derived from the entries alone; an entity removed
	// elsewhere still counts while its latest entry is open.
	OpenEntities int `json:"openEntities"`
	Today        int `json:"today"`
	Recent       []E `json:"recent"`
}

// LedgerOption customises a Ledger.
type LedgerOption[E Entry[E]] func(*Ledger[E])

// WithOpenState sets the predicate that decides whether an entity's latest
// entry leaves it in an open state (an occupied room, a depleted item).
func WithOpenState[E Entry[E]](open func(E) bool) LedgerOption[E] {
	return func(l *Ledger[E]) {
		l.open = open
	}
}

// Ledger is an append-only, in-memory sequence of entries with monotonically
// increasing ids. Entries are never updated; the only removal path is AdminRemove.
type Ledger[E Entry[E]] struct {
	mu      sync.RWMutex
	entries []E
	index   map[int64]int
	maxID   int64
	discard bool
	open    func(E) bool
}

// NewLedger constructs an empty ledger.
func NewLedger[E Entry[E]](opts ...LedgerOption[E]) *Ledger[E] {
	l := &Ledger[E]{index: make(map[int64]int)}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// NewDiscardLedger returns a ledger that assigns ids but keeps nothing.
func NewDiscardLedger[E Entry[E]]() *Ledger[E] {
	l := NewLedger[E]()
	l.discard = true
	return l
}

// Discards reports whether the ledger drops its writes.
func (l *Ledger[E]) Discards() bool {
	return l.discard
}

// NextID returns the id the next Append will assign.
func (l *Ledger[E]) NextID() int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.maxID + 1
}

// Append stores a copy of entry under a fresh id and returns the stored value.
func (l *Ledger[E]) Append(entry E) E {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.maxID++
	stored := entry.WithEntryID(l.maxID)
	if l.discard {
		return stored
	}
	l.index[l.maxID] = len(l.entries)
	l.entries = append(l.entries, stored)
	return stored.Clone()
}

// Seq returns the last id issued or restored. Ids at or below it are never
// assigned again, including ids freed by AdminRemove.
func (l *Ledger[E]) Seq() int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.maxID
}

// Restore merges entries that carry their own ids, skipping ids already present.
// It returns the ids that were skipped. The id sequence continues after the
// largest id seen.
func (l *Ledger[E]) Restore(entries []E) []int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.restoreLocked(entries)
}

// Replace drops every entry and loads entries as persisted. The sequence
// resumes after the larger of seq and the largest loaded id.
func (l *Ledger[E]) Replace(entries []E, seq int64) []int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
	l.index = make(map[int64]int)
	l.maxID = max(seq, 0)
	return l.restoreLocked(entries)
}

func (l *Ledger[E]) restoreLocked(entries []E) []int64 {
	var skipped []int64
	for _, entry := range entries {
		id := entry.EntryID()
		if _, exists := l.index[id]; exists {
			skipped = append(skipped, id)
			continue
		}
		if id > l.maxID {
			l.maxID = id
		}
		if l.discard {
			continue
		}
		l.index[id] = len(l.entries)
		l.entries = append(l.entries, entry.Clone())
	}
	return skipped
}

// Len returns the number of stored entries.
func (l *Ledger[E]) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Get returns the entry with id.
func (l *Ledger[E]) Get(id int64) (E, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	pos, ok := l.index[id]
	if !ok {
		var zero E
		return zero, false
	}
	return l.entries[pos].Clone(), true
}

// All returns every entry in append order.
func (l *Ledger[E]) All() []E {
	return l.filter(func(E) bool { return true })
}

// ByEntity returns the entries for one entity, most recent first.
func (l *Ledger[E]) ByEntity(ref string) []E {
	out := l.filter(func(e E) bool { return e.EntityRef() == ref })
	sortDescending(out)
	return out
}

// ByType returns the entries of one kind in append order.
func (l *Ledger[E]) ByType(kind string) []E {
	return l.filter(func(e E) bool { return e.EntryKind() == kind })
}

// ByDate returns the entries recorded on date in append order.
func (l *Ledger[E]) ByDate(date string) []E {
	return l.filter(func(e E) bool { return e.EntryDate() == date })
}

// Search returns entries whose searchable fields contain term, ignoring case
// and accents. A blank term matches everything.
func (l *Ledger[E]) Search(term string) []E {
	needle := foldText(strings.TrimSpace(term))
	if needle == "" {
		return l.All()
	}
	return l.filter(func(e E) bool {
		for _, field := range e.SearchText() {
			if strings.Contains(foldText(field), needle) {
				return true
			}
		}
		return false
	})
}

// Stats summarises the ledger as seen at now, keeping the recent most recent entries.
func (l *Ledger[E]) Stats(now time.Time, recent int) LedgerStats[E] {
	all := l.All()
	stats := LedgerStats[E]{Total: len(all), ByType: make(map[string]int)}
	today := now.Format(domain.DateLayout)
	for _, entry := range all {
		stats.ByType[entry.EntryKind()]++
		if entry.EntryDate() == today {
			stats.Today++
		}
	}
	stats.OpenEntities = len(l.openRefs(all))
	sortDescending(all)
	if recent < 0 {
		recent = 0
	}
	if recent < len(all) {
		all = all[:recent]
	}
	stats.Recent = all
	return stats
}

// OpenRefs returns the sorted entity refs whose latest entry is open.
func (l *Ledger[E]) OpenRefs() []string {
	return l.openRefs(l.All())
}

func (l *Ledger[E]) openRefs(all []E) []string {
	if l.open == nil {
		return nil
	}
	latest := make(map[string]E)
	for _, entry := range all {
		if current, ok := latest[entry.EntityRef()]; !ok || entryLess(current, entry) {
			latest[entry.EntityRef()] = entry
		}
	}
	var refs []string
	for ref, entry := range latest {
		if l.open(entry) {
			refs = append(refs, ref)
		}
	}
	sort.Strings(refs)
	return refs
}

// AdminRemove deletes one entry. It sits outside the append-only contract and
// exists for operator corrections only. Ids are never reused.
func (l *Ledger[E]) AdminRemove(id int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	pos, ok := l.index[id]
	if !ok {
		return false
	}
	l.entries = append(l.entries[:pos], l.entries[pos+1:]...)
	delete(l.index, id)
	for i := pos; i < len(l.entries); i++ {
		l.index[l.entries[i].EntryID()] = i
	}
	return true
}

func (l *Ledger[E]) filter(keep func(E) bool) []E {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]E, 0, len(l.entries))
	for _, entry := range l.entries {
		if keep(entry) {
			out = append(out, entry.Clone())
		}
	}
	return out
}

// entryLess orders entries chronologically by date, time, then id.
func entryLess[E Entry[E]](a, b E) bool {
	if a.EntryDate() != b.EntryDate() {
		return a.EntryDate() < b.EntryDate()
	}
	if a.EntryTime() != b.EntryTime() {
		return a.EntryTime() < b.EntryTime()
	}
	return a.EntryID() < b.EntryID()
}

func sortDescending[E Entry[E]](entries []E) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entryLess(entries[j], entries[i])
	})
}
