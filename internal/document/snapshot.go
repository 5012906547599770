package document

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"budgap/internal/core"
)

// snapshot is the on-disk JSON shape of the whole store.
type snapshot struct {
	Transactions  []core.Transaction  `json:"transactions"`
	Budgets       []core.Budget       `json:"budgets"`
	Goals         []core.Goal         `json:"goals"`
	Categories    []core.Category     `json:"categories"`
	Notifications []core.Notification `json:"notifications"`
}

// SaveSnapshot writes the full store state to path. The write goes through
// a temp file and rename so a crash never leaves a truncated snapshot.
func (s *Store) SaveSnapshot(path string) error {
	s.mu.Lock()
	snap := snapshot{
		Transactions:  make([]core.Transaction, 0, len(s.transactions)),
		Budgets:       make([]core.Budget, 0, len(s.budgets)),
		Goals:         make([]core.Goal, 0, len(s.goals)),
		Categories:    make([]core.Category, 0, len(s.categories)),
		Notifications: make([]core.Notification, 0, len(s.notifications)),
	}
	for _, t := range s.transactions {
		t.Tags = cloneTags(t.Tags)
		snap.Transactions = append(snap.Transactions, t)
	}
	for _, b := range s.budgets {
		snap.Budgets = append(snap.Budgets, b)
	}
	for _, g := range s.goals {
		snap.Goals = append(snap.Goals, g)
	}
	for _, c := range s.categories {
		snap.Categories = append(snap.Categories, c)
	}
	for _, n := range s.notifications {
		snap.Notifications = append(snap.Notifications, n)
	}
	s.mu.Unlock()

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create snapshot directory: %w", err)
		}
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot replaces the store state with the snapshot at path. A
// missing file is not an error: the store keeps its seeded defaults.
func (s *Store) LoadSnapshot(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.transactions = make(map[string]core.Transaction, len(snap.Transactions))
	s.budgets = make(map[string]core.Budget, len(snap.Budgets))
	s.goals = make(map[string]core.Goal, len(snap.Goals))
	s.categories = make(map[string]core.Category, len(snap.Categories))
	s.notifications = make(map[string]core.Notification, len(snap.Notifications))

	for _, t := range snap.Transactions {
		s.transactions[t.ID] = t
	}
	for _, b := range snap.Budgets {
		s.budgets[b.ID] = b
	}
	for _, g := range snap.Goals {
		s.goals[g.ID] = g
	}
	for _, c := range snap.Categories {
		s.categories[c.ID] = c
	}
	for _, n := range snap.Notifications {
		s.notifications[n.ID] = n
	}

	// Old snapshots may predate some shared defaults; re-seed the missing
	// ones so both backends expose the same registry.
	for _, c := range defaultCategories() {
		if _, ok := s.categories[c.ID]; !ok {
			s.categories[c.ID] = c
		}
	}
	return nil
}
