package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"budgap/internal/cache"
	"budgap/internal/core"
	"budgap/internal/ledger"
)

const (
	categoryCacheSize = 256
	categoryCacheTTL  = 5 * time.Minute
)

// CategoryService is the category registry: shared immutable defaults plus
// the owner's own categories, with a read cache in front of the store.
type CategoryService struct {
	store ledger.CategoryStore
	cache *cache.LRUCache[[]core.Category]
}

func NewCategoryService(store ledger.CategoryStore) *CategoryService {
	return &CategoryService{
		store: store,
		cache: cache.NewLRUCache[[]core.Category](categoryCacheSize, categoryCacheTTL),
	}
}

// Purge drops expired cache entries. The daemon's cache janitor calls this
// on an interval.
func (s *CategoryService) Purge() int {
	return s.cache.Purge()
}

var _ cache.Purger = (*CategoryService)(nil)

func listKey(owner string, typ core.TransactionType) string {
	return owner + "|" + string(typ)
}

// invalidate drops every cached list for the owner.
func (s *CategoryService) invalidate(owner string) {
	for _, typ := range []core.TransactionType{"", core.Income, core.Expense} {
		s.cache.Delete(listKey(owner, typ))
	}
}

func (s *CategoryService) Create(ctx context.Context, c core.Category) (*core.Category, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if c.OwnerID == "" {
		return nil, core.Invalid("owner_id", "must not be empty")
	}
	if c.Color == "" {
		c.Color = core.UncategorizedColor
	}
	if c.Icon == "" {
		c.Icon = core.UncategorizedIcon
	}

	c.ID = uuid.NewString()
	c.IsDefault = false
	c.CreatedAt = time.Now().UTC()

	if err := s.store.InsertCategory(ctx, &c); err != nil {
		return nil, fmt.Errorf("insert category: %w", err)
	}

	s.invalidate(c.OwnerID)
	slog.InfoContext(ctx, "Category created", "id", c.ID, "name", c.Name)
	return &c, nil
}

func (s *CategoryService) Get(ctx context.Context, owner, id string) (*core.Category, error) {
	return s.store.GetCategory(ctx, owner, id)
}

// List returns the categories visible to the owner, optionally narrowed by
// type. Results are cached per (owner, type) until a write invalidates them.
func (s *CategoryService) List(ctx context.Context, owner string, typ core.TransactionType) ([]core.Category, error) {
	key := listKey(owner, typ)
	if cached, ok := s.cache.Get(key); ok {
		return cached, nil
	}

	cats, err := s.store.ListCategories(ctx, owner, typ)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	s.cache.Set(key, cats)
	return cats, nil
}

// Update only reaches owner-created categories; defaults are refused with
// ErrDefaultCategoryImmutable.
func (s *CategoryService) Update(ctx context.Context, owner, id string, patch ledger.CategoryPatch) (*core.Category, error) {
	if patch.Name != nil && *patch.Name == "" {
		return nil, core.Invalid("name", "must not be empty")
	}

	c, err := s.store.UpdateCategory(ctx, owner, id, patch)
	if err != nil {
		return nil, err
	}
	s.invalidate(owner)
	return c, nil
}

func (s *CategoryService) Delete(ctx context.Context, owner, id string) error {
	if err := s.store.DeleteCategory(ctx, owner, id); err != nil {
		return err
	}
	s.invalidate(owner)
	return nil
}
