package shoppinglist

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrStoreUnavailable indicates the list store dependency is not configured.
var ErrStoreUnavailable = errors.New("shoppinglist: store unavailable")

// List is a shopping list as stored.
type List struct {
	ID        int64
	UserID    string
	Name      string
	ItemCount int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Item is one line of a shopping list.
type Item struct {
	ID          int64
	ListID      int64
	ProductID   int64
	ProductName string
	Quantity    int32
	IsChecked   bool
	Notes       string
}

// ItemPatch carries partial item updates. Nil fields stay untouched.
type ItemPatch struct {
	Quantity  *int32
	IsChecked *bool
	Notes     *string
}

// Store provides Postgres accessors for shopping lists and their items.
type Store interface {
	CreateList(ctx context.Context, userID, name string) (List, error)
	ListLists(ctx context.Context, userID string) ([]List, error)
	GetList(ctx context.Context, id int64) (List, error)
	RenameList(ctx context.Context, id int64, name string) (List, error)
	DeleteList(ctx context.Context, id int64) (bool, error)
	ListItems(ctx context.Context, listID int64) ([]Item, error)
	UpsertItem(ctx context.Context, listID, productID int64, quantity int32, notes string) (Item, error)
	UpdateItem(ctx context.Context, listID, itemID int64, patch ItemPatch) (Item, error)
	DeleteItem(ctx context.Context, listID, itemID int64) (bool, error)
	ClearChecked(ctx context.Context, listID int64) (int64, error)
	UncheckAll(ctx context.Context, listID int64) (int64, error)
	ProductExists(ctx context.Context, productID int64) (bool, error)
}

// NewStore constructs a Store backed by a pgx connection pool.
func NewStore(pool *pgxpool.Pool) Store {
	return &pgStore{pool: pool}
}

type pgStore struct {
	pool *pgxpool.Pool
}

const listColumns = `l.id, l.user_id, l.name, l.created_at, l.updated_at`

// CreateList inserts a new list for the given owner.
func (s *pgStore) CreateList(ctx context.Context, userID, name string) (List, error) {
	if s == nil || s.pool == nil {
		return List{}, ErrStoreUnavailable
	}
	var l List
	err := s.pool.QueryRow(ctx, `INSERT INTO shopping_lists (user_id, name)
VALUES ($1, $2)
RETURNING id, user_id, name, created_at, updated_at`, userID, name).
		Scan(&l.ID, &l.UserID, &l.Name, &l.CreatedAt, &l.UpdatedAt)
	return l, err
}

// ListLists returns an owner's lists, most recently updated first.
func (s *pgStore) ListLists(ctx context.Context, userID string) ([]List, error) {
	if s == nil || s.pool == nil {
		return nil, ErrStoreUnavailable
	}
	rows, err := s.pool.Query(ctx, `SELECT `+listColumns+`, count(i.id)
FROM shopping_lists l
LEFT JOIN shopping_list_items i ON i.list_id = l.id
WHERE l.user_id = $1
GROUP BY l.id
ORDER BY l.updated_at DESC, l.id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var lists []List
	for rows.Next() {
		var l List
		if err := rows.Scan(&l.ID, &l.UserID, &l.Name, &l.CreatedAt, &l.UpdatedAt, &l.ItemCount); err != nil {
			return nil, err
		}
		lists = append(lists, l)
	}
	return lists, rows.Err()
}

// GetList fetches one list by id.
func (s *pgStore) GetList(ctx context.Context, id int64) (List, error) {
	if s == nil || s.pool == nil {
		return List{}, ErrStoreUnavailable
	}
	var l List
	err := s.pool.QueryRow(ctx, `SELECT `+listColumns+`, count(i.id)
FROM shopping_lists l
LEFT JOIN shopping_list_items i ON i.list_id = l.id
WHERE l.id = $1
GROUP BY l.id`, id).
		Scan(&l.ID, &l.UserID, &l.Name, &l.CreatedAt, &l.UpdatedAt, &l.ItemCount)
	return l, err
}

// RenameList updates the list name and bumps updated_at.
func (s *pgStore) RenameList(ctx context.Context, id int64, name string) (List, error) {
	if s == nil || s.pool == nil {
		return List{}, ErrStoreUnavailable
	}
	var l List
	err := s.pool.QueryRow(ctx, `UPDATE shopping_lists
SET name = $2, updated_at = now()
WHERE id = $1
RETURNING id, user_id, name, created_at, updated_at`, id, name).
		Scan(&l.ID, &l.UserID, &l.Name, &l.CreatedAt, &l.UpdatedAt)
	return l, err
}

// DeleteList removes a list and, via cascade, its items.
func (s *pgStore) DeleteList(ctx context.Context, id int64) (bool, error) {
	if s == nil || s.pool == nil {
		return false, ErrStoreUnavailable
	}
	tag, err := s.pool.Exec(ctx, `DELETE FROM shopping_lists WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

const itemColumns = `i.id, i.list_id, i.product_id, p.name, i.quantity, i.is_checked, i.notes`

// ListItems returns a list's items joined with product names.
func (s *pgStore) ListItems(ctx context.Context, listID int64) ([]Item, error) {
	if s == nil || s.pool == nil {
		return nil, ErrStoreUnavailable
	}
	rows, err := s.pool.Query(ctx, `SELECT `+itemColumns+`
FROM shopping_list_items i
JOIN products p ON p.id = i.product_id
WHERE i.list_id = $1
ORDER BY i.id`, listID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.ListID, &it.ProductID, &it.ProductName, &it.Quantity, &it.IsChecked, &it.Notes); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// UpsertItem adds a product to a list. Adding a product already on the list
// merges by summing quantities instead of creating a duplicate row.
func (s *pgStore) UpsertItem(ctx context.Context, listID, productID int64, quantity int32, notes string) (Item, error) {
	if s == nil || s.pool == nil {
		return Item{}, ErrStoreUnavailable
	}
	var it Item
	err := s.pool.QueryRow(ctx, `INSERT INTO shopping_list_items (list_id, product_id, quantity, notes)
VALUES ($1, $2, $3, $4)
ON CONFLICT (list_id, product_id) DO UPDATE
SET quantity = shopping_list_items.quantity + EXCLUDED.quantity,
    notes = CASE WHEN EXCLUDED.notes <> '' THEN EXCLUDED.notes ELSE shopping_list_items.notes END
RETURNING id, list_id, product_id,
    (SELECT name FROM products WHERE id = $2),
    quantity, is_checked, notes`, listID, productID, quantity, notes).
		Scan(&it.ID, &it.ListID, &it.ProductID, &it.ProductName, &it.Quantity, &it.IsChecked, &it.Notes)
	return it, err
}

// UpdateItem applies a partial update to one item.
func (s *pgStore) UpdateItem(ctx context.Context, listID, itemID int64, patch ItemPatch) (Item, error) {
	if s == nil || s.pool == nil {
		return Item{}, ErrStoreUnavailable
	}
	var it Item
	err := s.pool.QueryRow(ctx, `UPDATE shopping_list_items
SET quantity = COALESCE($3, quantity),
    is_checked = COALESCE($4, is_checked),
    notes = COALESCE($5, notes)
WHERE id = $2 AND list_id = $1
RETURNING id, list_id, product_id,
    (SELECT name FROM products WHERE id = shopping_list_items.product_id),
    quantity, is_checked, notes`, listID, itemID, patch.Quantity, patch.IsChecked, patch.Notes).
		Scan(&it.ID, &it.ListID, &it.ProductID, &it.ProductName, &it.Quantity, &it.IsChecked, &it.Notes)
	return it, err
}

// DeleteItem removes one item from a list.
func (s *pgStore) DeleteItem(ctx context.Context, listID, itemID int64) (bool, error) {
	if s == nil || s.pool == nil {
		return false, ErrStoreUnavailable
	}
	tag, err := s.pool.Exec(ctx, `DELETE FROM shopping_list_items WHERE id = $2 AND list_id = $1`, listID, itemID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ClearChecked deletes every checked item and returns how many went away.
func (s *pgStore) ClearChecked(ctx context.Context, listID int64) (int64, error) {
	if s == nil || s.pool == nil {
		return 0, ErrStoreUnavailable
	}
	tag, err := s.pool.Exec(ctx, `DELETE FROM shopping_list_items WHERE list_id = $1 AND is_checked`, listID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// UncheckAll resets the checked flag on every item of a list.
func (s *pgStore) UncheckAll(ctx context.Context, listID int64) (int64, error) {
	if s == nil || s.pool == nil {
		return 0, ErrStoreUnavailable
	}
	tag, err := s.pool.Exec(ctx, `UPDATE shopping_list_items SET is_checked = false WHERE list_id = $1 AND is_checked`, listID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// ProductExists reports whether a product id is present in the catalog.
func (s *pgStore) ProductExists(ctx context.Context, productID int64) (bool, error) {
	if s == nil || s.pool == nil {
		return false, ErrStoreUnavailable
	}
	var exists bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, productID).Scan(&exists)
	return exists, err
}

// IsNoRows reports whether err is the pgx no-rows sentinel.
func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
