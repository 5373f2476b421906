package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/foodxchange/backend-grocer/internal/compare"
)

// ErrStoreUnavailable indicates the catalog store dependency is not configured.
var ErrStoreUnavailable = errors.New("catalog: store unavailable")

// Product is a catalog entry as stored.
type Product struct {
	ID          int64
	Name        string
	Description string
	ImageURL    *string
	Category    string
	Unit        string
	Barcode     *string
}

// Retailer is a retailer directory entry as stored.
type Retailer struct {
	ID         int64
	Name       string
	LogoURL    *string
	WebsiteURL *string
}

// ListFilter narrows product listing.
type ListFilter struct {
	Query    string
	Category string
	Limit    int32
	Offset   int32
}

// Store provides Postgres accessors for products, retailers, and offers.
type Store interface {
	ListProducts(ctx context.Context, filter ListFilter) ([]Product, error)
	CountProducts(ctx context.Context, filter ListFilter) (int64, error)
	GetProduct(ctx context.Context, id int64) (Product, error)
	ListRetailers(ctx context.Context) ([]Retailer, error)
	GetRetailer(ctx context.Context, id int64) (Retailer, error)
	OffersForProducts(ctx context.Context, productIDs []int64) (map[int64][]compare.Offer, error)
	RetailersByID(ctx context.Context, ids []int64) (map[int64]compare.Retailer, error)
}

// NewStore constructs a Store backed by a pgx connection pool.
func NewStore(pool *pgxpool.Pool) Store {
	return &pgStore{pool: pool}
}

type pgStore struct {
	pool *pgxpool.Pool
}

const productColumns = `id, name, description, image_url, category, unit, barcode`

// ListProducts returns a filtered page of products ordered by name.
func (s *pgStore) ListProducts(ctx context.Context, filter ListFilter) ([]Product, error) {
	if s == nil || s.pool == nil {
		return nil, ErrStoreUnavailable
	}
	rows, err := s.pool.Query(ctx, `SELECT `+productColumns+`
FROM products
WHERE ($1 = '' OR name ILIKE '%' || $1 || '%')
  AND ($2 = '' OR category = $2)
ORDER BY name, id
LIMIT $3 OFFSET $4`, strings.TrimSpace(filter.Query), strings.TrimSpace(filter.Category), filter.Limit, filter.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.ImageURL, &p.Category, &p.Unit, &p.Barcode); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// CountProducts returns the total matching the filter, ignoring pagination.
func (s *pgStore) CountProducts(ctx context.Context, filter ListFilter) (int64, error) {
	if s == nil || s.pool == nil {
		return 0, ErrStoreUnavailable
	}
	var total int64
	err := s.pool.QueryRow(ctx, `SELECT count(*)
FROM products
WHERE ($1 = '' OR name ILIKE '%' || $1 || '%')
  AND ($2 = '' OR category = $2)`, strings.TrimSpace(filter.Query), strings.TrimSpace(filter.Category)).Scan(&total)
	return total, err
}

// GetProduct fetches one product by id.
func (s *pgStore) GetProduct(ctx context.Context, id int64) (Product, error) {
	if s == nil || s.pool == nil {
		return Product{}, ErrStoreUnavailable
	}
	var p Product
	err := s.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id).
		Scan(&p.ID, &p.Name, &p.Description, &p.ImageURL, &p.Category, &p.Unit, &p.Barcode)
	return p, err
}

// ListRetailers returns all retailers ordered by name.
func (s *pgStore) ListRetailers(ctx context.Context) ([]Retailer, error) {
	if s == nil || s.pool == nil {
		return nil, ErrStoreUnavailable
	}
	rows, err := s.pool.Query(ctx, `SELECT id, name, logo_url, website_url FROM retailers ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var retailers []Retailer
	for rows.Next() {
		var r Retailer
		if err := rows.Scan(&r.ID, &r.Name, &r.LogoURL, &r.WebsiteURL); err != nil {
			return nil, err
		}
		retailers = append(retailers, r)
	}
	return retailers, rows.Err()
}

// GetRetailer fetches one retailer by id.
func (s *pgStore) GetRetailer(ctx context.Context, id int64) (Retailer, error) {
	if s == nil || s.pool == nil {
		return Retailer{}, ErrStoreUnavailable
	}
	var r Retailer
	err := s.pool.QueryRow(ctx, `SELECT id, name, logo_url, website_url FROM retailers WHERE id = $1`, id).
		Scan(&r.ID, &r.Name, &r.LogoURL, &r.WebsiteURL)
	return r, err
}

// OffersForProducts loads every offer for the given products in one query,
// keyed by product id. Out-of-stock offers are included; stock filtering is
// the comparison engine's concern.
func (s *pgStore) OffersForProducts(ctx context.Context, productIDs []int64) (map[int64][]compare.Offer, error) {
	if s == nil || s.pool == nil {
		return nil, ErrStoreUnavailable
	}
	offers := make(map[int64][]compare.Offer, len(productIDs))
	if len(productIDs) == 0 {
		return offers, nil
	}
	rows, err := s.pool.Query(ctx, `SELECT product_id, retailer_id, price, currency, is_on_sale, sale_price, in_stock
FROM product_prices
WHERE product_id = ANY($1)
ORDER BY product_id, retailer_id`, productIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			offer compare.Offer
			sale  decimal.NullDecimal
		)
		if err := rows.Scan(&offer.ProductID, &offer.RetailerID, &offer.BasePrice, &offer.Currency, &offer.IsOnSale, &sale, &offer.InStock); err != nil {
			return nil, err
		}
		if sale.Valid {
			price := sale.Decimal
			offer.SalePrice = &price
		}
		offers[offer.ProductID] = append(offers[offer.ProductID], offer)
	}
	return offers, rows.Err()
}

// RetailersByID resolves display data for the given retailer ids.
func (s *pgStore) RetailersByID(ctx context.Context, ids []int64) (map[int64]compare.Retailer, error) {
	if s == nil || s.pool == nil {
		return nil, ErrStoreUnavailable
	}
	retailers := make(map[int64]compare.Retailer, len(ids))
	if len(ids) == 0 {
		return retailers, nil
	}
	rows, err := s.pool.Query(ctx, `SELECT id, name FROM retailers WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var r compare.Retailer
		if err := rows.Scan(&r.ID, &r.Name); err != nil {
			return nil, err
		}
		retailers[r.ID] = r
	}
	return retailers, rows.Err()
}

// IsNoRows reports whether err is the pgx no-rows sentinel.
func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
