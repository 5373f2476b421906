package catalog_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/foodxchange/backend-grocer/internal/catalog"
	"github.com/foodxchange/backend-grocer/internal/compare"
)

type productsResponse struct {
	Data       []catalog.ProductDTO `json:"data"`
	Pagination struct {
		Page       int `json:"page"`
		PerPage    int `json:"per_page"`
		TotalItems int `json:"total_items"`
	} `json:"pagination"`
}

type productDetailResponse struct {
	Data catalog.ProductDetailDTO `json:"data"`
}

type retailersResponse struct {
	Data []catalog.RetailerDTO `json:"data"`
}

type offersResponse struct {
	Data []catalog.OfferDTO `json:"data"`
}

func TestCatalogHandlers(t *testing.T) {
	store := newFakeStore()
	svc, err := catalog.NewService(catalog.ServiceConfig{Store: store})
	require.NoError(t, err)

	handler := &catalog.Handler{Svc: svc, DefaultPageSize: 20, MaxPageSize: 100}

	t.Run("retailers list", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/retailers", nil)
		rec := httptest.NewRecorder()
		handler.ListRetailers(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		var resp retailersResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Data, 2)
		require.Equal(t, "BudgetMart", resp.Data[0].Name)
	})

	t.Run("products list with pagination", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/products?limit=1", nil)
		rec := httptest.NewRecorder()
		handler.ListProducts(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "2", rec.Header().Get("X-Total-Count"))

		var resp productsResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Data, 1)
		require.Equal(t, "Milk", resp.Data[0].Name)
		require.Equal(t, 1, resp.Pagination.Page)
		require.Equal(t, 1, resp.Pagination.PerPage)
		require.Equal(t, 2, resp.Pagination.TotalItems)
	})

	t.Run("products search", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/products?q=bread", nil)
		rec := httptest.NewRecorder()
		handler.ListProducts(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		var resp productsResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Data, 1)
		require.Equal(t, "Bread", resp.Data[0].Name)
	})

	t.Run("product detail with offers", func(t *testing.T) {
		rec := doGet(t, handler.GetProduct, "/api/v1/products/1", "1")
		require.Equal(t, http.StatusOK, rec.Code)
		var resp productDetailResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(t, "Milk", resp.Data.Name)
		require.Len(t, resp.Data.Offers, 2)
		require.Equal(t, "1.20", resp.Data.Offers[0].Price)
		require.Equal(t, "0.99", resp.Data.Offers[0].EffectivePrice)
		require.Equal(t, "BudgetMart", resp.Data.Offers[0].RetailerName)
	})

	t.Run("product not found", func(t *testing.T) {
		rec := doGet(t, handler.GetProduct, "/api/v1/products/99", "99")
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		rec := doGet(t, handler.GetProduct, "/api/v1/products/abc", "abc")
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("product offers", func(t *testing.T) {
		rec := doGet(t, handler.GetProductOffers, "/api/v1/products/2/offers", "2")
		require.Equal(t, http.StatusOK, rec.Code)
		var resp offersResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Data, 1)
		require.Equal(t, "FreshFoods", resp.Data[0].RetailerName)
		require.Equal(t, "2.10", resp.Data[0].EffectivePrice)
	})

	t.Run("retailer not found", func(t *testing.T) {
		rec := doGet(t, handler.GetRetailer, "/api/v1/retailers/99", "99")
		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestOfferCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := newFakeStore()
	svc, err := catalog.NewService(catalog.ServiceConfig{
		Store:      store,
		OfferCache: catalog.NewCache(client, time.Minute),
	})
	require.NoError(t, err)

	ctx := context.Background()
	first, err := svc.OffersForProducts(ctx, []int64{1, 2})
	require.NoError(t, err)
	require.Len(t, first[1], 2)
	require.Equal(t, 1, store.offerQueries)

	second, err := svc.OffersForProducts(ctx, []int64{1, 2})
	require.NoError(t, err)
	require.Equal(t, 1, store.offerQueries)
	require.Equal(t, first[1][0].BasePrice.String(), second[1][0].BasePrice.String())

	mr.FastForward(2 * time.Minute)
	_, err = svc.OffersForProducts(ctx, []int64{1})
	require.NoError(t, err)
	require.Equal(t, 2, store.offerQueries)
}

func doGet(t *testing.T, fn http.HandlerFunc, target, id string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("id", id)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
	rec := httptest.NewRecorder()
	fn(rec, req)
	return rec
}

type fakeStore struct {
	products  []catalog.Product
	retailers []catalog.Retailer
	offers    map[int64][]compare.Offer

	offerQueries int
}

func newFakeStore() *fakeStore {
	sale := decimal.RequireFromString("0.99")
	return &fakeStore{
		products: []catalog.Product{
			{ID: 1, Name: "Milk", Category: "dairy", Unit: "litre"},
			{ID: 2, Name: "Bread", Category: "bakery", Unit: "loaf"},
		},
		retailers: []catalog.Retailer{
			{ID: 10, Name: "BudgetMart"},
			{ID: 11, Name: "FreshFoods"},
		},
		offers: map[int64][]compare.Offer{
			1: {
				{ProductID: 1, RetailerID: 10, BasePrice: decimal.RequireFromString("1.20"), Currency: "GBP", IsOnSale: true, SalePrice: &sale, InStock: true},
				{ProductID: 1, RetailerID: 11, BasePrice: decimal.RequireFromString("1.35"), Currency: "GBP", InStock: true},
			},
			2: {
				{ProductID: 2, RetailerID: 11, BasePrice: decimal.RequireFromString("2.10"), Currency: "GBP", InStock: true},
			},
		},
	}
}

func (f *fakeStore) matches(p catalog.Product, filter catalog.ListFilter) bool {
	if filter.Category != "" && p.Category != filter.Category {
		return false
	}
	if filter.Query != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(filter.Query)) {
		return false
	}
	return true
}

func (f *fakeStore) ListProducts(_ context.Context, filter catalog.ListFilter) ([]catalog.Product, error) {
	var out []catalog.Product
	for _, p := range f.products {
		if f.matches(p, filter) {
			out = append(out, p)
		}
	}
	start := int(filter.Offset)
	if start > len(out) {
		start = len(out)
	}
	end := start + int(filter.Limit)
	if filter.Limit <= 0 || end > len(out) {
		end = len(out)
	}
	return out[start:end], nil
}

func (f *fakeStore) CountProducts(_ context.Context, filter catalog.ListFilter) (int64, error) {
	var n int64
	for _, p := range f.products {
		if f.matches(p, filter) {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) GetProduct(_ context.Context, id int64) (catalog.Product, error) {
	for _, p := range f.products {
		if p.ID == id {
			return p, nil
		}
	}
	return catalog.Product{}, pgx.ErrNoRows
}

func (f *fakeStore) ListRetailers(_ context.Context) ([]catalog.Retailer, error) {
	return f.retailers, nil
}

func (f *fakeStore) GetRetailer(_ context.Context, id int64) (catalog.Retailer, error) {
	for _, r := range f.retailers {
		if r.ID == id {
			return r, nil
		}
	}
	return catalog.Retailer{}, pgx.ErrNoRows
}

func (f *fakeStore) OffersForProducts(_ context.Context, productIDs []int64) (map[int64][]compare.Offer, error) {
	f.offerQueries++
	out := make(map[int64][]compare.Offer, len(productIDs))
	for _, id := range productIDs {
		if offers, ok := f.offers[id]; ok {
			out[id] = offers
		}
	}
	return out, nil
}

func (f *fakeStore) RetailersByID(_ context.Context, ids []int64) (map[int64]compare.Retailer, error) {
	out := make(map[int64]compare.Retailer, len(ids))
	for _, id := range ids {
		for _, r := range f.retailers {
			if r.ID == id {
				out[id] = compare.Retailer{ID: r.ID, Name: r.Name}
			}
		}
	}
	return out, nil
}
