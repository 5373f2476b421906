package catalog

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/foodxchange/backend-grocer/internal/common"
	"github.com/foodxchange/backend-grocer/internal/compare"
)

// Service orchestrates catalog queries, DTO assembly, and caching. It also
// serves as the offer and retailer source for the comparison service.
type Service struct {
	store       Store
	listCache   *Cache
	offerCache  *Cache
	defaultPage int
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Store      Store
	ListCache  *Cache
	OfferCache *Cache
}

// NewService constructs a Service instance.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Store == nil {
		return nil, errors.New("catalog: store is required")
	}
	return &Service{
		store:       cfg.Store,
		listCache:   cfg.ListCache,
		offerCache:  cfg.OfferCache,
		defaultPage: 1,
	}, nil
}

// ProductDTO is the public product payload.
type ProductDTO struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	ImageURL    *string `json:"image_url,omitempty"`
	Category    string  `json:"category"`
	Unit        string  `json:"unit"`
	Barcode     *string `json:"barcode,omitempty"`
}

// RetailerDTO is the public retailer payload.
type RetailerDTO struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	LogoURL    *string `json:"logo_url,omitempty"`
	WebsiteURL *string `json:"website_url,omitempty"`
}

// OfferDTO is one retailer's current listing of a product.
type OfferDTO struct {
	RetailerID     int64   `json:"retailer_id"`
	RetailerName   string  `json:"retailer_name"`
	Price          string  `json:"price"`
	Currency       string  `json:"currency"`
	IsOnSale       bool    `json:"is_on_sale"`
	SalePrice      *string `json:"sale_price,omitempty"`
	EffectivePrice string  `json:"effective_price"`
	InStock        bool    `json:"in_stock"`
}

// ProductDetailDTO aggregates a product with its offers across retailers.
type ProductDetailDTO struct {
	ProductDTO
	Offers []OfferDTO `json:"offers"`
}

// ProductListResult contains list data and pagination metadata.
type ProductListResult struct {
	Items []ProductDTO
	Total int64
	Page  int
	Limit int
}

// ListProducts returns a filtered product page. The unfiltered first page is
// cached since it backs the mobile home screen.
func (s *Service) ListProducts(ctx context.Context, query, category string, page, limit int) (ProductListResult, error) {
	key, cacheable := s.productListCacheKey(query, category, page, limit)
	if cacheable {
		var cached cachedProductList
		if ok, err := s.listCache.GetJSON(ctx, key, &cached); err == nil && ok {
			return ProductListResult{Items: cached.Items, Total: cached.Total, Page: page, Limit: limit}, nil
		}
	}
	filter := ListFilter{
		Query:    query,
		Category: category,
		Limit:    int32(limit),
		Offset:   int32((page - 1) * limit),
	}
	total, err := s.store.CountProducts(ctx, filter)
	if err != nil {
		return ProductListResult{}, fmt.Errorf("count products: %w", err)
	}
	rows, err := s.store.ListProducts(ctx, filter)
	if err != nil {
		return ProductListResult{}, fmt.Errorf("list products: %w", err)
	}
	items := make([]ProductDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, toProductDTO(row))
	}
	if cacheable {
		_ = s.listCache.SetJSON(ctx, key, cachedProductList{Items: items, Total: total})
	}
	return ProductListResult{Items: items, Total: total, Page: page, Limit: limit}, nil
}

// GetProductDetail returns a product with its offers across all retailers.
func (s *Service) GetProductDetail(ctx context.Context, id int64) (ProductDetailDTO, error) {
	product, err := s.store.GetProduct(ctx, id)
	if err != nil {
		if IsNoRows(err) {
			return ProductDetailDTO{}, common.NotFound("product not found", err)
		}
		return ProductDetailDTO{}, fmt.Errorf("get product: %w", err)
	}
	offers, err := s.offersView(ctx, id)
	if err != nil {
		return ProductDetailDTO{}, err
	}
	return ProductDetailDTO{ProductDTO: toProductDTO(product), Offers: offers}, nil
}

// ProductOffers returns the display view of a product's offers.
func (s *Service) ProductOffers(ctx context.Context, productID int64) ([]OfferDTO, error) {
	if _, err := s.store.GetProduct(ctx, productID); err != nil {
		if IsNoRows(err) {
			return nil, common.NotFound("product not found", err)
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return s.offersView(ctx, productID)
}

func (s *Service) offersView(ctx context.Context, productID int64) ([]OfferDTO, error) {
	byProduct, err := s.OffersForProducts(ctx, []int64{productID})
	if err != nil {
		return nil, err
	}
	offers := byProduct[productID]
	retailerIDs := make([]int64, 0, len(offers))
	for _, offer := range offers {
		retailerIDs = append(retailerIDs, offer.RetailerID)
	}
	names, err := s.RetailersByID(ctx, retailerIDs)
	if err != nil {
		return nil, err
	}
	result := make([]OfferDTO, 0, len(offers))
	for _, offer := range offers {
		result = append(result, toOfferDTO(offer, names[offer.RetailerID].Name))
	}
	return result, nil
}

// ListRetailers returns all retailers ordered by name.
func (s *Service) ListRetailers(ctx context.Context) ([]RetailerDTO, error) {
	key := "catalog:retailers"
	var cached []RetailerDTO
	if ok, err := s.listCache.GetJSON(ctx, key, &cached); err == nil && ok {
		return cached, nil
	}
	rows, err := s.store.ListRetailers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list retailers: %w", err)
	}
	result := make([]RetailerDTO, 0, len(rows))
	for _, row := range rows {
		result = append(result, toRetailerDTO(row))
	}
	_ = s.listCache.SetJSON(ctx, key, result)
	return result, nil
}

// GetRetailer returns one retailer by id.
func (s *Service) GetRetailer(ctx context.Context, id int64) (RetailerDTO, error) {
	row, err := s.store.GetRetailer(ctx, id)
	if err != nil {
		if IsNoRows(err) {
			return RetailerDTO{}, common.NotFound("retailer not found", err)
		}
		return RetailerDTO{}, fmt.Errorf("get retailer: %w", err)
	}
	return toRetailerDTO(row), nil
}

// OffersForProducts implements compare.OfferSource with per-product caching.
// Prices change often, so the offer cache runs on its own short TTL.
func (s *Service) OffersForProducts(ctx context.Context, productIDs []int64) (map[int64][]compare.Offer, error) {
	result := make(map[int64][]compare.Offer, len(productIDs))
	missing := make([]int64, 0, len(productIDs))
	for _, id := range productIDs {
		var cached []compare.Offer
		if ok, err := s.offerCache.GetJSON(ctx, offerCacheKey(id), &cached); err == nil && ok {
			result[id] = cached
			continue
		}
		missing = append(missing, id)
	}
	if len(missing) == 0 {
		return result, nil
	}
	fetched, err := s.store.OffersForProducts(ctx, missing)
	if err != nil {
		return nil, fmt.Errorf("load offers: %w", err)
	}
	for _, id := range missing {
		offers := fetched[id]
		if offers == nil {
			offers = []compare.Offer{}
		}
		result[id] = offers
		_ = s.offerCache.SetJSON(ctx, offerCacheKey(id), offers)
	}
	return result, nil
}

// RetailersByID implements compare.RetailerSource.
func (s *Service) RetailersByID(ctx context.Context, ids []int64) (map[int64]compare.Retailer, error) {
	retailers, err := s.store.RetailersByID(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load retailers: %w", err)
	}
	return retailers, nil
}

type cachedProductList struct {
	Items []ProductDTO `json:"items"`
	Total int64        `json:"total"`
}

func (s *Service) productListCacheKey(query, category string, page, limit int) (string, bool) {
	if query != "" || category != "" || page != s.defaultPage {
		return "", false
	}
	return "catalog:products:list:" + strconv.Itoa(limit), s.listCache != nil
}

func offerCacheKey(productID int64) string {
	return "catalog:offers:" + strconv.FormatInt(productID, 10)
}

func toProductDTO(p Product) ProductDTO {
	return ProductDTO{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		ImageURL:    p.ImageURL,
		Category:    p.Category,
		Unit:        p.Unit,
		Barcode:     p.Barcode,
	}
}

func toRetailerDTO(r Retailer) RetailerDTO {
	return RetailerDTO{ID: r.ID, Name: r.Name, LogoURL: r.LogoURL, WebsiteURL: r.WebsiteURL}
}

func toOfferDTO(offer compare.Offer, retailerName string) OfferDTO {
	dto := OfferDTO{
		RetailerID:   offer.RetailerID,
		RetailerName: retailerName,
		Price:        offer.BasePrice.StringFixed(2),
		Currency:     offer.Currency,
		IsOnSale:     offer.IsOnSale,
		InStock:      offer.InStock,
	}
	if offer.SalePrice != nil {
		sale := offer.SalePrice.StringFixed(2)
		dto.SalePrice = &sale
	}
	effective, err := compare.EffectivePrice(offer)
	if err != nil {
		effective = offer.BasePrice
	}
	dto.EffectivePrice = effective.StringFixed(2)
	return dto
}
