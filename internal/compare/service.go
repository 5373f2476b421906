package compare

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/foodxchange/backend-grocer/internal/obs"
)

// ErrListNotFound is returned when the shopping list does not exist.
var ErrListNotFound = errors.New("shopping list not found")

// ListSource supplies the ordered items of a shopping list.
type ListSource interface {
	Items(ctx context.Context, listID int64) ([]ListItem, error)
}

// OfferSource supplies all offers for a set of products, keyed by product id.
// One call covers the whole list so the comparison reads each offer once.
type OfferSource interface {
	OffersForProducts(ctx context.Context, productIDs []int64) (map[int64][]Offer, error)
}

// RetailerSource resolves retailer display data for scorecard decoration.
type RetailerSource interface {
	RetailersByID(ctx context.Context, ids []int64) (map[int64]Retailer, error)
}

// Service runs one synchronous comparison per request over an immutable
// snapshot of the shopping list and current offers.
type Service struct {
	Lists     ListSource
	Offers    OfferSource
	Retailers RetailerSource
	Currency  string
	Log       zerolog.Logger
}

// RetailerDTO is the retailer reference embedded in a scorecard payload.
type RetailerDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ScorecardDTO is the JSON shape of one ranked retailer.
type ScorecardDTO struct {
	Retailer       RetailerDTO `json:"retailer"`
	AvailableItems int         `json:"available_items"`
	TotalItems     int         `json:"total_items"`
	Completeness   float64     `json:"completeness_percentage"`
	TotalCost      string      `json:"total_cost"`
	Currency       string      `json:"currency"`
	MissingItems   []int64     `json:"missing_items"`
	IsCheapest     bool        `json:"is_cheapest"`
	IsMostComplete bool        `json:"is_most_complete"`
}

// Result is the full comparison payload: the ranked scorecards plus the two
// convenience picks the mobile client renders as headline cards.
type Result struct {
	Comparisons      []ScorecardDTO `json:"comparison"`
	CheapestComplete *ScorecardDTO  `json:"cheapest_complete"`
	CheapestOverall  *ScorecardDTO  `json:"cheapest_overall"`
}

// Compare evaluates the shopping list against every retailer with at least
// one in-stock listed product and returns the ranked scorecards. The whole
// computation fails atomically on data-source errors; malformed offers are
// excluded, logged, and counted instead of aborting.
func (s *Service) Compare(ctx context.Context, listID int64) (Result, error) {
	start := time.Now()
	result, err := s.compare(ctx, listID)
	obs.ComparisonDuration.Observe(obs.DurationMillis(time.Since(start)))
	switch {
	case err == nil:
		obs.ComparisonsTotal.WithLabelValues("ok").Inc()
	case errors.Is(err, ErrListNotFound):
		obs.ComparisonsTotal.WithLabelValues("not_found").Inc()
	case errors.Is(err, ErrEmptyComparison):
		obs.ComparisonsTotal.WithLabelValues("empty").Inc()
	default:
		obs.ComparisonsTotal.WithLabelValues("error").Inc()
	}
	return result, err
}

func (s *Service) compare(ctx context.Context, listID int64) (Result, error) {
	items, err := s.Lists.Items(ctx, listID)
	if err != nil {
		if errors.Is(err, ErrListNotFound) {
			return Result{}, err
		}
		return Result{}, fmt.Errorf("load list items: %w", err)
	}

	snap := Snapshot{Items: items, Offers: map[int64][]Offer{}, Retailers: map[int64]Retailer{}}
	if len(items) > 0 {
		productIDs := make([]int64, 0, len(items))
		for _, item := range items {
			productIDs = append(productIDs, item.ProductID)
		}
		offers, err := s.Offers.OffersForProducts(ctx, productIDs)
		if err != nil {
			return Result{}, fmt.Errorf("load offers: %w", err)
		}
		snap.Offers = offers

		seen := make(map[int64]struct{})
		retailerIDs := make([]int64, 0)
		for _, productOffers := range offers {
			for _, offer := range productOffers {
				if _, ok := seen[offer.RetailerID]; ok {
					continue
				}
				seen[offer.RetailerID] = struct{}{}
				retailerIDs = append(retailerIDs, offer.RetailerID)
			}
		}
		if len(retailerIDs) > 0 {
			retailers, err := s.Retailers.RetailersByID(ctx, retailerIDs)
			if err != nil {
				return Result{}, fmt.Errorf("load retailers: %w", err)
			}
			snap.Retailers = retailers
		}
	}

	cards, excluded := Aggregate(snap)
	for _, invalid := range excluded {
		obs.InvalidOffersTotal.Inc()
		s.Log.Warn().
			Int64("list_id", listID).
			Int64("product_id", invalid.ProductID).
			Int64("retailer_id", invalid.RetailerID).
			Str("reason", invalid.Reason).
			Msg("offer excluded from comparison")
	}

	ranked, err := Rank(cards)
	if err != nil {
		return Result{}, err
	}
	obs.ComparisonCandidates.Observe(float64(len(ranked)))

	result := Result{Comparisons: make([]ScorecardDTO, 0, len(ranked))}
	for _, card := range ranked {
		result.Comparisons = append(result.Comparisons, s.toDTO(card))
	}
	for i, card := range ranked {
		if card.AvailableItems == card.TotalItems && card.AvailableItems > 0 {
			dto := result.Comparisons[i]
			result.CheapestComplete = &dto
			break
		}
	}
	overall := 0
	for i := 1; i < len(ranked); i++ {
		if ranked[i].TotalCost.LessThan(ranked[overall].TotalCost) {
			overall = i
		}
	}
	dto := result.Comparisons[overall]
	result.CheapestOverall = &dto
	return result, nil
}

func (s *Service) toDTO(card Scorecard) ScorecardDTO {
	return ScorecardDTO{
		Retailer:       RetailerDTO{ID: card.Retailer.ID, Name: card.Retailer.Name},
		AvailableItems: card.AvailableItems,
		TotalItems:     card.TotalItems,
		Completeness:   card.Completeness,
		TotalCost:      card.TotalCost.StringFixed(2),
		Currency:       s.Currency,
		MissingItems:   card.MissingItems,
		IsCheapest:     card.IsCheapest,
		IsMostComplete: card.IsMostComplete,
	}
}
