package compare

import (
	"errors"
	"math"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrEmptyComparison is returned when no retailer stocks any listed item,
// including the degenerate empty-list case.
var ErrEmptyComparison = errors.New("no retailer stocks any listed item")

// ListItem is one (product, quantity) entry of a shopping list.
type ListItem struct {
	ProductID int64
	Quantity  int32
}

// Retailer is the display identity attached to a scorecard.
type Retailer struct {
	ID   int64
	Name string
}

// Snapshot is the immutable per-request view of everything a comparison
// reads: the list items in order, the offers for each listed product, and the
// retailer directory entries for decoration. It is built once per call so
// repeated lookups never go back to the data source.
type Snapshot struct {
	Items     []ListItem
	Offers    map[int64][]Offer
	Retailers map[int64]Retailer
}

// Scorecard is the computed per-retailer summary of one comparison run.
type Scorecard struct {
	Retailer       Retailer
	AvailableItems int
	TotalItems     int
	Completeness   float64
	TotalCost      decimal.Decimal
	MissingItems   []int64
	IsCheapest     bool
	IsMostComplete bool
}

// Aggregate tallies one candidate scorecard per retailer that has at least
// one in-stock, valid offer for a listed product. Offers with inconsistent
// sale pricing are excluded and reported; out-of-stock or missing offers
// simply leave the item out of that retailer's basket. Retailers are visited
// in id order so the pre-ranking output is deterministic.
func Aggregate(snap Snapshot) ([]Scorecard, []*InvalidOfferError) {
	byRetailer := make(map[int64]map[int64]Offer)
	var excluded []*InvalidOfferError
	for _, offers := range snap.Offers {
		for _, offer := range offers {
			m, ok := byRetailer[offer.RetailerID]
			if !ok {
				m = make(map[int64]Offer)
				byRetailer[offer.RetailerID] = m
			}
			m[offer.ProductID] = offer
		}
	}

	retailerIDs := make([]int64, 0, len(byRetailer))
	for id := range byRetailer {
		retailerIDs = append(retailerIDs, id)
	}
	sort.Slice(retailerIDs, func(i, j int) bool { return retailerIDs[i] < retailerIDs[j] })

	cards := make([]Scorecard, 0, len(retailerIDs))
	for _, retailerID := range retailerIDs {
		offers := byRetailer[retailerID]
		card := Scorecard{
			Retailer:     snap.Retailers[retailerID],
			TotalItems:   len(snap.Items),
			TotalCost:    decimal.Zero,
			MissingItems: []int64{},
		}
		if card.Retailer.ID == 0 {
			card.Retailer.ID = retailerID
		}
		for _, item := range snap.Items {
			offer, ok := offers[item.ProductID]
			if !ok || !offer.InStock {
				card.MissingItems = append(card.MissingItems, item.ProductID)
				continue
			}
			price, err := EffectivePrice(offer)
			if err != nil {
				var invalid *InvalidOfferError
				if errors.As(err, &invalid) {
					excluded = append(excluded, invalid)
				}
				card.MissingItems = append(card.MissingItems, item.ProductID)
				continue
			}
			card.AvailableItems++
			card.TotalCost = card.TotalCost.Add(price.Mul(decimal.NewFromInt32(item.Quantity)))
		}
		if card.AvailableItems == 0 {
			continue
		}
		cards = append(cards, card)
	}
	return cards, excluded
}

// Rank orders scorecards by completeness (desc), then total cost (asc), then
// retailer name case-insensitively, then retailer id, and sets the best
// flags. Cheapest is evaluated within the most-complete tier only.
func Rank(cards []Scorecard) ([]Scorecard, error) {
	if len(cards) == 0 {
		return nil, ErrEmptyComparison
	}
	for i := range cards {
		cards[i].Completeness = completeness(cards[i].AvailableItems, cards[i].TotalItems)
		cards[i].IsCheapest = false
		cards[i].IsMostComplete = false
	}
	sort.SliceStable(cards, func(i, j int) bool {
		a, b := cards[i], cards[j]
		if a.Completeness != b.Completeness {
			return a.Completeness > b.Completeness
		}
		if cmp := a.TotalCost.Cmp(b.TotalCost); cmp != 0 {
			return cmp < 0
		}
		an, bn := strings.ToLower(a.Retailer.Name), strings.ToLower(b.Retailer.Name)
		if an != bn {
			return an < bn
		}
		return a.Retailer.ID < b.Retailer.ID
	})

	maxCompleteness := cards[0].Completeness
	minCost := cards[0].TotalCost
	for i := range cards {
		if cards[i].Completeness == maxCompleteness {
			cards[i].IsMostComplete = true
		}
	}
	for i := range cards {
		if cards[i].IsMostComplete && cards[i].TotalCost.Equal(minCost) {
			cards[i].IsCheapest = true
		}
	}
	return cards, nil
}

// completeness is the fulfillable share of the list as a percentage with one
// decimal place, rounded half away from zero. An empty list yields 0 rather
// than dividing by zero.
func completeness(available, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(1000*float64(available)/float64(total)) / 10
}
