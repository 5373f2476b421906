package compare

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func offer(productID, retailerID int64, price string) Offer {
	return Offer{ProductID: productID, RetailerID: retailerID, BasePrice: dec(price), Currency: "GBP", InStock: true}
}

// Milk=1, Bread=2, Cheese=3. BudgetMart=10, FreshFoods=11, SuperStore=12.
func fullBasketSnapshot() Snapshot {
	return Snapshot{
		Items: []ListItem{{ProductID: 1, Quantity: 1}, {ProductID: 2, Quantity: 1}, {ProductID: 3, Quantity: 1}},
		Offers: map[int64][]Offer{
			1: {offer(1, 10, "1.50"), offer(1, 11, "3.00"), offer(1, 12, "2.20")},
			2: {offer(2, 10, "3.00"), offer(2, 11, "4.00"), offer(2, 12, "3.00")},
			3: {offer(3, 10, "4.00"), offer(3, 12, "4.00")},
		},
		Retailers: map[int64]Retailer{
			10: {ID: 10, Name: "BudgetMart"},
			11: {ID: 11, Name: "FreshFoods"},
			12: {ID: 12, Name: "SuperStore"},
		},
	}
}

func TestRankOrdersByCompletenessThenCost(t *testing.T) {
	cards, excluded := Aggregate(fullBasketSnapshot())
	if len(excluded) != 0 {
		t.Fatalf("expected no exclusions, got %d", len(excluded))
	}
	ranked, err := Rank(cards)
	if err != nil {
		t.Fatalf("rank: %v", err)
	}
	if len(ranked) != 3 {
		t.Fatalf("expected 3 scorecards, got %d", len(ranked))
	}

	if ranked[0].Retailer.Name != "BudgetMart" || ranked[0].TotalCost.String() != "8.5" {
		t.Fatalf("expected BudgetMart at 8.50 first, got %s at %s", ranked[0].Retailer.Name, ranked[0].TotalCost)
	}
	if !ranked[0].IsMostComplete || !ranked[0].IsCheapest {
		t.Fatalf("expected BudgetMart flagged most complete and cheapest")
	}
	if ranked[1].Retailer.Name != "SuperStore" || ranked[1].TotalCost.String() != "9.2" {
		t.Fatalf("expected SuperStore at 9.20 second, got %s at %s", ranked[1].Retailer.Name, ranked[1].TotalCost)
	}
	if !ranked[1].IsMostComplete || ranked[1].IsCheapest {
		t.Fatalf("expected SuperStore most complete but not cheapest")
	}
	if ranked[2].Retailer.Name != "FreshFoods" || ranked[2].TotalCost.String() != "7" {
		t.Fatalf("expected FreshFoods at 7.00 last, got %s at %s", ranked[2].Retailer.Name, ranked[2].TotalCost)
	}
	if ranked[2].IsMostComplete || ranked[2].IsCheapest {
		t.Fatalf("incomplete retailer must carry no best flags even when cheaper")
	}
	if ranked[2].Completeness != 66.7 {
		t.Fatalf("expected completeness 66.7, got %v", ranked[2].Completeness)
	}
	if len(ranked[2].MissingItems) != 1 || ranked[2].MissingItems[0] != 3 {
		t.Fatalf("expected FreshFoods missing product 3, got %v", ranked[2].MissingItems)
	}
}

func TestInvalidOfferExcludesRetailer(t *testing.T) {
	bad := offer(1, 20, "2.00")
	bad.IsOnSale = true // no sale price set
	snap := Snapshot{
		Items: []ListItem{{ProductID: 1, Quantity: 1}},
		Offers: map[int64][]Offer{
			1: {bad, offer(1, 21, "2.50")},
		},
		Retailers: map[int64]Retailer{20: {ID: 20, Name: "GlitchMart"}, 21: {ID: 21, Name: "SteadyShop"}},
	}
	cards, excluded := Aggregate(snap)
	if len(excluded) != 1 {
		t.Fatalf("expected 1 excluded offer, got %d", len(excluded))
	}
	if excluded[0].RetailerID != 20 || excluded[0].Reason != "on sale without a sale price" {
		t.Fatalf("unexpected exclusion: %v", excluded[0])
	}
	ranked, err := Rank(cards)
	if err != nil {
		t.Fatalf("rank: %v", err)
	}
	if len(ranked) != 1 || ranked[0].Retailer.ID != 21 {
		t.Fatalf("retailer whose only offer is invalid must not appear, got %v", ranked)
	}
}

func TestSaleExceedingBasePriceExcluded(t *testing.T) {
	high := dec("3.00")
	bad := Offer{ProductID: 1, RetailerID: 20, BasePrice: dec("2.00"), IsOnSale: true, SalePrice: &high, InStock: true}
	if _, err := EffectivePrice(bad); err == nil {
		t.Fatal("expected error for sale price above base price")
	}
}

func TestSalePriceApplied(t *testing.T) {
	sale := dec("0.99")
	o := Offer{ProductID: 1, RetailerID: 10, BasePrice: dec("1.50"), IsOnSale: true, SalePrice: &sale, InStock: true}
	price, err := EffectivePrice(o)
	if err != nil {
		t.Fatalf("effective price: %v", err)
	}
	if !price.Equal(sale) {
		t.Fatalf("expected sale price 0.99, got %s", price)
	}
	o.IsOnSale = false
	price, err = EffectivePrice(o)
	if err != nil {
		t.Fatalf("effective price: %v", err)
	}
	if !price.Equal(o.BasePrice) {
		t.Fatalf("expected base price when not on sale, got %s", price)
	}
}

func TestOutOfStockCountsAsMissing(t *testing.T) {
	oos := offer(1, 10, "1.00")
	oos.InStock = false
	snap := Snapshot{
		Items: []ListItem{{ProductID: 1, Quantity: 1}, {ProductID: 2, Quantity: 1}},
		Offers: map[int64][]Offer{
			1: {oos},
			2: {offer(2, 10, "2.00")},
		},
		Retailers: map[int64]Retailer{10: {ID: 10, Name: "BudgetMart"}},
	}
	cards, _ := Aggregate(snap)
	if len(cards) != 1 {
		t.Fatalf("expected 1 card, got %d", len(cards))
	}
	if cards[0].AvailableItems != 1 || len(cards[0].MissingItems) != 1 || cards[0].MissingItems[0] != 1 {
		t.Fatalf("expected product 1 counted missing, got %+v", cards[0])
	}
}

func TestEmptyListYieldsEmptyComparison(t *testing.T) {
	cards, excluded := Aggregate(Snapshot{})
	if len(cards) != 0 || len(excluded) != 0 {
		t.Fatalf("expected nothing from empty snapshot, got %d cards", len(cards))
	}
	if _, err := Rank(cards); err != ErrEmptyComparison {
		t.Fatalf("expected ErrEmptyComparison, got %v", err)
	}
}

func TestTieBothFlaggedOrderedByName(t *testing.T) {
	snap := Snapshot{
		Items: []ListItem{{ProductID: 1, Quantity: 2}},
		Offers: map[int64][]Offer{
			1: {offer(1, 31, "5.00"), offer(1, 30, "5.00")},
		},
		Retailers: map[int64]Retailer{30: {ID: 30, Name: "Zebra Foods"}, 31: {ID: 31, Name: "Apple Grocers"}},
	}
	cards, _ := Aggregate(snap)
	ranked, err := Rank(cards)
	if err != nil {
		t.Fatalf("rank: %v", err)
	}
	if ranked[0].Retailer.Name != "Apple Grocers" || ranked[1].Retailer.Name != "Zebra Foods" {
		t.Fatalf("tie must break on name, got %s then %s", ranked[0].Retailer.Name, ranked[1].Retailer.Name)
	}
	for _, card := range ranked {
		if !card.IsMostComplete || !card.IsCheapest {
			t.Fatalf("both tied retailers must carry both flags: %+v", card)
		}
		if card.TotalCost.String() != "10" {
			t.Fatalf("expected quantity-weighted total 10.00, got %s", card.TotalCost)
		}
	}
}

func TestRankIsDeterministic(t *testing.T) {
	reference, err := Rank(mustAggregate(fullBasketSnapshot()))
	if err != nil {
		t.Fatalf("rank: %v", err)
	}
	for i := 0; i < 20; i++ {
		ranked, err := Rank(mustAggregate(fullBasketSnapshot()))
		if err != nil {
			t.Fatalf("rank: %v", err)
		}
		for j := range ranked {
			if ranked[j].Retailer.ID != reference[j].Retailer.ID {
				t.Fatalf("run %d position %d: got retailer %d, want %d", i, j, ranked[j].Retailer.ID, reference[j].Retailer.ID)
			}
		}
	}
}

func TestCompletenessRounding(t *testing.T) {
	cases := []struct {
		available, total int
		want             float64
	}{
		{2, 3, 66.7},
		{1, 3, 33.3},
		{3, 3, 100},
		{1, 6, 16.7},
		{0, 0, 0},
	}
	for _, tc := range cases {
		if got := completeness(tc.available, tc.total); got != tc.want {
			t.Fatalf("completeness(%d,%d) = %v, want %v", tc.available, tc.total, got, tc.want)
		}
	}
}

func mustAggregate(snap Snapshot) []Scorecard {
	cards, _ := Aggregate(snap)
	return cards
}
