package compare

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Offer is one retailer's priced, stock-flagged listing of one product. It is
// a snapshot read at comparison time and never mutated.
type Offer struct {
	ProductID  int64
	RetailerID int64
	BasePrice  decimal.Decimal
	Currency   string
	IsOnSale   bool
	SalePrice  *decimal.Decimal
	InStock    bool
}

// InvalidOfferError flags an offer whose sale pricing is inconsistent. Such
// offers are excluded from the comparison rather than failing it.
type InvalidOfferError struct {
	ProductID  int64
	RetailerID int64
	Reason     string
}

// Error implements the error interface.
func (e *InvalidOfferError) Error() string {
	return fmt.Sprintf("invalid offer for product %d at retailer %d: %s", e.ProductID, e.RetailerID, e.Reason)
}

// EffectivePrice returns the price a shopper actually pays for the offer: the
// sale price while a valid sale is active, the base price otherwise.
func EffectivePrice(o Offer) (decimal.Decimal, error) {
	if !o.IsOnSale {
		return o.BasePrice, nil
	}
	if o.SalePrice == nil {
		return decimal.Decimal{}, &InvalidOfferError{ProductID: o.ProductID, RetailerID: o.RetailerID, Reason: "on sale without a sale price"}
	}
	if o.SalePrice.IsNegative() {
		return decimal.Decimal{}, &InvalidOfferError{ProductID: o.ProductID, RetailerID: o.RetailerID, Reason: "negative sale price"}
	}
	if o.SalePrice.GreaterThan(o.BasePrice) {
		return decimal.Decimal{}, &InvalidOfferError{ProductID: o.ProductID, RetailerID: o.RetailerID, Reason: "sale price exceeds base price"}
	}
	return *o.SalePrice, nil
}
