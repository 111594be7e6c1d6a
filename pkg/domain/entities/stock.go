package entities

import (
	"github.com/shopspring/decimal"
)

// Stock holds the on-hand and safety quantities of one article.
// A missing record means both are zero.
type Stock struct {
	ArticleCode ArticleCode     `json:"article_code"`
	OnHandQty   decimal.Decimal `json:"on_hand_qty"`
	SafetyQty   decimal.Decimal `json:"safety_qty"`
}

// NewStock creates a validated Stock record
func NewStock(articleCode ArticleCode, onHand, safety decimal.Decimal) (*Stock, error) {
	stock := &Stock{ArticleCode: articleCode, OnHandQty: onHand, SafetyQty: safety}
	if err := stock.Validate(); err != nil {
		return nil, err
	}
	return stock, nil
}

// Validate checks the stock invariants
func (s *Stock) Validate() error {
	if s.ArticleCode == "" {
		return NewConfigurationError("article_code", "stock article code cannot be empty")
	}
	if s.OnHandQty.IsNegative() {
		return NewConfigurationError("on_hand_qty", "on hand quantity cannot be negative for %s, got %s", s.ArticleCode, s.OnHandQty)
	}
	if s.SafetyQty.IsNegative() {
		return NewConfigurationError("safety_qty", "safety quantity cannot be negative for %s, got %s", s.ArticleCode, s.SafetyQty)
	}
	return nil
}

// EmptyStock is the implicit record of an article without stock
func EmptyStock(articleCode ArticleCode) Stock {
	return Stock{ArticleCode: articleCode, OnHandQty: decimal.Zero, SafetyQty: decimal.Zero}
}
