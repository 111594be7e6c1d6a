package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderType represents the type of replenishment order
type OrderType int

const (
	Purchase OrderType = iota
	Manufacturing
)

// String method for OrderType enum
func (o OrderType) String() string {
	switch o {
	case Purchase:
		return "Purchase"
	case Manufacturing:
		return "Manufacturing"
	default:
		return "Unknown"
	}
}

// Code returns the short order code used on shop documents (OA purchase, OF manufacturing)
func (o OrderType) Code() string {
	switch o {
	case Purchase:
		return "OA"
	case Manufacturing:
		return "OF"
	default:
		return "??"
	}
}

// ParseOrderType accepts the long names as well as the OA/OF codes
func ParseOrderType(s string) (OrderType, error) {
	switch s {
	case "Purchase", "purchase", "OA":
		return Purchase, nil
	case "Manufacturing", "manufacturing", "OF":
		return Manufacturing, nil
	default:
		return Purchase, NewConfigurationError("order_type", "unknown order type %q", s)
	}
}

// MarshalText renders the order type for JSON output
func (o OrderType) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText parses the order type from JSON input
func (o *OrderType) UnmarshalText(text []byte) error {
	parsed, err := ParseOrderType(string(text))
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}

// OrderLine is a derived replenishment line. It is recomputed on every run.
type OrderLine struct {
	ArticleCode  ArticleCode     `json:"article_code"`
	ArticleName  string          `json:"article_name"`
	OrderType    OrderType       `json:"order_type"`
	Client       string          `json:"client,omitempty"`
	DemandIndex  int             `json:"demand_index"`
	GrossQty     decimal.Decimal `json:"gross_qty"`
	NetQty       decimal.Decimal `json:"net_qty"`
	LeadTimeDays int             `json:"lead_time_days"`
	OrderDate    time.Time       `json:"order_date"`
	DueDate      time.Time       `json:"due_date"`
	Cost         decimal.Decimal `json:"cost"`
}

// IsCritical reports whether the line requires an order
func (o *OrderLine) IsCritical() bool {
	return o.NetQty.IsPositive()
}

// NetRequirement floors gross - onHand + safety at zero
func NetRequirement(gross, onHand, safety decimal.Decimal) decimal.Decimal {
	net := gross.Sub(onHand).Add(safety)
	if net.IsNegative() {
		return decimal.Zero
	}
	return net
}

// BackSchedule returns the order date for a due date and a lead time in calendar days
func BackSchedule(dueDate time.Time, leadTimeDays int) time.Time {
	return dueDate.AddDate(0, 0, -leadTimeDays)
}
