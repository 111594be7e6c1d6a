package entities

import (
	"github.com/shopspring/decimal"
)

// ArticleCode is the unique key of an article
type ArticleCode string

// ArticleKind distinguishes purchased raw materials from assembled articles
type ArticleKind int

const (
	Raw ArticleKind = iota
	Assembled
)

// String method for ArticleKind enum
func (k ArticleKind) String() string {
	switch k {
	case Raw:
		return "RAW"
	case Assembled:
		return "ASSEMBLED"
	default:
		return "UNKNOWN"
	}
}

// ParseArticleKind accepts RAW/ASSEMBLED as well as the BRUT/COMPOSE spellings used by older catalogs
func ParseArticleKind(s string) (ArticleKind, error) {
	switch s {
	case "RAW", "raw", "BRUT", "brut":
		return Raw, nil
	case "ASSEMBLED", "assembled", "COMPOSE", "compose":
		return Assembled, nil
	default:
		return Raw, NewConfigurationError("kind", "unknown article kind %q", s)
	}
}

// MarshalText renders the kind for JSON and YAML output
func (k ArticleKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses the kind from JSON and YAML input
func (k *ArticleKind) UnmarshalText(text []byte) error {
	parsed, err := ParseArticleKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// OrderType returns the kind of order that replenishes an article of this kind
func (k ArticleKind) OrderType() OrderType {
	if k == Assembled {
		return Manufacturing
	}
	return Purchase
}

// Article represents a catalog article. It is identified solely by Code.
type Article struct {
	Code         ArticleCode     `json:"code"`
	Name         string          `json:"name"`
	Kind         ArticleKind     `json:"kind"`
	LeadTimeDays int             `json:"lead_time_days"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	SupplierRef  string          `json:"supplier_ref,omitempty"`
}

// NewArticle creates a validated Article
func NewArticle(
	code ArticleCode,
	name string,
	kind ArticleKind,
	leadTimeDays int,
	unitCost decimal.Decimal,
	supplierRef string,
) (*Article, error) {
	article := &Article{
		Code:         code,
		Name:         name,
		Kind:         kind,
		LeadTimeDays: leadTimeDays,
		UnitCost:     unitCost,
		SupplierRef:  supplierRef,
	}
	if err := article.Validate(); err != nil {
		return nil, err
	}
	return article, nil
}

// Validate checks the article invariants
func (a *Article) Validate() error {
	if a.Code == "" {
		return NewConfigurationError("code", "article code cannot be empty")
	}
	if a.LeadTimeDays < 0 {
		return NewConfigurationError("lead_time_days", "lead time cannot be negative for %s, got %d", a.Code, a.LeadTimeDays)
	}
	if a.UnitCost.IsNegative() {
		return NewConfigurationError("unit_cost", "unit cost cannot be negative for %s, got %s", a.Code, a.UnitCost)
	}
	return nil
}

// HasSupplier reports whether the article is linked to a supplier
func (a *Article) HasSupplier() bool {
	return a.SupplierRef != ""
}

// Supplier overrides the lead time of the articles linked to it
type Supplier struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	LeadTimeDays int    `json:"lead_time_days"`
}

// NewSupplier creates a validated Supplier
func NewSupplier(id, name string, leadTimeDays int) (*Supplier, error) {
	supplier := &Supplier{ID: id, Name: name, LeadTimeDays: leadTimeDays}
	if err := supplier.Validate(); err != nil {
		return nil, err
	}
	return supplier, nil
}

// Validate checks the supplier invariants
func (s *Supplier) Validate() error {
	if s.ID == "" {
		return NewConfigurationError("id", "supplier id cannot be empty")
	}
	if s.LeadTimeDays < 0 {
		return NewConfigurationError("lead_time_days", "lead time cannot be negative for supplier %s, got %d", s.ID, s.LeadTimeDays)
	}
	return nil
}

// Client is a customer placing demands
type Client struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Machine is a work center of the shop floor. It is carried through scenarios but not scheduled.
type Machine struct {
	ID                  string          `json:"id"`
	Name                string          `json:"name"`
	CapacityHoursPerDay decimal.Decimal `json:"capacity_hours_per_day"`
}
