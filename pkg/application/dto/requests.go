package dto

import (
	"github.com/shopspring/decimal"

	"github.com/vsinha/supplyplan/pkg/domain/entities"
)

// MRPRunRequest is the body of an MRP run. Due dates use YYYY-MM-DD.
type MRPRunRequest struct {
	Articles         []entities.Article  `json:"articles"`
	Suppliers        []entities.Supplier `json:"suppliers"`
	BOM              []entities.BOMLine  `json:"bom"`
	Stock            []entities.Stock    `json:"stock"`
	Demands          []DemandInput       `json:"demands"`
	CyclePolicy      string              `json:"cycle_policy,omitempty"`
	ArticlePolicy    string              `json:"unknown_article_policy,omitempty"`
	CriticalPathTopN int                 `json:"critical_path_top_n,omitempty"`
}

// DemandInput is a demand line as received at the boundary
type DemandInput struct {
	Client      string          `json:"client"`
	ArticleCode string          `json:"article_code"`
	Quantity    decimal.Decimal `json:"quantity"`
	DueDate     string          `json:"due_date"`
}

// RoutePlanRequest is the body of a routing run. Depots are the points with role DEPOT.
type RoutePlanRequest struct {
	Points          []entities.GeoPoint `json:"points"`
	VehicleCount    int                 `json:"vehicle_count"`
	VehicleCapacity decimal.Decimal     `json:"vehicle_capacity"`
	Improve         string              `json:"improve,omitempty"`
}

// ErrorResponse is the body of every error answer
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
