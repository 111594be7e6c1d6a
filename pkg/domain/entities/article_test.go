package entities

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestArticle_Validation(t *testing.T) {
	valid, err := NewArticle("A100", "Table Chêne", Assembled, 10, decimal.NewFromInt(250), "SUP001")
	if err != nil {
		t.Fatalf("Expected valid article creation to succeed: %v", err)
	}
	if valid.Kind.OrderType() != Manufacturing {
		t.Errorf("Expected assembled article to be manufactured, got %v", valid.Kind.OrderType())
	}
	if !valid.HasSupplier() {
		t.Error("Expected article to have a supplier")
	}

	testCases := []struct {
		name        string
		code        ArticleCode
		leadTime    int
		unitCost    decimal.Decimal
		expectError string
	}{
		{"empty code", "", 1, decimal.Zero, "configuration error: code: article code cannot be empty"},
		{"negative lead time", "B200", -1, decimal.Zero, "configuration error: lead_time_days: lead time cannot be negative for B200, got -1"},
		{"negative cost", "C300", 3, decimal.NewFromInt(-2), "configuration error: unit_cost: unit cost cannot be negative for C300, got -2"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewArticle(tc.code, "x", Raw, tc.leadTime, tc.unitCost, "")
			if err == nil {
				t.Fatalf("Expected error for %s, but got none", tc.name)
			}
			if err.Error() != tc.expectError {
				t.Errorf("Expected error '%s', got '%s'", tc.expectError, err.Error())
			}
			var cfgErr *ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Errorf("Expected a ConfigurationError, got %T", err)
			}
		})
	}
}

func TestParseArticleKind(t *testing.T) {
	testCases := []struct {
		input    string
		expected ArticleKind
	}{
		{"RAW", Raw},
		{"BRUT", Raw},
		{"ASSEMBLED", Assembled},
		{"COMPOSE", Assembled},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			kind, err := ParseArticleKind(tc.input)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if kind != tc.expected {
				t.Errorf("Expected %v, got %v", tc.expected, kind)
			}
		})
	}

	if _, err := ParseArticleKind("PHANTOM"); err == nil {
		t.Error("Expected error for unknown kind")
	}
}

func TestOrderType_Codes(t *testing.T) {
	if Raw.OrderType().Code() != "OA" {
		t.Errorf("Expected OA for raw articles, got %s", Raw.OrderType().Code())
	}
	if Assembled.OrderType().Code() != "OF" {
		t.Errorf("Expected OF for assembled articles, got %s", Assembled.OrderType().Code())
	}
}

func TestSupplier_Validation(t *testing.T) {
	if _, err := NewSupplier("SUP001", "Bois & Co", 5); err != nil {
		t.Fatalf("Expected valid supplier: %v", err)
	}
	if _, err := NewSupplier("", "x", 5); err == nil {
		t.Error("Expected error for empty supplier id")
	}
	if _, err := NewSupplier("SUP002", "x", -3); err == nil {
		t.Error("Expected error for negative supplier lead time")
	}
}
