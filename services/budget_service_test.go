package services

import (
	"errors"
	"testing"

	"github.com/nyongesa254/velofix/models"
	"github.com/shopspring/decimal"
)

func item(desc string, qty int, price string) models.BudgetItem {
	return models.BudgetItem{
		Description: desc,
		Quantity:    qty,
		UnitPrice:   decimal.RequireFromString(price),
	}
}

func TestComputeTotals(t *testing.T) {
	tests := []struct {
		name     string
		items    []models.BudgetItem
		subtotal string
		fee      string
		total    string
	}{
		{
			name: "single item",
			items: []models.BudgetItem{
				item("Brake pad replacement", 1, "40.00"),
			},
			subtotal: "40.00",
			fee:      "2.00",
			total:    "42.00",
		},
		{
			name: "mixed quantities",
			items: []models.BudgetItem{
				item("Drivetrain overhaul", 1, "80"),
				item("Brake cable", 2, "22.50"),
			},
			subtotal: "125.00",
			fee:      "6.25",
			total:    "131.25",
		},
		{
			name: "fee rounds half up",
			items: []models.BudgetItem{
				item("Spoke truing", 1, "10.10"),
			},
			subtotal: "10.10",
			fee:      "0.51",
			total:    "10.61",
		},
		{
			name: "zero price item allowed",
			items: []models.BudgetItem{
				item("Courtesy inspection", 1, "0"),
				item("Tube", 1, "6.00"),
			},
			subtotal: "6.00",
			fee:      "0.30",
			total:    "6.30",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeTotals(tt.items)
			if err != nil {
				t.Fatalf("ComputeTotals returned error: %v", err)
			}
			if !got.Subtotal.Equal(decimal.RequireFromString(tt.subtotal)) {
				t.Errorf("subtotal = %s, want %s", got.Subtotal, tt.subtotal)
			}
			if !got.PlatformFee.Equal(decimal.RequireFromString(tt.fee)) {
				t.Errorf("platform fee = %s, want %s", got.PlatformFee, tt.fee)
			}
			if !got.Total.Equal(decimal.RequireFromString(tt.total)) {
				t.Errorf("total = %s, want %s", got.Total, tt.total)
			}
			if !got.Total.Equal(got.Subtotal.Add(got.PlatformFee)) {
				t.Errorf("total %s does not equal subtotal %s + fee %s", got.Total, got.Subtotal, got.PlatformFee)
			}
		})
	}
}

func TestComputeTotalsRejectsInvalidItems(t *testing.T) {
	tests := []struct {
		name  string
		items []models.BudgetItem
	}{
		{name: "empty list", items: nil},
		{name: "blank description", items: []models.BudgetItem{item("   ", 1, "10")}},
		{name: "zero quantity", items: []models.BudgetItem{item("Chain", 0, "10")}},
		{name: "negative quantity", items: []models.BudgetItem{item("Chain", -2, "10")}},
		{name: "negative price", items: []models.BudgetItem{item("Chain", 1, "-0.01")}},
		{
			name: "one bad item poisons the batch",
			items: []models.BudgetItem{
				item("Chain", 1, "25"),
				item("", 1, "10"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ComputeTotals(tt.items); !errors.Is(err, ErrInvalidLineItem) {
				t.Errorf("ComputeTotals error = %v, want ErrInvalidLineItem", err)
			}
		})
	}
}
