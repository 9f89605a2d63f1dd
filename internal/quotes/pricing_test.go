package quotes

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/bizzyglass/bizzyglass-backend/pkg/enums"
	pkgerrors "github.com/bizzyglass/bizzyglass-backend/pkg/errors"
)

func TestTotalSumsAllSelectedPrices(t *testing.T) {
	sel := Selection{
		Services: []SelectionItem{
			{Name: "OEM Windshield", Price: "450", Category: enums.CategoryOEM},
			{Name: "Custom tint strip", Price: "19.99"},
		},
		Addons:       []SelectionItem{{Name: "Mobile Service", Price: "$35.00"}},
		CustomAddons: []SelectionItem{{Name: "Wiper blades", Price: " 12.5 "}},
	}
	if got := FormatAmount(Total(sel)); got != "517.49" {
		t.Fatalf("expected 517.49, got %s", got)
	}
}

func TestTotalTreatsMalformedPricesAsZero(t *testing.T) {
	sel := Selection{
		Services: []SelectionItem{
			{Name: "Side Window", Price: "180"},
			{Name: "Blank", Price: ""},
			{Name: "Typo", Price: "12O.00"},
			{Name: "Words", Price: "call me"},
		},
	}
	if got := FormatAmount(Total(sel)); got != "180.00" {
		t.Fatalf("expected 180.00, got %s", got)
	}
	if got := FormatAmount(Total(Selection{})); got != "0.00" {
		t.Fatalf("expected 0.00 for empty selection, got %s", got)
	}
}

func TestDeriveUsesPercentageWhenNoExplicitDeposit(t *testing.T) {
	total := decimal.RequireFromString("150")
	for pct, want := range map[int]string{25: "37.50", 50: "75.00", 75: "112.50"} {
		bd, err := Derive(total, Terms{Mode: enums.PaymentModeDeposit, DepositPercentage: pct})
		if err != nil {
			t.Fatalf("derive %d%%: %v", pct, err)
		}
		if FormatAmount(bd.Deposit) != want {
			t.Fatalf("%d%%: expected deposit %s, got %s", pct, want, FormatAmount(bd.Deposit))
		}
		if !bd.Deposit.Add(bd.Balance).Equal(total) {
			t.Fatalf("%d%%: deposit + balance must equal total", pct)
		}
	}
}

func TestDeriveDefaultsToHalfDeposit(t *testing.T) {
	bd, err := Derive(decimal.NewFromInt(300), Terms{Mode: enums.PaymentModeBoth})
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	if FormatAmount(bd.Deposit) != "150.00" || FormatAmount(bd.Balance) != "150.00" {
		t.Fatalf("unexpected breakdown %+v", bd)
	}
}

func TestDeriveExplicitDepositIsNotClamped(t *testing.T) {
	bd, err := Derive(decimal.NewFromInt(100), Terms{Mode: enums.PaymentModeDeposit, DepositAmount: "120"})
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	if FormatAmount(bd.Balance) != "-20.00" {
		t.Fatalf("expected negative balance, got %s", FormatAmount(bd.Balance))
	}
}

func TestDeriveFullModeHasNoDeposit(t *testing.T) {
	bd, err := Derive(decimal.NewFromInt(85), Terms{Mode: enums.PaymentModeFull, DepositAmount: "40"})
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	if bd.HasDeposit() || !bd.Balance.Equal(decimal.NewFromInt(85)) {
		t.Fatalf("full mode should not take a deposit: %+v", bd)
	}
}

func TestTermsValidate(t *testing.T) {
	total := decimal.NewFromInt(100)
	cases := []struct {
		name  string
		terms Terms
		field string
	}{
		{"unknown mode", Terms{Mode: "later"}, "payment_option"},
		{"deposit above total", Terms{Mode: enums.PaymentModeDeposit, DepositAmount: "100.01"}, "deposit_amount"},
		{"zero deposit", Terms{Mode: enums.PaymentModeBoth, DepositAmount: "0"}, "deposit_amount"},
		{"garbage deposit", Terms{Mode: enums.PaymentModeDeposit, DepositAmount: "half"}, "deposit_amount"},
		{"unsupported percentage", Terms{Mode: enums.PaymentModeDeposit, DepositPercentage: 40}, "deposit_percentage"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.terms.Validate(total)
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
			details, ok := typed.Details().(map[string]string)
			if !ok || details[tc.field] == "" {
				t.Fatalf("expected detail for %s, got %v", tc.field, typed.Details())
			}
		})
	}

	if err := (Terms{Mode: enums.PaymentModeDeposit, DepositAmount: "100"}).Validate(total); err != nil {
		t.Fatalf("deposit equal to total should pass: %v", err)
	}
	if err := (Terms{Mode: enums.PaymentModeFull, DepositPercentage: 40}).Validate(total); err != nil {
		t.Fatalf("full mode ignores deposit fields: %v", err)
	}
}
