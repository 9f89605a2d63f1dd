package quotes

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/bizzyglass/bizzyglass-backend/pkg/enums"
	pkgerrors "github.com/bizzyglass/bizzyglass-backend/pkg/errors"
)

var hundred = decimal.NewFromInt(100)

// SupportedDepositPercentages are the deposit shares a quote may ask for.
var SupportedDepositPercentages = []int{25, 50, 75}

const DefaultDepositPercentage = 50

// SelectionItem is one chosen service or add-on. Price is kept as the text
// the owner typed so malformed input can be coerced instead of rejected.
type SelectionItem struct {
	ID       string                `json:"id"`
	Name     string                `json:"name" validate:"required"`
	Price    string                `json:"price"`
	Category enums.ServiceCategory `json:"category,omitempty"`
}

// Selection is the quote builder state: services plus predefined and custom add-ons.
type Selection struct {
	Services     []SelectionItem `json:"services"`
	Addons       []SelectionItem `json:"addons"`
	CustomAddons []SelectionItem `json:"custom_addons"`
}

func (s Selection) Empty() bool {
	return len(s.Services) == 0 && len(s.Addons) == 0 && len(s.CustomAddons) == 0
}

func (s Selection) items() []SelectionItem {
	out := make([]SelectionItem, 0, len(s.Services)+len(s.Addons)+len(s.CustomAddons))
	out = append(out, s.Services...)
	out = append(out, s.Addons...)
	return append(out, s.CustomAddons...)
}

// ParsePrice reads a price typed as text. Empty or malformed input is zero.
func ParsePrice(text string) decimal.Decimal {
	trimmed := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(text), "$"))
	if trimmed == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Total sums every selected price.
func Total(sel Selection) decimal.Decimal {
	total := decimal.Zero
	for _, item := range sel.items() {
		total = total.Add(ParsePrice(item.Price))
	}
	return total
}

// FormatAmount renders an amount with exactly two decimals.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// Terms are the payment options attached to a quote.
type Terms struct {
	Mode              enums.PaymentMode `json:"payment_option"`
	DepositAmount     string            `json:"deposit_amount,omitempty"`
	DepositPercentage int               `json:"deposit_percentage,omitempty"`
}

// Breakdown is the derived money split for a quote.
type Breakdown struct {
	Total   decimal.Decimal
	Deposit decimal.Decimal
	Balance decimal.Decimal
}

// HasDeposit reports whether a deposit link should be offered.
func (b Breakdown) HasDeposit() bool {
	return b.Deposit.IsPositive()
}

func (t Terms) percentage() int {
	if t.DepositPercentage == 0 {
		return DefaultDepositPercentage
	}
	return t.DepositPercentage
}

func (t Terms) explicitDeposit() (decimal.Decimal, bool, error) {
	raw := strings.TrimSpace(t.DepositAmount)
	if raw == "" {
		return decimal.Zero, false, nil
	}
	d, err := decimal.NewFromString(strings.TrimPrefix(raw, "$"))
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("deposit amount %q is not a number", t.DepositAmount)
	}
	return d, true, nil
}

// Derive splits total into deposit and balance. The balance is not clamped:
// a deposit above the total yields a negative balance. Callers that need the
// deposit bounded run Validate first.
func Derive(total decimal.Decimal, terms Terms) (Breakdown, error) {
	out := Breakdown{Total: total, Balance: total}
	if !terms.Mode.TakesDeposit() {
		return out, nil
	}
	deposit, explicit, err := terms.explicitDeposit()
	if err != nil {
		return Breakdown{}, err
	}
	if !explicit {
		deposit = total.Mul(decimal.NewFromInt(int64(terms.percentage()))).Div(hundred)
	}
	out.Deposit = deposit
	out.Balance = total.Sub(deposit)
	return out, nil
}

// Validate checks the terms against total and returns a validation error
// describing every problem found.
func (t Terms) Validate(total decimal.Decimal) error {
	details := map[string]string{}
	t.check(total, details)
	if len(details) == 0 {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "invalid payment terms").WithDetails(details)
}

// ValidateQuote checks item prices and payment terms together so one error
// lists every problem.
func ValidateQuote(sel Selection, terms Terms, total decimal.Decimal) error {
	details := map[string]string{}
	sel.check(details)
	terms.check(total, details)
	if len(details) == 0 {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "invalid quote").WithDetails(details)
}

func (s Selection) check(details map[string]string) {
	groups := []struct {
		name  string
		items []SelectionItem
	}{
		{"services", s.Services},
		{"addons", s.Addons},
		{"custom_addons", s.CustomAddons},
	}
	for _, g := range groups {
		for i, item := range g.items {
			if ParsePrice(item.Price).IsNegative() {
				details[fmt.Sprintf("%s[%d].price", g.name, i)] = "must not be negative"
			}
		}
	}
}

func (t Terms) check(total decimal.Decimal, details map[string]string) {
	if !t.Mode.IsValid() {
		details["payment_option"] = "must be one of full, deposit, both"
	}
	if t.Mode.TakesDeposit() {
		deposit, explicit, err := t.explicitDeposit()
		switch {
		case err != nil:
			details["deposit_amount"] = err.Error()
		case explicit && !deposit.IsPositive():
			details["deposit_amount"] = "must be greater than zero"
		case explicit && deposit.GreaterThan(total):
			details["deposit_amount"] = "must not exceed the total"
		case !explicit && !supportedPercentage(t.percentage()):
			details["deposit_percentage"] = "must be one of 25, 50, 75"
		}
	}
}

func supportedPercentage(pct int) bool {
	for _, candidate := range SupportedDepositPercentages {
		if candidate == pct {
			return true
		}
	}
	return false
}
