package quotes

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/bizzyglass/bizzyglass-backend/pkg/enums"
	pkgerrors "github.com/bizzyglass/bizzyglass-backend/pkg/errors"
)

const (
	SlotDisclaimer = "These time slots are held for 20 minutes."
	closingLine    = "Questions? Just reply to this message!"
)

// ComposeInput is everything the composer renders into a quote message.
type ComposeInput struct {
	LeadID      string
	FirstName   string
	Make        string
	Model       string
	Selection   Selection
	Total       *decimal.Decimal
	Terms       Terms
	Slots       []string
	Description string
}

// Compose renders the customer-facing quote text. Total defaults to the sum
// of the selection; links come from linker.
func Compose(ctx context.Context, linker PaymentLinker, in ComposeInput) (string, error) {
	if linker == nil {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "payment linker not configured")
	}
	if strings.TrimSpace(in.LeadID) == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "lead id is required")
	}
	if in.Selection.Empty() {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "select at least one service")
	}

	total := Total(in.Selection)
	if in.Total != nil {
		total = *in.Total
	}
	if err := ValidateQuote(in.Selection, in.Terms, total); err != nil {
		return "", err
	}
	if !total.IsPositive() {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "quote total must be greater than zero")
	}
	breakdown, err := Derive(total, in.Terms)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment terms")
	}

	payment, err := paymentSection(ctx, linker, in.LeadID, in.Terms.Mode, breakdown)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(greeting(in))
	b.WriteString("\n\n🔧 Services:\n")
	writeServices(&b, in.Selection.Services)

	if len(in.Selection.Addons)+len(in.Selection.CustomAddons) > 0 {
		b.WriteString("\n➕ Add-ons:\n")
		writeItems(&b, in.Selection.Addons)
		if len(in.Selection.CustomAddons) > 0 {
			b.WriteString("Custom:\n")
			writeItems(&b, in.Selection.CustomAddons)
		}
	}

	fmt.Fprintf(&b, "\n💰 Total Price: $%s\n", FormatAmount(total))
	if desc := strings.TrimSpace(in.Description); desc != "" {
		fmt.Fprintf(&b, "📝 Notes: %s\n", desc)
	}

	if len(in.Slots) > 0 {
		b.WriteString("\n📅 Available appointments:\n")
		for _, slot := range in.Slots {
			if s := strings.TrimSpace(slot); s != "" {
				fmt.Fprintf(&b, "- %s\n", s)
			}
		}
		b.WriteString(SlotDisclaimer + "\n")
	}

	b.WriteString("\n")
	b.WriteString(payment)
	b.WriteString("\n\n")
	b.WriteString(closingLine)
	return b.String(), nil
}

func greeting(in ComposeInput) string {
	name := strings.TrimSpace(in.FirstName)
	vehicle := strings.TrimSpace(strings.TrimSpace(in.Make) + " " + strings.TrimSpace(in.Model))
	if vehicle == "" {
		return fmt.Sprintf("Hi %s! Here's your quote:", name)
	}
	return fmt.Sprintf("Hi %s! Here's your quote for your %s:", name, vehicle)
}

func writeServices(b *strings.Builder, services []SelectionItem) {
	groups := []struct {
		heading string
		match   func(enums.ServiceCategory) bool
	}{
		{"OEM:", func(c enums.ServiceCategory) bool { return c == enums.CategoryOEM }},
		{"Aftermarket:", func(c enums.ServiceCategory) bool { return c == enums.CategoryAftermarket }},
		{"Custom:", func(c enums.ServiceCategory) bool {
			return c != enums.CategoryOEM && c != enums.CategoryAftermarket
		}},
	}
	for _, group := range groups {
		var matched []SelectionItem
		for _, item := range services {
			if group.match(item.Category) {
				matched = append(matched, item)
			}
		}
		if len(matched) == 0 {
			continue
		}
		b.WriteString(group.heading + "\n")
		writeItems(b, matched)
	}
}

func writeItems(b *strings.Builder, items []SelectionItem) {
	for _, item := range items {
		fmt.Fprintf(b, "- %s: $%s\n", strings.TrimSpace(item.Name), FormatAmount(ParsePrice(item.Price)))
	}
}

func paymentSection(ctx context.Context, linker PaymentLinker, leadID string, mode enums.PaymentMode, bd Breakdown) (string, error) {
	link := func(kind LinkKind, amount decimal.Decimal) (string, error) {
		url, err := linker.PaymentLink(ctx, LinkRequest{LeadID: leadID, Kind: kind, Amount: amount})
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment link")
		}
		return url, nil
	}

	total := FormatAmount(bd.Total)
	switch mode {
	case enums.PaymentModeFull:
		full, err := link(LinkFull, bd.Total)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("💳 To secure your appointment, please pay the full amount ($%s): %s", total, full), nil

	case enums.PaymentModeDeposit:
		deposit, err := link(LinkDeposit, bd.Deposit)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("💳 To secure your appointment, please pay the deposit ($%s): %s\nBalance of $%s due upon completion.",
			FormatAmount(bd.Deposit), deposit, FormatAmount(bd.Balance)), nil

	case enums.PaymentModeBoth:
		full, err := link(LinkFull, bd.Total)
		if err != nil {
			return "", err
		}
		deposit, err := link(LinkDeposit, bd.Deposit)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("💳 Choose your payment option:\n\nOption 1 - Pay Full Amount ($%s): %s\n\nOption 2 - Pay Deposit ($%s): %s\n(Balance of $%s due upon completion)",
			total, full, FormatAmount(bd.Deposit), deposit, FormatAmount(bd.Balance)), nil
	}
	return "", pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unsupported payment option %q", mode))
}
