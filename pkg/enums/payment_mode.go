package enums

import "fmt"

// PaymentMode selects which checkout links a quote offers.
type PaymentMode string

const (
	PaymentModeFull    PaymentMode = "full"
	PaymentModeDeposit PaymentMode = "deposit"
	PaymentModeBoth    PaymentMode = "both"
)

var validPaymentModes = []PaymentMode{
	PaymentModeFull,
	PaymentModeDeposit,
	PaymentModeBoth,
}

func (m PaymentMode) String() string {
	return string(m)
}

func (m PaymentMode) IsValid() bool {
	for _, candidate := range validPaymentModes {
		if candidate == m {
			return true
		}
	}
	return false
}

// TakesDeposit reports whether the mode offers a deposit link.
func (m PaymentMode) TakesDeposit() bool {
	return m == PaymentModeDeposit || m == PaymentModeBoth
}

// OffersFull reports whether the mode offers a full-amount link.
func (m PaymentMode) OffersFull() bool {
	return m == PaymentModeFull || m == PaymentModeBoth
}

func ParsePaymentMode(value string) (PaymentMode, error) {
	for _, candidate := range validPaymentModes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment mode %q", value)
}
