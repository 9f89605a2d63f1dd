package enums

import "fmt"

// ServiceCategory tags where the glass for a service comes from.
type ServiceCategory string

const (
	CategoryOEM              ServiceCategory = "oem"
	CategoryAftermarket      ServiceCategory = "aftermarket"
	CategoryCustomerSupplied ServiceCategory = "customer-supplied"
)

var validServiceCategories = []ServiceCategory{
	CategoryOEM,
	CategoryAftermarket,
	CategoryCustomerSupplied,
}

func (c ServiceCategory) IsValid() bool {
	for _, candidate := range validServiceCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

func ParseServiceCategory(value string) (ServiceCategory, error) {
	for _, candidate := range validServiceCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid service category %q", value)
}
