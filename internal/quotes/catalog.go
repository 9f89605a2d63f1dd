package quotes

import "github.com/bizzyglass/bizzyglass-backend/pkg/enums"

// CatalogItem is a predefined service or add-on with its default price.
type CatalogItem struct {
	ID       string                `json:"id"`
	Name     string                `json:"name"`
	Price    string                `json:"price"`
	Category enums.ServiceCategory `json:"category,omitempty"`
}

// Selected turns the catalog entry into a selection item, optionally overriding the price.
func (c CatalogItem) Selected(price string) SelectionItem {
	if price == "" {
		price = c.Price
	}
	return SelectionItem{ID: c.ID, Name: c.Name, Price: price, Category: c.Category}
}

type Catalog struct {
	GlassServices []CatalogItem `json:"glass_services"`
	Addons        []CatalogItem `json:"addons"`
	TimeSlots     []string      `json:"time_slots"`
}

var glassServices = []CatalogItem{
	{ID: "oem-windshield", Name: "OEM Windshield", Price: "450.00", Category: enums.CategoryOEM},
	{ID: "aftermarket-windshield", Name: "Aftermarket Windshield", Price: "300.00", Category: enums.CategoryAftermarket},
	{ID: "side-window", Name: "Side Window", Price: "180.00"},
	{ID: "rear-window", Name: "Rear Window", Price: "250.00"},
	{ID: "chip-repair", Name: "Chip Repair", Price: "85.00"},
	{ID: "crack-repair", Name: "Crack Repair", Price: "120.00"},
}

var addons = []CatalogItem{
	{ID: "adas-calibration", Name: "ADAS Calibration", Price: "250.00"},
	{ID: "rain-sensor-transfer", Name: "Rain Sensor Transfer", Price: "50.00"},
	{ID: "mobile-service", Name: "Mobile Service", Price: "35.00"},
	{ID: "rush-service", Name: "Rush Service", Price: "75.00"},
	{ID: "old-glass-disposal", Name: "Old Glass Disposal", Price: "15.00"},
}

var timeSlots = []string{
	"8:00 AM", "9:00 AM", "10:00 AM", "11:00 AM",
	"12:00 PM", "1:00 PM", "2:00 PM", "3:00 PM", "4:00 PM", "5:00 PM",
}

// DefaultCatalog returns a copy of the built-in service list.
func DefaultCatalog() Catalog {
	return Catalog{
		GlassServices: append([]CatalogItem(nil), glassServices...),
		Addons:        append([]CatalogItem(nil), addons...),
		TimeSlots:     append([]string(nil), timeSlots...),
	}
}

// Lookup finds a service or add-on by id.
func (c Catalog) Lookup(id string) (CatalogItem, bool) {
	for _, list := range [][]CatalogItem{c.GlassServices, c.Addons} {
		for _, item := range list {
			if item.ID == id {
				return item, true
			}
		}
	}
	return CatalogItem{}, false
}
