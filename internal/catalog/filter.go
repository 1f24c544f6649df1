package catalog

import (
	"github.com/dodorico/property-assistant/internal/model"
)

// DefaultCurrency is assumed when a price filter carries no currency.
const DefaultCurrency = "USD"

// applyFilters keeps the records that satisfy every present filter, in the
// catalog's stable order.
func applyFilters(records []model.RawProperty, f model.SearchFilters) []model.RawProperty {
	matched := make([]model.RawProperty, 0, len(records))
	for _, rec := range records {
		if matches(rec, f) {
			matched = append(matched, rec)
		}
	}
	return matched
}

// matches is the conjunction predicate of the search tool.
func matches(p model.RawProperty, f model.SearchFilters) bool {
	if f.OperationType != nil && !hasOperation(p, *f.OperationType) {
		return false
	}

	if f.PropertyType != nil {
		if p.Type == nil || p.Type.ID != *f.PropertyType {
			return false
		}
	}

	// Minimum room count; a record without the field counts as zero.
	if f.Rooms != nil && roomAmount(p) < *f.Rooms {
		return false
	}

	if f.RoomsExact != nil {
		if p.RoomAmount == nil || *p.RoomAmount != *f.RoomsExact {
			return false
		}
	}

	currency := f.Currency
	if currency == "" {
		currency = DefaultCurrency
	}

	if f.PriceTo != nil && !hasPrice(p, currency, func(price float64) bool { return price <= *f.PriceTo }) {
		return false
	}

	if f.PriceFrom != nil && !hasPrice(p, currency, func(price float64) bool { return price >= *f.PriceFrom }) {
		return false
	}

	if f.LocationID != nil && !inLocation(p, *f.LocationID) {
		return false
	}

	return true
}

func hasOperation(p model.RawProperty, operationID int) bool {
	for _, op := range p.Operations {
		if op.OperationID == operationID {
			return true
		}
	}
	return false
}

func roomAmount(p model.RawProperty) int {
	if p.RoomAmount == nil {
		return 0
	}
	return *p.RoomAmount
}

func hasPrice(p model.RawProperty, currency string, ok func(float64) bool) bool {
	for _, op := range p.Operations {
		for _, pr := range op.Prices {
			if pr.Currency == currency && ok(pr.Price) {
				return true
			}
		}
	}
	return false
}

// inLocation matches the record's own location id or any ancestor division.
func inLocation(p model.RawProperty, locationID int) bool {
	if p.Location == nil {
		return false
	}
	if p.Location.ID == locationID {
		return true
	}
	for _, div := range p.Location.Divisions {
		if div.ID == locationID {
			return true
		}
	}
	return false
}
