package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dodorico/property-assistant/internal/model"
)

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func record(id int, opts ...func(*model.RawProperty)) model.RawProperty {
	p := model.RawProperty{
		ID:               id,
		PublicationTitle: "Propiedad",
		Type:             &model.RawType{ID: 2, Name: "Departamento"},
		Operations: []model.RawOperation{{
			OperationType: "Venta",
			OperationID:   1,
			Prices:        []model.RawPrice{{Currency: "USD", Price: 100000}},
		}},
		RoomAmount: intPtr(3),
		Location: &model.RawLocation{
			ID:   200,
			Name: "Caballito",
			Divisions: []model.RawDivision{
				{ID: 100, Name: "Capital Federal"},
			},
		},
	}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

func withPrice(currency string, price float64) func(*model.RawProperty) {
	return func(p *model.RawProperty) {
		p.Operations[0].Prices = []model.RawPrice{{Currency: currency, Price: price}}
	}
}

func withOperation(opType string, opID int) func(*model.RawProperty) {
	return func(p *model.RawProperty) {
		p.Operations[0].OperationType = opType
		p.Operations[0].OperationID = opID
	}
}

func withRooms(n int) func(*model.RawProperty) {
	return func(p *model.RawProperty) { p.RoomAmount = intPtr(n) }
}

func ids(records []model.RawProperty) []int {
	out := make([]int, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func TestApplyFiltersNoFiltersKeepsAll(t *testing.T) {
	records := []model.RawProperty{record(1), record(2), record(3)}
	got := applyFilters(records, model.SearchFilters{})
	assert.Equal(t, []int{1, 2, 3}, ids(got))
}

func TestApplyFiltersOperationType(t *testing.T) {
	records := []model.RawProperty{
		record(1),
		record(2, withOperation("Alquiler", 2)),
	}
	got := applyFilters(records, model.SearchFilters{OperationType: intPtr(2)})
	assert.Equal(t, []int{2}, ids(got))
}

func TestApplyFiltersPropertyType(t *testing.T) {
	records := []model.RawProperty{
		record(1),
		record(2, func(p *model.RawProperty) { p.Type = &model.RawType{ID: 3, Name: "Casa"} }),
		record(3, func(p *model.RawProperty) { p.Type = nil }),
	}
	got := applyFilters(records, model.SearchFilters{PropertyType: intPtr(3)})
	assert.Equal(t, []int{2}, ids(got))
}

func TestApplyFiltersRoomsIsMinimum(t *testing.T) {
	records := []model.RawProperty{
		record(1, withRooms(2)),
		record(2, withRooms(3)),
		record(3, withRooms(5)),
	}
	got := applyFilters(records, model.SearchFilters{Rooms: intPtr(3)})
	assert.Equal(t, []int{2, 3}, ids(got))
}

func TestApplyFiltersMissingRoomCountsAsZero(t *testing.T) {
	records := []model.RawProperty{
		record(1, func(p *model.RawProperty) { p.RoomAmount = nil }),
		record(2, withRooms(1)),
	}
	got := applyFilters(records, model.SearchFilters{Rooms: intPtr(1)})
	assert.Equal(t, []int{2}, ids(got))
}

func TestApplyFiltersRoomsExact(t *testing.T) {
	records := []model.RawProperty{
		record(1, withRooms(3)),
		record(2, withRooms(4)),
		record(3, func(p *model.RawProperty) { p.RoomAmount = nil }),
	}
	got := applyFilters(records, model.SearchFilters{RoomsExact: intPtr(3)})
	assert.Equal(t, []int{1}, ids(got))
}

func TestApplyFiltersPriceRangeDefaultsToUSD(t *testing.T) {
	records := []model.RawProperty{
		record(1, withPrice("USD", 90000)),
		record(2, withPrice("USD", 150000)),
		record(3, withPrice("ARS", 95000)), // right number, wrong currency
	}
	got := applyFilters(records, model.SearchFilters{PriceTo: floatPtr(100000)})
	assert.Equal(t, []int{1}, ids(got))
}

func TestApplyFiltersPriceRangeExplicitCurrency(t *testing.T) {
	records := []model.RawProperty{
		record(1, withPrice("ARS", 500000)),
		record(2, withPrice("ARS", 2000000)),
		record(3, withPrice("USD", 500000)),
	}
	got := applyFilters(records, model.SearchFilters{
		PriceFrom: floatPtr(400000),
		PriceTo:   floatPtr(1000000),
		Currency:  "ARS",
	})
	assert.Equal(t, []int{1}, ids(got))
}

func TestApplyFiltersPriceBoundsInclusive(t *testing.T) {
	records := []model.RawProperty{record(1, withPrice("USD", 100000))}
	got := applyFilters(records, model.SearchFilters{
		PriceFrom: floatPtr(100000),
		PriceTo:   floatPtr(100000),
	})
	assert.Equal(t, []int{1}, ids(got))
}

func TestApplyFiltersLocationOwnID(t *testing.T) {
	records := []model.RawProperty{
		record(1),
		record(2, func(p *model.RawProperty) { p.Location = &model.RawLocation{ID: 300, Name: "Flores"} }),
	}
	got := applyFilters(records, model.SearchFilters{LocationID: intPtr(200)})
	assert.Equal(t, []int{1}, ids(got))
}

func TestApplyFiltersLocationAncestorDivision(t *testing.T) {
	// Searching the parent division matches records in child zones.
	records := []model.RawProperty{
		record(1),
		record(2, func(p *model.RawProperty) { p.Location = nil }),
	}
	got := applyFilters(records, model.SearchFilters{LocationID: intPtr(100)})
	assert.Equal(t, []int{1}, ids(got))
}

func TestApplyFiltersConjunction(t *testing.T) {
	records := []model.RawProperty{
		record(1, withRooms(3), withPrice("USD", 120000)),
		record(2, withRooms(3), withPrice("USD", 300000)), // price out of range
		record(3, withRooms(1), withPrice("USD", 120000)), // too few rooms
		record(4, withOperation("Alquiler", 2)),           // wrong operation
	}
	got := applyFilters(records, model.SearchFilters{
		OperationType: intPtr(1),
		PropertyType:  intPtr(2),
		Rooms:         intPtr(2),
		PriceTo:       floatPtr(150000),
		LocationID:    intPtr(200),
	})
	assert.Equal(t, []int{1}, ids(got))
}

func TestApplyFiltersPreservesCatalogOrder(t *testing.T) {
	records := []model.RawProperty{record(5), record(1), record(9)}
	got := applyFilters(records, model.SearchFilters{OperationType: intPtr(1)})
	assert.Equal(t, []int{5, 1, 9}, ids(got))
}
