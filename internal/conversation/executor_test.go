package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dodorico/property-assistant/internal/model"
	"github.com/dodorico/property-assistant/pkg/logger"
)

type fakeSearcher struct {
	result  *model.SearchResult
	err     error
	gotCtx  context.Context
	filters []model.SearchFilters
}

func (f *fakeSearcher) Search(ctx context.Context, filters model.SearchFilters) (*model.SearchResult, error) {
	f.gotCtx = ctx
	f.filters = append(f.filters, filters)
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func sampleProperty() model.Property {
	return model.Property{
		ID:           42,
		Title:        "Departamento 3 ambientes en Caballito",
		PropertyType: "Departamento",
		Operation:    "Venta",
		Price:        floatPtr(120000),
		Currency:     "USD",
		Rooms:        intPtr(3),
		Bathrooms:    intPtr(1),
		ParkingSpots: intPtr(1),
		CoveredArea:  floatPtr(75),
		TotalArea:    floatPtr(82),
		Address:      "Av. Rivadavia 5000",
		ZoneName:     "Caballito",
		MainPhotoURL: "https://cdn.example.com/foto.jpg",
		DetailURL:    "https://example.com/ficha/42",
	}
}

func TestExecuteUnknownTool(t *testing.T) {
	e := NewExecutor(&fakeSearcher{}, logger.NewNop())

	outcome, err := e.Execute(context.Background(), "agendar_visita", []byte(`{}`))
	require.NoError(t, err)
	assert.Equal(t, "Herramienta desconocida: agendar_visita", outcome.Summary)
	assert.Empty(t, outcome.Properties)
}

func TestExecuteInvalidArguments(t *testing.T) {
	searcher := &fakeSearcher{}
	e := NewExecutor(searcher, logger.NewNop())

	outcome, err := e.Execute(context.Background(), SearchToolName,
		[]byte(`{"operation_type": "venta"}`))
	require.NoError(t, err)
	assert.Contains(t, outcome.Summary, "Parámetros inválidos")
	assert.Empty(t, searcher.filters, "invalid arguments must not reach the catalog")
}

func TestExecuteEmptyInputDefaultsToNoFilters(t *testing.T) {
	searcher := &fakeSearcher{result: &model.SearchResult{Total: 0}}
	e := NewExecutor(searcher, logger.NewNop())

	_, err := e.Execute(context.Background(), SearchToolName, nil)
	require.NoError(t, err)
	require.Len(t, searcher.filters, 1)
	assert.Equal(t, model.SearchFilters{}, searcher.filters[0])
}

func TestExecutePassesFiltersThrough(t *testing.T) {
	searcher := &fakeSearcher{result: &model.SearchResult{Total: 0}}
	e := NewExecutor(searcher, logger.NewNop())

	input := json.RawMessage(`{"operation_type":1,"rooms":3,"price_to":150000,"currency":"USD","location":"caballito","offset":3}`)
	_, err := e.Execute(context.Background(), SearchToolName, input)
	require.NoError(t, err)

	require.Len(t, searcher.filters, 1)
	got := searcher.filters[0]
	assert.Equal(t, 1, *got.OperationType)
	assert.Equal(t, 3, *got.Rooms)
	assert.Equal(t, 150000.0, *got.PriceTo)
	assert.Equal(t, "USD", got.Currency)
	assert.Equal(t, "caballito", got.Location)
	assert.Equal(t, 3, got.Offset)
}

func TestExecuteCatalogFailureIsFatal(t *testing.T) {
	searcher := &fakeSearcher{err: errors.New("connection refused")}
	e := NewExecutor(searcher, logger.NewNop())

	outcome, err := e.Execute(context.Background(), SearchToolName, []byte(`{}`))
	assert.Error(t, err)
	assert.Nil(t, outcome)
}

func TestFormatSearchResultNoMatches(t *testing.T) {
	got := FormatSearchResult(nil, 0, 0)
	assert.Contains(t, got, "No encontré propiedades con esos criterios (total: 0)")
	assert.Contains(t, got, "Sugerencias")
}

func TestFormatSearchResultFullRecord(t *testing.T) {
	got := FormatSearchResult([]model.Property{sampleProperty()}, 12, 0)

	assert.Contains(t, got, "Encontré 12 propiedades en total. Mostrando 1 (desde la 1):")
	assert.Contains(t, got, "1. Departamento 3 ambientes en Caballito")
	assert.Contains(t, got, "Tipo: Departamento | Operación: Venta")
	assert.Contains(t, got, "Precio: USD 120.000")
	assert.Contains(t, got, "Ambientes: 3")
	assert.Contains(t, got, "Superficie cubierta: 75 m²")
	assert.Contains(t, got, "Superficie total: 82 m²")
	assert.Contains(t, got, "Baños: 1")
	assert.Contains(t, got, "Cochera: sí")
	assert.Contains(t, got, "Zona: Caballito")
	assert.Contains(t, got, "Dirección: Av. Rivadavia 5000")
	assert.Contains(t, got, "URL ficha (con agenda de visitas): https://example.com/ficha/42")
	assert.Contains(t, got, "Foto disponible: sí")
	assert.Contains(t, got, "Hay 11 propiedades más.")
	assert.Contains(t, got, "Para ver más, llamar a buscar_propiedades con offset=1")
}

func TestFormatSearchResultOmitsMissingFields(t *testing.T) {
	prop := model.Property{
		Title:     "Lote en pozo",
		DetailURL: "https://example.com/ficha/7",
	}
	got := FormatSearchResult([]model.Property{prop}, 1, 0)

	assert.Contains(t, got, "Tipo: — | Operación: —")
	assert.NotContains(t, got, "Precio:")
	assert.NotContains(t, got, "Ambientes:")
	assert.NotContains(t, got, "Baños:")
	assert.NotContains(t, got, "Cochera:")
	assert.NotContains(t, got, "Foto disponible")
	assert.Contains(t, got, "Esas son todas las propiedades disponibles con esos criterios.")
}

func TestFormatSearchResultZeroRoomsOmitted(t *testing.T) {
	prop := sampleProperty()
	prop.Rooms = intPtr(0)
	prop.Bathrooms = intPtr(0)
	prop.ParkingSpots = intPtr(0)

	got := FormatSearchResult([]model.Property{prop}, 1, 0)
	assert.NotContains(t, got, "Ambientes:")
	assert.NotContains(t, got, "Baños:")
	assert.NotContains(t, got, "Cochera:")
}

func TestFormatSearchResultZeroPriceAndAreasOmitted(t *testing.T) {
	// Upstream records carry 0 where the agency never loaded the value.
	prop := sampleProperty()
	prop.Price = floatPtr(0)
	prop.CoveredArea = floatPtr(0)
	prop.TotalArea = floatPtr(0)

	got := FormatSearchResult([]model.Property{prop}, 1, 0)
	assert.NotContains(t, got, "Precio:")
	assert.NotContains(t, got, "Superficie cubierta:")
	assert.NotContains(t, got, "Superficie total:")
}

func TestFormatSearchResultEqualSurfacesShownOnce(t *testing.T) {
	prop := sampleProperty()
	prop.TotalArea = floatPtr(75)

	got := FormatSearchResult([]model.Property{prop}, 1, 0)
	assert.Contains(t, got, "Superficie cubierta: 75 m²")
	assert.NotContains(t, got, "Superficie total:")
}

func TestFormatSearchResultPagination(t *testing.T) {
	page := []model.Property{sampleProperty(), sampleProperty(), sampleProperty()}

	got := FormatSearchResult(page, 7, 3)
	assert.Contains(t, got, "Mostrando 3 (desde la 4):")
	assert.Contains(t, got, "Hay 1 propiedad más.")
	assert.Contains(t, got, "offset=6")

	last := FormatSearchResult(page[:1], 7, 6)
	assert.Contains(t, last, "Esas son todas las propiedades disponibles")
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "950", formatPrice(950))
	assert.Equal(t, "100.000", formatPrice(100000))
	assert.Equal(t, "1.250.000", formatPrice(1250000))
}
