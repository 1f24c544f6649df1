package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"

	"github.com/dodorico/property-assistant/internal/model"
	"github.com/dodorico/property-assistant/pkg/logger"
	"github.com/dodorico/property-assistant/pkg/metrics"
)

// Searcher is the catalog capability the executor needs.
type Searcher interface {
	Search(ctx context.Context, filters model.SearchFilters) (*model.SearchResult, error)
}

// ToolOutcome is the result of one tool invocation: the text fed back to the
// model as the tool result, plus the structured page of properties.
type ToolOutcome struct {
	Summary    string
	Properties []model.Property
}

// Executor dispatches tool invocations requested by the model.
type Executor struct {
	catalog Searcher
	logger  *logger.Logger
	schema  *gojsonschema.Schema
}

// NewExecutor creates a tool executor.
func NewExecutor(cat Searcher, log *logger.Logger) *Executor {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(searchToolInputSchema))
	if err != nil {
		// The schema is a package constant; failing to compile it is a
		// programming error.
		panic(fmt.Sprintf("invalid search tool schema: %v", err))
	}
	return &Executor{catalog: cat, logger: log, schema: schema}
}

// Execute runs one tool invocation. Unknown tools and invalid arguments are
// not errors: the notice goes back to the model as the tool result so it can
// recover conversationally. A catalog failure is a real error and aborts the
// request.
func (e *Executor) Execute(ctx context.Context, name string, input json.RawMessage) (*ToolOutcome, error) {
	if name != SearchToolName {
		e.logger.Warn("model invoked unknown tool", zap.String("tool", name))
		metrics.RecordToolExecution(name, "unknown")
		return &ToolOutcome{Summary: fmt.Sprintf("Herramienta desconocida: %s", name)}, nil
	}

	if len(input) == 0 {
		input = json.RawMessage("{}")
	}

	if notice := e.validateInput(input); notice != "" {
		metrics.RecordToolExecution(name, "invalid_args")
		return &ToolOutcome{Summary: notice}, nil
	}

	var filters model.SearchFilters
	if err := json.Unmarshal(input, &filters); err != nil {
		metrics.RecordToolExecution(name, "invalid_args")
		return &ToolOutcome{Summary: fmt.Sprintf("Parámetros inválidos: %v", err)}, nil
	}

	e.logger.Info("executing property search", zap.String("input", string(input)))

	result, err := e.catalog.Search(ctx, filters)
	if err != nil {
		metrics.RecordToolExecution(name, "error")
		return nil, fmt.Errorf("search tool failed: %w", err)
	}

	metrics.RecordToolExecution(name, "success")
	e.logger.Info("tool result",
		zap.Int("total", result.Total),
		zap.Int("page", len(result.Properties)),
	)
	return &ToolOutcome{
		Summary:    FormatSearchResult(result.Properties, result.Total, filters.Offset),
		Properties: result.Properties,
	}, nil
}

// validateInput checks the model's arguments against the declared schema and
// returns a recoverable notice text when they do not conform.
func (e *Executor) validateInput(input json.RawMessage) string {
	result, err := e.schema.Validate(gojsonschema.NewBytesLoader(input))
	if err != nil {
		return fmt.Sprintf("Parámetros inválidos: %v", err)
	}
	if result.Valid() {
		return ""
	}
	errs := make([]string, len(result.Errors()))
	for i, desc := range result.Errors() {
		errs[i] = desc.String()
	}
	e.logger.Warn("tool arguments rejected by schema", zap.Strings("errors", errs))
	return "Parámetros inválidos: " + strings.Join(errs, "; ")
}

// FormatSearchResult renders the deterministic text the model receives as
// the tool result. It is the model's only source of property facts, so
// every fact the assistant may state has to appear here.
func FormatSearchResult(properties []model.Property, total, offset int) string {
	if len(properties) == 0 {
		return "No encontré propiedades con esos criterios (total: 0).\n" +
			"Sugerencias: ampliar zona, ajustar precio o cambiar tipo de propiedad."
	}

	shown := offset + len(properties)
	var b strings.Builder

	fmt.Fprintf(&b, "Encontré %d propiedad%s en total. Mostrando %d (desde la %d):\n\n",
		total, plural(total), len(properties), offset+1)

	for i, p := range properties {
		fmt.Fprintf(&b, "%d. %s\n", i+1, p.Title)
		fmt.Fprintf(&b, "   Tipo: %s | Operación: %s\n", orDash(p.PropertyType), orDash(p.Operation))
		if p.Price != nil && *p.Price > 0 {
			fmt.Fprintf(&b, "   Precio: %s %s\n", p.Currency, formatPrice(*p.Price))
		}
		if p.Rooms != nil && *p.Rooms > 0 {
			fmt.Fprintf(&b, "   Ambientes: %d\n", *p.Rooms)
		}
		if p.CoveredArea != nil && *p.CoveredArea > 0 {
			fmt.Fprintf(&b, "   Superficie cubierta: %s m²\n", formatArea(*p.CoveredArea))
		}
		if p.TotalArea != nil && *p.TotalArea > 0 && (p.CoveredArea == nil || *p.TotalArea != *p.CoveredArea) {
			fmt.Fprintf(&b, "   Superficie total: %s m²\n", formatArea(*p.TotalArea))
		}
		if p.Bathrooms != nil && *p.Bathrooms > 0 {
			fmt.Fprintf(&b, "   Baños: %d\n", *p.Bathrooms)
		}
		if p.ParkingSpots != nil && *p.ParkingSpots > 0 {
			b.WriteString("   Cochera: sí\n")
		}
		if p.ZoneName != "" {
			fmt.Fprintf(&b, "   Zona: %s\n", p.ZoneName)
		}
		if p.Address != "" {
			fmt.Fprintf(&b, "   Dirección: %s\n", p.Address)
		}
		fmt.Fprintf(&b, "   URL ficha (con agenda de visitas): %s\n", p.DetailURL)
		if p.MainPhotoURL != "" {
			b.WriteString("   Foto disponible: sí\n")
		}
		b.WriteString("\n")
	}

	remaining := total - shown
	if remaining > 0 {
		fmt.Fprintf(&b, "Hay %d propiedad%s más.\n", remaining, plural(remaining))
		fmt.Fprintf(&b, "Para ver más, llamar a %s con offset=%d", SearchToolName, shown)
	} else {
		b.WriteString("Esas son todas las propiedades disponibles con esos criterios.")
	}

	return b.String()
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "es"
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}

// formatPrice groups thousands with dots, es-AR style: 100000 -> "100.000".
func formatPrice(v float64) string {
	whole := int64(v)
	s := fmt.Sprint(whole)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	out := strings.Join(parts, ".")
	if neg {
		out = "-" + out
	}
	return out
}

// formatArea renders a surface without trailing zeros: 79 -> "79",
// 79.5 -> "79.5".
func formatArea(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprint(int64(v))
	}
	return strings.TrimRight(fmt.Sprintf("%.2f", v), "0")
}
