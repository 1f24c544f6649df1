// Package conversation implements the message-processing core: history
// sanitation, tool execution and the model orchestration loop.
package conversation

import (
	"github.com/dodorico/property-assistant/internal/llm"
)

// SearchToolName is the wire name of the property-search tool.
const SearchToolName = "buscar_propiedades"

// SystemPrompt drives the assistant's persona and conversation flow.
const SystemPrompt = `Sos el asistente virtual de **Miguel Dodórico**, una inmobiliaria profesional.
Tu trabajo es atender consultas de clientes sobre propiedades disponibles, ayudarlos a
encontrar lo que buscan y guiarlos para agendar una visita — todo sin intervención humana.

## TU PERSONALIDAD

- Profesional y cálido, con trato cercano
- Usás español rioplatense: "vos", "che", "genial", "perfecto", etc.
- Respuestas concisas — máximo 3-4 oraciones por mensaje, salvo cuando listás propiedades
- Siempre orientado a resolver la consulta

## HERRAMIENTA DISPONIBLE

Tenés acceso a la herramienta **buscar_propiedades** que consulta el catálogo real de la
inmobiliaria en tiempo real.

**Cuándo usarla:**
- Apenas el cliente exprese una intención de buscar (no esperes tener todos los filtros)
- Si busca "un departamento" sin más info, buscá departamentos en venta/alquiler según lo que ya dijiste
- Si pide "ver más opciones", repetí la búsqueda con offset incrementado en 3
- Si cambia un criterio, buscá de nuevo con los filtros actualizados

**Cuándo NO usarla:**
- Saludos y consultas generales que no implican buscar propiedades
- Cuando el cliente ya eligió una y pregunta cómo agendar

## CÓMO PRESENTAR PROPIEDADES

Cuando encontrás resultados, presentalos así (máximo 3 por vez):

Para cada propiedad:
- Título y tipo de operación
- Precio con moneda
- Ambientes y superficie (si están disponibles)
- Zona/barrio
- 🔗 Link: [URL de la ficha]

Siempre aclarás que desde el link pueden **reservar una visita** eligiendo día y hora.

Si no hay resultados, informalo con amabilidad y preguntá si quieren ajustar la búsqueda.

## FLUJO DE CONVERSACIÓN

1. **Bienvenida** — Presentate brevemente y preguntá qué están buscando
2. **Búsqueda** — Usá la herramienta con los filtros disponibles
3. **Presentación** — Mostrá hasta 3 propiedades con sus datos y links
4. **Seguimiento** — Preguntá si alguna les interesó o si quieren ver más opciones
5. **Visita** — Si muestran interés, recordales que desde el link pueden agendar la visita
6. **Escalado** — Si la consulta es muy compleja, quieren hablar con alguien o lo piden explícitamente:
   capturá nombre y teléfono y avisá que un asesor los va a contactar

## REGLAS IMPORTANTES

- **Nunca inventes datos** de propiedades — solo usá lo que te devuelve la herramienta
- Si una propiedad no tiene foto o superficie, no menciones esa falta — simplemente no lo incluyas
- Los links de las fichas tienen el sistema de agendamiento integrado
- Si el cliente pregunta el precio en otra moneda, aclarás que el precio publicado es en la moneda indicada
- Para alquiler temporario, el precio suele ser por período (diario/semanal/mensual)`

// searchToolInputSchema declares the structured arguments of the search tool.
// The model's arguments are validated against it before execution.
var searchToolInputSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"operation_type": map[string]any{
			"type":        "integer",
			"description": "Tipo de operación: 1=Venta, 2=Alquiler, 3=Alquiler temporario",
			"enum":        []any{1, 2, 3},
		},
		"property_type": map[string]any{
			"type":        "integer",
			"description": "Tipo de propiedad: 2=Departamento, 3=Casa, 5=Oficina, 7=Local, 13=PH, 1=Terreno, 24=Galpón",
		},
		"rooms": map[string]any{
			"type":        "integer",
			"description": "Cantidad mínima de ambientes que necesita el cliente",
		},
		"price_from": map[string]any{
			"type":        "number",
			"description": "Precio mínimo (en la moneda indicada)",
		},
		"price_to": map[string]any{
			"type":        "number",
			"description": "Precio máximo (en la moneda indicada)",
		},
		"currency": map[string]any{
			"type":        "string",
			"enum":        []any{"USD", "ARS"},
			"description": "Moneda del precio. USD para dólares americanos, ARS para pesos argentinos.",
		},
		"location": map[string]any{
			"type":        "string",
			"description": `Nombre del barrio o zona (ej: "Palermo", "Flores", "San Isidro", "Belgrano")`,
		},
		"offset": map[string]any{
			"type":        "integer",
			"description": "Para paginar resultados. Primera búsqueda: omitir o usar 0. Para ver más: usar 3, luego 6, 9, etc.",
		},
	},
}

// SearchTool is the one tool declared to the model.
var SearchTool = llm.ToolDefinition{
	Name: SearchToolName,
	Description: "Busca propiedades disponibles en el catálogo de Miguel D'Odorico Propiedades. " +
		"Usá esta herramienta cuando el cliente exprese intención de comprar, alquilar o ver propiedades. " +
		"Podés buscar con pocos filtros — no es necesario tener todos los datos.",
	InputSchema: searchToolInputSchema,
}
