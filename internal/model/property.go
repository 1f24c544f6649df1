package model

// RawProperty mirrors one record of the catalog provider's bulk listing.
// Field names confirmed against the real API.
type RawProperty struct {
	ID               int            `json:"id"`
	PublicationTitle string         `json:"publication_title"`
	Type             *RawType       `json:"type"`
	Operations       []RawOperation `json:"operations"`
	RoomAmount       *int           `json:"room_amount"`
	BathroomAmount   *int           `json:"bathroom_amount"`
	ParkingLotAmount *int           `json:"parking_lot_amount"`
	RoofedSurface    *float64       `json:"roofed_surface,string"`
	TotalSurface     *float64       `json:"total_surface,string"`
	Address          string         `json:"address"`
	Location         *RawLocation   `json:"location"`
	Description      string         `json:"description"`
	Photos           []RawPhoto     `json:"photos"`
	PublicURL        string         `json:"public_url"`
}

// RawType is the provider's property-type reference.
type RawType struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// RawOperation is one operation (sale/rent) listed on a record.
type RawOperation struct {
	OperationType string     `json:"operation_type"`
	OperationID   int        `json:"operation_id"`
	Prices        []RawPrice `json:"prices"`
}

// RawPrice is one price entry of an operation.
type RawPrice struct {
	Currency string  `json:"currency"`
	Price    float64 `json:"price"`
}

// RawLocation is the provider's location reference with its ancestor chain.
type RawLocation struct {
	ID           int           `json:"id"`
	Name         string        `json:"name"`
	FullLocation string        `json:"full_location"`
	Divisions    []RawDivision `json:"divisions"`
}

// RawDivision is one ancestor division of a location.
type RawDivision struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// RawPhoto is one photo entry of a record.
type RawPhoto struct {
	Image string `json:"image"`
}

// Property is the normalized record used by the bot and returned on the wire.
// JSON names match the original /chat payload consumed by the web demo.
type Property struct {
	ID            int      `json:"id"`
	Title         string   `json:"titulo"`
	PropertyType  string   `json:"tipo"`
	TypeID        *int     `json:"tipoId"`
	Operation     string   `json:"operacion"`
	OperationID   *int     `json:"operacionId"`
	Price         *float64 `json:"precio"`
	Currency      string   `json:"moneda"`
	Rooms         *int     `json:"ambientes"`
	Bathrooms     *int     `json:"banos"`
	ParkingSpots  *int     `json:"cocheras"`
	CoveredArea   *float64 `json:"superficieCubierta"`
	TotalArea     *float64 `json:"superficieTotal"`
	Address       string   `json:"direccion"`
	ZoneName      string   `json:"zona"`
	FullZoneName  string   `json:"zonaCompleta"`
	Description   string   `json:"descripcion"`
	MainPhotoURL  string   `json:"fotoPrincipal,omitempty"`
	DetailURL     string   `json:"urlFicha"`
}

// LocationRef is a resolved free-text zone.
type LocationRef struct {
	ID          int    `json:"id"`
	DisplayName string `json:"nombre"`
}

// SearchFilters are the structured arguments of the search tool. Optional
// numeric filters use pointers so absent and zero stay distinguishable.
type SearchFilters struct {
	OperationType *int     `json:"operation_type,omitempty"`
	PropertyType  *int     `json:"property_type,omitempty"`
	Rooms         *int     `json:"rooms,omitempty"`
	RoomsExact    *int     `json:"rooms_exact,omitempty"`
	PriceFrom     *float64 `json:"price_from,omitempty"`
	PriceTo       *float64 `json:"price_to,omitempty"`
	Currency      string   `json:"currency,omitempty"`
	Location      string   `json:"location,omitempty"`
	LocationID    *int     `json:"location_id,omitempty"`
	Limit         int      `json:"limit,omitempty"`
	Offset        int      `json:"offset,omitempty"`
}

// SearchResult is one page of matches plus the total match count.
type SearchResult struct {
	Properties []Property `json:"propiedades"`
	Total      int        `json:"total"`
}
