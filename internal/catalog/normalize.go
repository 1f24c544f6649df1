package catalog

import (
	"github.com/dodorico/property-assistant/internal/model"
)

// maxDescriptionLen caps the normalized description.
const maxDescriptionLen = 400

// Normalize converts a raw provider record to the clean shape the bot uses.
// Missing fields stay absent rather than zero so presentation logic can omit
// them. When a record lists several operations or prices, the first listed
// wins.
func Normalize(p model.RawProperty) model.Property {
	prop := model.Property{
		ID:           p.ID,
		Title:        p.PublicationTitle,
		Address:      p.Address,
		Description:  truncate(p.Description, maxDescriptionLen),
		DetailURL:    p.PublicURL,
		Rooms:        p.RoomAmount,
		Bathrooms:    p.BathroomAmount,
		ParkingSpots: p.ParkingLotAmount,
		CoveredArea:  p.RoofedSurface,
		TotalArea:    p.TotalSurface,
	}

	if prop.Title == "" {
		prop.Title = "Propiedad disponible"
	}

	if p.Type != nil {
		prop.PropertyType = p.Type.Name
		typeID := p.Type.ID
		prop.TypeID = &typeID
	}

	if len(p.Operations) > 0 {
		op := p.Operations[0]
		prop.Operation = op.OperationType
		opID := op.OperationID
		prop.OperationID = &opID
		if len(op.Prices) > 0 {
			price := op.Prices[0].Price
			prop.Price = &price
			prop.Currency = op.Prices[0].Currency
		}
	}

	if p.Location != nil {
		prop.ZoneName = p.Location.Name
		prop.FullZoneName = p.Location.FullLocation
	}

	if len(p.Photos) > 0 {
		prop.MainPhotoURL = p.Photos[0].Image
	}

	return prop
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
