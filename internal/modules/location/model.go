// README: Hotel location catalog entries.
package location

import "concierge/internal/types"

// Place is one canonical entry of the hotel's known-location list.
type Place struct {
	ID       types.ID
	Name     string
	Aliases  []string
	Position types.Point
	Area     string
}

// AreaOffProperty marks candidates resolved through the external places
// fallback rather than the hotel catalog.
const AreaOffProperty = "off_property"
