// README: Common value types shared across modules.
package types

// ID is a 32-char hex identifier (see newID generators in the modules).
type ID string

// Point is a WGS84 coordinate pair.
type Point struct {
	Lat float64
	Lng float64
}
