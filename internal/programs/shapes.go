package programs

import "fmt"

// ShapeTable maps exact payload byte lengths to record shape tags for
// one program family.
//
// Length is the only disambiguation signal for families whose payloads
// carry no embedded type tag. The table is validated at construction so
// a collision - two shapes sharing a length, which this scheme would
// silently misclassify - fails at startup instead of corrupting the
// mirror.
type ShapeTable struct {
	byLen map[int]string
}

// Shape pairs a record shape tag with its exact payload length.
type Shape struct {
	Tag string
	Len int
}

// NewShapeTable builds a table, rejecting duplicate lengths.
func NewShapeTable(shapes ...Shape) (*ShapeTable, error) {
	byLen := make(map[int]string, len(shapes))
	for _, s := range shapes {
		if prev, ok := byLen[s.Len]; ok {
			return nil, fmt.Errorf("shape table: length %d maps to both %q and %q", s.Len, prev, s.Tag)
		}
		byLen[s.Len] = s.Tag
	}
	return &ShapeTable{byLen: byLen}, nil
}

// MustShapeTable builds a table and panics on collision.
// For package-level tables covering a family's tracked shape set.
func MustShapeTable(shapes ...Shape) *ShapeTable {
	t, err := NewShapeTable(shapes...)
	if err != nil {
		panic(err)
	}
	return t
}

// Lookup returns the shape tag for an exact payload length.
// The false return is the expected recognized-absence branch for
// untracked shapes.
func (t *ShapeTable) Lookup(length int) (string, bool) {
	tag, ok := t.byLen[length]
	return tag, ok
}
