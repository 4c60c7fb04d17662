package physics

import (
	"cmp"
	"slices"
)

// Collision is an unordered pair of bola indexes. Build it with NewCollision so that
// (a, b) and (b, a) compare and hash identically.
type Collision struct {
	One int
	Two int
}

// NewCollision returns the canonical collision between bolas a and b.
func NewCollision(a, b int) Collision {
	if a > b {
		a, b = b, a
	}
	return Collision{One: a, Two: b}
}

// CollisionSet is the set of collisions observed during one tick.
type CollisionSet map[Collision]struct{}

// Add records the collision between bolas a and b.
func (s CollisionSet) Add(a, b int) {
	s[NewCollision(a, b)] = struct{}{}
}

// Contains reports whether the collision between a and b is in the set.
func (s CollisionSet) Contains(a, b int) bool {
	_, ok := s[NewCollision(a, b)]
	return ok
}

// Sorted returns the collisions ordered by (One, Two).
func (s CollisionSet) Sorted() []Collision {
	out := make([]Collision, 0, len(s))
	for c := range s {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b Collision) int {
		if c := cmp.Compare(a.One, b.One); c != 0 {
			return c
		}
		return cmp.Compare(a.Two, b.Two)
	})
	return out
}
