package hough

import (
	"gonum.org/v1/gonum/spatial/r2"
)

// IntersectResult classifies the relation between two segments.
type IntersectResult int

const (
	// Parallel segments never meet.
	Parallel IntersectResult = iota
	// Coincident segments lie on the same infinite line.
	Coincident
	// NotIntersecting segments are not parallel but their crossing point
	// lies outside at least one of them.
	NotIntersecting
	// Intersecting segments cross within both.
	Intersecting
)

// String returns the lower-case name of the result.
func (r IntersectResult) String() string {
	switch r {
	case Parallel:
		return "parallel"
	case Coincident:
		return "coincident"
	case NotIntersecting:
		return "not_intersecting"
	case Intersecting:
		return "intersecting"
	default:
		return "unknown"
	}
}

// MarshalText encodes the result by name.
func (r IntersectResult) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// Intersect computes the crossing point of segments a and b.
//
// The returned point is only meaningful when the result is Intersecting.
// Source for the formulation: http://paulbourke.net/geometry/pointlineplane/
func Intersect(a, b Segment) (IntersectResult, r2.Vec) {
	da := r2.Sub(a.End, a.Begin)
	db := r2.Sub(b.End, b.Begin)
	ab := r2.Sub(a.Begin, b.Begin)

	denom := db.Y*da.X - db.X*da.Y
	numeA := db.X*ab.Y - db.Y*ab.X
	numeB := da.X*ab.Y - da.Y*ab.X

	if denom == 0 {
		if numeA == 0 && numeB == 0 {
			return Coincident, r2.Vec{}
		}
		return Parallel, r2.Vec{}
	}

	ua := numeA / denom
	ub := numeB / denom

	if ua >= 0 && ua <= 1 && ub >= 0 && ub <= 1 {
		return Intersecting, r2.Add(a.Begin, r2.Scale(ua, da))
	}
	return NotIntersecting, r2.Vec{}
}

// DistancePointLine projects p onto the segment s.
//
// It returns the projected point and its distance from p. ok is false when
// the projection falls outside the segment (or the segment has no length);
// the other results must not be used in that case.
func DistancePointLine(p r2.Vec, s Segment) (projection r2.Vec, distance float64, ok bool) {
	d := r2.Sub(s.End, s.Begin)
	mag2 := r2.Dot(d, d)
	if mag2 == 0 {
		return r2.Vec{}, 0, false
	}

	u := r2.Dot(r2.Sub(p, s.Begin), d) / mag2
	if u < 0 || u > 1 {
		return r2.Vec{}, 0, false
	}

	projection = r2.Add(s.Begin, r2.Scale(u, d))
	return projection, r2.Norm(r2.Sub(p, projection)), true
}
