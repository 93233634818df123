package plume

import (
	"math"

	"github.com/akmonengine/plume/actor"
	"github.com/akmonengine/plume/constraint"
	"github.com/akmonengine/plume/geometry"
	"github.com/go-gl/mathgl/mgl64"
)

// NarrowPhase runs Collide on every candidate pair.
// It stops at the first pair penetrating deeper than threshold and reports deep = true;
// the contacts gathered so far are then meaningless and the caller must backtrack.
func NarrowPhase(pairs []Pair, threshold float64) ([]*constraint.Contact, bool) {
	contacts := make([]*constraint.Contact, 0, len(pairs))

	for _, pair := range pairs {
		contact, deep := Collide(pair.BodyA, pair.BodyB, threshold)
		if deep {
			return contacts, true
		}
		if contact != nil {
			contacts = append(contacts, contact)
		}
	}

	return contacts, false
}

// Collide tests two convex polygons with the separating axis theorem and builds their
// contact manifold by clipping the incident edge against the reference edge.
// It returns nil when the polygons are separated, or when clipping leaves no point.
func Collide(a, b *actor.RigidBody, threshold float64) (*constraint.Contact, bool) {
	if !a.AABB().Overlaps(b.AABB()) {
		return nil, false
	}

	verticesA := a.WorldVertices()
	verticesB := b.WorldVertices()

	minDepth := math.MaxFloat64
	var normal mgl64.Vec2
	var reference *actor.RigidBody

	for _, candidate := range [2]*actor.RigidBody{a, b} {
		for _, axis := range candidate.Normals() {
			minA, maxA := geometry.Project(axis, verticesA)
			minB, maxB := geometry.Project(axis, verticesB)

			if maxA < minB || minA > maxB {
				return nil, false
			}

			depth := math.Min(maxA, maxB) - math.Max(minA, minB)
			if depth < minDepth {
				minDepth = depth
				normal = axis
				reference = candidate
			}
		}
	}

	if minDepth >= threshold {
		return nil, true
	}

	incident := b
	if reference == b {
		incident = a
	}

	// The normal must point from the reference body toward the incident body before the
	// edges are picked, otherwise symmetric shapes select the far faces.
	if normal.Dot(incident.Position().Sub(reference.Position())) < 0 {
		normal = normal.Mul(-1)
	}

	refVertices := reference.WorldVertices()
	incVertices := incident.WorldVertices()

	refIndex := bestEdge(refVertices, normal)
	incIndex := bestEdge(incVertices, normal.Mul(-1))

	refV1 := refVertices[refIndex]
	refV2 := refVertices[(refIndex+1)%len(refVertices)]
	incV1 := incVertices[incIndex]
	incV2 := incVertices[(incIndex+1)%len(incVertices)]

	refEdge := refV2.Sub(refV1)
	refNormal, ok := geometry.Normalize(mgl64.Vec2{refEdge[1], -refEdge[0]})
	if !ok {
		return nil, false
	}
	refOffset := refNormal.Dot(refV1)

	side, _ := geometry.Normalize(refEdge)

	clipped := clipEdge(incV1, incV2, side, side.Dot(refV1))
	if len(clipped) < 2 {
		return nil, false
	}
	clipped = clipEdge(clipped[0], clipped[1], side.Mul(-1), side.Mul(-1).Dot(refV2))
	if len(clipped) < 2 {
		return nil, false
	}

	contact := &constraint.Contact{
		Incident:  incident,
		Reference: reference,
		Normal:    normal,
		Depth:     minDepth,
	}
	for _, p := range clipped {
		separation := refNormal.Dot(p) - refOffset
		if separation <= 0 {
			contact.Points = append(contact.Points, constraint.ContactPoint{Position: p, Separation: separation})
		}
	}

	if len(contact.Points) == 0 {
		return nil, false
	}

	return contact, false
}

// bestEdge returns the index of the edge (i, i+1) whose outward normal is the most
// aligned with direction
func bestEdge(vertices []mgl64.Vec2, direction mgl64.Vec2) int {
	best := 0
	maxDot := math.Inf(-1)

	for i := range vertices {
		edge := vertices[(i+1)%len(vertices)].Sub(vertices[i])
		edgeNormal, ok := geometry.Normalize(mgl64.Vec2{edge[1], -edge[0]})
		if !ok {
			continue
		}
		if d := edgeNormal.Dot(direction); d > maxDot {
			maxDot = d
			best = i
		}
	}

	return best
}

// clipEdge keeps the part of segment p1-p2 lying on the positive side of the plane
// normal·x = offset
func clipEdge(p1, p2, normal mgl64.Vec2, offset float64) []mgl64.Vec2 {
	out := make([]mgl64.Vec2, 0, 2)

	d1 := normal.Dot(p1) - offset
	d2 := normal.Dot(p2) - offset

	if d1 >= 0 {
		out = append(out, p1)
	}
	if d2 >= 0 {
		out = append(out, p2)
	}

	if d1*d2 < 0 {
		t := d1 / (d1 - d2)
		out = append(out, p1.Add(p2.Sub(p1).Mul(t)))
	}

	return out
}
