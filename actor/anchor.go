package actor

import (
	"github.com/akmonengine/plume/errs"
	"github.com/akmonengine/plume/geometry"
	"github.com/go-gl/mathgl/mgl64"
)

// Anchor selects an attachment point of a body
type Anchor int

const (
	AnchorCenter Anchor = iota

	Anchor25At0
	Anchor25At30
	Anchor25At60
	Anchor25At90

	Anchor50At0
	Anchor50At30
	Anchor50At60
	Anchor50At90
	Anchor50At180
	Anchor50At270

	Anchor100At0

	// NumAnchors is the number of canonical anchors every body starts with
	NumAnchors
)

// canonicalAnchors holds (fraction of the centroid-to-boundary distance, angle in degrees)
var canonicalAnchors = [NumAnchors]struct {
	fraction float64
	degrees  float64
}{
	AnchorCenter:  {0, 0},
	Anchor25At0:   {0.25, 0},
	Anchor25At30:  {0.25, 30},
	Anchor25At60:  {0.25, 60},
	Anchor25At90:  {0.25, 90},
	Anchor50At0:   {0.5, 0},
	Anchor50At30:  {0.5, 30},
	Anchor50At60:  {0.5, 60},
	Anchor50At90:  {0.5, 90},
	Anchor50At180: {0.5, 180},
	Anchor50At270: {0.5, 270},
	Anchor100At0:  {1, 0},
}

// anchor is a body-relative point in polar form
type anchor struct {
	angle  float64
	offset float64
}

// computeAnchor ray-casts from the centroid to the boundary at degrees and scales the
// hit distance by fraction
func computeAnchor(vertices []mgl64.Vec2, fraction, degrees float64) (anchor, error) {
	angle := geometry.Radians(degrees)
	distance, err := geometry.DistanceToEdge(angle, vertices)
	if err != nil {
		return anchor{}, err
	}

	return anchor{angle: angle, offset: fraction * distance}, nil
}

func buildAnchorTable(vertices []mgl64.Vec2) ([]anchor, error) {
	anchors := make([]anchor, 0, NumAnchors)
	for _, a := range canonicalAnchors {
		computed, err := computeAnchor(vertices, a.fraction, a.degrees)
		if err != nil {
			return nil, errs.E(errs.KindConstruction, "actor.buildAnchorTable", err)
		}
		anchors = append(anchors, computed)
	}

	return anchors, nil
}

// AnchorPosition returns the world position of an anchor.
// An unknown anchor yields the body position together with errs.ErrInvalidAnchor.
func (rb *RigidBody) AnchorPosition(a Anchor) (mgl64.Vec2, error) {
	if a < 0 || int(a) >= len(rb.anchors) {
		return rb.Transform.Position, errs.E(errs.KindLookup, "actor.AnchorPosition", errs.ErrInvalidAnchor)
	}

	data := rb.anchors[a]
	return rb.Transform.Position.Add(geometry.Direction(rb.Transform.Angle + data.angle).Mul(data.offset)), nil
}

// AddAnchor registers a custom anchor at fraction of the boundary distance in the
// given direction (degrees, body space)
func (rb *RigidBody) AddAnchor(fraction, degrees float64) (Anchor, error) {
	computed, err := computeAnchor(rb.Shape.Vertices(), fraction, degrees)
	if err != nil {
		return -1, errs.E(errs.KindConstruction, "actor.AddAnchor", err)
	}

	rb.anchors = append(rb.anchors, computed)
	return Anchor(len(rb.anchors) - 1), nil
}

// AnchorCount is the number of anchors the body knows
func (rb *RigidBody) AnchorCount() int {
	return len(rb.anchors)
}
