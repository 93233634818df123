package plume

import (
	"cmp"
	"slices"

	"github.com/akmonengine/plume/actor"
)

// Pair represents two bodies whose AABBs overlap and which might be colliding
type Pair struct {
	BodyA *actor.RigidBody
	BodyB *actor.RigidBody
}

// immovable bodies cannot be pushed apart by an impulse
func immovable(rb *actor.RigidBody) bool {
	return rb.InverseMass() == 0 && rb.InverseInertia() == 0
}

// BroadPhase performs a sort-and-sweep on the world AABBs.
// Bodies are sorted by min x; the sweep stops as soon as the next box starts after the
// current one ends, then the y intervals filter the candidates.
func BroadPhase(bodies []*actor.RigidBody) []Pair {
	sorted := make([]*actor.RigidBody, len(bodies))
	copy(sorted, bodies)
	slices.SortStableFunc(sorted, func(a, b *actor.RigidBody) int {
		return cmp.Compare(a.AABB().Min.X(), b.AABB().Min.X())
	})

	var pairs []Pair
	for i, bodyA := range sorted {
		boxA := bodyA.AABB()
		for _, bodyB := range sorted[i+1:] {
			boxB := bodyB.AABB()
			if boxB.Min.X() > boxA.Max.X() {
				break
			}
			if !boxA.OverlapsY(boxB) {
				continue
			}
			if immovable(bodyA) && immovable(bodyB) {
				continue
			}
			pairs = append(pairs, Pair{BodyA: bodyA, BodyB: bodyB})
		}
	}

	return pairs
}
