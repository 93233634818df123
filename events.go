package plume

import (
	"github.com/akmonengine/plume/constraint"
)

const (
	COLLISION_ENTER EventType = iota
	COLLISION_STAY
	COLLISION_EXIT
	ON_BACKTRACK
	ON_FALLBACK
)

type pairKey struct {
	bodyA BodyID
	bodyB BodyID
}

// makePairKey creates a normalized pair key with consistent ordering
func makePairKey(bodyA, bodyB BodyID) pairKey {
	if bodyB.Index() < bodyA.Index() ||
		(bodyB.Index() == bodyA.Index() && bodyB.Generation() < bodyA.Generation()) {
		bodyA, bodyB = bodyB, bodyA
	}

	return pairKey{bodyA: bodyA, bodyB: bodyB}
}

type EventType uint8

// Event interface - all events implement this
type Event interface {
	Type() EventType
}

// Collision events
type CollisionEnterEvent struct {
	BodyA BodyID
	BodyB BodyID
}

func (e CollisionEnterEvent) Type() EventType { return COLLISION_ENTER }

type CollisionStayEvent struct {
	BodyA BodyID
	BodyB BodyID
}

func (e CollisionStayEvent) Type() EventType { return COLLISION_STAY }

type CollisionExitEvent struct {
	BodyA BodyID
	BodyB BodyID
}

func (e CollisionExitEvent) Type() EventType { return COLLISION_EXIT }

// BacktrackEvent is emitted once per halving of the timestep
type BacktrackEvent struct {
	Attempt  int
	Timestep float64
}

func (e BacktrackEvent) Type() EventType { return ON_BACKTRACK }

// FallbackEvent is emitted when a step gives up backtracking
type FallbackEvent struct {
	Backtracks int
	Timestep   float64
}

func (e FallbackEvent) Type() EventType { return ON_FALLBACK }

// EventListener - callback for events
type EventListener func(event Event)

// Events manager
type Events struct {
	// Listeners by event type
	listeners map[EventType][]EventListener

	// Event buffer to send at flush
	buffer []Event

	// Collision tracking for Enter/Stay/Exit detection
	previousActivePairs map[pairKey]bool
	currentActivePairs  map[pairKey]bool
}

func NewEvents() Events {
	return Events{
		listeners:           make(map[EventType][]EventListener),
		buffer:              make([]Event, 0, 256),
		previousActivePairs: make(map[pairKey]bool),
		currentActivePairs:  make(map[pairKey]bool),
	}
}

// Subscribe adds a listener for an event type
func (e *Events) Subscribe(eventType EventType, listener EventListener) {
	e.listeners[eventType] = append(e.listeners[eventType], listener)
}

// recordCollisions marks the pairs touching at the end of the step
func (e *Events) recordCollisions(contacts []*constraint.Contact) {
	for _, c := range contacts {
		pair := makePairKey(c.Incident.ID(), c.Reference.ID())
		e.currentActivePairs[pair] = true
	}
}

func (e *Events) emitBacktrack(attempt int, h float64) {
	e.buffer = append(e.buffer, BacktrackEvent{Attempt: attempt, Timestep: h})
}

func (e *Events) emitFallback(backtracks int, h float64) {
	e.buffer = append(e.buffer, FallbackEvent{Backtracks: backtracks, Timestep: h})
}

// forget drops a removed body from the pair tracking, without emitting an exit
func (e *Events) forget(id BodyID) {
	for pair := range e.previousActivePairs {
		if pair.bodyA == id || pair.bodyB == id {
			delete(e.previousActivePairs, pair)
		}
	}
	for pair := range e.currentActivePairs {
		if pair.bodyA == id || pair.bodyB == id {
			delete(e.currentActivePairs, pair)
		}
	}
}

// processCollisionEvents compares current and previous pairs to detect Enter/Stay/Exit
// Should be called once per step
func (e *Events) processCollisionEvents() {
	for pair := range e.currentActivePairs {
		if e.previousActivePairs[pair] {
			e.buffer = append(e.buffer, CollisionStayEvent{BodyA: pair.bodyA, BodyB: pair.bodyB})
		} else {
			e.buffer = append(e.buffer, CollisionEnterEvent{BodyA: pair.bodyA, BodyB: pair.bodyB})
		}
	}

	for pair := range e.previousActivePairs {
		if !e.currentActivePairs[pair] {
			e.buffer = append(e.buffer, CollisionExitEvent{BodyA: pair.bodyA, BodyB: pair.bodyB})
		}
	}

	// Swap for next step and clear current
	e.previousActivePairs, e.currentActivePairs = e.currentActivePairs, e.previousActivePairs
	clear(e.currentActivePairs)
}

// flush sends all buffered events and clears the buffer
func (e *Events) flush() {
	e.processCollisionEvents()

	for _, event := range e.buffer {
		if listeners, ok := e.listeners[event.Type()]; ok {
			for _, listener := range listeners {
				listener(event)
			}
		}
	}
	e.buffer = e.buffer[:0]
}
