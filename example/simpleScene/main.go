package main

import (
	"fmt"
	"math"

	"github.com/akmonengine/plume"
	"github.com/akmonengine/plume/actor"
	"github.com/akmonengine/plume/config"
	"github.com/akmonengine/plume/constraint"
	"github.com/akmonengine/plume/geometry"
	"github.com/go-gl/mathgl/mgl64"
)

// CollisionDebugger instruments the collision pipeline of a world
type CollisionDebugger interface {
	DebugContact(contact *constraint.Contact)
	DebugStep(step int, report plume.StepReport)
}

// SimpleDebugger prints everything to stdout
type SimpleDebugger struct{}

func (d *SimpleDebugger) DebugContact(contact *constraint.Contact) {
	fmt.Printf("   contact: normal=%v depth=%.6f points=%d\n", contact.Normal, contact.Depth, len(contact.Points))
	for i, point := range contact.Points {
		rA := point.Position.Sub(contact.Incident.Position())
		rB := point.Position.Sub(contact.Reference.Position())
		fmt.Printf("   point %d: position=%v separation=%.6f\n", i, point.Position, point.Separation)
		fmt.Printf("      rIncident=%v rReference=%v relVel=%.6f\n", rA, rB, contact.RelativeVelocity(point.Position))
	}
}

func (d *SimpleDebugger) DebugStep(step int, report plume.StepReport) {
	if report.Backtracks > 0 || report.Fallback {
		fmt.Printf("   step %d: dt=%g backtracks=%d fallback=%t\n", step, report.Timestep, report.Backtracks, report.Fallback)
	}
}

// SetupScene creates a ground box and a tilted box above it
func SetupScene() (*plume.World, plume.BodyID, CollisionDebugger) {
	cfg := config.DefaultConfig()
	cfg.Timestep = 1.0 / 600.0

	world, err := plume.NewWorld(cfg)
	if err != nil {
		panic(err)
	}

	ground, _ := geometry.Rectangle(20, 1)
	if _, err := world.AddStaticBody(actor.BodyDef{Vertices: ground, Position: mgl64.Vec2{0, -0.5}}); err != nil {
		panic(err)
	}

	box, _ := geometry.Rectangle(3, 3)
	boxID, err := world.AddDynamicBody(actor.BodyDef{
		Mass:     1,
		Vertices: box,
		Position: mgl64.Vec2{-5, 5},
		Angle:    70 * math.Pi / 180,
	})
	if err != nil {
		panic(err)
	}

	return world, boxID, &SimpleDebugger{}
}

func main() {
	fmt.Println("Falling box on a static ground")
	fmt.Println("==============================")

	world, boxID, debugger := SetupScene()
	box, _ := world.Body(boxID)

	world.Events.Subscribe(plume.COLLISION_ENTER, func(event plume.Event) {
		e := event.(plume.CollisionEnterEvent)
		fmt.Printf("enter %v/%v at t=%.4f\n", e.BodyA, e.BodyB, world.Time())
	})

	const maxSteps = 2000
	for step := 0; step < maxSteps; step++ {
		world.Step()
		debugger.DebugStep(step, world.LastStep())

		for _, contact := range world.Contacts() {
			debugger.DebugContact(contact)
		}

		if step%100 == 0 {
			fmt.Printf("t=%.4f pos=%v angle=%.4f energy=%.6f\n", world.Time(), box.Position(), box.Angle(), world.Energy())
		}
	}

	fmt.Println("Done!")
}
