// Profiling:
// go build ./profile/propagation
// go tool pprof -http=":8000" -nodefraction=0.001 ./propagation cpu.pprof

package main

import (
	"log/slog"
	"math/rand"

	"github.com/TheBitDrifter/bark"
	"github.com/TheBitDrifter/spatial"
	"github.com/TheBitDrifter/table"
	"github.com/pkg/profile"
)

func main() {
	bark.Wake(bark.Config{
		Environment: "development",
		Level:       slog.LevelWarn,
	})
	frames := 2000
	roots := 100
	depth := 10
	fanout := 3
	p := profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook)
	run(frames, roots, depth, fanout)
	p.Stop()
}

func run(frames, roots, depth, fanout int) {
	sto := spatial.Factory.NewStorage(table.Factory.NewSchema())
	log := bark.For("profile")

	var bundles []spatial.Bundle
	for range roots {
		bundles = append(bundles, spatial.Bundle{Transform: ptr(randomTransform())})
		level := []int{len(bundles)}
		for range depth {
			var next []int
			for _, parent := range level {
				for range fanout {
					bundles = append(bundles, spatial.Bundle{
						Transform:   ptr(randomTransform()),
						ParentIndex: parent,
					})
					next = append(next, len(bundles))
				}
				if len(next) > 64 {
					break
				}
			}
			level = next
		}
	}
	entities, err := sto.Spawn(bundles...)
	if err != nil {
		log.Error("spawn failed", bark.KeyError, err)
		return
	}
	log.Info("hierarchy built", "entities", len(entities))

	var clock spatial.FrameClock
	propagator := spatial.Factory.NewPropagator()
	for range frames {
		frame := clock.Advance()
		mover := entities[rand.Intn(len(entities))]
		t := spatial.TransformComponent.GetFromEntity(sto, mover)
		t.Position[0] += 0.01
		propagator.Propagate(sto, frame)
		// redundant request from another call site
		propagator.Propagate(sto, frame)
	}
}

func randomTransform() spatial.Transform {
	return spatial.TransformFromPosition(rand.Float32(), rand.Float32(), rand.Float32())
}

func ptr[T any](v T) *T {
	return &v
}
