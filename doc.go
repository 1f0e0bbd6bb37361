/*
Package spatial computes world placement for entities arranged in a parent-child
hierarchy and keeps that placement precise from sub-unit objects to galactic
distances.

Core Concepts:

  - Transform: an ordinary precision local placement (position, rotation, scale).
  - WorldTransform: a high precision absolute position with ordinary precision
    rotation and scale, for entities far from the origin.
  - Parent: a reference to another entity. Cycles are detected, not assumed absent.
  - Propagator: a level-order pass, at most once per logical frame, that writes a
    world matrix for every placed entity.
  - Converter: turns world matrices into camera-relative render matrices.
  - SectorMapper: splits absolute positions into an integer sector and a small offset.
  - DepthCoefficient: logarithmic depth coefficients for extreme near/far ratios.

Basic Usage:

	schema := table.Factory.NewSchema()
	sto := spatial.Factory.NewStorage(schema)

	entities, _ := sto.NewEntities(2, spatial.TransformComponent)
	root, child := entities[0], entities[1]
	sto.SetTransform(root, spatial.TransformFromPosition(1, 0, 0))
	sto.SetTransform(child, spatial.TransformFromPosition(0, 1, 0))
	sto.SetParent(child, root)

	var clock spatial.FrameClock
	propagator := spatial.Factory.NewPropagator()
	report := propagator.Propagate(sto, clock.Advance())

	world, _ := sto.WorldMatrix(child) // translation (1, 1, 0)

Cycles and missing parents never abort a pass: they are logged through bark and
listed in the returned PassReport, and the affected entities keep a stale or
identity matrix for the frame.
*/
package spatial
