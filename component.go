package spatial

// Components owned by this package. Transform and WorldTransform are the two
// placement representations; an entity holds at most one of them.
var (
	TransformComponent      = FactoryNewComponent[Transform]()
	WorldTransformComponent = FactoryNewComponent[WorldTransform]()
	ParentComponent         = FactoryNewComponent[Parent]()
	CameraComponent         = FactoryNewComponent[Camera]()
	NameComponent           = FactoryNewComponent[Name]()

	// written only by the propagator
	globalComponent = FactoryNewComponent[globalTransform]()
	ownerComponent  = FactoryNewComponent[Entity]()
)

func sameComponent(a, b Component) bool {
	return a.ID() == b.ID()
}

func isPlacement(c Component) bool {
	return sameComponent(c, TransformComponent) || sameComponent(c, WorldTransformComponent)
}
