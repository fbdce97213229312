package strategy

// Strategy is a named, swappable pricing rule
type Strategy interface {
	Name() string
	Description() string
}

// Descriptor carries the name and description of a strategy and is meant
// to be embedded by implementations
type Descriptor struct {
	name        string
	description string
}

// Describe creates a Descriptor
func Describe(name, description string) Descriptor {
	return Descriptor{name: name, description: description}
}

// Name returns the registry name
func (d Descriptor) Name() string { return d.name }

// Description returns a human-readable summary of the fee schedule
func (d Descriptor) Description() string { return d.description }
