package integrator

import (
	"github.com/df07/go-recursive-raytracer/pkg/core"
)

// Integrator computes the color seen along a camera ray
type Integrator interface {
	// RayColor traces a primary ray starting outside any medium at depth 0
	RayColor(ray core.Ray) core.Color
}
