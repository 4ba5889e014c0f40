package renderer

import (
	m "math"

	"github.com/spaghettifunk/lumen/engine/math"
)

const (
	AmbientStrength  float32 = 0.1
	SpecularStrength float32 = 0.5
	SpecularExponent float64 = 32
)

var (
	// LightColor and LightPosition are engine-wide and not configurable
	// per scene.
	LightColor    = math.NewVec3(1, 1, 1)
	LightPosition = math.NewVec3(5, 5, 5)
)

// Light is a point light.
type Light struct {
	Position math.Vec3
	Color    math.Vec3
}

func DefaultLight() Light {
	return Light{Position: LightPosition, Color: LightColor}
}

/**
 * @brief Evaluates the Phong model for one fragment. Every backend shades
 * with this formula so frames look the same everywhere:
 *
 *	ambient  = 0.1 * lightColor
 *	diffuse  = max(dot(N, L), 0) * lightColor
 *	specular = 0.5 * pow(max(dot(V, reflect(-L, N)), 0), 32) * lightColor
 *	result   = (ambient + diffuse + specular) * objectColor
 *
 * where N, L and V are normalized and L and V point from the fragment to
 * the light and to the viewer.
 */
func Phong(fragPos, normal, viewPos math.Vec3, light Light, objectColor math.Vec3) math.Vec3 {
	n := normal.Normalize()
	l := light.Position.Sub(fragPos).Normalize()
	v := viewPos.Sub(fragPos).Normalize()

	ambient := light.Color.MulScalar(AmbientStrength)

	diff := math.Max(n.Dot(l), 0)
	diffuse := light.Color.MulScalar(diff)

	r := l.Negate().Reflect(n)
	spec := SpecularStrength * float32(m.Pow(float64(math.Max(v.Dot(r), 0)), SpecularExponent))
	specular := light.Color.MulScalar(spec)

	return ambient.Add(diffuse).Add(specular).Mul(objectColor)
}
