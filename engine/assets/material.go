package assets

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/math"
)

// Material describes how a surface is shaded. Only the first three colour
// channels feed the object colour uniform.
type Material struct {
	Name      string     `toml:"name"`
	Color     [4]float32 `toml:"color"`
	Ambient   [3]float32 `toml:"ambient"`
	Diffuse   [3]float32 `toml:"diffuse"`
	Specular  [3]float32 `toml:"specular"`
	Shininess float32    `toml:"shininess"`
}

// NewMaterial returns a white material with the engine's default lighting
// coefficients.
func NewMaterial(name string) *Material {
	return &Material{
		Name:      name,
		Color:     [4]float32{1, 1, 1, 1},
		Ambient:   [3]float32{0.2, 0.2, 0.2},
		Diffuse:   [3]float32{0.8, 0.8, 0.8},
		Specular:  [3]float32{1, 1, 1},
		Shininess: 32,
	}
}

// RGB returns the first three channels of the colour.
func (m *Material) RGB() math.Vec3 {
	return math.NewVec3(m.Color[0], m.Color[1], m.Color[2])
}

// LoadMaterialFile reads a material from a TOML file. Fields absent from
// the file keep the defaults of NewMaterial.
func LoadMaterialFile(path string) (*Material, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read material %s: %w", path, err)
	}
	return ParseMaterial(data)
}

func ParseMaterial(data []byte) (*Material, error) {
	material := NewMaterial("")
	if err := toml.Unmarshal(data, material); err != nil {
		return nil, fmt.Errorf("parse material: %w", err)
	}
	if err := validateMaterial(material); err != nil {
		return nil, err
	}
	return material, nil
}

func validateMaterial(material *Material) error {
	if material.Name == "" {
		return fmt.Errorf("%w: material name is required", core.ErrInvalidMaterial)
	}

	// Check that colour values are within [0.0, 1.0] range
	for _, c := range material.Color {
		if !inRange(c) {
			return fmt.Errorf("%w: color values must be between 0.0 and 1.0", core.ErrInvalidMaterial)
		}
	}

	// Check shininess for a non-negative value
	if material.Shininess < 0 {
		return fmt.Errorf("%w: shininess must be a non-negative value", core.ErrInvalidMaterial)
	}
	return nil
}

// Check if a float32 value is within [0.0, 1.0]
func inRange(value float32) bool {
	return value >= 0.0 && value <= 1.0
}
