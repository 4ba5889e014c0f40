// Package persist stores scene snapshots on disk. The encoding follows the
// file extension: .json, .toml, .yaml or .yml.
package persist

import (
	"bytes"
	"encoding/json"
	m "math"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/spaghettifunk/lumen/engine/core"
	"github.com/spaghettifunk/lumen/engine/scene"
)

type Format int

const (
	FORMAT_UNKNOWN Format = iota
	FORMAT_JSON
	FORMAT_TOML
	FORMAT_YAML
)

var ErrUnsupportedFormat = errors.New("unsupported scene format")

func (f Format) String() string {
	switch f {
	case FORMAT_JSON:
		return "json"
	case FORMAT_TOML:
		return "toml"
	case FORMAT_YAML:
		return "yaml"
	}
	return "unknown"
}

// FormatFromPath picks the encoding from the file extension.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FORMAT_JSON
	case ".toml":
		return FORMAT_TOML
	case ".yaml", ".yml":
		return FORMAT_YAML
	}
	return FORMAT_UNKNOWN
}

func Marshal(format Format, snapshot *scene.SceneSnapshot) ([]byte, error) {
	switch format {
	case FORMAT_JSON:
		return json.MarshalIndent(snapshot, "", "  ")
	case FORMAT_TOML:
		return toml.Marshal(snapshot)
	case FORMAT_YAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(snapshot); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return nil, errors.Wrapf(ErrUnsupportedFormat, "format %d", format)
}

// Unmarshal decodes data. Undecodable data yields an error wrapping
// core.ErrMalformedScene.
func Unmarshal(format Format, data []byte) (*scene.SceneSnapshot, error) {
	var snapshot scene.SceneSnapshot
	var err error
	switch format {
	case FORMAT_JSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&snapshot)
	case FORMAT_TOML:
		err = toml.Unmarshal(data, &snapshot)
	case FORMAT_YAML:
		err = yaml.Unmarshal(data, &snapshot)
	default:
		return nil, errors.Wrapf(ErrUnsupportedFormat, "format %d", format)
	}
	if err != nil {
		return nil, errors.Wrapf(core.ErrMalformedScene, "decode %s: %v", format, err)
	}
	if err := validate(snapshot.Entities); err != nil {
		return nil, errors.Wrapf(core.ErrMalformedScene, "%s: %v", format, err)
	}
	return &snapshot, nil
}

// validate rejects records that cannot be turned back into entities.
// Only the fields the loader restores are checked; rotation and scale may
// be left out of hand-written files.
func validate(entities []scene.EntitySnapshot) error {
	for i := range entities {
		e := &entities[i]
		for _, v := range e.Position {
			if m.IsNaN(float64(v)) || m.IsInf(float64(v), 0) {
				return errors.Errorf("entity %q has a non-finite position", e.Name)
			}
		}
		if err := validate(e.Children); err != nil {
			return err
		}
	}
	return nil
}

// SaveScene writes snapshot to path, creating parent directories.
func SaveScene(path string, snapshot *scene.SceneSnapshot) error {
	format := FormatFromPath(path)
	data, err := Marshal(format, snapshot)
	if err != nil {
		return errors.Wrapf(err, "save scene %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "save scene %s", path)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "save scene %s", path)
	}
	return nil
}

/**
 * @brief Reads a snapshot from path. A malformed file returns nil and an
 * error wrapping core.ErrMalformedScene; the caller decides whether to
 * start from an empty scene.
 */
func LoadScene(path string) (*scene.SceneSnapshot, error) {
	format := FormatFromPath(path)
	if format == FORMAT_UNKNOWN {
		return nil, errors.Wrapf(ErrUnsupportedFormat, "load scene %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "load scene %s", path)
	}
	snapshot, err := Unmarshal(format, data)
	if err != nil {
		return nil, errors.Wrapf(err, "load scene %s", path)
	}
	return snapshot, nil
}
