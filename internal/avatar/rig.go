package avatar

import (
	"fmt"

	"github.com/qmuntal/gltf"
)

// Rig is the set of morph-target channel names a character model actually has.
// The animator consults it so that driving a channel the mesh lacks is a
// silent no-op instead of an error.
type Rig struct {
	channels map[string]struct{}
}

// NewRig builds a rig from an explicit channel list (tests, fallback).
func NewRig(channels []string) *Rig {
	r := &Rig{channels: make(map[string]struct{}, len(channels))}
	for _, name := range channels {
		r.channels[name] = struct{}{}
	}
	return r
}

// PermissiveRig accepts every channel name, for avatars whose model file is
// not available locally.
func PermissiveRig() *Rig {
	return &Rig{channels: nil}
}

// Has reports whether the mesh exposes the named morph channel. A permissive
// rig reports true for everything.
func (r *Rig) Has(name string) bool {
	if r == nil || r.channels == nil {
		return true
	}
	_, ok := r.channels[name]
	return ok
}

// Channels returns the known channel names, or nil for a permissive rig.
func (r *Rig) Channels() []string {
	if r == nil || r.channels == nil {
		return nil
	}
	out := make([]string, 0, len(r.channels))
	for name := range r.channels {
		out = append(out, name)
	}
	return out
}

// LoadRig parses a glTF binary and enumerates the morph-target names declared
// on its meshes. Names live in the mesh extras under "targetNames"; meshes
// without names contribute indexed placeholders so weight counts still line up.
func LoadRig(path string) (*Rig, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open model %s: %w", path, err)
	}

	var names []string
	for _, mesh := range doc.Meshes {
		targetCount := 0
		for _, prim := range mesh.Primitives {
			if len(prim.Targets) > targetCount {
				targetCount = len(prim.Targets)
			}
		}
		if targetCount == 0 {
			continue
		}

		named := 0
		if extras, ok := mesh.Extras.(map[string]interface{}); ok {
			if targetNames, ok := extras["targetNames"].([]interface{}); ok {
				for _, n := range targetNames {
					if s, ok := n.(string); ok {
						names = append(names, s)
						named++
					}
				}
			}
		}
		for i := named; i < targetCount; i++ {
			names = append(names, fmt.Sprintf("target_%d", i))
		}
	}

	if len(names) == 0 {
		return nil, fmt.Errorf("model %s declares no morph targets", path)
	}
	return NewRig(names), nil
}
