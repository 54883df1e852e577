package hostsim

import (
	"bytes"
	"fmt"
	"path"
	"strings"

	"github.com/sarchlab/rebalance/host"
	"gopkg.in/yaml.v3"
)

// Manifest describes an on-disk bundle.
type Manifest struct {
	Name   string          `yaml:"name"`
	Assets []ManifestAsset `yaml:"assets"`
}

// ManifestAsset describes one asset of a bundle.
type ManifestAsset struct {
	Path string    `yaml:"path"`
	Kind host.Kind `yaml:"kind"`

	// Template names the prefab builder for GameObject assets.
	Template string `yaml:"template"`
}

// ParseManifest decodes a YAML manifest.
func ParseManifest(data []byte) (*Manifest, error) {
	m := new(Manifest)

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}

	return m, nil
}

// Encode renders the manifest as YAML.
func (m *Manifest) Encode() ([]byte, error) {
	return yaml.Marshal(m)
}

// Build creates the bundle and its prefabs in w.
func (m *Manifest) Build(w *World) (*Bundle, error) {
	b := NewBundle(m.Name)

	for _, a := range m.Assets {
		obj, err := buildAsset(w, a)
		if err != nil {
			return nil, fmt.Errorf("bundle %s: %w", m.Name, err)
		}

		b.Add(a.Path, obj)
	}

	return b, nil
}

// AssetStem returns the file name of an asset path without its extension.
func AssetStem(assetPath string) string {
	base := path.Base(strings.ReplaceAll(assetPath, `\`, "/"))
	return strings.TrimSuffix(base, path.Ext(base))
}

func buildAsset(w *World, a ManifestAsset) (host.Object, error) {
	name := AssetStem(a.Path)

	kind := a.Kind
	if kind == host.KindAny {
		kind = host.KindGameObject
	}

	if kind != host.KindGameObject {
		return NewAsset(name, kind), nil
	}

	build, ok := templates[a.Template]
	if !ok {
		return nil, fmt.Errorf("unknown template %q for %s", a.Template, a.Path)
	}

	return build(w, name), nil
}

var templates = map[string]func(w *World, name string) *GameObject{
	"":            func(w *World, name string) *GameObject { return w.NewPrefab(name) },
	"cross_slash": CrossSlashPrefab,
	"silk_bundle": SilkBundlePrefab,
}

// StandardManifests returns the manifests of the two bundles the extension
// needs, as the host ships them.
func StandardManifests() []*Manifest {
	return []*Manifest{
		{
			Name: "localpoolprefabs_assets_laceboss",
			Assets: []ManifestAsset{
				{
					Path:     "Assets/Prefabs/Enemies/Song Knight CrossSlash.prefab",
					Kind:     host.KindGameObject,
					Template: "cross_slash",
				},
				{
					Path:     "Assets/Prefabs/Hero/Song Knight CrossSlash Friendly.prefab",
					Kind:     host.KindGameObject,
					Template: "cross_slash",
				},
				{
					Path: "Assets/Textures/Lace Boss Atlas.png",
					Kind: host.KindTexture,
				},
			},
		},
		{
			Name: "localpoolprefabs_assets_areasong",
			Assets: []ManifestAsset{
				{
					Path:     "Assets/Prefabs/Pickups/Reaper Silk Bundle.prefab",
					Kind:     host.KindGameObject,
					Template: "silk_bundle",
				},
				{
					Path: "Assets/Audio/Area Song Ambience.wav",
					Kind: host.KindAudioClip,
				},
			},
		},
	}
}
