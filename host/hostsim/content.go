package hostsim

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/sarchlab/rebalance/host"
)

// ErrAlreadyLoaded is returned when a bundle of the same name is loaded.
var ErrAlreadyLoaded = errors.New("bundle already loaded")

// Bundle is an in-memory bundle.
type Bundle struct {
	name   string
	paths  []string
	assets map[string]host.Object

	ScanErr   error
	ScanPanic bool
	Loads     int
}

// NewBundle creates an empty bundle.
func NewBundle(name string) *Bundle {
	return &Bundle{name: name, assets: make(map[string]host.Object)}
}

// Add places obj in the bundle under path.
func (b *Bundle) Add(path string, obj host.Object) *Bundle {
	if _, dup := b.assets[path]; !dup {
		b.paths = append(b.paths, path)
	}

	b.assets[path] = obj

	return b
}

// Name returns the bundle name.
func (b *Bundle) Name() string {
	return b.name
}

// AssetPaths lists the asset paths.
func (b *Bundle) AssetPaths() ([]string, error) {
	if b.ScanPanic {
		panic("corrupted bundle " + b.name)
	}

	if b.ScanErr != nil {
		return nil, b.ScanErr
	}

	return append([]string(nil), b.paths...), nil
}

// Load returns the asset at path, checked against kind.
func (b *Bundle) Load(path string, kind host.Kind) (host.Object, error) {
	b.Loads++

	obj, ok := b.assets[path]
	if !ok {
		return nil, fmt.Errorf("no asset %s in %s", path, b.name)
	}

	if kind != host.KindAny && obj.Kind() != kind {
		return nil, fmt.Errorf("asset %s is %s, not %s", path, obj.Kind(), kind)
	}

	return obj, nil
}

type loadRequest struct {
	path       string
	framesLeft int
	done       bool
	bundle     host.Bundle
	err        error
}

func (r *loadRequest) Done() bool {
	return r.done
}

func (r *loadRequest) Bundle() host.Bundle {
	if r.bundle == nil {
		return nil
	}

	return r.bundle
}

func (r *loadRequest) Err() error {
	return r.err
}

// ContentStore is an in-memory bundle manager. Files are either registered in
// memory or read from YAML manifests on disk.
type ContentStore struct {
	world     *World
	loaded    []*Bundle
	files     map[string]*Bundle
	pending   []*loadRequest
	loadDelay int

	FileLoads []string
}

// NewContentStore creates an empty store.
func NewContentStore(w *World, loadDelay int) *ContentStore {
	return &ContentStore{
		world:     w,
		files:     make(map[string]*Bundle),
		loadDelay: loadDelay,
	}
}

// Mount makes b loaded.
func (s *ContentStore) Mount(b *Bundle) {
	s.loaded = append(s.loaded, b)
}

// RegisterFile makes b loadable from path.
func (s *ContentStore) RegisterFile(path string, b *Bundle) {
	s.files[path] = b
}

// LoadedBundles returns the loaded bundles.
func (s *ContentStore) LoadedBundles() []host.Bundle {
	out := make([]host.Bundle, len(s.loaded))
	for i, b := range s.loaded {
		out[i] = b
	}

	return out
}

// IsLoaded returns true if a bundle named name is loaded.
func (s *ContentStore) IsLoaded(name string) bool {
	for _, b := range s.loaded {
		if b.name == name {
			return true
		}
	}

	return false
}

// LoadBundleFromFile starts loading path. The request completes after the
// store's load delay in frames.
func (s *ContentStore) LoadBundleFromFile(path string) host.LoadRequest {
	s.FileLoads = append(s.FileLoads, path)

	r := &loadRequest{path: path, framesLeft: s.loadDelay}
	s.pending = append(s.pending, r)

	if r.framesLeft <= 0 {
		s.complete(r)
	}

	return r
}

// Unload removes b from the loaded bundles.
func (s *ContentStore) Unload(b host.Bundle) {
	for i, loaded := range s.loaded {
		if host.Bundle(loaded) == b {
			s.loaded = append(s.loaded[:i], s.loaded[i+1:]...)
			return
		}
	}
}

func (s *ContentStore) update() {
	pending := s.pending
	s.pending = nil

	for _, r := range pending {
		if r.done {
			continue
		}

		r.framesLeft--
		if r.framesLeft <= 0 {
			s.complete(r)
			continue
		}

		s.pending = append(s.pending, r)
	}
}

func (s *ContentStore) complete(r *loadRequest) {
	r.done = true

	b, err := s.open(r.path)
	if err != nil {
		r.err = err
		return
	}

	if s.IsLoaded(b.name) {
		r.err = fmt.Errorf("%s: %w", b.name, ErrAlreadyLoaded)
		return
	}

	s.loaded = append(s.loaded, b)
	r.bundle = b
}

func (s *ContentStore) open(path string) (*Bundle, error) {
	if b, ok := s.files[path]; ok {
		return b, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load bundle: %w", err)
	}

	m, err := ParseManifest(data)
	if err != nil {
		return nil, fmt.Errorf("load bundle %s: %w", path, err)
	}

	if m.Name == "" {
		m.Name = strings.TrimSuffix(baseName(path), ".bundle")
	}

	return m.Build(s.world)
}

func baseName(path string) string {
	i := strings.LastIndexAny(path, `/\`)
	return path[i+1:]
}
