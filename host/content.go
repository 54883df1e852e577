package host

// A Bundle is a container of named content objects.
type Bundle interface {
	Name() string

	// AssetPaths lists the paths of all the assets in the bundle.
	AssetPaths() ([]string, error)

	// Load returns the asset at path. With KindAny the object is returned
	// whatever its kind.
	Load(path string, kind Kind) (Object, error)
}

// LoadRequest tracks an asynchronous bundle load.
type LoadRequest interface {
	Done() bool

	// Bundle is nil until the load is done, and stays nil if it failed.
	Bundle() Bundle
	Err() error
}

// ContentStore is the host's bundle manager.
type ContentStore interface {
	LoadedBundles() []Bundle

	// LoadBundleFromFile starts loading a bundle file.
	LoadBundleFromFile(path string) LoadRequest

	// Unload releases a bundle. Objects already loaded from it stay alive.
	Unload(b Bundle)
}
