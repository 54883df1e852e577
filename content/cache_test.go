package content

import (
	"errors"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/rebalance/config"
	"github.com/sarchlab/rebalance/host"
	"github.com/sarchlab/rebalance/host/hostsim"
	"github.com/sarchlab/rebalance/sim/timing"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var _ = Describe("Cache with a mocked store", func() {
	var (
		mockCtrl *gomock.Controller
		engine   *timing.Engine
		store    *MockContentStore
		bundle   *MockBundle
		logs     *observer.ObservedLogs
		cache    *Cache
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		engine = timing.NewEngine(zap.NewNop())
		store = NewMockContentStore(mockCtrl)
		bundle = NewMockBundle(mockCtrl)
		bundle.EXPECT().Name().Return("bundleA").AnyTimes()

		var core zapcore.Core
		core, logs = observer.New(zapcore.InfoLevel)

		cache = MakeBuilder().
			WithEngine(engine).
			WithLogger(zap.New(core)).
			WithPlatform("linux").
			WithContentRoot("/game/aa").
			WithBundles("bundleA").
			WithRequiredAssets("Target Prefab").
			Build(store)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should find an asset by file name and cache it", func() {
		obj := NewMockObject(mockCtrl)
		obj.EXPECT().Alive().Return(true).AnyTimes()

		store.EXPECT().LoadedBundles().Return([]host.Bundle{bundle}).Times(1)
		bundle.EXPECT().AssetPaths().
			Return([]string{"assets/prefabs/Target Prefab.assetExt"}, nil).
			Times(1)
		bundle.EXPECT().
			Load("assets/prefabs/Target Prefab.assetExt", host.KindGameObject).
			Return(obj, nil).
			Times(1)

		first, err := cache.Get(host.KindGameObject, "Target Prefab")
		Expect(err).NotTo(HaveOccurred())
		Expect(first).To(BeIdenticalTo(obj))

		second, err := cache.Get(host.KindGameObject, "Target Prefab")
		Expect(err).NotTo(HaveOccurred())
		Expect(second).To(BeIdenticalTo(obj))
	})

	It("should refuse an empty name without scanning", func() {
		got, err := cache.Get(host.KindGameObject, "")

		Expect(got).To(BeNil())
		Expect(err).To(MatchError(ErrNotFound))
		Expect(engine.Running(cache.Owner())).To(Equal(0))
		Expect(logs.FilterMessage("asset name is empty").Len()).To(Equal(1))

		var resolved error
		t := cache.Resolve(host.KindGameObject, "", func(_ host.Object, err error) {
			resolved = err
		})

		Expect(t.Finished()).To(BeTrue())
		Expect(resolved).To(MatchError(ErrNotFound))
		Expect(cache.Len()).To(Equal(0))
	})

	It("should match names case-insensitively by substring", func() {
		obj := NewMockObject(mockCtrl)
		obj.EXPECT().Alive().Return(true).AnyTimes()

		store.EXPECT().LoadedBundles().Return([]host.Bundle{bundle})
		bundle.EXPECT().AssetPaths().
			Return([]string{"a/unrelated.png", "a/big target prefab v2.prefab"}, nil)
		bundle.EXPECT().Load("a/big target prefab v2.prefab", host.KindGameObject).
			Return(obj, nil)

		got, err := cache.Get(host.KindGameObject, "Target Prefab")
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(BeIdenticalTo(obj))
	})

	It("should fall back to an untyped load and check the kind", func() {
		texture := NewMockObject(mockCtrl)
		texture.EXPECT().Kind().Return(host.KindTexture).AnyTimes()

		store.EXPECT().LoadedBundles().Return([]host.Bundle{bundle}).AnyTimes()
		bundle.EXPECT().AssetPaths().
			Return([]string{"a/Target Prefab.png"}, nil).AnyTimes()
		bundle.EXPECT().Load("a/Target Prefab.png", host.KindGameObject).
			Return(nil, errors.New("type mismatch")).AnyTimes()
		bundle.EXPECT().Load("a/Target Prefab.png", host.KindAny).
			Return(texture, nil).AnyTimes()
		store.EXPECT().LoadBundleFromFile(gomock.Any()).Return(nil).AnyTimes()

		_, err := cache.Get(host.KindGameObject, "Target Prefab")

		Expect(err).To(MatchError(ErrNotFound))
	})

	It("should survive a failing bundle", func() {
		broken := NewMockBundle(mockCtrl)
		broken.EXPECT().Name().Return("broken").AnyTimes()
		broken.EXPECT().AssetPaths().DoAndReturn(func() ([]string, error) {
			panic("corrupted")
		})

		obj := NewMockObject(mockCtrl)
		obj.EXPECT().Alive().Return(true).AnyTimes()

		store.EXPECT().LoadedBundles().Return([]host.Bundle{broken, bundle})
		bundle.EXPECT().AssetPaths().Return([]string{"Target Prefab.prefab"}, nil)
		bundle.EXPECT().Load("Target Prefab.prefab", host.KindGameObject).
			Return(obj, nil)

		got, err := cache.Get(host.KindGameObject, "Target Prefab")

		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(BeIdenticalTo(obj))
		Expect(logs.FilterMessage("failed to process bundle").Len()).To(Equal(1))
	})

	It("should start one manual load on a miss and log when it fails", func() {
		done := false
		req := NewMockLoadRequest(mockCtrl)
		req.EXPECT().Done().DoAndReturn(func() bool { return done }).AnyTimes()
		req.EXPECT().Bundle().Return(nil).AnyTimes()
		req.EXPECT().Err().Return(errors.New("no such file")).AnyTimes()

		store.EXPECT().LoadedBundles().Return(nil).AnyTimes()
		store.EXPECT().
			LoadBundleFromFile(filepath.Join(
				"/game/aa", "StandaloneLinux64", "bundleA.bundle")).
			Return(req).
			Times(1)

		_, err := cache.Get(host.KindGameObject, "Target Prefab")
		Expect(err).To(MatchError(ErrNotFound))
		Expect(logs.FilterLevelExact(zapcore.WarnLevel).Len()).To(BeNumerically(">=", 1))

		_, err = cache.Get(host.KindGameObject, "Target Prefab")
		Expect(err).To(MatchError(ErrNotFound))

		done = true
		engine.Advance(0.016)

		Expect(logs.FilterMessage("failed to load bundle").Len()).To(Equal(1))
		Expect(logs.FilterMessage("asset still missing after manual bundle load").Len()).
			To(Equal(2))
	})

	It("should skip the manual load when another bundle holds the asset", func() {
		other := NewMockBundle(mockCtrl)
		other.EXPECT().Name().Return("other").AnyTimes()
		other.EXPECT().AssetPaths().
			Return([]string{"x/target prefab.prefab"}, nil).AnyTimes()

		store.EXPECT().LoadedBundles().Return([]host.Bundle{other}).AnyTimes()
		store.EXPECT().LoadBundleFromFile(gomock.Any()).Times(0)

		Expect(cache.IsBundleAlreadyLoaded("bundleA")).To(BeTrue())
		Expect(cache.loadBundle("bundleA")).To(BeNil())
	})

	It("should prune a destroyed entry on lookup", func() {
		obj := NewMockObject(mockCtrl)
		alive := true
		obj.EXPECT().Alive().DoAndReturn(func() bool { return alive }).AnyTimes()

		cache.put(host.KindGameObject, "Target Prefab", obj)
		alive = false

		store.EXPECT().LoadedBundles().Return(nil).AnyTimes()
		store.EXPECT().LoadBundleFromFile(gomock.Any()).Return(nil).AnyTimes()

		_, err := cache.Get(host.KindGameObject, "Target Prefab")

		Expect(err).To(MatchError(ErrNotFound))
		Expect(cache.Len()).To(Equal(0))
	})
})

var _ = Describe("Cache on the simulated host", func() {
	var (
		sim    *hostsim.Sim
		engine *timing.Engine
		cache  *Cache
		cfg    config.Config
	)

	step := func(n int) {
		for i := 0; i < n; i++ {
			sim.Step(0.016)
			engine.Advance(0.016)
		}
	}

	BeforeEach(func() {
		cfg = config.Defaults()
		sim = hostsim.MakeBuilder().
			WithContentRoot("/game/aa").
			WithLoadDelay(2).
			Build()
		engine = timing.NewEngine(zap.NewNop())
		cache = MakeBuilder().
			WithEngine(engine).
			WithPlatform(sim.Platform()).
			WithContentRoot(sim.ContentRoot()).
			WithBundles(cfg.Host.Bundles...).
			WithRequiredAssets(cfg.Host.RequiredAssets...).
			Build(sim.Content())
	})

	It("should bootstrap from the loaded bundles", func() {
		sim.MountStandardBundles()

		task := cache.Initialize()

		Expect(task.Done()).To(BeTrue())
		Expect(cache.IsInitialized()).To(BeTrue())
		Expect(sim.SimContent().FileLoads).To(BeEmpty())

		for _, name := range cfg.Host.RequiredAssets {
			obj, err := cache.Get(host.KindGameObject, name)
			Expect(err).NotTo(HaveOccurred())
			Expect(obj.Name()).To(Equal(name))
		}
	})

	It("should prefer the exact name over a longer one", func() {
		sim.MountStandardBundles()

		obj, err := cache.Get(host.KindGameObject, "Song Knight CrossSlash")

		Expect(err).NotTo(HaveOccurred())
		Expect(obj.Name()).To(Equal("Song Knight CrossSlash"))
	})

	It("should load the required bundles from disk when nothing is loaded", func() {
		for _, m := range hostsim.StandardManifests() {
			b, err := m.Build(sim.SimWorld())
			Expect(err).NotTo(HaveOccurred())
			sim.SimContent().RegisterFile(cache.BundlePath(m.Name), b)
		}

		cache.Initialize()
		Expect(cache.IsInitialized()).To(BeFalse())

		step(10)

		Expect(cache.IsInitialized()).To(BeTrue())
		Expect(sim.SimContent().FileLoads).To(HaveLen(2))
		Expect(cache.AssetNames()).To(ConsistOf(
			"GameObject/Song Knight CrossSlash",
			"GameObject/Song Knight CrossSlash Friendly",
			"GameObject/Reaper Silk Bundle",
		))

		cache.UnloadAll()
		Expect(sim.SimContent().LoadedBundles()).To(BeEmpty())
		Expect(cache.IsInitialized()).To(BeFalse())
	})

	It("should not start a second bootstrap while one runs", func() {
		first := cache.Initialize()
		second := cache.Initialize()

		Expect(second).To(BeIdenticalTo(first))
	})

	It("should sweep destroyed assets and reinitialize", func() {
		sim.MountStandardBundles()
		cache.Initialize()

		obj, _ := cache.Get(host.KindGameObject, config.SilkBundle)
		sim.World().Destroy(obj.(host.GameObject))

		Expect(cache.Sweep()).To(Equal(1))

		sim.MountStandardBundles()
		task := cache.Revalidate()
		step(5)

		Expect(task.Finished()).To(BeTrue())
		Expect(cache.IsInitialized()).To(BeTrue())

		again, err := cache.Get(host.KindGameObject, config.SilkBundle)
		Expect(err).NotTo(HaveOccurred())
		Expect(again.Alive()).To(BeTrue())
	})

	It("should resolve asynchronously", func() {
		var got host.Object
		var gotErr error

		cache.Resolve(host.KindGameObject, config.SilkBundle,
			func(o host.Object, err error) { got, gotErr = o, err })

		Expect(got).To(BeNil())

		sim.MountStandardBundles()
		step(5)

		Expect(gotErr).NotTo(HaveOccurred())
		Expect(got.Name()).To(Equal(config.SilkBundle))
	})

	It("should map platforms to bundle folders", func() {
		Expect(PlatformFolder("windows")).To(Equal("StandaloneWindows64"))
		Expect(PlatformFolder("darwin")).To(Equal("StandaloneOSX"))
		Expect(PlatformFolder("linux")).To(Equal("StandaloneLinux64"))
		Expect(PlatformFolder("plan9")).To(Equal(""))
	})
})
