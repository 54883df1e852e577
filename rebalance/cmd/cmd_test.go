package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/rebalance/content"
)

var _ = Describe("Commands", func() {
	var dir string

	run := func(args ...string) (string, error) {
		root := NewRootCommand()
		out := new(bytes.Buffer)
		root.SetOut(out)
		root.SetErr(new(bytes.Buffer))
		root.SetArgs(append(args, "--log-level", "error"))

		err := root.Execute()

		return out.String(), err
	}

	write := func(name, body string) string {
		path := filepath.Join(dir, name)
		Expect(os.WriteFile(path, []byte(body), 0o644)).To(Succeed())

		return path
	}

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
	})

	Context("config", func() {
		It("should print the defaults", func() {
			out, err := run("config", "defaults")

			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("cross_slash_scale: 1.2"))
			Expect(out).To(ContainSubstring("crest_id: Reaper"))
		})

		It("should accept a valid file", func() {
			path := write("ok.yaml", "cross_slash_scale: 2\n")

			out, err := run("config", "validate", path)

			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("is valid"))
		})

		It("should reject out of range values", func() {
			path := write("bad.yaml", "collect_range: 100\n")

			out, err := run("config", "validate", path)

			Expect(err).To(MatchError(ContainSubstring("collect_range")))
			Expect(out).To(ContainSubstring("would be clamped: collect_range"))
		})

		It("should reject unknown fields", func() {
			path := write("unknown.yaml", "cross_slash_size: 2\n")

			_, err := run("config", "validate", path)

			Expect(err).To(HaveOccurred())
		})
	})

	Context("bundles", func() {
		It("should export manifests that cover the required assets", func() {
			out, err := run("bundles", "export", dir, "--platform", "linux")

			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("localpoolprefabs_assets_laceboss.bundle"))
			Expect(filepath.Join(dir, content.PlatformFolder("linux"),
				"localpoolprefabs_assets_areasong.bundle")).To(BeAnExistingFile())

			out, err = run("bundles", "scan", dir)

			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("Song Knight CrossSlash Friendly"))
			Expect(out).NotTo(MatchRegexp(`(?m)^Reaper Silk Bundle\s+-$`))
		})

		It("should fail when a required asset is missing", func() {
			write("empty.bundle", "name: empty\nassets:\n  - path: Assets/a.png\n    kind: Texture2D\n")

			out, err := run("bundles", "scan", dir)

			Expect(err).To(MatchError(ContainSubstring("3 of 3 required assets missing")))
			Expect(out).To(ContainSubstring("empty"))
		})
	})

	Context("sim", func() {
		It("should play the scripted session", func() {
			out, err := run("sim")
			Expect(err).NotTo(HaveOccurred())

			var s Summary
			Expect(json.Unmarshal([]byte(out), &s)).To(Succeed())

			Expect(s.Sessions).To(Equal(2))
			Expect(s.Spawns).To(Equal(5))
			Expect(s.VanillaSlashes).To(Equal(1))
			Expect(s.SlashDamage).To(Equal([]int{28, 69}))
			Expect(s.BindDuration).To(BeNumerically("~", 15, 1e-6))
			Expect(s.Status.Session).To(BeEmpty())
			Expect(s.Status.Enabled).To(BeTrue())
		})

		It("should load bundles from disk", func() {
			_, err := run("bundles", "export", dir, "--platform", "linux")
			Expect(err).NotTo(HaveOccurred())

			out, err := run("sim", "--bundles", dir, "--platform", "linux")
			Expect(err).NotTo(HaveOccurred())

			var s Summary
			Expect(json.Unmarshal([]byte(out), &s)).To(Succeed())
			Expect(s.Spawns).To(Equal(5))
		})

		It("should honour a disabled configuration", func() {
			path := write("off.yaml", "enable_reaper_balance: false\n")

			out, err := run("sim", "--config", path)
			Expect(err).NotTo(HaveOccurred())

			var s Summary
			Expect(json.Unmarshal([]byte(out), &s)).To(Succeed())
			Expect(s.Sessions).To(Equal(0))
			Expect(s.Spawns).To(Equal(0))
			Expect(s.VanillaSlashes).To(Equal(6))
		})

		It("should record a run that trace can summarize", func() {
			base := filepath.Join(dir, "run")

			_, err := run("sim", "--record", "--record-file", base)
			Expect(err).NotTo(HaveOccurred())

			out, err := run("trace", base+".sqlite3")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("session"))
			Expect(out).To(MatchRegexp(`spawns\s+5`))
			Expect(out).To(ContainSubstring("Config"))
		})

		It("should refuse a non-positive frame time", func() {
			_, err := run("sim", "--dt", "0")

			Expect(err).To(HaveOccurred())
		})
	})
})
