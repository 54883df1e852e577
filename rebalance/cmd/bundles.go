package cmd

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/sarchlab/rebalance/config"
	"github.com/sarchlab/rebalance/content"
	"github.com/sarchlab/rebalance/host/hostsim"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const bundleExt = ".bundle"

func newBundlesCommand(opts *globalOptions) *cobra.Command {
	c := &cobra.Command{
		Use:   "bundles",
		Short: "Inspect and write bundle manifests.",
	}

	var configFile string

	scan := &cobra.Command{
		Use:   "scan <dir>",
		Short: "List the assets of every bundle under dir and the required asset coverage.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(config.Sources{File: configFile})
			if err != nil {
				return err
			}

			return scanBundles(cmd, args[0], cfg.Host.RequiredAssets, opts.logger())
		},
	}
	scan.Flags().StringVar(&configFile, "config", "",
		"configuration file naming the required assets")

	var platform string

	export := &cobra.Command{
		Use:   "export <dir>",
		Short: "Write the standard bundles as manifests the sim can load from disk.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return exportBundles(cmd, args[0], platform)
		},
	}
	export.Flags().StringVar(&platform, "platform", runtime.GOOS,
		"OS whose bundle folder to write into")

	c.AddCommand(scan, export)

	return c
}

type scannedBundle struct {
	file     string
	manifest *hostsim.Manifest
}

func scanBundles(
	cmd *cobra.Command,
	dir string,
	required []string,
	log *zap.Logger,
) error {
	var bundles []scannedBundle

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() || filepath.Ext(path) != bundleExt {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		m, err := hostsim.ParseManifest(data)
		if err != nil {
			log.Warn("skipping unreadable bundle",
				zap.String("file", path), zap.Error(err))
			return nil
		}

		if m.Name == "" {
			m.Name = strings.TrimSuffix(filepath.Base(path), bundleExt)
		}

		bundles = append(bundles, scannedBundle{file: path, manifest: m})

		return nil
	})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)

	fmt.Fprintln(w, "BUNDLE\tKIND\tASSET")

	for _, b := range bundles {
		for _, a := range b.manifest.Assets {
			fmt.Fprintf(w, "%s\t%s\t%s\n", b.manifest.Name, a.Kind, a.Path)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "REQUIRED\tFOUND IN")

	missing := 0

	for _, r := range required {
		found := findRequired(bundles, r)
		if len(found) == 0 {
			missing++

			fmt.Fprintf(w, "%s\t-\n", r)

			continue
		}

		fmt.Fprintf(w, "%s\t%s\n", r, strings.Join(found, ", "))
	}

	if err := w.Flush(); err != nil {
		return err
	}

	if missing > 0 {
		return fmt.Errorf("%d of %d required assets missing", missing, len(required))
	}

	return nil
}

// findRequired names the bundles holding an asset whose stem equals name or,
// failing that, contains it.
func findRequired(bundles []scannedBundle, name string) []string {
	var exact, partial []string

	for _, b := range bundles {
		for _, a := range b.manifest.Assets {
			stem := content.Stem(a.Path)

			switch {
			case strings.EqualFold(stem, name):
				exact = append(exact, b.manifest.Name)
			case strings.Contains(strings.ToLower(stem), strings.ToLower(name)):
				partial = append(partial, b.manifest.Name)
			}
		}
	}

	if len(exact) > 0 {
		return dedupe(exact)
	}

	return dedupe(partial)
}

func dedupe(names []string) []string {
	sort.Strings(names)
	return slices.Compact(names)
}

func exportBundles(cmd *cobra.Command, dir, platform string) error {
	folder := filepath.Join(dir, content.PlatformFolder(platform))

	if err := os.MkdirAll(folder, 0o755); err != nil {
		return err
	}

	for _, m := range hostsim.StandardManifests() {
		data, err := m.Encode()
		if err != nil {
			return err
		}

		path := filepath.Join(folder, m.Name+bundleExt)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
	}

	return nil
}
