package main

import (
	"fmt"
	"os"
	"runtime/debug"
	"time"

	"github.com/spf13/cobra"

	"github.com/chromakit/psdtag/internal/tifftag"
	"github.com/chromakit/psdtag/pkg/logging"
	"github.com/chromakit/psdtag/pkg/psd"
)

const version = "0.1.0"

var (
	pageIndex   int
	strictMode  bool
	logLevel    string
	rootCmd     *cobra.Command
	versionFlag bool
)

func getBuildTimestamp() string {
	// Try to get vcs.time from build info
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.time" {
				if t, err := time.Parse(time.RFC3339, setting.Value); err == nil {
					return t.UTC().Format(time.RFC3339)
				}
			}
		}
	}
	// Fallback to binary modification time
	if exePath, err := os.Executable(); err == nil {
		if stat, err := os.Stat(exePath); err == nil {
			return stat.ModTime().UTC().Format(time.RFC3339)
		}
	}
	return time.Now().UTC().Format(time.RFC3339)
}

func init() {
	rootCmd = &cobra.Command{
		Use:   "psdtag",
		Short: "Inspect Photoshop metadata tags in TIFF files",
		Long:  `Inspect the ImageSourceData and ImageResources tags of layered TIFF files`,
	}

	rootCmd.PersistentFlags().IntVar(&pageIndex, "page", 0, "TIFF page index")
	rootCmd.PersistentFlags().BoolVar(&strictMode, "strict", false, "Treat record size overruns as errors")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVarP(&versionFlag, "version", "V", false, "Show version information")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "layers <file.tif>",
		Short: "Print the layer tree of the ImageSourceData tag",
		Args:  cobra.ExactArgs(1),
		Run:   showLayers,
	})
	rootCmd.AddCommand(&cobra.Command{
		Use:   "resources <file.tif>",
		Short: "Print the image resource blocks of the ImageResources tag",
		Args:  cobra.ExactArgs(1),
		Run:   showResources,
	})
}

func main() {
	// Handle --version or -V before cobra parses other flags
	if len(os.Args) > 1 && (os.Args[1] == "--version" || os.Args[1] == "-V") {
		fmt.Printf("psdtag %s\n", version)
		fmt.Printf("Built: %s\n", getBuildTimestamp())
		os.Exit(0)
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func readOptions() *psd.ReadOptions {
	level := logLevel
	if level == "" {
		level = logging.GetLogLevel()
	}
	return &psd.ReadOptions{
		PreserveUnknown: true,
		Strict:          strictMode,
		Logger:          logging.NewLogger("psdtag", level, os.Stderr),
	}
}

func tagValue(path string, tag uint16) ([]byte, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	tf, err := tifftag.Open(fh)
	if err != nil {
		return nil, err
	}
	return tf.Value(tag, pageIndex)
}

func showLayers(cmd *cobra.Command, args []string) {
	value, err := tagValue(args[0], psd.TagImageSourceData)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	isd, err := psd.UnpackImageSourceData(value, readOptions())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fmt.Printf("format:  %s\n", isd.Format)
	fmt.Printf("layers:  %d (%s, transparency=%v)\n",
		len(isd.Layers.Layers), isd.Layers.K, isd.Layers.HasTransparency)
	for i, la := range isd.Layers.Layers {
		fmt.Printf("  [%d] %q rect=%s blend=%s opacity=%d channels=%d\n",
			i, la.Name, la.Rect, la.BlendMode, la.Opacity, len(la.Channels))
		for _, ch := range la.Channels {
			rows, cols := 0, 0
			if ch.Data != nil {
				rows, cols = ch.Data.Rows, ch.Data.Cols
			}
			fmt.Printf("      channel %3d %s %dx%d\n", ch.ID, ch.Compression, rows, cols)
		}
		if la.Mask != nil {
			fmt.Printf("      mask rect=%s flags=%d\n", la.Mask.Rect, la.Mask.Flags)
		}
		for _, s := range la.Info {
			fmt.Printf("      info %s\n", s.Key())
		}
	}
	for _, s := range isd.Info {
		fmt.Printf("section: %s\n", s.Key())
	}
}

func showResources(cmd *cobra.Command, args []string) {
	value, err := tagValue(args[0], psd.TagImageResources)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	res, err := psd.UnpackImageResources(value, readOptions())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fmt.Printf("resources: %d\n", len(res.Blocks))
	for _, b := range res.Blocks {
		fmt.Printf("  [%d] %q %T\n", b.ID, b.Name, b.Payload)
	}
}
