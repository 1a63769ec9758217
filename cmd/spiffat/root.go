package main

import (
	"fmt"
	"os"

	"github.com/flashkeep/spiffat/flash"
	"github.com/flashkeep/spiffat/internal/logx"
	"github.com/flashkeep/spiffat/spiffat"
	"github.com/spf13/cobra"
)

var (
	imagePath string
	imageSize int
	pageSize  int
	regStart  int
	regEnd    int
	verbose   int
)

var rootCmd = &cobra.Command{
	Use:   "spiffat",
	Short: "Inspect and manipulate a spiffat flash-image file",
	Long: `spiffat operates a log-structured, wear-leveling file system image
backed by a plain host file standing in for raw SPI flash.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&imagePath, "image", "spiffat.img", "path to the flash image file")
	rootCmd.PersistentFlags().IntVar(&imageSize, "size", 1<<20, "device size in bytes, for a freshly created image")
	rootCmd.PersistentFlags().IntVar(&pageSize, "page-size", spiffat.DefaultPageSize, "page/sector size in bytes")
	rootCmd.PersistentFlags().IntVar(&regStart, "start", 0, "region start offset")
	rootCmd.PersistentFlags().IntVar(&regEnd, "end", 0, "region end offset (0 means end of device)")
	rootCmd.PersistentFlags().CountVarP(&verbose, "verbose", "v", "increase log verbosity")

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newLsCommand())
	rootCmd.AddCommand(newCatCommand())
	rootCmd.AddCommand(newWriteCommand())
	rootCmd.AddCommand(newRmCommand())
	rootCmd.AddCommand(newGCCommand())
	rootCmd.AddCommand(newStatCommand())
}

// openFS opens the image file, binds a FileSystem to the configured
// region, and scans it. scan controls whether Init is called
// (skipped by the init command, which runs Init itself with a
// callback).
func openFS(scan bool) (*spiffat.FileSystem, error) {
	dev, err := flash.OpenHostFlash(imagePath, imageSize, pageSize)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}

	end := regEnd
	if end == 0 {
		end = dev.Size()
	}

	log := logx.NewTest(os.Stderr, verbose)
	fs, err := spiffat.New(regStart, end, dev, spiffat.Options{
		PageSize: pageSize,
		Logger:   &log,
	})
	if err != nil {
		return nil, fmt.Errorf("bind region: %w", err)
	}

	if scan {
		if err := fs.Init(nil); err != nil {
			return nil, fmt.Errorf("scan image: %w", err)
		}
	}
	return fs, nil
}
