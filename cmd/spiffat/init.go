package main

import (
	"fmt"

	"github.com/flashkeep/spiffat/fat"
	"github.com/spf13/cobra"
)

func newInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Scan the image and print the files found",
		RunE: func(cmd *cobra.Command, args []string) error {
			fs, err := openFS(false)
			if err != nil {
				return err
			}
			var files []fat.Entry
			if err := fs.Init(func(list []fat.Entry) { files = list }); err != nil {
				return err
			}
			for _, f := range files {
				fmt.Printf("%-40s %8d bytes\n", f.Name, f.SizeTotal())
			}
			return nil
		},
	}
}
