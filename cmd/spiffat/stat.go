package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stat",
		Short: "Print region dimensions and a conservative free-space estimate",
		RunE: func(cmd *cobra.Command, args []string) error {
			fs, err := openFS(true)
			if err != nil {
				return err
			}
			d := fs.Dimensions()
			fsp := fs.GetFreeSpace()
			fmt.Printf("device size: %d bytes\n", d.Size)
			fmt.Printf("region:      [%d, %d) = %d bytes, %d pages\n", d.Start, d.End, d.Len, d.Pages)
			fmt.Printf("free:        ~%d bytes\n", fsp.Free)
			fmt.Printf("freeable:    ~%d bytes (after gc)\n", fsp.Freeable)
			return nil
		},
	}
}
