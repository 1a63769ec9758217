package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"
)

func newWriteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "write NAME",
		Short: "Create a file from stdin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fs, err := openFS(true)
			if err != nil {
				return err
			}
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				return err
			}

			f, err := fs.Open(args[0], "w")
			if err != nil {
				return err
			}
			if err := f.Write(data); err != nil {
				f.Close()
				return err
			}
			return f.Close()
		},
	}
}
