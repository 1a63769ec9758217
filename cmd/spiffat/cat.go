package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newCatCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cat NAME",
		Short: "Print a file's contents to stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fs, err := openFS(true)
			if err != nil {
				return err
			}
			f, err := fs.Open(args[0], "r")
			if err != nil {
				return err
			}
			data, err := f.Read(-1)
			if err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			_, err = fmt.Fprint(os.Stdout, string(data))
			return err
		},
	}
}
