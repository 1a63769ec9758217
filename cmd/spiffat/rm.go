package main

import "github.com/spf13/cobra"

func newRmCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rm NAME",
		Short: "Erase a file (sectors reclaimed lazily by gc)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fs, err := openFS(true)
			if err != nil {
				return err
			}
			return fs.EraseFile(args[0])
		},
	}
}
