package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newLsCommand() *cobra.Command {
	var byDate bool

	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List files",
		RunE: func(cmd *cobra.Command, args []string) error {
			fs, err := openFS(true)
			if err != nil {
				return err
			}
			for _, f := range fs.FileList(byDate) {
				created := time.Unix(int64(f.Created), 0).UTC().Format(time.RFC3339)
				fmt.Printf("%-40s %8d bytes  %s\n", f.Name, f.SizeTotal(), created)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&byDate, "by-date", false, "sort by creation time instead of name")
	return cmd
}
