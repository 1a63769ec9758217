package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newGCCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "gc [n]",
		Short: "Collect dirty sectors back to FREE; sync if n is given, async otherwise",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fs, err := openFS(true)
			if err != nil {
				return err
			}

			if len(args) == 0 {
				if _, err := fs.GC(0); err != nil {
					return err
				}
				fmt.Println("async gc started")
				return nil
			}

			n, err := strconv.Atoi(args[0])
			if err != nil || n <= 0 {
				return fmt.Errorf("gc: n must be a positive page count, got %q", args[0])
			}
			collected, err := fs.GC(n)
			if err != nil {
				return err
			}
			fmt.Printf("collected %d pages\n", collected)
			return nil
		},
	}
}
