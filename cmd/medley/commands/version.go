package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hpcc-systems/Medley/internal/version"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print medley's build version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(version.Get().String())
			return nil
		},
	}
}
