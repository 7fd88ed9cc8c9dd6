package cmd

import (
	"github.com/spf13/cobra"

	"s3-upload-helper/pkg/version"
)

// newVersionCmd represents the version command
func newVersionCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display the version and build information of s3-upload-helper.`,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			version.Print(r.stdout)
		},
	}
}
