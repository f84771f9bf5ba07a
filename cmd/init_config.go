package cmd

import (
	"fmt"

	"github.com/ginjaninja78/NFCe-to-PDF-conversion/internal/config"
	"github.com/spf13/cobra"
)

// initConfigCmd writes a configuration file holding every default.
var initConfigCmd = &cobra.Command{
	Use:   "init-config [path]",
	Short: "Write a configuration file with the default settings",
	Long: `Write a YAML configuration file listing every setting with its default
value. The file is written to danfe.yaml unless a path is given, and an
existing file is only replaced with --force.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.DefaultPath
		if len(args) == 1 {
			path = args[0]
		}

		force, _ := cmd.Flags().GetBool("force")
		if err := config.WriteDefault(path, force); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Wrote default configuration to %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initConfigCmd)
	initConfigCmd.Flags().Bool("force", false, "Overwrite an existing file")
}
