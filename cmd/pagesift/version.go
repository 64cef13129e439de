package main

import (
	"github.com/spf13/cobra"

	"github.com/pagesift/pagesift/internal/server"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("pagesift version %s\n", server.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
