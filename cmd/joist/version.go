package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/joist"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of joist",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("joist version %s\n", strings.TrimSpace(joist.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
