package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

const version = "1.0.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  `Display the current version of the backlab CLI.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("backlab version %s\n", version)
		fmt.Println("A backtest validation lab for multi-asset daily strategies")
		fmt.Println("https://github.com/rustyeddy/backlab")
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
