package main

import (
	"fmt"
	"os"

	"github.com/cleansweep/litterwatch/cmd/cli/admin"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func init() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	rootCmd.AddGroup(admin.Group)
	rootCmd.AddCommand(admin.Promote)
	rootCmd.AddCommand(admin.Stats)
}

var rootCmd = &cobra.Command{
	Use:  "litterwatch-cli",
	Long: `Command line utilities for operating a litterwatch deployment`,
	Run: func(cmd *cobra.Command, args []string) {
		// Do Stuff Here
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	Execute()
}
