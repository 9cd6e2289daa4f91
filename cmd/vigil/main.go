// Command vigil runs the simulated translation server and a polling client
// against it.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "vigil",
	Short: "Simulated async translation backend and adaptive polling client",
	Long: `vigil simulates a video-translation backend whose jobs take a
randomized time to finish, and a client that discovers completion by
polling with an adaptive interval strategy.`,
	SilenceUsage: true,
}

func main() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(watchCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
