package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const defaultBaseURL = "http://localhost:8080"

var (
	flagConfig  string
	flagAPI     string
	flagProfile string
)

var rootCmd = &cobra.Command{
	Use:           "reviewhub",
	Short:         "Electronics review site: server, client and catalog tools",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file (default: embedded defaults, REVIEWHUB_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&flagAPI, "api", defaultBaseURL, "server base URL for client commands")
	rootCmd.PersistentFlags().StringVar(&flagProfile, "profile-file", defaultProfilePath(), "where client commands keep their profile cookie")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(reviewsCmd)
	rootCmd.AddCommand(commentsCmd)
	rootCmd.AddCommand(themeCmd)
	rootCmd.AddCommand(catalogCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
