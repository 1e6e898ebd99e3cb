package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	// Imported for their init() side effects: migrations and seeders
	// register themselves at startup.
	_ "github.com/shashiranjanraj/vyapar/database/migrations"
	_ "github.com/shashiranjanraj/vyapar/database/seeders"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:   "vyapar",
	Short: "Vyapar — e-commerce backend",
	Long:  "Vyapar is an e-commerce backend: catalogue, carts, orders and payments behind one JSON API.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "path to the .env file")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(routeListCmd)

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(migrateRollbackCmd)
	rootCmd.AddCommand(migrateStatusCmd)
	rootCmd.AddCommand(seedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
