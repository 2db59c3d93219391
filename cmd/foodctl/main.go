// Command foodctl seeds a food store and queries a running foodflow service.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"foodflow/pkg/client"
)

var (
	apiURL   string
	user     string
	password string
)

var rootCmd = &cobra.Command{
	Use:           "foodctl",
	Short:         "foodctl manages food nutrition records",
	Long:          "foodctl loads fixture records into the configured store and reads records from a running foodflow API.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	def := os.Getenv("FOODCTL_API")
	if def == "" {
		def = "http://localhost:8080"
	}
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", def, "Base URL of the foodflow API")
	rootCmd.PersistentFlags().StringVar(&user, "user", "", "Log in as this user before calling the API")
	rootCmd.PersistentFlags().StringVar(&password, "password", "", "Password for --user")
}

// apiClient returns a client for --api, logged in when --user is set.
func apiClient(cmd *cobra.Command) (*client.Client, error) {
	c := client.New(apiURL)
	if user != "" {
		if err := c.Login(cmd.Context(), user, password); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
