package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"portfolio/pkg/config"
)

// Configuration flags
var (
	dataFile    string
	assetsDir   string
	bucketName  string
	portNumber  string
	defaultLang string
	secretKey   string
)

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "portfolio",
		Short: "Portfolio renders a multilingual horizontal image portfolio",
		Long: `Portfolio is a command line application that renders an image portfolio described
by a JSON data file. Images live in a local folder or in Google Cloud Storage. It can serve
the portfolio via a web interface, export it, and keep the image counts of the data file current.`,
	}

	// Define persistent flags that will be available for all commands
	rootCmd.PersistentFlags().StringVarP(&dataFile, "data", "d", "", "Set the DATA_FILE (overrides environment variable)")
	rootCmd.PersistentFlags().StringVarP(&assetsDir, "assets", "a", "", "Set the ASSETS_DIR (overrides environment variable)")
	rootCmd.PersistentFlags().StringVarP(&bucketName, "bucket", "b", "", "Set the BUCKET_NAME (overrides environment variable)")
	rootCmd.PersistentFlags().StringVarP(&portNumber, "port", "p", "", "Set the PORT (overrides environment variable)")
	rootCmd.PersistentFlags().StringVarP(&defaultLang, "lang", "l", "", "Set the DEFAULT_LANG (overrides environment variable)")
	rootCmd.PersistentFlags().StringVarP(&secretKey, "secret-key", "s", "", "Set the SECRET_KEY (overrides environment variable)")

	// Add commands to root
	rootCmd.AddCommand(newListProjectsCmd())
	rootCmd.AddCommand(newListTextsCmd())
	rootCmd.AddCommand(newShowProjectCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newUpdateCountsCmd())

	return rootCmd
}

// LoadConfig loads configuration with respect to command line flags
func LoadConfig() (*config.Config, error) {
	// Set environment variables from flags if provided
	flags := map[string]string{
		"DATA_FILE":    dataFile,
		"ASSETS_DIR":   assetsDir,
		"BUCKET_NAME":  bucketName,
		"PORT":         portNumber,
		"DEFAULT_LANG": defaultLang,
		"SECRET_KEY":   secretKey,
	}
	for key, value := range flags {
		if value != "" {
			os.Setenv(key, value)
		}
	}

	// Load configuration from environment variables (potentially set above)
	return config.Load()
}
