package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Taichi-iskw/yt-scribe/internal/service/persistence"
)

// authCmd groups credential setup
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Set up credentials for external services",
}

// authGoogleCmd runs the OAuth consent flow for Google Docs output
var authGoogleCmd = &cobra.Command{
	Use:   "google",
	Short: "Authorize access to Google Drive and Docs",
	Long: `Open the Google consent page, paste back the authorization code and store
the resulting token at persistence.token_file.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		pc := cfg.Persistence

		oauthCfg, err := persistence.LoadOAuthConfig(pc.CredentialsFile)
		if err != nil {
			return err
		}

		if err := persistence.AuthorizeInstalledApp(cmd.Context(), oauthCfg, pc.TokenFile, os.Stdout, os.Stdin); err != nil {
			return err
		}

		fmt.Printf("Token saved to %s\n", pc.TokenFile)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authGoogleCmd)
}
