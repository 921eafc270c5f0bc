package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/makkenzo/gdb-api/internal/config"
	"github.com/makkenzo/gdb-api/internal/service"
	"github.com/makkenzo/gdb-api/pkg/logger"
	"github.com/spf13/cobra"
)

func main() {
	var (
		configPath string
		subject    string
		roles      []string
		lifetime   time.Duration
	)

	rootCmd := &cobra.Command{
		Use:   "issuetoken",
		Short: "Mint a bearer token signed with the configured JWT settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			if lifetime > 0 {
				cfg.JWT.TokenLifetime = lifetime
			}

			appLogger, err := logger.NewZapLogger("warn", false)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer appLogger.Sync()

			tokens, err := service.NewTokenService(&cfg.JWT, appLogger)
			if err != nil {
				return err
			}

			token, expiresAt, err := tokens.Issue(subject, roles)
			if err != nil {
				return fmt.Errorf("failed to issue token: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", token)
			fmt.Fprintf(cmd.ErrOrStderr(), "Subject: %s\nRoles: %v\nExpires at: %s\n", subject, roles, expiresAt.Format(time.RFC3339))
			return nil
		},
	}

	rootCmd.Flags().StringVarP(&configPath, "config", "c", "./configs/config.dev.yaml", "Path to configuration file")
	rootCmd.Flags().StringVarP(&subject, "subject", "s", "admin", "Token subject")
	rootCmd.Flags().StringSliceVarP(&roles, "role", "r", []string{"admin"}, "Role claim, repeatable")
	rootCmd.Flags().DurationVar(&lifetime, "lifetime", 0, "Override jwt.tokenLifetime")

	if err := rootCmd.Execute(); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}
