package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgPath string

	root := &cobra.Command{
		Use:           "walletd",
		Short:         "Wallet connection and network switching service",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), cfgPath)
		},
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "configs", "directory containing config.yaml")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP session service",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runServe(cmd.Context(), cfgPath)
			},
		},
		&cobra.Command{
			Use:   "networks",
			Short: "Print the network registry",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runNetworks(cmd, cfgPath)
			},
		},
		&cobra.Command{
			Use:   "wallets",
			Short: "Print detected wallets",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runWallets(cmd, cfgPath)
			},
		},
	)
	return root
}
