package main

import (
	"context"
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func runNetworks(cmd *cobra.Command, cfgPath string) error {
	a, err := newApp(commandContext(cmd), cfgPath)
	if err != nil {
		return err
	}
	defer a.close()

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(a.registry.All())
}

func runWallets(cmd *cobra.Command, cfgPath string) error {
	a, err := newApp(commandContext(cmd), cfgPath)
	if err != nil {
		return err
	}
	defer a.close()

	wallets := a.detector.Detect()
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KIND\tNAME\tFAMILY\tINSTALLED\tINSTALL URL")
	for _, w := range wallets {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%s\n", w.Kind, w.Name, w.ChainFamily, w.Installed, w.InstallURL)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if installedCount(wallets) == 0 {
		return errNoWallets
	}
	return nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
