/*
This is the main package for the sentinel application, it sets up a sentinel node and starts it.
*/
package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/logging"
	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo"
	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/configuration"
	"github.com/n-y-z-o/nyzoVerifier-sub001/internal/nyzo/networking"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	v := viper.New()
	if err := newRootCommand(v).ExecuteContext(context.Background()); err != nil {
		logging.ErrorLog.Fatal(err.Error())
	}
}

func newRootCommand(v *viper.Viper) *cobra.Command {
	root := &cobra.Command{
		Use:           "sentinel",
		Short:         "Protects Nyzo verifiers by producing blocks for them when the cycle stalls",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := configuration.LoadSettings(v)
			if err != nil {
				return err
			}
			return nyzo.RunSentinel(cmd.Context(), settings)
		},
	}
	flags := root.PersistentFlags()
	flags.String(configuration.DataDirectoryKey, configuration.DataDirectory, "data directory (preferences, managed_verifiers, identity)")
	flags.Bool(configuration.TraceKey, false, "enable trace logging")
	flags.String(configuration.BootstrapStrategyKey, configuration.BootstrapStrategyFast, "bootstrap strategy: fast or thorough")
	flags.Bool(configuration.ApiEnabledKey, false, "serve /status and /metrics")
	flags.String(configuration.ApiListenAddressKey, ":8000", "API listen address")
	for _, key := range []string{configuration.DataDirectoryKey, configuration.TraceKey, configuration.BootstrapStrategyKey, configuration.ApiEnabledKey, configuration.ApiListenAddressKey} {
		_ = v.BindPFlag(key, flags.Lookup(key))
	}
	root.AddCommand(newFrozenEdgeCommand(v), newVerifiersCommand(v))
	return root
}

func newFrozenEdgeCommand(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "frozen-edge",
		Short: "Ask all managed verifiers for their frozen edge and print the most advanced one",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := configuration.LoadSettings(v)
			if err != nil {
				return err
			}
			view, err := nyzo.QueryFrozenEdge(cmd.Context(), settings)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "height: %d\nhash: %x\nreported by: %s\ncycle length: %d\n", view.Height, view.Hash, view.Source.Identity.Nickname, len(view.CycleMembers))
			return nil
		},
	}
}

func newVerifiersCommand(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "verifiers",
		Short: "List the managed verifiers",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := configuration.LoadSettings(v)
			if err != nil {
				return err
			}
			verifiers, err := networking.LoadManagedVerifiers(filepath.Join(settings.DataDirectory, configuration.ManagedVerifiersFileName))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, verifier := range verifiers {
				marker := ""
				if verifier.SentinelTransactionEnabled {
					marker = " (sentinel transaction)"
				}
				fmt.Fprintf(out, "%s %s %s%s\n", verifier.Address(), verifier.Identity.PublicHex, verifier.Identity.Nickname, marker)
			}
			return nil
		},
	}
}
