package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/runger/tubedash/internal/credential"
	"github.com/runger/tubedash/internal/dashboard"
)

var keyCmd = &cobra.Command{
	Use:     "key",
	Short:   "Manage the YouTube Data API key",
	GroupID: groupSetup,
	Long: `Manage the YouTube Data API key stored in the local state database.

The ` + credential.EnvVar + ` environment variable, when set, takes precedence
over the stored key.

Examples:
  tubedash key set AIza...
  tubedash key show
  tubedash key clear`,
}

var keySetCmd = &cobra.Command{
	Use:   "set <key>",
	Short: "Store the API key",
	Args:  cobra.ExactArgs(1),
	RunE:  runKeySet,
}

var keyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the masked API key and where it comes from",
	Args:  cobra.NoArgs,
	RunE:  runKeyShow,
}

var keyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the stored API key",
	Args:  cobra.NoArgs,
	RunE:  runKeyClear,
}

func init() {
	keyCmd.AddCommand(keySetCmd, keyShowCmd, keyClearCmd)
}

func runKeySet(cmd *cobra.Command, args []string) error {
	applyColorMode()

	a, err := openApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	key := strings.TrimSpace(args[0])
	if key == "" {
		return &dashboard.ConfigurationError{Reason: dashboard.ReasonEmptyKey}
	}
	if err := a.creds.Set(cmd.Context(), key); err != nil {
		return fmt.Errorf("save key: %w", err)
	}
	a.logger.Info("api key stored")

	fmt.Fprintf(cmd.OutOrStdout(), "%sAPI key saved%s (%s)\n", colorGreen, colorReset, credential.Mask(key))
	if envSet() {
		fmt.Fprintf(cmd.OutOrStdout(), "%sNote:%s %s is set and takes precedence\n", colorYellow, colorReset, credential.EnvVar)
	}
	return nil
}

func runKeyShow(cmd *cobra.Command, args []string) error {
	applyColorMode()

	a, err := openApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	key, err := credential.Lookup(cmd.Context(), a.creds)
	if err != nil {
		return fmt.Errorf("read key: %w", err)
	}
	if key == "" {
		fmt.Fprintf(cmd.OutOrStdout(), "%s(not set)%s\n", colorDim, colorReset)
		return nil
	}

	source := a.cfg.DBPath(a.paths)
	if envSet() {
		source = "$" + credential.EnvVar
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s(from %s)%s\n", credential.Mask(key), colorDim, source, colorReset)
	return nil
}

func runKeyClear(cmd *cobra.Command, args []string) error {
	applyColorMode()

	a, err := openApp(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.creds.Clear(cmd.Context()); err != nil {
		return fmt.Errorf("clear key: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "API key cleared\n")
	return nil
}

func envSet() bool {
	return strings.TrimSpace(os.Getenv(credential.EnvVar)) != ""
}
