package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"clinical-agent/internal/config"
	"clinical-agent/internal/secrets"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and edit configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration (file, env and defaults merged)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		shown := *app.cfg
		shown.LLM.APIKey = maskedKey(shown.LLM.APIKey)
		if shown.FallbackLLM != nil {
			fb := *shown.FallbackLLM
			fb.APIKey = maskedKey(fb.APIKey)
			shown.FallbackLLM = &fb
		}
		if shown.Cache.Password != "" {
			shown.Cache.Password = secrets.MaskKey(shown.Cache.Password)
		}

		data, err := yaml.Marshal(&shown)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()
		fmt.Fprintln(cmd.OutOrStdout(), app.cfgLoader.FilePath())
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with default values",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		path := app.cfgLoader.FilePath()
		force, _ := cmd.Flags().GetBool("force")
		if _, err := os.Stat(path); err == nil && !force {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		if err := app.cfgLoader.Save(config.Defaults()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return nil
	},
}

var configSetKeyCmd = &cobra.Command{
	Use:   "set-key <provider> [key]",
	Short: "Store a provider API key in the OS keyring",
	Long: `Store a provider API key in the OS keyring. Without a key argument the key
is read from stdin. Where no keyring exists, set CLINICAL_AGENT_VAULT_PASSPHRASE
to keep keys in an encrypted file instead.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		provider := args[0]
		if _, ok := secrets.EnvVar(provider); !ok {
			return fmt.Errorf("provider %s does not use an API key", provider)
		}

		var key string
		if len(args) == 2 {
			key = args[1]
		} else {
			fmt.Fprint(cmd.ErrOrStderr(), "API key: ")
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("read key: %w", err)
			}
			key = line
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return fmt.Errorf("empty key")
		}

		if err := app.keyStore.Set(secrets.KeyName(provider), key); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Stored %s key %s\n", provider, secrets.MaskKey(key))
		return nil
	},
}

func init() {
	configInitCmd.Flags().Bool("force", false, "overwrite an existing file")
	configCmd.AddCommand(configShowCmd, configPathCmd, configInitCmd, configSetKeyCmd)
	rootCmd.AddCommand(configCmd)
}

func maskedKey(key string) string {
	if key == "" {
		return ""
	}
	return secrets.MaskKey(key)
}
