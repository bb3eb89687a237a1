package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alnah/go-fatsecret/internal/config"
)

// ConfigCmd creates the config command with subcommands.
// The env parameter provides injectable dependencies for testing.
func ConfigCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration settings",
		Long: `Manage persistent configuration settings.

Configuration is stored in ~/.config/go-fatsecret/config.
Every setting can also come from an environment variable (or a .env file);
values in the config file take precedence.

Supported settings:
  consumer-key     FatSecret consumer key     (env: FATSECRET_CONSUMER_KEY)
  consumer-secret  FatSecret consumer secret  (env: FATSECRET_CONSUMER_SECRET)
  auth-mode        oauth1 (default) or oauth2 (env: FATSECRET_AUTH_MODE)
  api-url          API endpoint override      (env: FATSECRET_API_URL)
  token-url        OAuth 2.0 token endpoint   (env: FATSECRET_TOKEN_URL)
  scopes           OAuth 2.0 scopes           (env: FATSECRET_SCOPES)
  timeout          Request timeout, e.g. 30s  (env: FATSECRET_TIMEOUT)
  rate-limit       Max calls per second, 0 = unlimited (env: FATSECRET_RATE_LIMIT)
  user-agent       User-Agent header          (env: FATSECRET_USER_AGENT)
  region           Default search region      (env: FATSECRET_REGION)
  language         Default search language    (env: FATSECRET_LANGUAGE)`,
		Example: `  fatsecret config set consumer-key abc123
  fatsecret config set auth-mode oauth2
  fatsecret config get region
  fatsecret config list`,
	}

	cmd.AddCommand(configSetCmd(env))
	cmd.AddCommand(configGetCmd(env))
	cmd.AddCommand(configListCmd(env))

	return cmd
}

// configSetCmd creates the "config set" subcommand.
func configSetCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Example: `  fatsecret config set consumer-secret s3cr3t
  fatsecret config set timeout 15s`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(env, args[0], args[1])
		},
	}
}

// configGetCmd creates the "config get" subcommand.
func configGetCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Long: `Get a configuration value.

Prints the value to stdout, or nothing if not set. Credentials are masked.`,
		Example: `  fatsecret config get region`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigGet(env, args[0])
		},
	}
}

// configListCmd creates the "config list" subcommand.
func configListCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configuration values",
		Long: `List all configuration values.

Shows both values from the config file and environment variable fallbacks.
Credentials are masked.`,
		Example: `  fatsecret config list`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigList(env)
		},
	}
}

// runConfigSet handles the "config set" command.
func runConfigSet(env *Env, key, value string) error {
	if err := config.Save(key, value); err != nil {
		return err
	}

	shown := value
	if config.IsSecret(key) {
		shown = config.Mask(value)
	}
	fmt.Fprintf(env.Stderr, "Set %s = %s\n", key, shown)
	return nil
}

// resolveValue returns the file value of key, else its environment
// fallback, and whether it came from the environment.
func resolveValue(env *Env, key string, data map[string]string) (string, bool) {
	if v := data[key]; v != "" {
		return v, false
	}
	if v := env.Getenv(config.EnvFor(key)); v != "" {
		return v, true
	}
	return "", false
}

// runConfigGet handles the "config get" command.
func runConfigGet(env *Env, key string) error {
	if !config.IsKnownKey(key) {
		return fmt.Errorf("%w: %q", config.ErrUnknownKey, key)
	}

	data, err := config.List()
	if err != nil {
		return err
	}

	value, _ := resolveValue(env, key, data)
	if value == "" {
		return nil
	}
	if config.IsSecret(key) {
		value = config.Mask(value)
	}
	fmt.Fprintln(env.Stdout, value)
	return nil
}

// runConfigList handles the "config list" command.
func runConfigList(env *Env) error {
	data, err := config.List()
	if err != nil {
		return err
	}

	printed := 0
	for _, key := range config.Keys() {
		value, fromEnv := resolveValue(env, key, data)
		if value == "" {
			continue
		}
		if config.IsSecret(key) {
			value = config.Mask(value)
		}
		if fromEnv {
			value += " (from env)"
		}
		fmt.Fprintf(env.Stdout, "%s=%s\n", key, value)
		printed++
	}

	if printed == 0 {
		fmt.Fprintln(env.Stdout, "No configuration set.")
		fmt.Fprintln(env.Stdout, "\nAvailable settings:")
		for _, key := range config.Keys() {
			fmt.Fprintf(env.Stdout, "  %s\n", key)
		}
	}
	return nil
}
