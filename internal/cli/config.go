package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/alnah/go-sessionmix/internal/config"
)

// validConfigKeys lists all supported configuration keys.
var validConfigKeys = config.Keys

// ConfigCmd creates the config command with subcommands.
// The env parameter provides injectable dependencies for testing.
func ConfigCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration settings",
		Long: `Manage persistent configuration settings.

Configuration is stored in ~/.config/sessionmix/config.
Settings can also be provided via environment variables; flags override both.

Supported settings:
  audio-dir       Folder holding the session clips (env: SESSIONMIX_AUDIO_DIR)
  output-dir      Where mixed files are written (env: SESSIONMIX_OUTPUT_DIR)
  music-gain-db   Music reduction in dB, 0 or below (env: SESSIONMIX_MUSIC_GAIN_DB)`,
		Example: `  sessionmix config set audio-dir ~/Sofa2Slugger-v2/assets/audio
  sessionmix config set music-gain-db -18
  sessionmix config get output-dir
  sessionmix config list`,
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
		Long: `Set a configuration value.

Supported keys:
  audio-dir       Must be an existing directory
  output-dir      Created if it doesn't exist
  music-gain-db   A number of dB, 0 or below`,
		Example: `  sessionmix config set output-dir ~/Music/sessions
  sessionmix config set music-gain-db -22`,
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

Prints the value to stdout, or nothing if not set.`,
		Example: `  sessionmix config get audio-dir`,
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

Shows both values from the config file and environment variable overrides.`,
		Example: `  sessionmix config list`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigList(env)
		},
	}
}

// runConfigSet handles the "config set" command.
func runConfigSet(env *Env, key, value string) error {
	if !isValidConfigKey(key) {
		return fmt.Errorf("%w %q (valid keys: %v)", ErrUnknownConfigKey, key, validConfigKeys)
	}

	// Key-specific validation. Paths are stored expanded.
	switch key {
	case config.KeyAudioDir:
		value = config.ExpandPath(value)
		if err := config.CheckAudioDir(value); err != nil {
			return fmt.Errorf("invalid audio-dir: %w", err)
		}
	case config.KeyOutputDir:
		value = config.ExpandPath(value)
		if err := config.EnsureOutputDir(value); err != nil {
			return fmt.Errorf("invalid output-dir: %w", err)
		}
	case config.KeyMusicGainDB:
		if _, err := config.ParseGain(value); err != nil {
			return err
		}
	}

	if err := config.Save(key, value); err != nil {
		return err
	}

	fmt.Fprintf(env.Stderr, "Set %s = %s\n", key, value)
	return nil
}

// runConfigGet handles the "config get" command.
func runConfigGet(env *Env, key string) error {
	if !isValidConfigKey(key) {
		return fmt.Errorf("%w %q (valid keys: %v)", ErrUnknownConfigKey, key, validConfigKeys)
	}

	value, err := config.Get(key)
	if err != nil {
		return err
	}

	// Environment variable fallback.
	if value == "" {
		value = env.Getenv(config.EnvFor(key))
	}

	if value != "" {
		fmt.Fprintln(env.Stdout, value)
	}

	return nil
}

// runConfigList handles the "config list" command.
func runConfigList(env *Env) error {
	data, err := config.List()
	if err != nil {
		return err
	}

	// Add environment variable values for completeness.
	for _, key := range validConfigKeys {
		if _, ok := data[key]; ok {
			continue
		}
		if envVal := env.Getenv(config.EnvFor(key)); envVal != "" {
			data[key] = envVal + " (from env)"
		}
	}

	if len(data) == 0 {
		fmt.Fprintln(env.Stdout, "No configuration set.")
		fmt.Fprintln(env.Stdout, "\nAvailable settings:")
		for _, key := range validConfigKeys {
			fmt.Fprintf(env.Stdout, "  %s\n", key)
		}
		return nil
	}

	// Known keys first in their usual order, then anything else in the file.
	for _, key := range validConfigKeys {
		if value, ok := data[key]; ok {
			fmt.Fprintf(env.Stdout, "%s=%s\n", key, value)
			delete(data, key)
		}
	}
	rest := make([]string, 0, len(data))
	for key := range data {
		rest = append(rest, key)
	}
	slices.Sort(rest)
	for _, key := range rest {
		fmt.Fprintf(env.Stdout, "%s=%s\n", key, data[key])
	}

	return nil
}

// isValidConfigKey checks if a key is a valid configuration key.
func isValidConfigKey(key string) bool {
	return slices.Contains(validConfigKeys, key)
}
