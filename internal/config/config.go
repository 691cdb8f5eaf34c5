package config

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
)

// Config keys.
const (
	KeyAudioDir    = "audio-dir"
	KeyOutputDir   = "output-dir"
	KeyMusicGainDB = "music-gain-db"
)

// Keys lists every supported key, in display order.
var Keys = []string{KeyAudioDir, KeyOutputDir, KeyMusicGainDB}

// Environment variable fallbacks.
const (
	EnvAudioDir    = "SESSIONMIX_AUDIO_DIR"
	EnvOutputDir   = "SESSIONMIX_OUTPUT_DIR"
	EnvMusicGainDB = "SESSIONMIX_MUSIC_GAIN_DB"
)

// EnvFor returns the environment variable backing key, or "" for unknown keys.
func EnvFor(key string) string {
	switch key {
	case KeyAudioDir:
		return EnvAudioDir
	case KeyOutputDir:
		return EnvOutputDir
	case KeyMusicGainDB:
		return EnvMusicGainDB
	}
	return ""
}

// Defaults.
const (
	DefaultAudioDir    = "~/Sofa2Slugger-v2/assets/audio"
	DefaultOutputName  = "mixed_sessions"
	DefaultMusicGainDB = -20.0
)

// Config holds raw user configuration from ~/.config/sessionmix/config and
// the environment. Empty fields are unset.
type Config struct {
	AudioDir    string
	OutputDir   string
	MusicGainDB string
}

// Settings is a fully resolved configuration.
type Settings struct {
	AudioDir    string
	OutputDir   string
	MusicGainDB float64
}

// dir returns the configuration directory path.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config/sessionmix.
func dir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "sessionmix"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", "sessionmix"), nil
}

// path returns the full path to the config file.
func path() (string, error) {
	d, err := dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, "config"), nil
}

// Load reads the configuration file and environment variables.
// Precedence: config file values, then environment variable fallbacks.
// Returns an empty Config if the file doesn't exist (not an error).
func Load() (Config, error) {
	return LoadEnv(os.Getenv)
}

// LoadEnv is Load with the environment fallbacks read through getenv.
func LoadEnv(getenv func(string) string) (Config, error) {
	var cfg Config

	p, err := path()
	if err != nil {
		return cfg, err
	}

	if data, err := parseFile(p); err == nil {
		cfg.AudioDir = data[KeyAudioDir]
		cfg.OutputDir = data[KeyOutputDir]
		cfg.MusicGainDB = data[KeyMusicGainDB]
	} else if !os.IsNotExist(err) {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	// Environment variable fallback (only if not set in config).
	if cfg.AudioDir == "" {
		cfg.AudioDir = getenv(EnvAudioDir)
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = getenv(EnvOutputDir)
	}
	if cfg.MusicGainDB == "" {
		cfg.MusicGainDB = getenv(EnvMusicGainDB)
	}

	return cfg, nil
}

// Merge returns cfg with every non-empty field of override applied on top.
// Command-line flags are passed as override.
func (cfg Config) Merge(override Config) Config {
	if override.AudioDir != "" {
		cfg.AudioDir = override.AudioDir
	}
	if override.OutputDir != "" {
		cfg.OutputDir = override.OutputDir
	}
	if override.MusicGainDB != "" {
		cfg.MusicGainDB = override.MusicGainDB
	}
	return cfg
}

// Resolve fills defaults, expands ~ and validates the gain.
// The output directory defaults to mixed_sessions under the audio directory.
func (cfg Config) Resolve() (Settings, error) {
	s := Settings{
		AudioDir:    ExpandPath(cfg.AudioDir),
		OutputDir:   ExpandPath(cfg.OutputDir),
		MusicGainDB: DefaultMusicGainDB,
	}
	if s.AudioDir == "" {
		s.AudioDir = ExpandPath(DefaultAudioDir)
	}
	if s.OutputDir == "" {
		s.OutputDir = filepath.Join(s.AudioDir, DefaultOutputName)
	}
	if cfg.MusicGainDB != "" {
		db, err := ParseGain(cfg.MusicGainDB)
		if err != nil {
			return Settings{}, err
		}
		s.MusicGainDB = db
	}
	return s, nil
}

// ParseGain parses a music gain in dB. Positive values are rejected: the
// music is only ever ducked under the voice.
func ParseGain(v string) (float64, error) {
	db, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || math.IsNaN(db) || math.IsInf(db, 0) {
		return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidGain, v)
	}
	if db > 0 {
		return 0, fmt.Errorf("%w: %s dB would amplify the music (use 0 or below)", ErrInvalidGain, v)
	}
	return db, nil
}

// parseFile reads a key=value config file.
// Format: one key=value per line, # comments, empty lines ignored.
func parseFile(p string) (map[string]string, error) {
	f, err := os.Open(p) // #nosec G304 -- config path is constructed from home dir
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	data := make(map[string]string)
	scanner := bufio.NewScanner(f)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("invalid syntax at line %d: %q", lineNum, line)
		}
		data[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return data, nil
}

// Save writes a single key=value to the config file.
// Creates the config directory and file if they don't exist.
// Preserves existing key=value pairs but discards comments.
func Save(key, value string) error {
	p, err := path()
	if err != nil {
		return err
	}

	d := filepath.Dir(p)
	if err := os.MkdirAll(d, 0750); err != nil { // #nosec G301 -- user config dir
		return fmt.Errorf("cannot create config directory: %w", err)
	}

	existing, _ := parseFile(p)
	if existing == nil {
		existing = make(map[string]string)
	}
	existing[key] = value

	return writeFile(p, existing)
}

// writeFile writes the config map to a file, keys sorted.
func writeFile(p string, data map[string]string) error {
	// #nosec G302 G304 -- config file with standard permissions, path from home dir
	f, err := os.OpenFile(p, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("cannot write config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, key := range keys {
		if _, err := fmt.Fprintf(f, "%s=%s\n", key, data[key]); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	return nil
}

// Get reads a single value from the config file.
// Returns empty string if the key doesn't exist.
func Get(key string) (string, error) {
	p, err := path()
	if err != nil {
		return "", err
	}

	data, err := parseFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}

	return data[key], nil
}

// List returns all config values as a map.
func List() (map[string]string, error) {
	p, err := path()
	if err != nil {
		return nil, err
	}

	data, err := parseFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]string), nil
		}
		return nil, err
	}

	return data, nil
}

// CheckAudioDir verifies that d is an existing directory.
func CheckAudioDir(d string) error {
	if d == "" {
		return fmt.Errorf("%w: audio-dir cannot be empty", ErrInvalidDir)
	}
	info, err := os.Stat(d)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s does not exist", ErrInvalidDir, d)
		}
		return fmt.Errorf("%w: cannot access %s: %v", ErrInvalidDir, d, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrInvalidDir, d)
	}
	return nil
}

// EnsureOutputDir creates d if needed and checks that it is writable.
func EnsureOutputDir(d string) error {
	if d == "" {
		return fmt.Errorf("%w: output-dir cannot be empty", ErrInvalidDir)
	}

	info, err := os.Stat(d)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("%w: cannot access %s: %v", ErrInvalidDir, d, err)
		}
		if err := os.MkdirAll(d, 0750); err != nil { // #nosec G301 -- user output dir
			return fmt.Errorf("%w: cannot create %s: %v", ErrInvalidDir, d, err)
		}
		return nil
	}

	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrInvalidDir, d)
	}

	// Check if writable by attempting to create a temp file.
	f, err := os.CreateTemp(d, ".sessionmix-write-test-*")
	if err != nil {
		return fmt.Errorf("%w: %s is not writable: %v", ErrInvalidDir, d, err)
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name) // Best effort cleanup, ignore error

	return nil
}

// ExpandPath expands ~ to the user's home directory.
func ExpandPath(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return p
		}
		return filepath.Join(home, strings.TrimPrefix(p[1:], "/"))
	}
	return p
}

// Dir returns the configuration directory path (exported for testing).
func Dir() (string, error) {
	return dir()
}

// ParseFile reads a key=value config file (exported for testing).
func ParseFile(p string) (map[string]string, error) {
	return parseFile(p)
}
