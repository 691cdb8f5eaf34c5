package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/alnah/go-sessionmix/internal/config"
	"github.com/alnah/go-sessionmix/internal/mix"
)

// settingsFlags are the location and gain flags shared by mix and plan.
type settingsFlags struct {
	audioDir  string
	outputDir string
	musicGain string
	sessions  []int
}

// bind registers the flags on cmd.
func (f *settingsFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.audioDir, "audio-dir", "", "Folder holding session-NN/ and Golden_Box/ (default: "+config.DefaultAudioDir+")")
	cmd.Flags().StringVar(&f.outputDir, "output-dir", "", "Where mixed files are written (default: <audio-dir>/"+config.DefaultOutputName+")")
	cmd.Flags().StringVar(&f.musicGain, "music-gain", "", "Music reduction in dB, 0 or below (default: -20)")
	cmd.Flags().IntSliceVarP(&f.sessions, "session", "s", nil, "Only these sessions (repeatable, e.g. -s 9 -s 10)")
}

// resolveSettings layers flags over the config file, env and defaults.
// Precedence: flag > config file > environment > default.
func resolveSettings(env *Env, f settingsFlags) (config.Settings, error) {
	cfg, err := env.ConfigLoader.Load(env.Getenv)
	if err != nil {
		return config.Settings{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	cfg = cfg.Merge(config.Config{
		AudioDir:    f.audioDir,
		OutputDir:   f.outputDir,
		MusicGainDB: f.musicGain,
	})
	return cfg.Resolve()
}

// selectSessions returns the sessions named by numbers, in order and without
// duplicates. No numbers selects every session.
func selectSessions(numbers []int) ([]mix.Session, error) {
	if len(numbers) == 0 {
		return mix.Sessions(), nil
	}

	sorted := slices.Clone(numbers)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	out := make([]mix.Session, 0, len(sorted))
	for _, n := range sorted {
		s, err := mix.Lookup(n)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
