package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/alnah/go-sessionmix/internal/format"
	"github.com/alnah/go-sessionmix/internal/mix"
)

// PlanCmd creates the plan command.
// The env parameter provides injectable dependencies for testing.
func PlanCmd(env *Env) *cobra.Command {
	var flags settingsFlags

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show what mix would do without writing audio",
		Long: `Check every session's source clips and print the mix plan.

For each session, lists the four clips with their size and duration (when
FFmpeg is available), the output path and the bell cues. Exits with an error
if any clip is missing.`,
		Example: `  sessionmix plan
  sessionmix plan --audio-dir ~/audio -s 9`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(cmd, env, flags)
		},
	}

	flags.bind(cmd)
	return cmd
}

// runPlan prints the plan. Missing FFmpeg only disables durations.
func runPlan(cmd *cobra.Command, env *Env, flags settingsFlags) error {
	ctx := cmd.Context()

	settings, err := resolveSettings(env, flags)
	if err != nil {
		return err
	}
	sessions, err := selectSessions(flags.sessions)
	if err != nil {
		return err
	}

	var prober Codec
	if ffmpegPath, err := env.FFmpegResolver.Resolve(ctx); err != nil {
		fmt.Fprintf(env.Stderr, "Warning: %s; durations unavailable\n", firstLine(err.Error()))
	} else if prober, err = env.CodecFactory.NewCodec(ffmpegPath); err != nil {
		fmt.Fprintf(env.Stderr, "Warning: %v; durations unavailable\n", err)
		prober = nil
	}

	w := env.Stdout
	fmt.Fprintf(w, "Audio source:     %s\n", settings.AudioDir)
	fmt.Fprintf(w, "Output directory: %s\n", settings.OutputDir)
	fmt.Fprintf(w, "Music reduction:  %s\n", format.Gain(settings.MusicGainDB))

	bellPath := mix.BellPath(settings.AudioDir)
	_, statErr := env.FileStatter.Stat(bellPath)
	bellFound := statErr == nil

	missing := 0
	for _, s := range sessions {
		fmt.Fprintf(w, "\nSession %d -> %s\n", s.Number, s.OutputPath(settings.OutputDir))

		var total time.Duration
		complete := prober != nil
		for _, c := range mix.Clips {
			p := s.InputPath(settings.AudioDir, c)
			line, d, ok := describeClip(ctx, env.FileStatter, prober, p)
			if !ok {
				missing++
				complete = false
			} else if c == mix.ClipMusic {
				// Music is fitted to the training length and adds no time.
				d = 0
			}
			if d < 0 {
				complete = false
			}
			total += max(d, 0)
			fmt.Fprintf(w, "  %-9s %s\n", c, line)
		}
		if complete {
			fmt.Fprintf(w, "  expected  %s (%s)\n", format.Duration(total), format.Minutes(total))
		}

		if s.HasBells() {
			cues := make([]string, 0, len(s.Bells))
			for _, b := range s.Bells {
				cues = append(cues, b.String())
			}
			state := "found"
			if !bellFound {
				state = "missing, bells will be skipped"
			}
			fmt.Fprintf(w, "  bells     %s (%s, %s)\n", strings.Join(cues, ", "), bellPath, state)
		}
	}

	if missing > 0 {
		return fmt.Errorf("%w: %d clip(s)", ErrInputsMissing, missing)
	}
	return nil
}

// describeClip reports a clip's path, size and duration. The duration is -1
// when unknown; ok is false when the file does not exist.
func describeClip(ctx context.Context, fs FileStatter, prober Codec, path string) (line string, d time.Duration, ok bool) {
	info, err := fs.Stat(path)
	if err != nil {
		return path + "  MISSING", -1, false
	}

	line = fmt.Sprintf("%s  %s", path, format.Size(info.Size()))
	if prober == nil {
		return line, -1, true
	}

	d, err = prober.Probe(ctx, path)
	if err != nil {
		return line + "  (duration unknown)", -1, true
	}
	return line + "  " + format.Duration(d), d, true
}
