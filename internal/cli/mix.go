package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/alnah/go-sessionmix/internal/audio"
	"github.com/alnah/go-sessionmix/internal/config"
	"github.com/alnah/go-sessionmix/internal/format"
	"github.com/alnah/go-sessionmix/internal/mix"
	"github.com/alnah/go-sessionmix/internal/report"
)

// clampJobs constrains concurrent sessions to [1, mix.SessionCount].
func clampJobs(n int) int {
	if n < 1 {
		return 1
	}
	if n > mix.SessionCount {
		return mix.SessionCount
	}
	return n
}

// mixOptions holds the flags of the mix command.
type mixOptions struct {
	settingsFlags
	jobs       int
	reportPath string
	verbose    bool
}

// MixCmd creates the mix command.
// The env parameter provides injectable dependencies for testing.
func MixCmd(env *Env) *cobra.Command {
	var opts mixOptions

	cmd := &cobra.Command{
		Use:   "mix",
		Short: "Mix every session into one MP3",
		Long: `Mix intro, training, outro and music for every session.

Each session folder (session-01 .. session-10) must hold intro.mp3, training.mp3,
outro.mp3 and music.mp3. The music is ducked, looped or cut to the training length
and laid under it. Sessions 9 and 10 get boxing bells from Golden_Box/bell.

A session with a missing or broken clip is reported and skipped; the others
are still mixed.`,
		Example: `  sessionmix mix
  sessionmix mix --music-gain=-15
  sessionmix mix --audio-dir ~/audio --output-dir /tmp/mixed -j 4
  sessionmix mix -s 9 -s 10 -v
  sessionmix mix --report run.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMix(cmd, env, opts)
		},
	}

	opts.bind(cmd)
	cmd.Flags().IntVarP(&opts.jobs, "jobs", "j", 1, fmt.Sprintf("Sessions mixed at once (1-%d)", mix.SessionCount))
	cmd.Flags().StringVar(&opts.reportPath, "report", "", "Write a YAML run report to this path")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log every bell placement")

	return cmd
}

// runMix executes the batch.
// Validation order: config -> gain -> sessions -> audio dir -> output dir -> ffmpeg
func runMix(cmd *cobra.Command, env *Env, opts mixOptions) error {
	ctx := cmd.Context()

	// === VALIDATION (fail-fast) ===

	settings, err := resolveSettings(env, opts.settingsFlags)
	if err != nil {
		return err
	}

	sessions, err := selectSessions(opts.sessions)
	if err != nil {
		return err
	}

	if err := config.CheckAudioDir(settings.AudioDir); err != nil {
		return fmt.Errorf("audio-dir: %w", err)
	}
	if err := config.EnsureOutputDir(settings.OutputDir); err != nil {
		return fmt.Errorf("output-dir: %w", err)
	}

	jobs := clampJobs(opts.jobs)

	// === SETUP ===

	ffmpegPath, err := env.FFmpegResolver.Resolve(ctx)
	if err != nil {
		return err
	}
	env.FFmpegResolver.CheckVersion(ctx, ffmpegPath)
	if err := env.FFmpegResolver.CheckEncoder(ctx, ffmpegPath); err != nil {
		return err
	}

	codec, err := env.CodecFactory.NewCodec(ffmpegPath)
	if err != nil {
		return err
	}

	runID := env.NewRunID()
	logger := env.NewLogger(opts.verbose).With(zap.String("run_id", runID))
	defer func() { _ = logger.Sync() }()

	// === MIX ===

	fmt.Fprintf(env.Stderr, "Mixing %d session(s)\n", len(sessions))
	fmt.Fprintf(env.Stderr, "  Music reduction:  %s\n", format.Gain(settings.MusicGainDB))
	fmt.Fprintf(env.Stderr, "  Audio source:     %s\n", settings.AudioDir)
	fmt.Fprintf(env.Stderr, "  Output directory: %s\n\n", settings.OutputDir)

	mixer := mix.NewMixer(codec, settings.AudioDir, settings.OutputDir,
		mix.WithMusicGain(settings.MusicGainDB),
		mix.WithLogger(logger),
		mix.WithFileStatter(env.FileStatter),
	)

	started := env.Now()
	summary, runErr := mixer.MixAll(ctx, sessions, jobs)
	finished := env.Now()

	printSummary(env, settings, summary)

	// === REPORT ===

	if opts.reportPath != "" {
		run := report.Run{
			ID:          runID,
			Started:     started,
			Finished:    finished,
			AudioDir:    settings.AudioDir,
			OutputDir:   settings.OutputDir,
			MusicGainDB: settings.MusicGainDB,
			Bitrate:     audio.Bitrate,
		}
		if err := report.New(run, summary).Save(opts.reportPath); err != nil {
			return err
		}
		fmt.Fprintf(env.Stderr, "Report written to: %s\n", opts.reportPath)
	}

	if runErr != nil {
		return runErr
	}
	if summary.Failed() > 0 {
		return fmt.Errorf("%w: %d of %d", ErrSessionsFailed, summary.Failed(), summary.Total())
	}
	return nil
}

// printSummary writes the per-session outcome and the totals to stderr.
func printSummary(env *Env, settings config.Settings, sum mix.Summary) {
	total := sum.Total()

	fmt.Fprintln(env.Stderr)
	for _, r := range sum.Results {
		fmt.Fprintf(env.Stderr, "  Session %2d: %s -> %s", r.Session, format.Minutes(r.Duration), r.OutputPath)
		if len(r.Bells) > 0 {
			fmt.Fprintf(env.Stderr, " (%d bells)", len(r.Bells))
		}
		fmt.Fprintln(env.Stderr)
	}
	for _, f := range sum.Failures {
		fmt.Fprintf(env.Stderr, "  Session %2d: FAILED: %s\n", f.Session, firstLine(f.Err.Error()))
	}

	fmt.Fprintf(env.Stderr, "\nSuccessful: %d/%d\n", sum.Successful(), total)
	if sum.Failed() > 0 {
		fmt.Fprintf(env.Stderr, "Failed: %d/%d\n", sum.Failed(), total)
	}
	if len(sum.Skipped) > 0 {
		fmt.Fprintf(env.Stderr, "Skipped (interrupted): %d/%d\n", len(sum.Skipped), total)
	}
	fmt.Fprintf(env.Stderr, "\nMixed files saved to: %s\n", settings.OutputDir)
	fmt.Fprintf(env.Stderr, "Tip: if the music is too loud or quiet, adjust --music-gain (currently %s)\n",
		format.Gain(settings.MusicGainDB))
}

// firstLine trims FFmpeg output appended to codec errors.
func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
