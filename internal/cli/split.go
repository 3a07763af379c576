package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spokenlab/tgsplit/internal/config"
	"github.com/spokenlab/tgsplit/internal/format"
	"github.com/spokenlab/tgsplit/internal/manifest"
	"github.com/spokenlab/tgsplit/internal/pipeline"
	"github.com/spokenlab/tgsplit/internal/textgrid"
)

// splitFlags collects the raw flag values for the split command.
type splitFlags struct {
	textGridDir       string
	wavDir            string
	outputDir         string
	tier              int
	minDuration       float64
	maxFilenameLength int
	deleteOriginals   bool
	verbose           bool
	noManifest        bool
	manifestFormat    string
	parallel          int
	yes               bool
}

// SplitCmd creates the split command.
// The env parameter provides injectable dependencies for testing.
func SplitCmd(env *Env) *cobra.Command {
	var flags splitFlags

	cmd := &cobra.Command{
		Use:   "split",
		Short: "Split WAV files into clean-speech segments from TextGrid alignments",
		Long: `Split audio files based on clean speech intervals from TextGrid files.

Every .TextGrid file in the alignment directory is paired with the WAV file
of the same base name in the audio directory. For each pair the configured
annotation tier is parsed, non-speech intervals (noise, laughter, silence,
private info markers) are discarded, and each remaining interval is written
as its own WAV segment under <output-dir>/<base>/. A manifest describing all
segments of the run is written to the output directory.`,
		Example: `  tgsplit split -t ./textgrids -w ./audio -o ./split_audio
  tgsplit split -t ./tg -w ./wav -o ./out --min-duration 1.0 --manifest-format json
  tgsplit split -t ./tg -w ./wav -o ./out --delete-originals --yes`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSplit(cmd, env, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.textGridDir, "textgrid-dir", "t", "", "Directory containing .TextGrid files (required)")
	cmd.Flags().StringVarP(&flags.wavDir, "wav-dir", "w", "", "Directory containing corresponding .wav files (required)")
	cmd.Flags().StringVarP(&flags.outputDir, "output-dir", "o", "", "Directory to save split audio files (default: config output-dir)")
	cmd.Flags().IntVar(&flags.tier, "tier", textgrid.DefaultTier, "TextGrid tier ordinal to extract")
	cmd.Flags().Float64Var(&flags.minDuration, "min-duration", 0, "Minimum segment duration in seconds (default 0.5)")
	cmd.Flags().IntVar(&flags.maxFilenameLength, "max-filename-length", 50, "Maximum length for the text slug computed per segment")
	cmd.Flags().BoolVar(&flags.deleteOriginals, "delete-originals", false, "Delete original TextGrid and WAV files after successful processing")
	cmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable verbose output")
	cmd.Flags().BoolVar(&flags.noManifest, "no-manifest", false, "Do not save a manifest file")
	cmd.Flags().StringVar(&flags.manifestFormat, "manifest-format", "", "Manifest format: csv, json (default csv)")
	cmd.Flags().IntVar(&flags.parallel, "parallel", 1, "Number of pairs processed concurrently")
	cmd.Flags().BoolVarP(&flags.yes, "yes", "y", false, "Skip the deletion confirmation prompt")

	_ = cmd.MarkFlagRequired("textgrid-dir")
	_ = cmd.MarkFlagRequired("wav-dir")

	return cmd
}

// runSplit validates flags against loaded configuration, confirms deletion
// if requested, and drives one orchestrator run.
// Precedence for defaulted values: flag, then config file, then env var,
// then built-in default.
func runSplit(cmd *cobra.Command, env *Env, flags splitFlags) error {
	ctx := cmd.Context()

	// Config file is advisory: a broken one is a warning, not a failure.
	cfg, err := env.ConfigLoader.Load()
	if err != nil {
		fmt.Fprintf(env.Stderr, "Warning: failed to load config: %v\n", err)
	}

	outputDir := flags.outputDir
	if outputDir == "" {
		outputDir = config.ExpandPath(cfg.OutputDir)
	}
	if outputDir == "" {
		return ErrOutputDirRequired
	}

	minDuration := flags.minDuration
	if !cmd.Flags().Changed("min-duration") {
		if cfg.MinDuration > 0 {
			minDuration = cfg.MinDuration
		} else {
			minDuration = 0.5
		}
	}
	if minDuration < 0 {
		return fmt.Errorf("%w: %g", ErrInvalidDuration, minDuration)
	}

	formatName := flags.manifestFormat
	if formatName == "" {
		formatName = cfg.ManifestFormat
	}
	if formatName == "" {
		formatName = string(manifest.FormatCSV)
	}
	manifestFormat, err := manifest.ParseFormat(formatName)
	if err != nil {
		return err
	}

	fmt.Fprintf(env.Stderr, "TextGrid directory: %s\n", flags.textGridDir)
	fmt.Fprintf(env.Stderr, "WAV directory:      %s\n", flags.wavDir)
	fmt.Fprintf(env.Stderr, "Output directory:   %s\n", outputDir)
	fmt.Fprintf(env.Stderr, "Minimum duration:   %s\n", format.Seconds(minDuration))
	if flags.noManifest {
		fmt.Fprintln(env.Stderr, "Manifest:           disabled")
	} else {
		fmt.Fprintf(env.Stderr, "Manifest format:    %s\n", manifestFormat)
	}

	// Safety confirmation, once, before any processing.
	if flags.deleteOriginals && !flags.yes {
		fmt.Fprintln(env.Stderr, "WARNING: original files will be deleted after processing!")
		if !confirm(env.Stdin, env.Stderr, "Continue? (y/N): ") {
			return ErrCancelled
		}
	}

	runner, err := env.OrchestratorFactory.New(pipeline.Config{
		TextGridDir:       flags.textGridDir,
		WAVDir:            flags.wavDir,
		OutputDir:         outputDir,
		Tier:              flags.tier,
		MinDuration:       minDuration,
		MaxFilenameLength: flags.maxFilenameLength,
		DeleteOriginals:   flags.deleteOriginals,
		Verbose:           flags.verbose,
		SaveManifest:      !flags.noManifest,
		ManifestFormat:    manifestFormat,
		Parallel:          flags.parallel,
	}, env.Stderr)
	if err != nil {
		return err
	}

	summary, err := runner.Run(ctx)
	if err != nil {
		return err
	}

	if summary.PairsProcessed == 0 {
		return pipeline.ErrNoPairsProcessed
	}

	fmt.Fprintf(env.Stderr, "Done: %s processed, %s (%s)\n",
		format.Count(summary.PairsProcessed, "pair"),
		format.Count(summary.Segments, "segment"),
		format.Seconds(summary.TotalDuration))
	return nil
}
