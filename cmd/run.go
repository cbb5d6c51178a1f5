package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	runOnce      bool
	runKeepAudio bool
)

// runCmd runs the polling pipeline
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Poll the playlist and process new videos",
	Long: `Poll the configured playlist and run every new video through download,
transcription, enrichment and persistence. Each video is marked processed only
after its document was saved, so an interrupted run resumes where it stopped.

With --once a single cycle runs and the command exits non-zero when discovery fails.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := newLogger(cfg)

		factory := NewServiceFactory(cfg, logger)
		defer factory.Close()

		orchestrator, err := factory.CreateOrchestrator(ctx, newReporter(os.Stdout), runKeepAudio)
		if err != nil {
			return err
		}

		if !runOnce {
			return orchestrator.Run(ctx)
		}

		summary, err := orchestrator.RunOnce(ctx)
		if err != nil {
			return fmt.Errorf("cycle %s failed: %w", summary.CycleID, err)
		}
		if summary.Discovered == 0 {
			fmt.Println("No new videos")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().BoolVar(&runOnce, "once", false, "run a single cycle and exit")
	runCmd.Flags().BoolVar(&runKeepAudio, "keep-audio", false, "keep downloaded audio after a video succeeds")
}
