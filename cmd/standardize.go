package main

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/address-cli/internal/browser"
	"github.com/sells-group/address-cli/internal/extract"
	"github.com/sells-group/address-cli/internal/lookupcache"
	"github.com/sells-group/address-cli/internal/pipeline"
)

var standardizeCmd = &cobra.Command{
	Use:   "standardize <input> <output>",
	Short: "Resolve every address row to its canonical Maps address",
	Long: `Resolve every pending row of the input table against Google Maps and
write the enriched table to <output>.

The output file doubles as a checkpoint: rerunning with --resume picks up
where a crashed or interrupted run stopped. Both .csv and .xlsx are
supported, chosen by file extension.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		log := zap.L().With(zap.String("command", "standardize"))

		resume, _ := cmd.Flags().GetBool("resume")
		batchSize, _ := cmd.Flags().GetInt("batch-size")
		if batchSize <= 0 {
			batchSize = cfg.Batch.Size
		}
		headless, _ := cmd.Flags().GetBool("headless")

		heuristics, err := extract.LoadHeuristics(cfg.Selectors.Path)
		if err != nil {
			return err
		}

		session := browser.NewSession(browser.Config{
			Headless:  headless || cfg.Browser.Headless,
			BaseURL:   cfg.Browser.BaseURL,
			UserAgent: cfg.Browser.UserAgent,
		}, log)

		nav := pipeline.NewNavigator(session, heuristics, pipeline.NavigateOptions{
			BaseURL:        cfg.Browser.BaseURL,
			SearchURL:      cfg.Browser.SearchURL,
			MaxLoadRetries: cfg.Navigate.MaxLoadRetries,
			LoadTimeout:    time.Duration(cfg.Navigate.LoadTimeoutSecs) * time.Second,
		}, log)

		chain := extract.NewChain(heuristics, log)
		resolver := pipeline.NewResolver(nav, session, chain, heuristics, pipeline.ResolveOptions{
			FeedTimeout:   time.Duration(cfg.Navigate.FeedTimeoutSecs) * time.Second,
			DetailTimeout: time.Duration(cfg.Navigate.DetailTimeoutSecs) * time.Second,
		}, log)

		pace := pipeline.NewGovernor(cfg.Pacing.MinSecs, cfg.Pacing.MaxSecs)

		var cache pipeline.LookupCache
		if cfg.Cache.Path != "" {
			c, err := lookupcache.Open(cfg.Cache.Path, log)
			if err != nil {
				// The cache is an accelerator; a broken one never blocks a run.
				log.Warn("lookup cache unavailable", zap.Error(err))
			} else {
				defer c.Close()
				cache = c
			}
		}

		controller := pipeline.NewController(pipeline.Options{
			InputPath:  args[0],
			OutputPath: args[1],
			Resume:     resume,
			BatchSize:  batchSize,
			Progress: func(completed, total int) {
				log.Info("record processed", zap.Int("completed", completed), zap.Int("total", total))
			},
		}, session, resolver, pace, cache, log)

		if _, err := controller.Run(ctx); err != nil {
			return err
		}

		zap.L().Info("standardization complete", zap.String("output", args[1]))
		return nil
	},
}

func init() {
	standardizeCmd.Flags().Bool("resume", false, "resume from an existing output file instead of starting fresh")
	standardizeCmd.Flags().Int("batch-size", 0, "records per checkpoint write (default from config)")
	standardizeCmd.Flags().Bool("headless", false, "move the browser window off-screen")
	rootCmd.AddCommand(standardizeCmd)
}
