package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/huangsam/legacylens/internal/contract"
	"github.com/spf13/cobra"
)

// workerCmd keeps the worker pool running until interrupted.
var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run background analysis for pending and interrupted files",
	Long: `Start a long running worker that drains the analysis backlog.

On startup the worker:
- Resets files stuck in PROCESSING for longer than --stale-after to FAILED
- Queues every UPLOADED file on the worker pool

It then keeps running until interrupted, finishing queued analyses before it
exits. Files ingested with --auto-analyze=false wait in UPLOADED until a
worker picks them up.

Examples:
  # Drain the backlog with 8 workers
  legacylens worker --workers 8

  # Reset files stuck for more than 10 minutes
  legacylens worker --stale-after 10m`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(rootCtx, os.Interrupt, syscall.SIGTERM)
		rootCtx = ctx
		cobra.OnFinalize(stop)
		return sharedSetup(rootCtx, cmd, args)
	},
	Run: func(_ *cobra.Command, _ []string) {
		log := contract.Logger.WithField("component", "worker")

		reset, err := engine.RecoverStale(rootCtx, cfg.StaleAfter)
		if err != nil {
			contract.LogFatal("Failed to recover stale files", err)
		}
		queued, err := engine.ResumePending(rootCtx)
		if err != nil {
			log.WithError(err).Warn("Backlog only partly queued")
		}
		log.WithField("reset", reset).WithField("queued", queued).Info("Worker started")

		<-rootCtx.Done()
		log.WithField("pending", engine.Pending()).Info("Shutting down worker, finishing queued analyses")
	},
}
