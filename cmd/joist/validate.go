package main

import (
	"fmt"
	"time"

	"github.com/aretw0/joist/internal/cli"
	"github.com/aretw0/joist/pkg/domain"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file.json>",
	Short: "Check a serialized document for consistency",
	Long: `Checks that the document has a single root canvas, that parent and child
links agree, that linked slots point at canvases and that every component
type is known. With --watch the file is checked again on every change.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp(cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		if watch, _ := cmd.Flags().GetBool("watch"); watch {
			interval, _ := cmd.Flags().GetDuration("interval")
			sigCtx := cli.NewSignalContext(cmd.Context())
			defer sigCtx.Cancel()

			cli.PrintSystemMessage("Watching '%s'.", args[0])
			err := cli.Watch(sigCtx, args[0], interval, app.Resolver, app.Logger, func(doc domain.SerializedNodes, err error) {
				report(args[0], doc, err)
			})
			cli.LogShutdown("Watcher", sigCtx.Signal(), false)
			return cli.HandleExecutionError(err)
		}

		doc, err := cli.CheckDocument(args[0], app.Resolver)
		if err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		report(args[0], doc, nil)
		return nil
	},
}

func report(path string, doc domain.SerializedNodes, err error) {
	if err != nil {
		fmt.Printf("Validation failed: %v\n", err)
		return
	}
	fmt.Printf("Document '%s' is valid (%d nodes) ✅\n", path, len(doc))
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().BoolP("watch", "w", false, "Validate again whenever the file changes")
	validateCmd.Flags().Duration("interval", time.Duration(0), "Polling interval for --watch; the file is re-read on every tick even when unchanged")
}
