package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var removeCmd = &cobra.Command{
	Use:     "remove <token-id>...",
	Aliases: []string{"rm"},
	Short:   "Unpin the document and metadata of token ids and forget them",
	Long: `Unpin the document and metadata of token ids and forget them.

The store directory is locked while doclocker serve runs, so stop the
server before running this command.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRemove,
}

func runRemove(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	var failed int
	for _, key := range args {
		if err := a.drive.Remove(cmd.Context(), key); err != nil {
			logger.Error("failed to remove document", zap.String("token", key), zap.Error(err))
			failed++
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", key)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d documents could not be removed", failed, len(args))
	}
	return nil
}
