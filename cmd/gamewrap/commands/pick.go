package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"gamewrap/internal/picker"
	"gamewrap/internal/wm"
	"gamewrap/internal/x11"
)

var pickCmd = &cobra.Command{
	Use:   "pick",
	Short: "Select a window by clicking it",
	Long: `Grab the pointer and wait for a click. The clicked window is resolved
through window-manager frames to the real client window and printed.
Any non-primary button cancels the selection.`,
	RunE: runPick,
}

var pickFormat string

func init() {
	rootCmd.AddCommand(pickCmd)
	pickCmd.Flags().StringVarP(&pickFormat, "format", "f", "table", "output format (table or json)")
}

func runPick(cmd *cobra.Command, args []string) error {
	display, err := x11.Connect()
	if err != nil {
		return err
	}
	defer display.Close()

	win, err := picker.Pick(display)
	if errors.Is(err, picker.ErrCancelled) {
		fmt.Fprintln(os.Stderr, "selection cancelled")
		return nil
	}
	if err != nil {
		return err
	}

	info := display.Info(win)
	switch pickFormat {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(info)
	case "table":
		return printWindowTable([]wm.Info{info})
	default:
		return fmt.Errorf("unsupported format: %s (use 'table' or 'json')", pickFormat)
	}
}
