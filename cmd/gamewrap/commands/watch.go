package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"gamewrap/internal/focus"
	"gamewrap/internal/logger"
	"gamewrap/internal/wm"
	"gamewrap/internal/x11"
)

var watchCmd = &cobra.Command{
	Use:   "watch WINDOW [WINDOW...]",
	Short: "Watch focus changes on windows",
	Long: `Subscribe to focus notifications on one or more windows (decimal or
0x-prefixed hexadecimal ids) and print accepted transitions until
interrupted. Grab-induced churn and focus moves into a window's own
children are filtered out.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func parseWindowID(arg string) (wm.Window, error) {
	s := arg
	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s = s[2:]
		base = 16
	}
	id, err := strconv.ParseUint(s, base, 32)
	if err != nil {
		return wm.None, fmt.Errorf("invalid window id %q", arg)
	}
	return wm.Window(id), nil
}

var detailNames = map[focus.Detail]string{
	focus.DetailAncestor:         "ancestor",
	focus.DetailVirtual:          "virtual",
	focus.DetailInferior:         "inferior",
	focus.DetailNonlinear:        "nonlinear",
	focus.DetailNonlinearVirtual: "nonlinear-virtual",
	focus.DetailPointer:          "pointer",
	focus.DetailPointerRoot:      "pointer-root",
	focus.DetailNone:             "none",
}

func runWatch(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("watch")

	wins := make([]wm.Window, 0, len(args))
	for _, arg := range args {
		win, err := parseWindowID(arg)
		if err != nil {
			return err
		}
		wins = append(wins, win)
	}

	display, err := x11.Connect()
	if err != nil {
		return err
	}
	defer display.Close()

	if err := display.SubscribeFocus(wins...); err != nil {
		return err
	}

	watched := make(map[wm.Window]bool, len(wins))
	for _, win := range wins {
		watched[win] = true
	}

	for len(watched) > 0 {
		n, err := display.WaitFocus()
		if err != nil {
			return err
		}
		if !watched[n.Window] {
			continue
		}
		if n.Destroyed {
			fmt.Printf("0x%08x destroyed\n", uint32(n.Window))
			delete(watched, n.Window)
			continue
		}
		if n.Mode != focus.ModeNormal && n.Mode != focus.ModeWhileGrabbed {
			log.Debug().Uint32("window", uint32(n.Window)).Msg("ignoring grab-induced focus change")
			continue
		}
		if !n.Gained && n.Detail == focus.DetailInferior {
			log.Debug().Uint32("window", uint32(n.Window)).Msg("ignoring focus move to inferior")
			continue
		}
		verb := "Lost"
		if n.Gained {
			verb = "Got"
		}
		fmt.Printf("0x%08x %s focus (%s)\n", uint32(n.Window), verb, detailNames[n.Detail])
	}
	return nil
}
