package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"gamewrap/internal/search"
	"gamewrap/internal/wm"
	"gamewrap/internal/x11"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Find windows matching criteria",
	Long: `Find windows by querying the window tree with regex and equality
criteria. Textual patterns are case-insensitive regular expressions.`,
	Example: `  # all visible windows whose class name is exactly osu!.exe
  gamewrap search --classname '^osu!\.exe$' --visible

  # any window titled Limbo, or belonging to pid 4242
  gamewrap search --name '^Limbo$' --pid 4242 --any

  # top-level windows only, as JSON
  gamewrap search --max-depth 1 --format json`,
	RunE: runSearch,
}

var (
	searchName      string
	searchClass     string
	searchClassName string
	searchPID       uint32
	searchDesktop   int64
	searchGameID    uint32
	searchVisible   bool
	searchAny       bool
	searchScreen    int
	searchMaxDepth  int
	searchLimit     int
	searchFormat    string
)

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().StringVar(&searchName, "name", "", "window title pattern")
	searchCmd.Flags().StringVar(&searchClass, "class", "", "window class pattern")
	searchCmd.Flags().StringVar(&searchClassName, "classname", "", "window class-name pattern")
	searchCmd.Flags().Uint32Var(&searchPID, "pid", 0, "window process id")
	searchCmd.Flags().Int64Var(&searchDesktop, "desktop", -1, "desktop index")
	searchCmd.Flags().Uint32Var(&searchGameID, "game-id", 0, "Steam game id tag")
	searchCmd.Flags().BoolVar(&searchVisible, "visible", false, "only visible windows")
	searchCmd.Flags().BoolVar(&searchAny, "any", false, "match any criterion instead of all")
	searchCmd.Flags().IntVar(&searchScreen, "screen", -1, "search a single screen")
	searchCmd.Flags().IntVar(&searchMaxDepth, "max-depth", search.UnboundedDepth, "traversal depth limit (-1 unbounded)")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 0, "stop after this many matches (0 unbounded)")
	searchCmd.Flags().StringVarP(&searchFormat, "format", "f", "table", "output format (table or json)")
}

func buildCriteria(cmd *cobra.Command) search.Criteria {
	crit := search.New()
	crit.MaxDepth = searchMaxDepth
	crit.Limit = searchLimit
	if searchAny {
		crit.Require = search.RequireAny
	} else {
		crit.Require = search.RequireAll
	}
	if cmd.Flags().Changed("name") {
		crit.Name = searchName
		crit.Mask |= search.MatchName
	}
	if cmd.Flags().Changed("class") {
		crit.Class = searchClass
		crit.Mask |= search.MatchClass
	}
	if cmd.Flags().Changed("classname") {
		crit.ClassName = searchClassName
		crit.Mask |= search.MatchClassName
	}
	if cmd.Flags().Changed("pid") {
		crit.PID = searchPID
		crit.Mask |= search.MatchPID
	}
	if cmd.Flags().Changed("desktop") {
		crit.Desktop = searchDesktop
		crit.Mask |= search.MatchDesktop
	}
	if cmd.Flags().Changed("game-id") {
		crit.GameID = searchGameID
		crit.Mask |= search.MatchGameID
	}
	if searchVisible {
		crit.Mask |= search.MatchOnlyVisible
	}
	if cmd.Flags().Changed("screen") {
		crit.Screen = searchScreen
		crit.Mask |= search.MatchScreen
	}
	return crit
}

func runSearch(cmd *cobra.Command, args []string) error {
	display, err := x11.Connect()
	if err != nil {
		return err
	}
	defer display.Close()

	matches, err := search.Windows(display, buildCriteria(cmd))
	if err != nil {
		return err
	}

	infos := make([]wm.Info, 0, len(matches))
	for _, win := range matches {
		infos = append(infos, display.Info(win))
	}

	switch searchFormat {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(infos)
	case "table":
		return printWindowTable(infos)
	default:
		return fmt.Errorf("unsupported format: %s (use 'table' or 'json')", searchFormat)
	}
}

func printWindowTable(infos []wm.Info) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, "WINDOW\tPID\tDESKTOP\tCLASS\tTITLE")
	for _, info := range infos {
		fmt.Fprintf(w, "0x%08x\t%d\t%d\t%s\t%s\n",
			info.ID, info.PID, info.Desktop, info.Class, info.Title)
	}
	return nil
}
