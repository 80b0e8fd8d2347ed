package commands

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"gamewrap/internal/api"
	"gamewrap/internal/config"
	"gamewrap/internal/focus"
	"gamewrap/internal/hooks"
	"gamewrap/internal/logger"
	"gamewrap/internal/notify"
	"gamewrap/internal/proc"
	"gamewrap/internal/search"
	"gamewrap/internal/supervisor"
	"gamewrap/internal/wm"
	"gamewrap/internal/x11"
)

var runCmd = &cobra.Command{
	Use:   "run GAME [ARGS...]",
	Short: "Launch a game and supervise it",
	Long: `Launch a game by its settings name and supervise it until it exits.
The game window is found with the configured criteria, focus transitions
fire the configured hooks, and the session ends when the game process
does.

Exit codes: 0 normal, 1 cancelled, 3 window not found, 4 process not
found.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRun,
}

var runPort int

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().IntVar(&runPort, "port", 0, "serve the status API on this localhost port")
}

// displayWindows adapts an X display to the supervisor's window collaborator.
type displayWindows struct {
	display   *x11.Display
	pollFocus bool
}

func (w *displayWindows) Search(crit search.Criteria) ([]wm.Window, error) {
	return search.Windows(w.display, crit)
}

func (w *displayWindows) InputFocus() (wm.Window, error) {
	return w.display.InputFocus()
}

func (w *displayWindows) Monitor(target wm.Window, initial wm.FocusState) (focus.Monitor, error) {
	if w.pollFocus {
		return focus.NewPollMonitor(w.display, target, initial, focus.DefaultPollInterval), nil
	}
	return focus.NewEventMonitor(w.display, target, initial)
}

// processTable adapts the proc package to the supervisor.
type processTable struct{}

func (processTable) Alive(pid int32) bool { return proc.Alive(pid) }

func (processTable) FindByName(pattern string) ([]int32, error) {
	return proc.FindByName(pattern)
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".local", "share", "gamewrap")
}

func runRun(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("run")

	game, err := config.Load(viper.GetString("settings_dir"), args[0])
	if err != nil {
		return err
	}
	command := game.Command
	if len(args) > 1 {
		command = args[1:]
	}
	game.Command = command
	if err := game.Check(); err != nil {
		return err
	}

	notifier := notify.New("gamewrap")
	hookSet, err := hooks.Load(game.Hooks, hooks.Env{
		Game:     game.Name,
		DataDir:  defaultDataDir(),
		Notifier: notifier,
	})
	if err != nil {
		return err
	}

	display, err := x11.Connect()
	if err != nil {
		return err
	}
	defer display.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	child := exec.Command(command[0], command[1:]...)
	child.Stdout = os.Stdout
	child.Stderr = os.Stderr
	if err := child.Start(); err != nil {
		return fmt.Errorf("failed to launch %q: %w", command[0], err)
	}
	log.Info().Str("game", game.Name).Int("pid", child.Process.Pid).Msg("game launched")
	// the launcher process is reaped whether or not it is the monitored one
	go func() { _ = child.Wait() }()

	session := supervisor.New(
		supervisor.Options{
			LaunchedPID: int32(child.Process.Pid),
			ProcessName: game.ProcessName,
			Criteria:    game.Criteria(),
		},
		&displayWindows{display: display, pollFocus: game.PollFocus},
		processTable{},
		hookSet,
		notifier,
	)

	if runPort > 0 {
		server := api.NewServer(session)
		go func() {
			if err := server.Start(runPort); err != nil {
				log.Error().Err(err).Msg("status API failed")
			}
		}()
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			_ = server.Shutdown(sctx)
		}()
	}

	switch status := session.Run(ctx); status {
	case supervisor.StatusNormal:
		return nil
	case supervisor.StatusWindowNotFound:
		return &ExitError{Code: 3, Msg: "game window not found"}
	case supervisor.StatusProcessNotFound:
		return &ExitError{Code: 4, Msg: "game process not found"}
	default:
		return &ExitError{Code: 1, Msg: "session cancelled"}
	}
}
