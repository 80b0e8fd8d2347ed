package hooks

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gamewrap/internal/logger"
)

// playtimeLog appends timestamped session and focus records to a per-game
// log file, for later playtime analysis.
type playtimeLog struct {
	path string
}

func newPlaytimeLog(env Env) *playtimeLog {
	return &playtimeLog{
		path: filepath.Join(env.DataDir, "time", env.Game+".log"),
	}
}

func (h *playtimeLog) append(message string) {
	if err := os.MkdirAll(filepath.Dir(h.path), 0o755); err != nil {
		logger.WithComponent("playtime").Error().Err(err).Msg("failed to create time log directory")
		return
	}
	f, err := os.OpenFile(h.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		logger.WithComponent("playtime").Error().Err(err).Msg("failed to open time log")
		return
	}
	defer f.Close()

	timestamp := time.Now().Format("2006-01-02T15:04:05.000-07:00")
	fmt.Fprintf(f, "%s: %s\n", timestamp, message)
}

func (h *playtimeLog) OnStart()   { h.append("game started") }
func (h *playtimeLog) OnStop()    { h.append("game stopped") }
func (h *playtimeLog) OnFocus()   { h.append("user returned") }
func (h *playtimeLog) OnUnfocus() { h.append("user left") }
