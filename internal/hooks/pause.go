package hooks

import (
	"gamewrap/internal/logger"
	"gamewrap/internal/proc"
)

// pauseHelper stops a helper process (keyboard remappers, compositors and
// the like) while the game window is focused and resumes it on focus loss
// and at session end.
type pauseHelper struct {
	pattern   string
	suspended []int32
}

func newPauseHelper(pattern string) *pauseHelper {
	return &pauseHelper{pattern: pattern}
}

func (h *pauseHelper) OnStart() {}

func (h *pauseHelper) OnFocus() {
	log := logger.WithComponent("pause-helper")
	pids, err := proc.FindByName(h.pattern)
	if err != nil {
		log.Error().Err(err).Str("pattern", h.pattern).Msg("helper lookup failed")
		return
	}
	for _, pid := range pids {
		if err := proc.Suspend(pid); err != nil {
			log.Warn().Err(err).Int32("pid", pid).Msg("failed to suspend helper")
			continue
		}
		log.Debug().Int32("pid", pid).Msg("suspended helper")
		h.suspended = append(h.suspended, pid)
	}
}

func (h *pauseHelper) OnUnfocus() {
	h.resumeAll()
}

// OnStop resumes anything still suspended so a dying session never leaves
// a helper stopped.
func (h *pauseHelper) OnStop() {
	h.resumeAll()
}

func (h *pauseHelper) resumeAll() {
	log := logger.WithComponent("pause-helper")
	for _, pid := range h.suspended {
		if err := proc.Resume(pid); err != nil {
			log.Warn().Err(err).Int32("pid", pid).Msg("failed to resume helper")
			continue
		}
		log.Debug().Int32("pid", pid).Msg("resumed helper")
	}
	h.suspended = h.suspended[:0]
}
