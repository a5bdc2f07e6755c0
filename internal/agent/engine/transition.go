package engine

import (
	"github.com/fleetworks/courier-agent/internal/agent/model"
)

// DeriveNextTransition reads the most recent history entry and returns the
// next legal stage move. It returns false when the log is empty (legacy or
// uninitialized job; the engine reports no transition rather than guessing),
// when the latest entry names no next stage, or when the named next stage
// would move backwards.
func DeriveNextTransition(history []model.StatusHistoryEntry) (model.Transition, bool) {
	if len(history) == 0 {
		return model.Transition{}, false
	}
	latest := history[0]
	if latest.NextStatusID <= 0 || latest.NextStatusID < latest.CurrentStatusID {
		return model.Transition{}, false
	}
	return model.Transition{
		NextStatusID:   latest.NextStatusID,
		NextStatusName: latest.NextStatusName,
		PendingStopID:  latest.PendingStopID,
	}, true
}

// RequiresAttachment reports whether the target stage must be accompanied by
// at least one piece of evidence. True exactly for Loaded and Delivered.
func RequiresAttachment(stageID int) bool {
	return stageID == StageLoaded || stageID == StageDelivered
}

// ResolveStopID encodes the stop-scoping rule: On Drop Site and Delivered
// apply to a concrete stop and carry the pending stop id (0 when absent),
// while earlier stages are job-scoped and always carry 0.
func ResolveStopID(nextStatusID int, pendingStopID int64) int64 {
	if nextStatusID == StageOnDropSite || nextStatusID == StageDelivered {
		return pendingStopID
	}
	return 0
}
