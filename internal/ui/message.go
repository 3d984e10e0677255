package ui

import (
	"github.com/metocast/castctl/internal/auth"
	"github.com/metocast/castctl/internal/models"
)

// sessionResolvedMsg carries the outcome of the initial session check.
type sessionResolvedMsg struct {
	state auth.State
}

// loginResultMsg carries the outcome of a login attempt.
type loginResultMsg struct {
	user models.User
	err  error
}

// episodesFetchedMsg carries the admin episode list. reqID identifies the
// fetch that produced it so stale responses can be dropped.
type episodesFetchedMsg struct {
	reqID    int
	episodes []models.Episode
	err      error
}

// linksFetchedMsg carries the admin link list.
type linksFetchedMsg struct {
	reqID int
	links []models.OfficialLink
	err   error
}

// savedMsg reports the result of a create or update.
type savedMsg struct {
	err error
}

// deletedMsg reports the result of a confirmed delete.
type deletedMsg struct {
	err error
}

// mutatedMsg reports publish, unpublish and reorder results.
type mutatedMsg struct {
	err error
}
