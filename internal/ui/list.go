package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"github.com/metocast/castctl/internal/models"
)

var (
	_ list.Item = episodeItem{}
	_ list.Item = linkItem{}
)

// episodeItem wraps [models.Episode] to implement [list.Item].
type episodeItem struct {
	episode models.Episode
}

func (i episodeItem) FilterValue() string { return i.episode.Title }
func (i episodeItem) Title() string {
	if i.episode.Status == models.StatusDraft {
		return fmt.Sprintf("%s (draft)", i.episode.Title)
	}
	return i.episode.Title
}
func (i episodeItem) Description() string {
	desc := i.episode.Description
	if len(i.episode.Tags) > 0 {
		desc = fmt.Sprintf("%s • %s", desc, i.episode.Tags)
	}
	return desc
}

// linkItem wraps [models.OfficialLink] to implement [list.Item].
type linkItem struct {
	link models.OfficialLink
}

func (i linkItem) FilterValue() string { return i.link.Label }
func (i linkItem) Title() string       { return fmt.Sprintf("%d. %s", i.link.Order, i.link.Label) }
func (i linkItem) Description() string {
	return fmt.Sprintf("%s • %s", i.link.Type, i.link.URL)
}
