package ui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/metocast/castctl/internal/models"
)

// form is a focusable stack of text inputs shared by the login, episode and
// link editors.
type form struct {
	inputs []textinput.Model
	focus  int
}

func newForm(inputs ...textinput.Model) form {
	if len(inputs) > 0 {
		inputs[0].Focus()
	}
	return form{inputs: inputs}
}

// next moves focus forward, wrapping to the first input.
func (f *form) next() {
	f.move((f.focus + 1) % len(f.inputs))
}

// prev moves focus backward, wrapping to the last input.
func (f *form) prev() {
	f.move((f.focus - 1 + len(f.inputs)) % len(f.inputs))
}

func (f *form) move(to int) {
	f.inputs[f.focus].Blur()
	f.focus = to
	f.inputs[f.focus].Focus()
}

// update forwards a message to the focused input.
func (f *form) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

func (f *form) value(i int) string {
	return f.inputs[i].Value()
}

func newInput(placeholder, value string) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.SetValue(value)
	ti.CharLimit = 512
	return ti
}

// Login form input indexes.
const (
	loginEmail = iota
	loginPassword
)

func newLoginForm() form {
	password := newInput("password", "")
	password.EchoMode = textinput.EchoPassword
	return newForm(newInput("email", ""), password)
}

// Episode form input indexes.
const (
	epTitle = iota
	epDescription
	epThumbnail
	epSpotify
	epYouTube
	epTags
)

func newEpisodeForm(episode *models.Episode) form {
	var ep models.Episode
	if episode != nil {
		ep = *episode
	}
	return newForm(
		newInput("title", ep.Title),
		newInput("description", ep.Description),
		newInput("thumbnail url", ep.ThumbnailURL),
		newInput("spotify url", ep.SpotifyURL),
		newInput("youtube url", ep.YouTubeURL),
		newInput("tags (comma separated)", ep.Tags.String()),
	)
}

// episodeParams builds the payload from the form's current values. Fields the
// form does not carry, like the publication status, are taken from the record
// being edited so an update never resets them.
func episodeParams(f form, editing *models.Episode) models.EpisodeParams {
	var params models.EpisodeParams
	if editing != nil {
		params = editing.Params()
	}
	params.Title = f.value(epTitle)
	params.Description = f.value(epDescription)
	params.ThumbnailURL = f.value(epThumbnail)
	params.SpotifyURL = f.value(epSpotify)
	params.YouTubeURL = f.value(epYouTube)
	params.Tags = models.ParseTags(f.value(epTags))
	return params
}

// Link form input indexes. The type is cycled with ←/→ rather than typed.
const (
	linkLabel = iota
	linkURL
)

func newLinkForm(link *models.OfficialLink) (form, int) {
	var l models.OfficialLink
	if link != nil {
		l = *link
	}

	typeIdx := 0
	for i, t := range models.LinkTypes() {
		if t == l.Type {
			typeIdx = i
			break
		}
	}

	return newForm(newInput("label", l.Label), newInput("url", l.URL)), typeIdx
}

// linkParams builds the payload from the form's current values. The display
// order is not part of the form, so an edit carries it over from the record
// being edited.
func linkParams(f form, typeIdx int, editing *models.OfficialLink) models.LinkParams {
	var params models.LinkParams
	if editing != nil {
		params = editing.Params()
	}
	params.Label = f.value(linkLabel)
	params.URL = f.value(linkURL)
	params.Type = models.LinkTypes()[typeIdx]
	return params
}
