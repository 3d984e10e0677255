package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/metocast/castctl/internal/api"
	"github.com/metocast/castctl/internal/auth"
	"github.com/metocast/castctl/internal/models"
	"github.com/metocast/castctl/internal/shared"
)

// ViewState represents the current view in the admin console.
type ViewState int

const (
	GateView ViewState = iota
	LoginView
	EpisodeListView
	EpisodeFormView
	LinkListView
	LinkFormView
	ConfirmDeleteView
)

// deleteTarget identifies the record a pending confirmation would remove.
type deleteTarget struct {
	episodeID int64
	linkID    int64
	label     string
	returnTo  ViewState
}

// Model represents the admin console state.
type Model struct {
	ctx        context.Context
	view       ViewState
	controller *auth.SessionController
	client     *api.Client
	width      int
	height     int

	user *models.User

	login    form
	loginErr string

	episodeList list.Model
	episodes    []models.Episode
	linkList    list.Model
	links       []models.OfficialLink

	episodeForm    form
	editingEpisode *models.Episode
	linkForm       form
	linkTypeIdx    int
	editingLink    *models.OfficialLink
	fieldErrors    map[string]string

	target deleteTarget

	pending bool
	reqID   int
	status  string

	help help.Model
	keys keyMap
}

// NewModel creates a new console model with the provided dependencies.
func NewModel(ctx context.Context, controller *auth.SessionController, client *api.Client) *Model {
	return &Model{
		ctx:        ctx,
		view:       GateView,
		controller: controller,
		client:     client,
		help:       help.New(),
		keys:       newKeyMap(),
	}
}

// Init kicks off the session check. The console shows the gate view until the
// stored session has been resolved one way or the other.
func (m *Model) Init() tea.Cmd {
	return m.beginSession()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.episodeList.Width() == 0 {
			m.episodeList.SetSize(msg.Width-4, msg.Height-8)
		}
		if m.linkList.Width() == 0 {
			m.linkList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case sessionResolvedMsg:
		return m.applySessionState(msg.state)

	case loginResultMsg:
		m.pending = false
		if msg.err != nil {
			m.loginErr = loginErrorText(msg.err)
			return m, nil
		}
		m.user = &msg.user
		m.loginErr = ""
		m.view = EpisodeListView
		return m, m.fetchEpisodes()

	case episodesFetchedMsg:
		if msg.reqID != m.reqID {
			return m, nil
		}
		m.pending = false
		if msg.err != nil {
			return m.handleAPIError(msg.err)
		}
		m.episodes = msg.episodes
		items := make([]list.Item, len(msg.episodes))
		for i, ep := range msg.episodes {
			items[i] = episodeItem{episode: ep}
		}
		m.episodeList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.episodeList.Title = "Episodes"
		m.episodeList.SetSize(m.width-4, m.height-8)
		return m, nil

	case linksFetchedMsg:
		if msg.reqID != m.reqID {
			return m, nil
		}
		m.pending = false
		if msg.err != nil {
			return m.handleAPIError(msg.err)
		}
		m.links = msg.links
		items := make([]list.Item, len(msg.links))
		for i, link := range msg.links {
			items[i] = linkItem{link: link}
		}
		m.linkList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.linkList.Title = "Official Links"
		m.linkList.SetSize(m.width-4, m.height-8)
		return m, nil

	case savedMsg:
		m.pending = false
		if msg.err != nil {
			return m.handleAPIError(msg.err)
		}
		m.fieldErrors = nil
		m.status = "Saved"
		if m.view == LinkFormView {
			m.view = LinkListView
			return m, m.fetchLinks()
		}
		m.view = EpisodeListView
		return m, m.fetchEpisodes()

	case deletedMsg:
		m.pending = false
		if msg.err != nil {
			return m.handleAPIError(msg.err)
		}
		m.status = "Deleted"
		m.view = m.target.returnTo
		if m.view == LinkListView {
			return m, m.fetchLinks()
		}
		return m, m.fetchEpisodes()

	case mutatedMsg:
		m.pending = false
		if msg.err != nil {
			return m.handleAPIError(msg.err)
		}
		m.status = "Updated"
		if m.view == LinkListView {
			return m, m.fetchLinks()
		}
		return m, m.fetchEpisodes()

	case tea.KeyMsg:
		switch m.view {
		case GateView:
			return m.handleGateKeys(msg)
		case LoginView:
			return m.handleLoginKeys(msg)
		case EpisodeListView:
			return m.handleEpisodeListKeys(msg)
		case EpisodeFormView:
			return m.handleEpisodeFormKeys(msg)
		case LinkListView:
			return m.handleLinkListKeys(msg)
		case LinkFormView:
			return m.handleLinkFormKeys(msg)
		case ConfirmDeleteView:
			return m.handleConfirmKeys(msg)
		}
	}

	return m, nil
}

// applySessionState routes the console after the session check resolves.
// The gate never falls through to the login view while the check is running.
func (m *Model) applySessionState(state auth.State) (tea.Model, tea.Cmd) {
	switch state.Kind {
	case auth.StateAuthenticated:
		m.user = state.User
		m.view = EpisodeListView
		return m, m.fetchEpisodes()
	case auth.StateUnauthenticated:
		m.view = LoginView
		m.login = newLoginForm()
		return m, nil
	default:
		return m, nil
	}
}

// handleAPIError recovers from request failures. An expired session drops the
// console back to the login view; anything else surfaces on the status line.
func (m *Model) handleAPIError(err error) (tea.Model, tea.Cmd) {
	if errors.Is(err, shared.ErrSessionExpired) || errors.Is(err, shared.ErrNotAuthenticated) {
		m.user = nil
		m.view = LoginView
		m.login = newLoginForm()
		m.loginErr = "Session expired, sign in again"
		return m, nil
	}

	m.status = fmt.Sprintf("Error: %v", err)
	return m, nil
}

func loginErrorText(err error) string {
	if errors.Is(err, shared.ErrInvalidCredentials) {
		return "Invalid email or password"
	}
	return fmt.Sprintf("Login failed: %v", err)
}

func (m *Model) handleGateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) handleLoginKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "tab", "down":
		m.login.next()
		return m, nil
	case "shift+tab", "up":
		m.login.prev()
		return m, nil
	case "enter":
		if m.login.focus != loginPassword {
			m.login.next()
			return m, nil
		}
		return m.submitLogin()
	}

	return m, m.login.update(msg)
}

func (m *Model) submitLogin() (tea.Model, tea.Cmd) {
	if m.pending {
		return m, nil
	}

	email := strings.TrimSpace(m.login.value(loginEmail))
	password := m.login.value(loginPassword)
	if email == "" || password == "" {
		m.loginErr = "Email and password are required"
		return m, nil
	}

	m.pending = true
	m.loginErr = ""
	return m, func() tea.Msg {
		user, err := m.controller.Login(m.ctx, email, password)
		return loginResultMsg{user: user, err: err}
	}
}

func (m *Model) handleEpisodeListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		return m, m.fetchEpisodes()
	case "n":
		m.editingEpisode = nil
		m.episodeForm = newEpisodeForm(nil)
		m.fieldErrors = nil
		m.view = EpisodeFormView
		return m, nil
	case "e":
		if ep := m.selectedEpisode(); ep != nil {
			m.editingEpisode = ep
			m.episodeForm = newEpisodeForm(ep)
			m.fieldErrors = nil
			m.view = EpisodeFormView
		}
		return m, nil
	case "d":
		if ep := m.selectedEpisode(); ep != nil {
			m.target = deleteTarget{episodeID: ep.ID, label: ep.Title, returnTo: EpisodeListView}
			m.view = ConfirmDeleteView
		}
		return m, nil
	case "p":
		if ep := m.selectedEpisode(); ep != nil && !m.pending {
			m.pending = true
			return m, m.togglePublish(*ep)
		}
		return m, nil
	case "l":
		m.view = LinkListView
		return m, m.fetchLinks()
	case "ctrl+l":
		return m.logout()
	}

	var cmd tea.Cmd
	m.episodeList, cmd = m.episodeList.Update(msg)
	return m, cmd
}

func (m *Model) handleEpisodeFormKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = EpisodeListView
		m.fieldErrors = nil
		return m, nil
	case "tab", "down":
		m.episodeForm.next()
		return m, nil
	case "shift+tab", "up":
		m.episodeForm.prev()
		return m, nil
	case "ctrl+s":
		return m.submitEpisode()
	case "enter":
		if m.episodeForm.focus == epTags {
			return m.submitEpisode()
		}
		m.episodeForm.next()
		return m, nil
	}

	return m, m.episodeForm.update(msg)
}

// submitEpisode validates the form and dispatches the save. Invalid payloads
// never leave the console.
func (m *Model) submitEpisode() (tea.Model, tea.Cmd) {
	if m.pending {
		return m, nil
	}

	params := episodeParams(m.episodeForm, m.editingEpisode)
	if errs := params.FieldErrors(); len(errs) > 0 {
		m.fieldErrors = errs
		return m, nil
	}

	m.fieldErrors = nil
	m.pending = true
	editing := m.editingEpisode
	return m, func() tea.Msg {
		var err error
		if editing == nil {
			_, err = m.client.CreateEpisode(m.ctx, params)
		} else {
			_, err = m.client.UpdateEpisode(m.ctx, editing.ID, params)
		}
		return savedMsg{err: err}
	}
}

func (m *Model) handleLinkListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = EpisodeListView
		return m, m.fetchEpisodes()
	case "r":
		return m, m.fetchLinks()
	case "n":
		m.editingLink = nil
		m.linkForm, m.linkTypeIdx = newLinkForm(nil)
		m.fieldErrors = nil
		m.view = LinkFormView
		return m, nil
	case "e":
		if link := m.selectedLink(); link != nil {
			m.editingLink = link
			m.linkForm, m.linkTypeIdx = newLinkForm(link)
			m.fieldErrors = nil
			m.view = LinkFormView
		}
		return m, nil
	case "d":
		if link := m.selectedLink(); link != nil {
			m.target = deleteTarget{linkID: link.ID, label: link.Label, returnTo: LinkListView}
			m.view = ConfirmDeleteView
		}
		return m, nil
	case "K":
		return m.moveLink(-1)
	case "J":
		return m.moveLink(1)
	case "ctrl+l":
		return m.logout()
	}

	var cmd tea.Cmd
	m.linkList, cmd = m.linkList.Update(msg)
	return m, cmd
}

// moveLink swaps the selected link with its neighbor and submits the new order.
func (m *Model) moveLink(delta int) (tea.Model, tea.Cmd) {
	if m.pending {
		return m, nil
	}

	idx := m.linkList.Index()
	swap := idx + delta
	if idx < 0 || swap < 0 || swap >= len(m.links) {
		return m, nil
	}

	ids := make([]int64, len(m.links))
	for i, link := range m.links {
		ids[i] = link.ID
	}
	ids[idx], ids[swap] = ids[swap], ids[idx]

	m.pending = true
	return m, func() tea.Msg {
		return mutatedMsg{err: m.client.ReorderLinks(m.ctx, ids)}
	}
}

func (m *Model) handleLinkFormKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = LinkListView
		m.fieldErrors = nil
		return m, nil
	case "tab", "down":
		m.linkForm.next()
		return m, nil
	case "shift+tab", "up":
		m.linkForm.prev()
		return m, nil
	case "ctrl+t":
		m.linkTypeIdx = (m.linkTypeIdx + 1) % len(models.LinkTypes())
		return m, nil
	case "ctrl+s":
		return m.submitLink()
	case "enter":
		if m.linkForm.focus == linkURL {
			return m.submitLink()
		}
		m.linkForm.next()
		return m, nil
	}

	return m, m.linkForm.update(msg)
}

func (m *Model) submitLink() (tea.Model, tea.Cmd) {
	if m.pending {
		return m, nil
	}

	params := linkParams(m.linkForm, m.linkTypeIdx, m.editingLink)
	if errs := params.FieldErrors(); len(errs) > 0 {
		m.fieldErrors = errs
		return m, nil
	}

	m.fieldErrors = nil
	m.pending = true
	editing := m.editingLink
	return m, func() tea.Msg {
		var err error
		if editing == nil {
			_, err = m.client.CreateLink(m.ctx, params)
		} else {
			_, err = m.client.UpdateLink(m.ctx, editing.ID, params)
		}
		return savedMsg{err: err}
	}
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "n", "esc":
		m.view = m.target.returnTo
		return m, nil
	case "y":
		if m.pending {
			return m, nil
		}
		m.pending = true
		target := m.target
		return m, func() tea.Msg {
			if target.episodeID != 0 {
				return deletedMsg{err: m.client.DeleteEpisode(m.ctx, target.episodeID)}
			}
			return deletedMsg{err: m.client.DeleteLink(m.ctx, target.linkID)}
		}
	}
	return m, nil
}

func (m *Model) logout() (tea.Model, tea.Cmd) {
	m.controller.Logout()
	m.user = nil
	m.view = LoginView
	m.login = newLoginForm()
	m.loginErr = ""
	m.status = "Signed out"
	return m, nil
}

func (m *Model) selectedEpisode() *models.Episode {
	if item, ok := m.episodeList.SelectedItem().(episodeItem); ok {
		ep := item.episode
		return &ep
	}
	return nil
}

func (m *Model) selectedLink() *models.OfficialLink {
	if item, ok := m.linkList.SelectedItem().(linkItem); ok {
		link := item.link
		return &link
	}
	return nil
}

func (m *Model) beginSession() tea.Cmd {
	return func() tea.Msg {
		return sessionResolvedMsg{state: m.controller.Begin(m.ctx)}
	}
}

func (m *Model) fetchEpisodes() tea.Cmd {
	m.reqID++
	id := m.reqID
	return func() tea.Msg {
		episodes, err := m.client.AdminEpisodes(m.ctx)
		return episodesFetchedMsg{reqID: id, episodes: episodes, err: err}
	}
}

func (m *Model) fetchLinks() tea.Cmd {
	m.reqID++
	id := m.reqID
	return func() tea.Msg {
		links, err := m.client.AdminLinks(m.ctx)
		return linksFetchedMsg{reqID: id, links: links, err: err}
	}
}

func (m *Model) togglePublish(ep models.Episode) tea.Cmd {
	return func() tea.Msg {
		if ep.Status == models.StatusPublished {
			return mutatedMsg{err: m.client.UnpublishEpisode(m.ctx, ep.ID)}
		}
		return mutatedMsg{err: m.client.PublishEpisode(m.ctx, ep.ID)}
	}
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case GateView:
		return m.renderGate()
	case LoginView:
		return m.renderLogin()
	case EpisodeListView:
		return m.renderEpisodeList()
	case EpisodeFormView:
		return m.renderEpisodeForm()
	case LinkListView:
		return m.renderLinkList()
	case LinkFormView:
		return m.renderLinkForm()
	case ConfirmDeleteView:
		return m.renderConfirm()
	default:
		return ""
	}
}

func (m *Model) renderGate() string {
	title := styles.title.Render("MetôCast Admin")
	return fmt.Sprintf("%s\nChecking session...\n\n%s", title, m.help.ShortHelpView([]key.Binding{m.keys.quit}))
}

func (m *Model) renderLogin() string {
	title := styles.title.Render("Sign In")

	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n")
	for i, input := range m.login.inputs {
		label := "Email"
		if i == loginPassword {
			label = "Password"
		}
		b.WriteString(fmt.Sprintf("%s\n%s\n\n", label, input.View()))
	}

	if m.loginErr != "" {
		b.WriteString(styles.err.Render(m.loginErr))
		b.WriteString("\n")
	}
	if m.pending {
		b.WriteString(styles.help.Render("Signing in..."))
		b.WriteString("\n")
	}

	enterKey := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "sign in"))
	b.WriteString("\n" + m.help.ShortHelpView([]key.Binding{enterKey, m.keys.quit}))
	return b.String()
}

func (m *Model) renderEpisodeList() string {
	helpKeys := []key.Binding{m.keys.create, m.keys.edit, m.keys.delete, m.keys.publish, m.keys.links, m.keys.quit}
	footer := m.help.ShortHelpView(helpKeys)
	if m.status != "" {
		footer = styles.warn.Render(m.status) + "\n" + footer
	}
	if m.pending {
		footer = styles.help.Render("Working...") + "\n" + footer
	}
	return fmt.Sprintf("%s\n\n%s", m.episodeList.View(), footer)
}

func (m *Model) renderLinkList() string {
	helpKeys := []key.Binding{m.keys.create, m.keys.edit, m.keys.delete, m.keys.moveUp, m.keys.moveDn, m.keys.back, m.keys.quit}
	footer := m.help.ShortHelpView(helpKeys)
	if m.status != "" {
		footer = styles.warn.Render(m.status) + "\n" + footer
	}
	return fmt.Sprintf("%s\n\n%s", m.linkList.View(), footer)
}

var episodeFieldKeys = []string{"title", "description", "thumbnail_url", "spotify_url", "youtube_url", "tags"}

func (m *Model) renderEpisodeForm() string {
	heading := "New Episode"
	if m.editingEpisode != nil {
		heading = fmt.Sprintf("Edit Episode: %s", m.editingEpisode.Title)
	}

	var b strings.Builder
	b.WriteString(styles.title.Render(heading))
	b.WriteString("\n")

	labels := []string{"Title", "Description", "Thumbnail URL", "Spotify URL", "YouTube URL", "Tags"}
	for i, input := range m.episodeForm.inputs {
		b.WriteString(fmt.Sprintf("%s\n%s\n", labels[i], input.View()))
		if msg, ok := m.fieldErrors[episodeFieldKeys[i]]; ok {
			b.WriteString(styles.err.Render(msg))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if m.pending {
		b.WriteString(styles.help.Render("Saving..."))
		b.WriteString("\n")
	}

	saveKey := key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save"))
	b.WriteString("\n" + m.help.ShortHelpView([]key.Binding{saveKey, m.keys.back, m.keys.quit}))
	return b.String()
}

func (m *Model) renderLinkForm() string {
	heading := "New Link"
	if m.editingLink != nil {
		heading = fmt.Sprintf("Edit Link: %s", m.editingLink.Label)
	}

	var b strings.Builder
	b.WriteString(styles.title.Render(heading))
	b.WriteString("\n")

	labels := []string{"Label", "URL"}
	fieldKeys := []string{"label", "url"}
	for i, input := range m.linkForm.inputs {
		b.WriteString(fmt.Sprintf("%s\n%s\n", labels[i], input.View()))
		if msg, ok := m.fieldErrors[fieldKeys[i]]; ok {
			b.WriteString(styles.err.Render(msg))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(fmt.Sprintf("Type: %s\n", models.LinkTypes()[m.linkTypeIdx]))

	if m.pending {
		b.WriteString(styles.help.Render("Saving..."))
		b.WriteString("\n")
	}

	typeKey := key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "cycle type"))
	saveKey := key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save"))
	b.WriteString("\n" + m.help.ShortHelpView([]key.Binding{typeKey, saveKey, m.keys.back, m.keys.quit}))
	return b.String()
}

func (m *Model) renderConfirm() string {
	title := styles.title.Render(fmt.Sprintf("Delete '%s'?", m.target.label))
	warning := styles.warn.Render("This cannot be undone.")

	helpKeys := []key.Binding{m.keys.yes, m.keys.no}
	return fmt.Sprintf("%s\n%s\n\n%s", title, warning, m.help.ShortHelpView(helpKeys))
}
