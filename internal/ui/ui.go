package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"plexorder/internal/playlist"
	"plexorder/internal/services"
	"plexorder/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	PlaylistListView ViewState = iota
	PreviewView
	ConfirmView
	ReorderView
	ResultView
)

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	server       services.MediaServer
	engine       *tasks.ReorderEngine
	imported     []playlist.ImportedTrack
	width        int
	height       int
	playlistList list.Model
	playlists    []services.Playlist
	previewList  list.Model
	plan         *tasks.ReorderPlan
	progressChan chan tasks.ProgressUpdate
	progress     tasks.ProgressUpdate
	applied      int
	done         bool
	err          error
	help         help.Model
	keys         keyMap
}

// playlistEntry wraps [services.Playlist] to implement list.Item.
type playlistEntry struct {
	playlist services.Playlist
}

func (i playlistEntry) FilterValue() string { return i.playlist.Title }
func (i playlistEntry) Title() string       { return i.playlist.Title }
func (i playlistEntry) Description() string {
	return fmt.Sprintf("%d tracks", i.playlist.TrackCount)
}

// matchEntry wraps [playlist.MatchResult] to implement list.Item.
type matchEntry struct {
	result playlist.MatchResult
}

func (i matchEntry) FilterValue() string { return i.result.Imported.Title }
func (i matchEntry) Title() string {
	if i.result.Imported.Artist != "" {
		return fmt.Sprintf("%s - %s", i.result.Imported.Artist, i.result.Imported.Title)
	}
	return i.result.Imported.Title
}
func (i matchEntry) Description() string {
	if i.result.Item == nil {
		return "no match"
	}
	return fmt.Sprintf("%s • %.2f", i.result.Tier.String(), i.result.Score)
}

type playlistsFetchedMsg struct {
	playlists []services.Playlist
	err       error
}

type previewReadyMsg struct {
	plan *tasks.ReorderPlan
	err  error
}

type progressUpdateMsg tasks.ProgressUpdate

type reorderCompleteMsg struct {
	applied int
	err     error
}

// NewModel creates a new TUI model with the provided dependencies.
//
// The imported track list comes from a parsed export file; the model fetches
// playlists from the server on Init.
func NewModel(ctx context.Context, server services.MediaServer, engine *tasks.ReorderEngine, imported []playlist.ImportedTrack) *Model {
	return &Model{
		ctx:      ctx,
		view:     PlaylistListView,
		server:   server,
		engine:   engine,
		imported: imported,
		help:     help.New(),
		keys:     newKeyMap(),
	}
}

// Init initializes the TUI by fetching playlists from the server.
func (m *Model) Init() tea.Cmd {
	return m.fetchPlaylists()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.playlistList.Width() == 0 {
			m.playlistList.SetSize(msg.Width-4, msg.Height-8)
		}
		if m.previewList.Width() == 0 {
			m.previewList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case PlaylistListView:
			return m.handlePlaylistListKeys(msg)
		case PreviewView:
			return m.handlePreviewKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}

	case playlistsFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.playlists = msg.playlists
		items := make([]list.Item, len(msg.playlists))
		for i, pl := range msg.playlists {
			items[i] = playlistEntry{playlist: pl}
		}
		m.playlistList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.playlistList.Title = "Plex Playlists"
		m.playlistList.SetSize(m.width-4, m.height-8)
		return m, nil

	case previewReadyMsg:
		if msg.err != nil {
			m.err = msg.err
			m.view = PlaylistListView
			return m, nil
		}
		m.plan = msg.plan
		items := make([]list.Item, len(msg.plan.Results))
		for i, res := range msg.plan.Results {
			items[i] = matchEntry{result: res}
		}
		m.previewList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.previewList.Title = fmt.Sprintf("Matches for '%s'", msg.plan.Playlist.Title)
		m.previewList.SetSize(m.width-4, m.height-8)
		m.view = PreviewView
		return m, nil

	case progressUpdateMsg:
		m.progress = tasks.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case reorderCompleteMsg:
		m.applied = msg.applied
		m.err = msg.err
		m.done = true
		m.view = ResultView
		return m, nil
	}

	return m.updateLists(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view != ResultView {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case PlaylistListView:
		return m.renderPlaylistList()
	case PreviewView:
		return m.renderPreview()
	case ConfirmView:
		return m.renderConfirm()
	case ReorderView:
		return m.renderReorder()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handlePlaylistListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "enter":
		selected := m.playlistList.SelectedItem()
		if selected != nil {
			if entry, ok := selected.(playlistEntry); ok {
				return m, m.buildPreview(entry.playlist.Key)
			}
		}
	}

	var cmd tea.Cmd
	m.playlistList, cmd = m.playlistList.Update(msg)
	return m, cmd
}

func (m *Model) handlePreviewKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.view = PlaylistListView
		return m, nil
	case "enter":
		if len(m.plan.Moves) == 0 {
			m.view = ResultView
			m.done = true
			return m, nil
		}
		m.view = ConfirmView
		return m, nil
	}

	var cmd tea.Cmd
	m.previewList, cmd = m.previewList.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "n", "esc":
		m.view = PreviewView
		return m, nil
	case "y":
		m.view = ReorderView
		return m, m.startReorder()
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		m.view = PlaylistListView
		m.plan = nil
		m.applied = 0
		m.done = false
		m.err = nil
		return m, nil
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case PlaylistListView:
		m.playlistList, cmd = m.playlistList.Update(msg)
	case PreviewView:
		m.previewList, cmd = m.previewList.Update(msg)
	}
	return m, cmd
}

func (m *Model) fetchPlaylists() tea.Cmd {
	return func() tea.Msg {
		playlists, err := m.server.Playlists(m.ctx)
		return playlistsFetchedMsg{playlists: playlists, err: err}
	}
}

func (m *Model) buildPreview(key string) tea.Cmd {
	return func() tea.Msg {
		plan, err := m.engine.Preview(m.ctx, nil, key, m.imported)
		return previewReadyMsg{plan: plan, err: err}
	}
}

func (m *Model) startReorder() tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 50)

	go func() {
		applied, err := m.engine.Execute(m.ctx, m.progressChan, m.plan.Playlist.Key, m.plan.Moves)
		m.applied = applied
		m.err = err
		close(m.progressChan)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		if m.progressChan == nil {
			return reorderCompleteMsg{applied: m.applied, err: m.err}
		}

		update, ok := <-m.progressChan
		if !ok {
			m.progressChan = nil
			return reorderCompleteMsg{applied: m.applied, err: m.err}
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderPlaylistList() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.playlistList.View(), helpView)
}

func (m *Model) renderPreview() string {
	summary := fmt.Sprintf("Matched %d/%d, %d moves planned",
		m.plan.Matched, len(m.plan.Results), len(m.plan.Moves))

	applyKey := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "reorder"))
	helpKeys := []key.Binding{applyKey, m.keys.back, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n%s\n\n%s", m.previewList.View(), styles.warn.Render(summary), helpView)
}

func (m *Model) renderConfirm() string {
	title := styles.title.Render(fmt.Sprintf("Reorder '%s'?", m.plan.Playlist.Title))
	info := fmt.Sprintf("\nPlaylist: %s\nMatched tracks: %d\nMoves to apply: %d\n",
		m.plan.Playlist.Title, m.plan.Matched, len(m.plan.Moves))

	helpKeys := []key.Binding{m.keys.yes, m.keys.no, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}

func (m *Model) renderReorder() string {
	title := styles.title.Render("Reordering Playlist")

	var phase string
	switch m.progress.Phase {
	case tasks.ApplyMoves:
		phase = fmt.Sprintf("Applying moves (%d/%d)", m.progress.Step, m.progress.Total)
	default:
		phase = "Processing..."
	}

	return fmt.Sprintf("%s\n\n%s\n%s", title, phase, m.progress.Message)
}

func (m *Model) renderResult() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf(
			"Reorder failed after %d moves: %v\n\nPress r to restart, q to quit", m.applied, m.err))
	}

	if m.plan == nil {
		return styles.err.Render("No plan available\n\nPress r to restart, q to quit")
	}

	title := styles.ok.Render("✓ Reorder Complete")
	info := fmt.Sprintf(
		"\nPlaylist: %s\nMatched: %d/%d\nMoves applied: %d",
		m.plan.Playlist.Title,
		m.plan.Matched,
		len(m.plan.Results),
		m.applied,
	)

	var unmatched string
	if m.plan.Unmatched() > 0 {
		unmatched = fmt.Sprintf("\n\n%s", styles.warn.Render(fmt.Sprintf("Unmatched tracks (%d):", m.plan.Unmatched())))
		for _, res := range m.plan.Results {
			if res.Item == nil {
				unmatched += fmt.Sprintf("\n  • %s - %s", res.Imported.Artist, res.Imported.Title)
			}
		}
	}

	helpKeys := []key.Binding{m.keys.restart, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s%s\n\n%s", title, info, unmatched, helpView)
}
