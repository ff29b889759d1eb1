package tui

import (
	"log/slog"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"shelfarr/internal/catalog"
	"shelfarr/internal/domain"
	"shelfarr/internal/library"
	"shelfarr/internal/notify"
	"shelfarr/internal/tui/styles"
	"shelfarr/internal/view"
)

// Model is the main Bubble Tea model for the application
type Model struct {
	// Services
	Svc   *catalog.Service
	Ctrl  *library.Controller
	Queue *notify.Queue

	// Current collection context
	Key     domain.ContextKey
	Entries []*domain.CatalogEntry

	// Per-context view state, retained across navigation
	States  map[domain.ContextKey]view.State
	Derived view.View

	// UI state
	Cursor        int
	GroupSeries   bool
	SearchInput   textinput.Model
	Spinner       spinner.Model
	Searching     bool
	FilterQuery   string
	FilterTyping  bool
	ShowHelp      bool
	Loading       bool
	Ready         bool
	ConfirmRemove *domain.CatalogEntry // remove awaiting a y/n answer

	// Config
	GridColumns     int
	AddOpts         domain.AddOptions
	ShowBadges      bool
	ConfirmOnRemove bool
	DefaultViewMode view.ViewMode
	initialKey      domain.ContextKey

	// Dimensions
	Width  int
	Height int

	logger *slog.Logger
}

// NewModel creates the application model. initialKey names the context to
// load on startup; an empty key opens the search prompt instead.
func NewModel(svc *catalog.Service, ctrl *library.Controller, queue *notify.Queue, initialKey domain.ContextKey, gridColumns int, logger *slog.Logger) Model {
	if logger == nil {
		logger = slog.Default()
	}
	if gridColumns <= 0 {
		gridColumns = 4
	}

	input := textinput.New()
	input.Placeholder = "Search books and authors..."
	input.CharLimit = 120

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.AccentStyle

	return Model{
		Svc:             svc,
		Ctrl:            ctrl,
		Queue:           queue,
		States:          make(map[domain.ContextKey]view.State),
		SearchInput:     input,
		Spinner:         sp,
		GridColumns:     gridColumns,
		ShowBadges:      true,
		DefaultViewMode: view.ViewGrid,
		initialKey:      initialKey,
		logger:          logger,
	}
}

// Init initializes the application
func (m Model) Init() tea.Cmd {
	if m.initialKey == "" {
		return tea.Batch(textinput.Blink, m.Spinner.Tick)
	}
	return tea.Batch(m.loadContextCmd(m.initialKey), m.Spinner.Tick)
}

// state returns the view state for the current context, creating the
// default on first visit.
func (m *Model) state() view.State {
	st, ok := m.States[m.Key]
	if !ok {
		st = view.DefaultState(m.Key.Kind() == domain.KindSeries)
		st.ViewMode = m.DefaultViewMode
		m.States[m.Key] = st
	}
	return st
}

func (m *Model) setState(st view.State) {
	m.States[m.Key] = st
	m.rederive()
}

// rederive recomputes the displayed view from the raw entries and clamps
// the cursor to the new bounds.
func (m *Model) rederive() {
	m.Derived = view.Derive(m.Entries, m.state())
	if m.FilterQuery != "" {
		m.Derived.Entries = applyListFilter(m.Derived.Entries, m.FilterQuery)
		m.Derived.FilteredCount = len(m.Derived.Entries)
	}
	if m.Cursor >= len(m.Derived.Entries) {
		m.Cursor = len(m.Derived.Entries) - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}
}

// selected returns the entry under the cursor, nil when the list is empty.
func (m *Model) selected() *domain.CatalogEntry {
	if m.Cursor < 0 || m.Cursor >= len(m.Derived.Entries) {
		return nil
	}
	return m.Derived.Entries[m.Cursor]
}

// loadContextCmd dispatches the right loader for a context key.
func (m Model) loadContextCmd(key domain.ContextKey) tea.Cmd {
	switch key.Kind() {
	case domain.KindAuthor:
		return LoadAuthorCmd(m.Svc, key.ID())
	case domain.KindSeries:
		return LoadSeriesCmd(m.Svc, key.ID())
	case domain.KindSearch:
		return SearchCmd(m.Svc, key.ID())
	}
	return nil
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Ready = true
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case ContextLoadedMsg:
		m.Loading = false
		m.Key = msg.Key
		m.Entries = msg.Entries
		m.Cursor = 0
		m.FilterQuery = ""
		m.FilterTyping = false
		m.ConfirmRemove = nil
		m.rederive()
		return m, nil

	case ContextChangedMsg:
		// Reload the current context from the cache after a settlement
		// patch or a conflict refresh. Other contexts re-read on revisit.
		if msg.Key == m.Key {
			m.Loading = false
			if entries, ok := m.Ctrl.Cache().Get(m.Key); ok {
				m.Entries = entries
				m.rederive()
			}
		}
		return m, nil

	case NotificationsChangedMsg:
		// Toasts are read from the queue at render time.
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case MutationDoneMsg, BulkAddDoneMsg:
		// Pending indicators read controller state directly.
		return m, nil

	case ErrMsg:
		m.Loading = false
		m.logger.Error("tui error", "context", msg.Context, "error", msg.Err)
		m.Queue.Push(notify.Error, msg.Error())
		return m, nil
	}

	if m.Searching {
		var cmd tea.Cmd
		m.SearchInput, cmd = m.SearchInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

// handleKeyMsg handles keyboard input
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Search input captures everything except enter and esc
	if m.Searching {
		switch msg.String() {
		case "enter":
			query := m.SearchInput.Value()
			m.Searching = false
			m.SearchInput.Blur()
			if query == "" {
				return m, nil
			}
			m.Loading = true
			return m, SearchCmd(m.Svc, query)
		case "esc":
			m.Searching = false
			m.SearchInput.Blur()
			return m, nil
		default:
			var cmd tea.Cmd
			m.SearchInput, cmd = m.SearchInput.Update(msg)
			return m, cmd
		}
	}

	if m.ShowHelp {
		switch msg.String() {
		case "esc", "?", "q":
			m.ShowHelp = false
		}
		return m, nil
	}

	// A pending remove confirmation swallows the next key: y/enter
	// dispatches, anything else cancels.
	if e := m.ConfirmRemove; e != nil {
		m.ConfirmRemove = nil
		switch msg.String() {
		case "y", "enter":
			if book := e.LibraryBook; book != nil {
				return m, RemoveBookCmd(m.Ctrl, e.ForeignID, book.ID)
			}
		}
		return m, nil
	}

	// In-list filter typing mode
	if m.FilterTyping {
		switch msg.String() {
		case "enter":
			m.FilterTyping = false
		case "esc":
			m.FilterTyping = false
			m.FilterQuery = ""
			m.rederive()
		case "backspace":
			if len(m.FilterQuery) > 0 {
				m.FilterQuery = m.FilterQuery[:len(m.FilterQuery)-1]
				m.rederive()
			}
		default:
			if msg.Type == tea.KeyRunes {
				m.FilterQuery += string(msg.Runes)
				m.Cursor = 0
				m.rederive()
			}
		}
		return m, nil
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "?":
		m.ShowHelp = true
		return m, nil

	case "j", "down":
		if m.Cursor < len(m.Derived.Entries)-1 {
			m.Cursor++
		}
		return m, nil

	case "k", "up":
		if m.Cursor > 0 {
			m.Cursor--
		}
		return m, nil

	case "g":
		m.Cursor = 0
		return m, nil

	case "G":
		if n := len(m.Derived.Entries); n > 0 {
			m.Cursor = n - 1
		}
		return m, nil

	case "/":
		m.Searching = true
		m.SearchInput.SetValue("")
		m.SearchInput.Focus()
		return m, textinput.Blink

	case "F":
		// In-list fuzzy filter over the current page
		if m.Key != "" {
			m.FilterTyping = true
			m.FilterQuery = ""
			m.rederive()
		}
		return m, nil

	case "esc":
		if m.FilterQuery != "" {
			m.FilterQuery = ""
			m.rederive()
		}
		return m, nil

	case "a":
		// Add selected entry to the library
		if e := m.selected(); e != nil && !e.InLibrary() && !m.Ctrl.IsAddPending(e.ForeignID) {
			return m, AddBookCmd(m.Ctrl, e.ForeignID, m.AddOpts)
		}
		return m, nil

	case "d":
		// Remove selected entry from the library
		if e := m.selected(); e != nil {
			book := e.LibraryBook
			if book == nil || m.Ctrl.IsRemovePending(book.ID) {
				return m, nil
			}
			if m.ConfirmOnRemove {
				m.ConfirmRemove = e
				return m, nil
			}
			return m, RemoveBookCmd(m.Ctrl, e.ForeignID, book.ID)
		}
		return m, nil

	case "A":
		// Add everything visible that is not yet owned
		if len(m.Derived.Entries) > 0 {
			return m, AddAllMissingCmd(m.Ctrl, m.Derived.Entries)
		}
		return m, nil

	case "s":
		st := m.state()
		st.SortField = nextOption(view.SortOptions(), st.SortField)
		m.setState(st)
		return m, nil

	case "S":
		st := m.state()
		st.SortOrder = st.SortOrder.Toggle()
		m.setState(st)
		return m, nil

	case "f":
		st := m.state()
		st.FilterStatus = nextOption(view.FilterOptions(), st.FilterStatus)
		m.setState(st)
		return m, nil

	case "c":
		st := m.state()
		st.HideCompilations = !st.HideCompilations
		m.setState(st)
		return m, nil

	case "v":
		st := m.state()
		if st.ViewMode == view.ViewGrid {
			st.ViewMode = view.ViewList
		} else {
			st.ViewMode = view.ViewGrid
		}
		m.setState(st)
		return m, nil

	case "t":
		// Series grouping only makes sense on author pages
		if m.Key.Kind() == domain.KindAuthor {
			m.GroupSeries = !m.GroupSeries
		}
		return m, nil

	case "x":
		// Dismiss the oldest toast early
		if items := m.Queue.Items(); len(items) > 0 {
			m.Queue.Dismiss(items[0].ID)
		}
		return m, nil

	case "r":
		if m.Key != "" {
			m.Loading = true
			return m, RefreshContextCmd(m.Svc, m.Key)
		}
		return m, nil

	case "R":
		m.Svc.InvalidateAll()
		if m.Key != "" {
			m.Loading = true
			return m, m.loadContextCmd(m.Key)
		}
		return m, nil

	case "enter":
		// Drill into the selected entry's series
		if e := m.selected(); e != nil && e.HasSeries() {
			m.Loading = true
			return m, LoadSeriesCmd(m.Svc, e.SeriesID)
		}
		return m, nil
	}

	return m, nil
}

// nextOption cycles to the option after current, wrapping around.
func nextOption[T comparable](options []T, current T) T {
	for i, opt := range options {
		if opt == current {
			return options[(i+1)%len(options)]
		}
	}
	return options[0]
}
