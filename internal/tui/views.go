package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"shelfarr/internal/domain"
	"shelfarr/internal/notify"
	"shelfarr/internal/tui/styles"
	"shelfarr/internal/view"
)

// View renders the application
func (m Model) View() string {
	if !m.Ready {
		return "Loading..."
	}

	if m.ShowHelp {
		return m.renderHelp()
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderToolbar())
	b.WriteString("\n\n")

	if m.Searching {
		b.WriteString(styles.AccentStyle.Render("Search: "))
		b.WriteString(m.SearchInput.View())
		b.WriteString("\n\n")
	}

	switch {
	case m.Loading:
		b.WriteString(m.Spinner.View())
		b.WriteString(styles.DimStyle.Render(" Loading..."))
	case m.Key == "":
		b.WriteString(styles.DimStyle.Render("Press / to search for books and authors"))
	case len(m.Derived.Entries) == 0:
		b.WriteString(styles.DimStyle.Render("No books match the current filter"))
	case m.GroupSeries && m.Key.Kind() == domain.KindAuthor:
		b.WriteString(m.renderSeriesGroups())
	case m.state().ViewMode == view.ViewGrid:
		b.WriteString(m.renderGrid())
	default:
		b.WriteString(m.renderList())
	}

	b.WriteString("\n")

	if e := m.ConfirmRemove; e != nil {
		b.WriteString(styles.ToastInfoStyle.Render(
			fmt.Sprintf("Remove %s from your library? (y/n)", e.Title)))
		b.WriteString("\n")
	}

	for _, toast := range m.renderToasts() {
		b.WriteString(toast)
		b.WriteString("\n")
	}

	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) renderHeader() string {
	title := "Shelfarr"
	switch m.Key.Kind() {
	case domain.KindAuthor:
		if e := firstEntry(m.Entries); e != nil && e.AuthorName != "" {
			title = e.AuthorName
		} else {
			title = "Author " + m.Key.ID()
		}
	case domain.KindSeries:
		if e := firstWithSeries(m.Entries); e != nil {
			title = e.SeriesName
		} else {
			title = "Series " + m.Key.ID()
		}
	case domain.KindSearch:
		title = fmt.Sprintf("Search: %q", m.Key.ID())
	}
	return styles.TitleStyle.Render(title)
}

func (m Model) renderToolbar() string {
	if m.Key == "" {
		return ""
	}
	st := m.state()

	order := "↑"
	if st.SortOrder == view.SortDesc {
		order = "↓"
	}

	parts := []string{
		fmt.Sprintf("Filter: %s", st.FilterStatus),
		fmt.Sprintf("Sort: %s %s", st.SortField, order),
		fmt.Sprintf("%d/%d books", m.Derived.FilteredCount, m.Derived.TotalCount),
	}
	if st.HideCompilations {
		parts = append(parts, "compilations hidden")
	}
	if m.FilterQuery != "" || m.FilterTyping {
		parts = append(parts, styles.AccentStyle.Render(fmt.Sprintf("/%s", m.FilterQuery)))
	}
	return styles.SubtitleStyle.Render(strings.Join(parts, "  ·  "))
}

func (m Model) renderList() string {
	var b strings.Builder
	for i, e := range m.Derived.Entries {
		line := m.renderEntryLine(e)
		if i == m.Cursor {
			b.WriteString(styles.SelectedItemStyle.Render(line))
		} else {
			b.WriteString(styles.NormalItemStyle.Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderEntryLine(e *domain.CatalogEntry) string {
	badge := m.ownershipBadge(e)

	title := e.DisplayTitle()
	meta := make([]string, 0, 3)
	if e.ReleaseYear > 0 {
		meta = append(meta, fmt.Sprintf("%d", e.ReleaseYear))
	}
	if e.Rating > 0 {
		meta = append(meta, fmt.Sprintf("★ %.1f", e.Rating))
	}
	if formats := e.Formats(); formats != "" {
		meta = append(meta, formats)
	}

	line := badge + " " + title
	if len(meta) > 0 {
		line += "  " + styles.DimStyle.Render(strings.Join(meta, " · "))
	}

	maxWidth := m.Width - 4
	if maxWidth > 0 && lipgloss.Width(line) > maxWidth {
		line = styles.Truncate(line, maxWidth)
	}
	return line
}

func (m Model) renderGrid() string {
	cols := m.GridColumns
	if cols <= 0 {
		cols = 4
	}
	cellWidth := m.Width/cols - 4
	if cellWidth < 12 {
		cellWidth = 12
	}

	var rows []string
	var cells []string
	for i, e := range m.Derived.Entries {
		label := m.ownershipBadge(e) + " " + styles.Truncate(e.DisplayTitle(), cellWidth-2)
		style := styles.GridCellStyle
		if i == m.Cursor {
			style = styles.GridCellSelectedStyle
		}
		cells = append(cells, style.Width(cellWidth).Render(label))

		if len(cells) == cols {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
			cells = nil
		}
	}
	if len(cells) > 0 {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return strings.Join(rows, "\n")
}

func (m Model) renderSeriesGroups() string {
	groups := view.AuthorSeriesGroups(m.Derived.Entries)
	if len(groups) == 0 {
		return styles.DimStyle.Render("No series with two or more books")
	}

	var b strings.Builder
	for _, g := range groups {
		b.WriteString(styles.AccentStyle.Render(g.Name))
		b.WriteString(styles.DimStyle.Render(fmt.Sprintf("  (%d books)", len(g.Books))))
		b.WriteString("\n")
		for _, e := range g.Books {
			b.WriteString("  ")
			b.WriteString(m.renderEntryLine(e))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}

// ownershipBadge picks the status indicator for an entry, with in-flight
// operations taking precedence over the cached state. LibraryBook is read
// once up front; the entry itself is an immutable snapshot.
func (m Model) ownershipBadge(e *domain.CatalogEntry) string {
	book := e.LibraryBook
	if m.Ctrl.IsAddPending(e.ForeignID) {
		return styles.PendingStyle.Render(styles.PendingChar)
	}
	if book != nil && m.Ctrl.IsRemovePending(book.ID) {
		return styles.PendingStyle.Render(styles.PendingChar)
	}
	if book == nil {
		return styles.MissingStyle.Render(styles.MissingChar)
	}
	if !m.ShowBadges {
		return " "
	}
	switch book.Status {
	case domain.StatusDownloaded:
		return styles.OwnedStyle.Render(styles.OwnedChar)
	case domain.StatusDownloading:
		return styles.DownloadingStyle.Render(styles.DownloadingChar)
	default:
		return styles.OwnedStyle.Render(styles.MissingChar)
	}
}

func (m Model) renderToasts() []string {
	items := m.Queue.Items()
	out := make([]string, 0, len(items))
	for _, n := range items {
		switch n.Kind {
		case notify.Success:
			out = append(out, styles.ToastSuccessStyle.Render(n.Message))
		case notify.Error:
			out = append(out, styles.ToastErrorStyle.Render(n.Message))
		default:
			out = append(out, styles.ToastInfoStyle.Render(n.Message))
		}
	}
	return out
}

func (m Model) renderFooter() string {
	hints := []string{
		"a add", "d remove", "A add all", "s sort", "f filter", "/ search", "? help", "q quit",
	}
	return styles.DimStyle.Render(strings.Join(hints, "  "))
}

func (m Model) renderHelp() string {
	rows := [][2]string{
		{"j/k, ↑/↓", "Move cursor"},
		{"g/G", "Jump to top/bottom"},
		{"enter", "Open selected book's series"},
		{"a", "Add book to library"},
		{"d", "Remove book from library"},
		{"A", "Add all missing books"},
		{"s", "Cycle sort field"},
		{"S", "Toggle sort direction"},
		{"f", "Cycle ownership filter"},
		{"c", "Toggle compilations"},
		{"v", "Toggle grid/list view"},
		{"t", "Group by series (author pages)"},
		{"/", "Search the catalog"},
		{"F", "Filter the current page"},
		{"x", "Dismiss notification"},
		{"r", "Refresh current page"},
		{"R", "Clear cache and refetch"},
		{"q", "Quit"},
	}

	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("Keyboard Shortcuts"))
	b.WriteString("\n\n")
	for _, row := range rows {
		b.WriteString(fmt.Sprintf("  %s  %s\n",
			styles.HelpKeyStyle.Render(fmt.Sprintf("%-10s", row[0])),
			styles.HelpDescStyle.Render(row[1]),
		))
	}
	b.WriteString("\n")
	b.WriteString(styles.DimStyle.Render("Press esc to close"))
	return b.String()
}

func firstEntry(entries []*domain.CatalogEntry) *domain.CatalogEntry {
	if len(entries) == 0 {
		return nil
	}
	return entries[0]
}

func firstWithSeries(entries []*domain.CatalogEntry) *domain.CatalogEntry {
	for _, e := range entries {
		if e.HasSeries() {
			return e
		}
	}
	return nil
}
