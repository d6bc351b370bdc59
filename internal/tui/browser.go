// Package tui provides an interactive browser over the disk-backed entries
// of a tiered cache.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mmcdole/tiercache/internal/cache"
	"github.com/mmcdole/tiercache/internal/tui/styles"
	"github.com/sahilm/fuzzy"
)

// Cache is the part of the tiered cache the browser drives.
type Cache interface {
	Path() string
	Keys() []string
	Inspect(key string) (cache.EntryInfo, bool)
	Delete(key string, checkDisk bool)
	ClearAll()
	Flush()
	Dirty() bool
	Degraded() bool
}

// Lines taken by the header, filter bar and footer.
const chromeLines = 4

type entriesMsg struct {
	entries []cache.EntryInfo
}

type statusMsg string

// Model is the bubbletea model for the cache browser.
type Model struct {
	cache Cache
	keys  KeyMap
	now   func() time.Time

	entries []cache.EntryInfo

	// Selection
	cursor int
	offset int

	width  int
	height int

	// Filter state
	filterActive bool
	filterInput  textinput.Model
	filteredIdx  []int // indices into entries

	confirmClear bool
	status       string
	statusStyle  lipgloss.Style
}

// NewModel creates a browser over c.
func NewModel(c Cache) *Model {
	ti := textinput.New()
	ti.Placeholder = "type to filter..."
	ti.Prompt = "/ "
	ti.PromptStyle = styles.FilterPromptStyle
	ti.TextStyle = styles.FilterStyle

	return &Model{
		cache:       c,
		keys:        DefaultKeyMap(),
		now:         time.Now,
		filterInput: ti,
	}
}

func (m *Model) Init() tea.Cmd {
	return m.loadEntries
}

func (m *Model) loadEntries() tea.Msg {
	keys := m.cache.Keys()
	entries := make([]cache.EntryInfo, 0, len(keys))
	for _, k := range keys {
		info, ok := m.cache.Inspect(k)
		if !ok {
			// Indexed but not in this session's registry.
			info = cache.EntryInfo{Key: k, Indexed: true}
		}
		entries = append(entries, info)
	}
	return entriesMsg{entries: entries}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ensureVisible()
		return m, nil

	case entriesMsg:
		m.entries = msg.entries
		m.applyFilter()
		if m.cursor >= m.itemCount() {
			m.cursor = max(m.itemCount()-1, 0)
		}
		m.ensureVisible()
		return m, nil

	case statusMsg:
		m.setStatus(string(msg), styles.AccentStyle)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.confirmClear {
		m.confirmClear = false
		if key.Matches(msg, m.keys.Confirm) {
			m.cache.ClearAll()
			m.setStatus("cache cleared", styles.SuccessStyle)
			return m, m.loadEntries
		}
		m.setStatus("clear cancelled", styles.AccentStyle)
		return m, nil
	}

	// Filter input is focused: keys go to the text input
	if m.filterActive && m.filterInput.Focused() {
		switch msg.String() {
		case "esc":
			m.clearFilter()
			return m, nil
		case "enter":
			m.filterInput.Blur()
			return m, nil
		case "backspace":
			if m.filterInput.Value() == "" {
				m.clearFilter()
				return m, nil
			}
		}
		var cmd tea.Cmd
		m.filterInput, cmd = m.filterInput.Update(msg)
		m.applyFilter()
		m.cursor, m.offset = 0, 0
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.cache.Flush()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Escape):
		if m.filterActive {
			m.clearFilter()
		}

	case key.Matches(msg, m.keys.Filter):
		m.filterActive = true
		m.filterInput.Focus()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < m.itemCount()-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Home):
		m.cursor = 0
	case key.Matches(msg, m.keys.End):
		m.cursor = max(m.itemCount()-1, 0)
	case key.Matches(msg, m.keys.HalfDown):
		m.cursor = min(m.cursor+m.maxVisible()/2, max(m.itemCount()-1, 0))
	case key.Matches(msg, m.keys.HalfUp):
		m.cursor = max(m.cursor-m.maxVisible()/2, 0)

	case key.Matches(msg, m.keys.Delete):
		entry, ok := m.Selected()
		if !ok {
			return m, nil
		}
		m.cache.Delete(entry.Key, true)
		m.setStatus("deleted "+entry.Key, styles.SuccessStyle)
		return m, m.loadEntries

	case key.Matches(msg, m.keys.ClearAll):
		m.confirmClear = true
		m.setStatus("clear the whole cache? (y/n)", styles.ErrorStyle)

	case key.Matches(msg, m.keys.Flush):
		if !m.cache.Dirty() {
			m.setStatus("nothing to flush", styles.AccentStyle)
			return m, nil
		}
		m.cache.Flush()
		if m.cache.Dirty() {
			m.setStatus("flush failed, see the log", styles.ErrorStyle)
		} else {
			m.setStatus("flushed", styles.SuccessStyle)
		}

	case key.Matches(msg, m.keys.Reload):
		return m, m.loadEntries
	}

	m.ensureVisible()
	return m, nil
}

// Selected returns the entry under the cursor.
func (m *Model) Selected() (cache.EntryInfo, bool) {
	if m.itemCount() == 0 {
		return cache.EntryInfo{}, false
	}
	return m.entries[m.mapIndex(m.cursor)], true
}

// Visible returns the keys currently listed, after filtering.
func (m *Model) Visible() []string {
	out := make([]string, m.itemCount())
	for i := range out {
		out[i] = m.entries[m.mapIndex(i)].Key
	}
	return out
}

func (m *Model) clearFilter() {
	m.filterActive = false
	m.filteredIdx = nil
	m.filterInput.SetValue("")
	m.filterInput.Blur()
}

func (m *Model) applyFilter() {
	query := m.filterInput.Value()
	if !m.filterActive || query == "" {
		m.filteredIdx = nil
		return
	}

	lowerKeys := make([]string, len(m.entries))
	for i, e := range m.entries {
		lowerKeys[i] = strings.ToLower(e.Key)
	}

	matches := fuzzy.Find(strings.ToLower(query), lowerKeys)
	m.filteredIdx = make([]int, len(matches))
	for i, match := range matches {
		m.filteredIdx[i] = match.Index
	}
}

func (m *Model) itemCount() int {
	if m.filteredIdx != nil {
		return len(m.filteredIdx)
	}
	return len(m.entries)
}

func (m *Model) mapIndex(i int) int {
	if m.filteredIdx != nil && i < len(m.filteredIdx) {
		return m.filteredIdx[i]
	}
	return i
}

func (m *Model) maxVisible() int {
	return max(m.height-chromeLines, 1)
}

func (m *Model) ensureVisible() {
	if m.height == 0 {
		return
	}
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.maxVisible() {
		m.offset = m.cursor - m.maxVisible() + 1
	}
}

func (m *Model) setStatus(text string, style lipgloss.Style) {
	m.status = text
	m.statusStyle = style
}

// Rendering

func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	if m.filterActive {
		b.WriteString(m.filterInput.View())
		if m.filterInput.Value() != "" {
			b.WriteString(styles.DimStyle.Render(fmt.Sprintf(" [%d/%d]", m.itemCount(), len(m.entries))))
		}
	}
	b.WriteString("\n")

	if m.itemCount() == 0 {
		b.WriteString(styles.DimStyle.Render("  no disk-backed entries"))
		b.WriteString("\n")
	}
	end := min(m.offset+m.maxVisible(), m.itemCount())
	for i := m.offset; i < end; i++ {
		b.WriteString(m.renderRow(m.entries[m.mapIndex(i)], i == m.cursor))
		b.WriteString("\n")
	}

	b.WriteString(m.renderFooter())
	return b.String()
}

func (m *Model) renderHeader() string {
	parts := []string{styles.TitleStyle.Render("tiercache"), styles.DimStyle.Render(m.cache.Path())}
	if m.cache.Dirty() {
		parts = append(parts, styles.BadgeStyle.Render("dirty"))
	}
	if m.cache.Degraded() {
		parts = append(parts, styles.ErrorBadgeStyle.Render("memory only"))
	}
	parts = append(parts, styles.DimBadgeStyle.Render(fmt.Sprintf("%d keys", len(m.entries))))
	return strings.Join(parts, " ")
}

func (m *Model) renderRow(e cache.EntryInfo, selected bool) string {
	width := m.width
	if width <= 0 {
		width = 80
	}

	detail := m.describe(e)
	keyWidth := max(width-lipgloss.Width(detail)-4, 8)

	dim := styles.DimGray
	parts := []styles.RowPart{
		{Text: styles.Pad(styles.Truncate(e.Key, keyWidth), keyWidth)},
		{Text: " " + detail, Foreground: &dim},
	}
	return styles.RenderListRow(parts, selected, width)
}

// describe summarizes size and remaining lifetime.
func (m *Model) describe(e cache.EntryInfo) string {
	if e.CreatedEpochHour == 0 && e.Size == 0 {
		return "not loaded"
	}
	expires, ok := e.ExpiresAt()
	if !ok {
		return fmt.Sprintf("%6dB  forever", e.Size)
	}
	left := expires.Sub(m.now()).Truncate(time.Hour)
	if left <= 0 {
		return fmt.Sprintf("%6dB  expired", e.Size)
	}
	return fmt.Sprintf("%6dB  %dh left", e.Size, int(left.Hours()))
}

func (m *Model) renderFooter() string {
	if m.status != "" {
		return m.statusStyle.Render(m.status)
	}
	var help []string
	for _, b := range m.keys.ShortHelp() {
		h := b.Help()
		help = append(help, styles.HelpKeyStyle.Render(h.Key)+" "+styles.HelpDescStyle.Render(h.Desc))
	}
	return strings.Join(help, "  ")
}
