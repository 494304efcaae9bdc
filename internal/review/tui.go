// Package review is an interactive browser over the stored posting board:
// a quick way to audit what the classifier admitted and what the
// reconciler's sweeps did to it.
package review

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nursewire/nursewire/internal/model"
)

// Lines per posting item in the list view (title + subtitle + separator).
const itemHeight = 3

type viewState int

const (
	viewList viewState = iota
	viewDetail
)

// lifecycleFilter cycles all → active → inactive.
type lifecycleFilter int

const (
	filterAll lifecycleFilter = iota
	filterActive
	filterInactive
)

func (f lifecycleFilter) label() string {
	switch f {
	case filterActive:
		return "active"
	case filterInactive:
		return "inactive"
	default:
		return "all"
	}
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			Padding(0, 1)

	borderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("39"))

	statusBarStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236"))

	itemTitleStyle = lipgloss.NewStyle().Bold(true)

	itemSubtitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("245"))

	selectedTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("24"))

	selectedSubtitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("252")).
				Background(lipgloss.Color("24"))

	inactiveBadgeStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("203"))

	activeBadgeStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("42"))

	labelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			Width(18)

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Padding(1, 0, 0, 1)
)

type reviewModel struct {
	all      []model.Posting
	filtered []model.Posting
	filter   lifecycleFilter

	cursor int
	offset int
	width  int
	height int
	ready  bool
	view   viewState
	detail viewport.Model
}

func (m reviewModel) Init() tea.Cmd {
	return nil
}

func (m reviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		if m.view == viewDetail {
			m.detail.Width = m.width - 4
			m.detail.Height = m.height - 4
			m.detail.SetContent(m.renderDetail())
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			if m.view == viewDetail {
				m.view = viewList
				return m, nil
			}
			return m, tea.Quit

		case "esc":
			if m.view == viewDetail {
				m.view = viewList
			}
			return m, nil

		case "up", "k":
			if m.view == viewDetail {
				break
			}
			if m.cursor > 0 {
				m.cursor--
				m.clampScroll()
			}
			return m, nil

		case "down", "j":
			if m.view == viewDetail {
				break
			}
			if m.cursor < len(m.filtered)-1 {
				m.cursor++
				m.clampScroll()
			}
			return m, nil

		case "a":
			if m.view == viewList {
				m.filter = (m.filter + 1) % 3
				m.applyFilter()
			}
			return m, nil

		case "enter":
			if m.view == viewList && len(m.filtered) > 0 {
				m.view = viewDetail
				m.detail = viewport.New(m.width-4, m.height-4)
				m.detail.SetContent(m.renderDetail())
			}
			return m, nil
		}

		// Forward remaining keys (arrows in detail, pgup/pgdn) to the viewport.
		if m.view == viewDetail {
			var cmd tea.Cmd
			m.detail, cmd = m.detail.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

func (m *reviewModel) applyFilter() {
	m.filtered = m.filtered[:0]
	for _, p := range m.all {
		switch m.filter {
		case filterActive:
			if !p.IsActive {
				continue
			}
		case filterInactive:
			if p.IsActive {
				continue
			}
		}
		m.filtered = append(m.filtered, p)
	}
	m.cursor = 0
	m.offset = 0
}

func (m *reviewModel) clampScroll() {
	visible := m.visibleItems()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+visible {
		m.offset = m.cursor - visible + 1
	}
}

func (m reviewModel) visibleItems() int {
	rows := (m.height - 4) / itemHeight
	if rows < 1 {
		rows = 1
	}
	return rows
}

func (m reviewModel) View() string {
	if !m.ready {
		return "loading…"
	}
	if m.view == viewDetail {
		return borderStyle.Render(m.detail.View()) + "\n" +
			hintStyle.Render("↑/↓/j/k scroll  esc back  q close")
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Posting Board — %d postings (%s)", len(m.filtered), m.filter.label())))
	b.WriteString("\n\n")

	end := m.offset + m.visibleItems()
	if end > len(m.filtered) {
		end = len(m.filtered)
	}
	for i := m.offset; i < end; i++ {
		p := m.filtered[i]
		badge := activeBadgeStyle.Render("●")
		if !p.IsActive {
			badge = inactiveBadgeStyle.Render("○")
		}
		title := fmt.Sprintf("%s %s", badge, p.Title)
		subtitle := fmt.Sprintf("   %s · %s · %s · seen %s",
			locationLine(p), p.Specialty, p.JobType, p.ScrapedAt.Format("Jan 2"))

		if i == m.cursor {
			b.WriteString(selectedTitleStyle.Render(title) + "\n")
			b.WriteString(selectedSubtitleStyle.Render(subtitle) + "\n\n")
		} else {
			b.WriteString(itemTitleStyle.Render(title) + "\n")
			b.WriteString(itemSubtitleStyle.Render(subtitle) + "\n\n")
		}
	}

	b.WriteString(statusBarStyle.Render(fmt.Sprintf("%d/%d", m.cursor+1, len(m.filtered))))
	b.WriteString(hintStyle.Render("↑/↓/j/k navigate  enter detail  a filter  q quit"))
	return b.String()
}

func (m reviewModel) renderDetail() string {
	if m.cursor >= len(m.filtered) {
		return ""
	}
	p := m.filtered[m.cursor]

	status := "active"
	if !p.IsActive {
		status = "inactive"
	}
	expiry := "—"
	if e := p.GoverningExpiry(); e != nil {
		kind := "calculated"
		if p.ExpiresDate != nil {
			kind = "explicit"
		}
		expiry = fmt.Sprintf("%s (%s)", e.Format("2006-01-02"), kind)
	}

	rows := []struct{ label, value string }{
		{"Title", p.Title},
		{"Status", status},
		{"Location", locationLine(p)},
		{"Specialty", p.Specialty},
		{"Job Type", p.JobType},
		{"Shift", orDash(p.ShiftType)},
		{"Experience", orDash(p.ExperienceLevel)},
		{"Salary", salaryLine(p)},
		{"Expires", expiry},
		{"Scraped", p.ScrapedAt.Format(time.RFC1123)},
		{"Source URL", p.SourceURL},
		{"Slug", p.Slug},
	}

	var b strings.Builder
	for _, r := range rows {
		b.WriteString(labelStyle.Render(r.label) + r.value + "\n")
	}
	b.WriteString("\n" + p.Description + "\n")
	return b.String()
}

func locationLine(p model.Posting) string {
	if p.IsRemote {
		return "Remote"
	}
	switch {
	case p.City != "" && p.State != "":
		return p.City + ", " + p.State
	case p.City != "":
		return p.City
	case p.State != "":
		return p.State
	default:
		return "—"
	}
}

func salaryLine(p model.Posting) string {
	if p.SalaryMinHourly == nil || p.SalaryMaxHourly == nil {
		return "—"
	}
	return fmt.Sprintf("$%.2f–$%.2f/hr ($%.0f–$%.0f/yr)",
		*p.SalaryMinHourly, *p.SalaryMaxHourly,
		derefOr(p.SalaryMinAnnual), derefOr(p.SalaryMaxAnnual))
}

func derefOr(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}

// Run opens the review TUI over the given postings.
func Run(postings []model.Posting) error {
	m := reviewModel{all: postings}
	m.applyFilter()
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
