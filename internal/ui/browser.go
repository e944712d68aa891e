package ui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/olivier-w/sweep/internal/media"
)

// Choice identifies the source picked in the browser. Kind is ecg, sine
// or file; Path is set for files only.
type Choice struct {
	Kind string
	Path string
}

// BrowserSelectedMsg is emitted when a source is chosen.
type BrowserSelectedMsg struct {
	Choice Choice
}

// BrowserCancelledMsg is emitted when the browser is dismissed.
type BrowserCancelledMsg struct{}

type synthItem struct {
	kind string
	desc string
}

func (i synthItem) Title() string       { return i.kind }
func (i synthItem) Description() string { return i.desc }
func (i synthItem) FilterValue() string { return i.kind }

type fileItem struct {
	name string
	ext  string
}

func (i fileItem) Title() string       { return i.name }
func (i fileItem) Description() string { return i.ext }
func (i fileItem) FilterValue() string { return i.name }

// BrowserModel lists synthetic sources followed by the recordings in the
// working directory.
type BrowserModel struct {
	list list.Model
	err  error
}

// NewBrowser scans the current directory.
func NewBrowser() BrowserModel {
	entries, err := os.ReadDir(".")
	if err != nil {
		return BrowserModel{err: fmt.Errorf("cannot read directory: %w", err)}
	}

	items := []list.Item{
		synthItem{kind: "ecg", desc: "synthetic heartbeat"},
		synthItem{kind: "sine", desc: "synthetic sine wave"},
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		if !media.IsSupportedExt(ext) {
			continue
		}
		items = append(items, fileItem{name: strings.TrimSuffix(e.Name(), ext), ext: ext})
	}

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(lipgloss.AdaptiveColor{Light: "#1B7F3B", Dark: "#7CF29A"}).
		BorderLeftForeground(lipgloss.AdaptiveColor{Light: "#1B7F3B", Dark: "#3FBF6A"})
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(lipgloss.AdaptiveColor{Light: "#666666", Dark: "#888888"}).
		BorderLeftForeground(lipgloss.AdaptiveColor{Light: "#1B7F3B", Dark: "#3FBF6A"})

	l := list.New(items, delegate, 80, 20)
	l.Title = "sweep"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = headerStyle

	return BrowserModel{list: l}
}

// HasError returns true if the browser could not be initialized.
func (m BrowserModel) HasError() bool {
	return m.err != nil
}

// Error returns the initialization error, if any.
func (m BrowserModel) Error() error {
	return m.err
}

func (m BrowserModel) Init() tea.Cmd {
	return tea.SetWindowTitle("sweep")
}

func (m BrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}

		switch msg.String() {
		case "enter":
			var choice Choice
			switch item := m.list.SelectedItem().(type) {
			case synthItem:
				choice = Choice{Kind: item.kind}
			case fileItem:
				choice = Choice{Kind: "file", Path: item.name + item.ext}
			default:
				return m, nil
			}
			return m, func() tea.Msg { return BrowserSelectedMsg{Choice: choice} }
		case "q", "esc", "ctrl+c":
			return m, func() tea.Msg { return BrowserCancelledMsg{} }
		}

	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width)
		m.list.SetHeight(msg.Height)
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m BrowserModel) View() string {
	return m.list.View()
}
