package ui

import tea "github.com/charmbracelet/bubbletea"

func isQuit(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "q", "esc", "ctrl+c":
		return true
	}
	return false
}

func helpText(frozen bool) string {
	pause := "space freeze"
	if frozen {
		pause = "space resume"
	}
	return pause + "  c clear  m mode  +/- range  v lead  q quit"
}
