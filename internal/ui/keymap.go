package ui

// Key binding constants used in handleKey.
const (
	KeyCtrlC      = "ctrl+c"
	KeyEsc        = "esc"
	KeyEnter      = "enter"
	KeyTab        = "tab"
	KeyCycleLevel = "ctrl+l"
	KeyRestart    = "ctrl+n"
	KeyPushToTalk = "ctrl+r"
	KeyPageUp     = "pgup"
	KeyPageDown   = "pgdown"
)

const helpText = "enter send • tab chat/practice • ctrl+l level • ctrl+n new • ctrl+r talk • esc quit"
