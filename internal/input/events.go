package input

// Command is a playback action triggered by the user.
type Command string

const (
	CommandToggle     Command = "toggle"
	CommandClear      Command = "clear"
	CommandReload     Command = "reload"
	CommandFaster     Command = "faster"
	CommandSlower     Command = "slower"
	CommandResetSpeed Command = "reset_speed"
	// CommandResume restarts playback that was suspended while hidden,
	// unless the user paused it.
	CommandResume Command = "resume"
	CommandQuit   Command = "quit"
)
