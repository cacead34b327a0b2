package pipeline

import "fmt"

type Level string

const (
	LevelError   Level = "error"
	LevelWarning Level = "warning"
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
)

// Notice is a user-facing status line produced while processing a resume.
type Notice struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

func noticef(level Level, format string, args ...any) Notice {
	return Notice{Level: level, Message: fmt.Sprintf(format, args...)}
}
