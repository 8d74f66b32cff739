package mailtool

import (
	"fmt"
	"strings"
)

// ToolError is returned when the mail tool exits non-zero. Output holds
// everything it wrote to stdout.
type ToolError struct {
	Args     []string
	ExitCode int
	Output   string
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("mail tool %s exited with status %d", strings.Join(e.Args, " "), e.ExitCode)
}

// CountMismatchError is returned when a body fetch returns a different
// number of bodies than uids requested
type CountMismatchError struct {
	Requested int
	Received  int
}

func (e *CountMismatchError) Error() string {
	return fmt.Sprintf("requested %d bodies, received %d", e.Requested, e.Received)
}
