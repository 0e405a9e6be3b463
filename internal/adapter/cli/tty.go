package cli

import (
	"os"

	"golang.org/x/term"
)

// IsTTY checks if the given file descriptor is a terminal. This is how
// the CLI tells an interactive session apart from a CI pipeline or
// redirected output.
func IsTTY(fd uintptr) bool {
	return term.IsTerminal(int(fd))
}

// IsOutputTerminal checks if stdout is a TTY. Log output defaults to the
// human format on a terminal and JSON otherwise.
func IsOutputTerminal() bool {
	return IsTTY(os.Stdout.Fd())
}
