package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"GophShare/internal/config"
)

// ErrUsage is returned by a command when arguments are invalid and usage should be shown.
var ErrUsage = errors.New("usage")

// Command represents a CLI subcommand.
type Command interface {
	Name() string
	Description() string
	// Usage returns the synopsis without the binary name, e.g. "mkdir <name> [parent-id]".
	Usage() string
	Run(ctx context.Context, cfg *config.Config, args []string) error
}

var registry = map[string]Command{}

// Out: общий writer для вывода CLI, в тестах подменяется буфером.
var Out io.Writer = os.Stdout

// helpSections задаёт порядок разделов в общей справке.
var helpSections = []struct {
	title string
	names []string
}{
	{"Account", []string{"register", "login", "logout", "status"}},
	{"Folders", []string{"mkdir", "ls", "mv", "rename", "rm"}},
	{"Files", []string{"upload", "files", "file-get", "file-mv", "file-rm"}},
	{"Sharing", []string{"share", "shares", "unshare", "open"}},
}

// RegisterCmd adds a command to the registry. Called from init() of each command file.
func RegisterCmd(cmd Command) {
	registry[cmd.Name()] = cmd
}

// Get returns a command by name, case-insensitively.
func Get(name string) (Command, bool) {
	c, ok := registry[strings.ToLower(name)]
	return c, ok
}

// List returns all registered commands sorted by name.
func List() []Command {
	list := make([]Command, 0, len(registry))
	for _, c := range registry {
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name() < list[j].Name() })
	return list
}

// FormatGlobalUsage builds the help text grouped by section.
// Commands registered outside of helpSections are listed under "Other".
func FormatGlobalUsage() string {
	var b strings.Builder
	b.WriteString("GophShare CLI\n\n")
	b.WriteString("Usage:\n  gscli [--base-url <host:port>] [--token-file <path>] <command> [args]\n")

	seen := make(map[string]bool, len(registry))
	for _, s := range helpSections {
		var cmds []Command
		for _, n := range s.names {
			if c, ok := registry[n]; ok {
				cmds = append(cmds, c)
				seen[n] = true
			}
		}
		writeSection(&b, s.title, cmds)
	}

	var rest []Command
	for _, c := range List() {
		if !seen[c.Name()] {
			rest = append(rest, c)
		}
	}
	writeSection(&b, "Other", rest)

	b.WriteString("\nRun 'gscli help <command>' for details.\n")
	return b.String()
}

func writeSection(b *strings.Builder, title string, cmds []Command) {
	if len(cmds) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s:\n", title)
	for _, c := range cmds {
		fmt.Fprintf(b, "  %-36s %s\n", c.Usage(), c.Description())
	}
}

// formatCommandHelp prints usage and description of a single command.
func formatCommandHelp(c Command) string {
	return fmt.Sprintf("Usage: gscli %s\n\n  %s\n", c.Usage(), c.Description())
}
