package commands

import (
	"context"
	"errors"
	"fmt"

	"GophShare/internal/cli/api"
	"GophShare/internal/config"
)

// Exit codes.
const (
	ExitOK           = 0
	ExitFailure      = 1
	ExitUsage        = 2
	ExitUnauthorized = 3
)

// Dispatch runs the command named by args[0] and returns the process exit code.
// Global flags must already be parsed into cfg.
func Dispatch(ctx context.Context, cfg *config.Config, args []string) int {
	if len(args) == 0 {
		fmt.Fprint(Out, FormatGlobalUsage())
		return ExitUsage
	}

	switch args[0] {
	case "help", "-h", "--help":
		return help(args[1:])
	}

	c, ok := Get(args[0])
	if !ok {
		fmt.Fprintf(Out, "Unknown command: %s\n\n", args[0])
		fmt.Fprint(Out, FormatGlobalUsage())
		return ExitUsage
	}

	err := c.Run(ctx, cfg, args[1:])
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrUsage):
		fmt.Fprintf(Out, "Usage: gscli %s\n", c.Usage())
		return ExitUsage
	case errors.Is(err, api.ErrUnauthorized):
		fmt.Fprintf(Out, "%s: %v\n  hint: gscli login <email> <password>\n", c.Name(), err)
		return ExitUnauthorized
	case errors.Is(err, context.Canceled):
		fmt.Fprintf(Out, "%s: interrupted\n", c.Name())
		return ExitFailure
	default:
		fmt.Fprintf(Out, "%s error: %v\n", c.Name(), err)
		return ExitFailure
	}
}

// help обрабатывает "gscli help [command]".
func help(args []string) int {
	if len(args) == 0 {
		fmt.Fprint(Out, FormatGlobalUsage())
		return ExitOK
	}
	if c, ok := Get(args[0]); ok {
		fmt.Fprint(Out, formatCommandHelp(c))
		return ExitOK
	}
	fmt.Fprintf(Out, "Unknown command: %s\n\n", args[0])
	fmt.Fprint(Out, FormatGlobalUsage())
	return ExitUsage
}
