package session

import (
	"fmt"
	"strings"
)

// commandOutcome distinguishes the two shapes a parsed command can take:
// an in-chat error to echo back to the sender, or a teleport to execute.
type commandOutcome int

const (
	commandError commandOutcome = iota
	commandTeleport
)

// commandAction is the result of parsing one "/"-prefixed chat message
// (§6). The orchestrator executes it; command.go never touches the
// player table itself.
type commandAction struct {
	outcome commandOutcome
	reply   string // populated for commandError; already "&c"-colored
	target  string // populated for commandTeleport; untrimmed target name
}

// parseCommand interprets chat text already known to start with "/" into a
// commandAction. Exact error strings match §6 literally.
func parseCommand(text string) commandAction {
	rest := strings.TrimPrefix(text, "/")
	fields := strings.Fields(rest)

	if len(fields) == 0 {
		return commandAction{outcome: commandError, reply: "&c`` is not a command"}
	}

	name := fields[0]
	args := fields[1:]

	switch name {
	case "tp":
		switch {
		case len(args) == 0:
			return commandAction{outcome: commandError, reply: fmt.Sprintf("&c`%s` has not enough arguments", name)}
		case len(args) > 1:
			return commandAction{outcome: commandError, reply: fmt.Sprintf("&c`%s` has too many arguments", name)}
		default:
			return commandAction{outcome: commandTeleport, target: args[0]}
		}
	default:
		return commandAction{outcome: commandError, reply: fmt.Sprintf("&c`%s` is not known", name)}
	}
}

// missingPlayerReply formats the §6 "could not find player" error.
func missingPlayerReply(name string) string {
	return fmt.Sprintf("&cCould not find player `%s`", name)
}

// formatChat renders a chat line per §4.6's "&7<name>:&f <text>" format,
// truncated to the wire string field's 64 bytes.
func formatChat(name, text string) string {
	line := fmt.Sprintf("&7%s:&f %s", name, text)
	if len(line) > 64 {
		line = line[:64]
	}
	return line
}
