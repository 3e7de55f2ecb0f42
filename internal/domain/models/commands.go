package models

import "strings"

// CommandType enumerates the read-only queries operators can send over WhatsApp.
type CommandType string

const (
	CommandSummary CommandType = "resumen"
	CommandStock   CommandType = "stock"
	CommandFlocks  CommandType = "parvadas"
	CommandHelp    CommandType = "ayuda"
	CommandUnknown CommandType = "unknown"
)

var commandAliases = map[string]CommandType{
	"resumen":    CommandSummary,
	"dashboard":  CommandSummary,
	"stock":      CommandStock,
	"inventario": CommandStock,
	"parvadas":   CommandFlocks,
	"flocks":     CommandFlocks,
	"ayuda":      CommandHelp,
	"help":       CommandHelp,
}

// Command represents a parsed operator query extracted from WhatsApp text.
type Command struct {
	Type CommandType
	Raw  string
	Args []string
}

// ParseCommand derives a Command from free-form text. The leading slash is optional.
func ParseCommand(message string) Command {
	cmd := Command{Type: CommandUnknown, Raw: message}

	tokens := strings.Fields(strings.ToLower(strings.TrimSpace(message)))
	if len(tokens) == 0 {
		return cmd
	}

	if t, ok := commandAliases[strings.TrimPrefix(tokens[0], "/")]; ok {
		cmd.Type = t
	}
	if len(tokens) > 1 {
		cmd.Args = tokens[1:]
	}

	return cmd
}
