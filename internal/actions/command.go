package actions

import (
	"sort"
	"strings"
)

// formatCommand renders `::command key=value,...::message`.
func formatCommand(command string, props map[string]string, message string) string {
	var b strings.Builder
	b.WriteString("::")
	b.WriteString(command)

	if len(props) > 0 {
		keys := make([]string, 0, len(props))
		for k := range props {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		b.WriteString(" ")
		for i, k := range keys {
			if i > 0 {
				b.WriteString(",")
			}
			b.WriteString(k)
			b.WriteString("=")
			b.WriteString(EscapeProperty(props[k]))
		}
	}

	b.WriteString("::")
	b.WriteString(EscapeData(message))
	return b.String()
}

// EscapeData escapes a command message.
func EscapeData(s string) string {
	s = strings.ReplaceAll(s, "%", "%25")
	s = strings.ReplaceAll(s, "\r", "%0D")
	s = strings.ReplaceAll(s, "\n", "%0A")
	return s
}

// EscapeProperty escapes a command property value.
func EscapeProperty(s string) string {
	s = EscapeData(s)
	s = strings.ReplaceAll(s, ":", "%3A")
	s = strings.ReplaceAll(s, ",", "%2C")
	return s
}
