package logging

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/tflint-actions/setup-tflint/internal/actions"
)

// ActionsFormatter renders entries as runner workflow commands.
//
//	debug        ::debug::message
//	info         message
//	warn         ::warning::message
//	error/fatal  ::error::message
//
// Fields are appended to the message as sorted key=value pairs. The
// "component" field is omitted to keep annotations readable.
type ActionsFormatter struct{}

// Format implements logrus.Formatter.
func (f *ActionsFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	msg := entry.Message

	keys := make([]string, 0, len(entry.Data))
	for k := range entry.Data {
		if k == "component" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		msg += fmt.Sprintf(" %s=%v", k, entry.Data[k])
	}

	var prefix string
	switch entry.Level {
	case logrus.DebugLevel, logrus.TraceLevel:
		prefix = "::debug::"
	case logrus.WarnLevel:
		prefix = "::warning::"
	case logrus.ErrorLevel, logrus.FatalLevel, logrus.PanicLevel:
		prefix = "::error::"
	default:
		return []byte(msg + "\n"), nil
	}

	return []byte(prefix + actions.EscapeData(msg) + "\n"), nil
}
