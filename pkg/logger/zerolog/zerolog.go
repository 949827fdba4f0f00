package zerolog

import (
	"os"

	"github.com/google/goterm/term"
	"github.com/rs/zerolog"
)

// NewZerolog creates a console zerolog logger wrapped in the pipeline's
// Logger interface. With jsonFormat the output is raw zerolog JSON, otherwise
// a colored console writer is used.
func NewZerolog(level, dateTimeLayout string, colored, jsonFormat bool) (*Adapter, error) {
	logMode, err := zerolog.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	zerolog.SetGlobalLevel(logMode)

	if jsonFormat {
		logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
		return NewAdapter(&logger), nil
	}

	output := zerolog.ConsoleWriter{
		Out:         os.Stdout,
		NoColor:     !colored,
		TimeFormat:  dateTimeLayout,
		FormatLevel: formatLevel,
	}

	logger := zerolog.New(output).With().Timestamp().Logger()
	return NewAdapter(&logger), nil
}

func formatLevel(i interface{}) string {
	levelStr, ok := i.(string)
	if !ok {
		return "[UNK]"
	}

	switch levelStr {
	case zerolog.LevelDebugValue:
		return term.Cyanf("[DBG]")
	case zerolog.LevelInfoValue:
		return term.Greenf("[INF]")
	case zerolog.LevelWarnValue:
		return term.Yellowf("[WAR]")
	case zerolog.LevelErrorValue, zerolog.LevelFatalValue:
		return term.Redf("[ERR]")
	default:
		return term.Whitef("[UNK]")
	}
}
