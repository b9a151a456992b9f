package records

import (
	"github.com/danthegoodman1/tdastore/schema"
	"github.com/rs/zerolog"
)

type LogLevel int

const (
	Info     LogLevel = 1
	Caution  LogLevel = 2
	Warning  LogLevel = 4
	Error    LogLevel = 8
	Critical LogLevel = 16
)

var logLevelEnum = schema.NewEnum("LogLevel", map[string]int{
	"Info":     int(Info),
	"Caution":  int(Caution),
	"Warning":  int(Warning),
	"Error":    int(Error),
	"Critical": int(Critical),
})

func (l LogLevel) EnumType() *schema.EnumType {
	return logLevelEnum
}

func (l LogLevel) String() string {
	return logLevelEnum.NameOf(int(l))
}

// ZerologLevel maps a broker log level onto zerolog. Critical is logged at
// error level so it never exits the process.
func (l LogLevel) ZerologLevel() zerolog.Level {
	switch l {
	case Info:
		return zerolog.InfoLevel
	case Caution, Warning:
		return zerolog.WarnLevel
	case Error, Critical:
		return zerolog.ErrorLevel
	default:
		return zerolog.DebugLevel
	}
}
