package logflags

import (
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var loader = false
var disas = false
var cmd = false

var logOut io.Writer = os.Stderr

func makeLogger(flag bool, fields logrus.Fields) *logrus.Entry {
	logger := logrus.New().WithFields(fields)
	logger.Logger.Out = logOut
	logger.Logger.Level = logrus.DebugLevel
	if !flag {
		logger.Logger.Level = logrus.PanicLevel
	}
	return logger
}

// LoaderLogger returns a logger for the loader package. Recoverable
// table anomalies (missing .symtab, unmapped symbols) are logged here.
func LoaderLogger() *logrus.Entry {
	return makeLogger(loader, logrus.Fields{"layer": "loader"})
}

func DisasLogger() *logrus.Entry {
	return makeLogger(disas, logrus.Fields{"layer": "disas"})
}

func CmdLogger() *logrus.Entry {
	return makeLogger(cmd, logrus.Fields{"layer": "cmd"})
}

// SetOutput redirects every logger created afterwards.
func SetOutput(w io.Writer) {
	logOut = w
}

// Setup enables the comma separated layers in logstr. "all" enables
// every layer; an empty string disables logging.
func Setup(logstr string) error {
	loader, disas, cmd = false, false, false
	if logstr == "" {
		return nil
	}
	for _, layer := range strings.Split(logstr, ",") {
		switch strings.TrimSpace(layer) {
		case "loader":
			loader = true
		case "disas":
			disas = true
		case "cmd":
			cmd = true
		case "all":
			loader, disas, cmd = true, true, true
		default:
			return errors.Errorf("unknown log layer %q", layer)
		}
	}
	return nil
}
