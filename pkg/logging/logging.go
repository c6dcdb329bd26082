// Package logging bootstraps process-wide log verbosity, matching the
// teacher's pattern of binding clicky's flag set once in PersistentPreRun
// and then letting every package call commons/logger directly.
package logging

import (
	"io"
	"os"

	"github.com/flanksource/clicky"
	"github.com/flanksource/commons/logger"
	"github.com/sirupsen/logrus"
)

// LogFileName is the structured log left behind in the install directory
// (see pkg/platformshell for its cleanup on uninstall).
const LogFileName = "installer.log"

// Init applies clicky's bound verbosity flags to the global logger. It
// must run after cobra has parsed flags and before any other package
// logs anything.
func Init() {
	clicky.Flags.UseFlags()
	logger.Debugf("logging initialized")
}

// OpenLogFile tees subsequent log output to <installPath>/installer.log in
// addition to stderr, returning the open file so the caller can close it
// on shutdown. Failure to open the file is non-fatal: logging continues
// to stderr only.
func OpenLogFile(installPath string) *os.File {
	path := installPath + string(os.PathSeparator) + LogFileName
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
	if err != nil {
		logger.Warnf("opening log file %s: %v", path, err)
		return nil
	}
	logrus.SetOutput(io.MultiWriter(os.Stderr, f))
	return f
}
