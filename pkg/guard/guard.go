// Package guard implements the single-instance check: before any
// install/uninstall, refuse to proceed if another running process's
// executable is the maintenance tool itself or any file path this
// installer has previously recorded as installed.
package guard

import (
	"os"
	"strings"

	"github.com/flanksource/commons/logger"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/flanksource/maintenancetool/pkg/errs"
	"github.com/flanksource/maintenancetool/pkg/tasks"
	"github.com/flanksource/maintenancetool/pkg/types"
)

// CheckNoConflictingInstance enumerates running processes and fails if
// any process other than the current one has an executable path ending
// in "maintenancetool"/"maintenancetool.exe", or matching any path
// recorded by an installed package in db.
func CheckNoConflictingInstance(db []types.LocalInstallation) error {
	self := os.Getpid()

	procs, err := process.Processes()
	if err != nil {
		// Process enumeration failing shouldn't block install on
		// platforms/sandboxes where it's unavailable; log-and-continue
		// is a more useful default than a hard failure here.
		logger.Warnf("enumerating processes: %v; skipping instance check", err)
		return nil
	}

	trackedSuffixes := trackedPathSuffixes(db)

	for _, p := range procs {
		if int(p.Pid) == self {
			continue
		}

		exe, err := p.Exe()
		if err != nil || exe == "" {
			continue
		}

		base := strings.ToLower(exe)
		if strings.HasSuffix(base, strings.ToLower(tasks.MaintenanceToolBaseName)) ||
			strings.HasSuffix(base, strings.ToLower(tasks.MaintenanceToolBaseName+".exe")) {
			return &errs.InstanceConflict{ProcessName: exe, PID: p.Pid}
		}

		for _, tracked := range trackedSuffixes {
			if strings.HasSuffix(base, tracked.suffix) {
				logger.Debugf("instance conflict matches installed package %s", tracked.entry.Pretty().ANSI())
				return &errs.InstanceConflict{ProcessName: exe, PID: p.Pid}
			}
		}
	}

	return nil
}

// trackedPath pairs a lower-cased file suffix with the installation
// record it came from, so a match can be logged against the package it
// belongs to rather than the bare path.
type trackedPath struct {
	suffix string
	entry  types.LocalInstallation
}

func trackedPathSuffixes(db []types.LocalInstallation) []trackedPath {
	var suffixes []trackedPath
	for _, entry := range db {
		for _, f := range entry.Files {
			suffixes = append(suffixes, trackedPath{suffix: strings.ToLower(f), entry: entry})
		}
	}
	return suffixes
}
