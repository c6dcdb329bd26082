// Package server implements the local REST control plane: the UI's only
// way to talk to the installer. It binds 127.0.0.1 on an ephemeral port,
// serves config/status reads under the framework's read lock, and streams
// install/uninstall progress as newline-delimited JSON chunks produced by
// a worker goroutine and forwarded by the HTTP handler goroutine.
package server

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"os"
	"path/filepath"

	"github.com/flanksource/commons/logger"

	"github.com/flanksource/maintenancetool/pkg/errs"
	"github.com/flanksource/maintenancetool/pkg/framework"
	"github.com/flanksource/maintenancetool/pkg/guard"
	"github.com/flanksource/maintenancetool/pkg/httpclient"
	"github.com/flanksource/maintenancetool/pkg/logging"
	"github.com/flanksource/maintenancetool/pkg/platform"
	"github.com/flanksource/maintenancetool/pkg/platformshell"
	"github.com/flanksource/maintenancetool/pkg/source"
	"github.com/flanksource/maintenancetool/pkg/tasks"
	"github.com/flanksource/maintenancetool/pkg/tasktree"
)

//go:embed static
var staticFS embed.FS

// Server is the bound-but-not-yet-serving local control plane.
type Server struct {
	fw       *framework.Framework
	registry *source.Registry
	client   *httpclient.Client
	mux      *http.ServeMux
	listener net.Listener
	onExit   func()
}

// New binds a listener on 127.0.0.1 with an OS-chosen ephemeral port and
// wires every route in spec.md §4.9. onExit is invoked just before the
// process exits in response to GET /api/exit (e.g. to flush logs).
func New(fw *framework.Framework, registry *source.Registry, client *httpclient.Client, onExit func()) (*Server, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, &errs.BindError{Addr: "127.0.0.1:0", Err: err}
	}

	s := &Server{
		fw:       fw,
		registry: registry,
		client:   client,
		mux:      http.NewServeMux(),
		listener: listener,
		onExit:   onExit,
	}
	s.routes()
	return s, nil
}

// Addr returns the bound address, e.g. "127.0.0.1:53214".
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// Serve blocks, serving requests until the listener is closed.
func (s *Server) Serve() error {
	return http.Serve(s.listener, s.mux)
}

// Close stops accepting new connections.
func (s *Server) Close() error {
	return s.listener.Close()
}

func (s *Server) routes() {
	s.mux.HandleFunc("/api/config", s.handleConfig)
	s.mux.HandleFunc("/api/packages", s.handlePackages)
	s.mux.HandleFunc("/api/default-path", s.handleDefaultPath)
	s.mux.HandleFunc("/api/installation-status", s.handleInstallationStatus)
	s.mux.HandleFunc("/api/exit", s.handleExit)
	s.mux.HandleFunc("/api/start-install", s.handleStartInstall)
	s.mux.HandleFunc("/api/uninstall", s.handleUninstall)
	s.mux.HandleFunc("/", s.handleStatic)
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	config := s.fw.GetConfig()
	data, err := json.Marshal(config)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/javascript")
	fmt.Fprintf(w, "var config = %s;", data)
}

func (s *Server) handlePackages(w http.ResponseWriter, r *http.Request) {
	config := s.fw.GetConfig()
	data, err := json.Marshal(config.Packages)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/javascript")
	fmt.Fprintf(w, "var packages = %s;", data)
}

func (s *Server) handleDefaultPath(w http.ResponseWriter, r *http.Request) {
	path, ok := s.fw.GetDefaultPath()
	resp := struct {
		Path *string `json:"path"`
	}{}
	if ok {
		resp.Path = &path
	}
	writeJSON(w, resp)
}

func (s *Server) handleInstallationStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.fw.GetInstallationStatus())
}

func (s *Server) handleExit(w http.ResponseWriter, r *http.Request) {
	launcher := s.fw.LauncherPath()
	w.WriteHeader(http.StatusOK)

	go func() {
		if s.onExit != nil {
			s.onExit()
		}
		if launcher != "" {
			spawnDetached(launcher)
		}
		os.Exit(0)
	}()
}

func (s *Server) handleStartInstall(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	installPath := r.FormValue("path")
	config := s.fw.GetConfig()

	var items []string
	for _, pkg := range config.Packages {
		if r.FormValue(pkg.Name) == "true" {
			items = append(items, pkg.Name)
		}
	}

	serveStream(w, func(ch chan<- chunk) {
		if installPath != "" {
			if err := s.fw.SetInstallDir(installPath); err != nil {
				ch <- chunk{errMsg: err.Error()}
				return
			}
		}

		existing := s.fw.Database()
		existingNames := map[string]bool{}
		for _, e := range existing {
			existingNames[e.Name] = true
		}
		itemSet := map[string]bool{}
		for _, i := range items {
			itemSet[i] = true
		}
		var uninstallItems []string
		for name := range existingNames {
			if !itemSet[name] {
				uninstallItems = append(uninstallItems, name)
			}
		}

		if err := guard.CheckNoConflictingInstance(existing); err != nil {
			ch <- chunk{errMsg: err.Error()}
			return
		}

		fresh := !s.fw.PreexistingInstall()
		root := tasks.BuildInstallTask(config, s.registry, s.client, items, uninstallItems, fresh)

		s.fw.WithWriteLock(func(state *framework.State) {
			node := tasktree.Build(root)
			_, err := node.Execute(r.Context(), state, func(message string, fraction float64) {
				ch <- chunk{status: message, progress: fraction}
			})
			if err != nil {
				ch <- chunk{errMsg: err.Error()}
			}
		})
	})
}

func (s *Server) handleUninstall(w http.ResponseWriter, r *http.Request) {
	serveStream(w, func(ch chan<- chunk) {
		if err := guard.CheckNoConflictingInstance(s.fw.Database()); err != nil {
			ch <- chunk{errMsg: err.Error()}
			return
		}

		var items []string
		for _, e := range s.fw.Database() {
			items = append(items, e.Name)
		}
		root := tasks.BuildUninstallTask(items)

		var execErr error
		s.fw.WithWriteLock(func(state *framework.State) {
			node := tasktree.Build(root)
			_, err := node.Execute(r.Context(), state, func(message string, fraction float64) {
				ch <- chunk{status: message, progress: fraction}
			})
			if err != nil {
				execErr = err
				ch <- chunk{errMsg: err.Error()}
			}
		})
		if execErr != nil {
			return
		}

		s.scheduleSelfCleanup()
	})
}

// scheduleSelfCleanup burns the maintenance tool binary and its log file
// once every package has been uninstalled, per spec.md's
// "uninstall(...) -> schedules self-cleanup" contract (§4.1). Failure is
// logged, never surfaced to the caller: a top-level uninstall that
// removed every package already succeeded from the user's perspective.
func (s *Server) scheduleSelfCleanup() {
	toolPath := filepath.Join(s.fw.InstallPath(), platform.Current().AddExtension(tasks.MaintenanceToolBaseName))
	if _, err := os.Stat(toolPath); err != nil {
		// Nothing to burn: this install directory never reached
		// maintenance mode (SaveExecutable never ran).
		return
	}

	cleaner, err := platformshell.NewSelfCleaner()
	if err != nil {
		logger.Warnf("building self cleaner: %v", err)
		return
	}
	logPath := filepath.Join(s.fw.InstallPath(), logging.LogFileName)
	if err := cleaner.ScheduleCleanup(toolPath, logPath); err != nil {
		logger.Warnf("scheduling self cleanup: %v", err)
	}
}

func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	http.FileServer(http.FS(sub)).ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warnf("writing json response: %v", err)
	}
}
