package server

import (
	"encoding/json"
	"net/http"
	"os/exec"

	"github.com/flanksource/commons/logger"
)

// chunk is one internal progress event; it maps onto the wire format
// {"Status":["<msg>", <progress>]} or {"Error":"<msg>"}.
type chunk struct {
	status   string
	progress float64
	errMsg   string
}

func (c chunk) MarshalJSON() ([]byte, error) {
	if c.errMsg != "" {
		return json.Marshal(struct {
			Error string `json:"Error"`
		}{Error: c.errMsg})
	}
	return json.Marshal(struct {
		Status [2]any `json:"Status"`
	}{Status: [2]any{c.status, c.progress}})
}

// chunkBuffer is large enough that a worker emitting progress faster than
// the client reads never blocks on a slow consumer for long; the worker
// still blocks (by design, per spec.md §5) once it fills, which is
// preferable to unbounded memory growth on a stuck client.
const chunkBuffer = 64

// serveStream runs work in a new goroutine, forwarding every chunk it
// sends on its channel to w as one JSON object per line until the
// channel closes. This is the worker-thread-plus-forwarder-thread
// pattern from spec.md §4.9/§5: the handler returns only after the
// stream completes, but never holds the framework lock while writing to
// the network (work holds it internally, scoped to WithWriteLock).
func serveStream(w http.ResponseWriter, work func(ch chan<- chunk)) {
	flusher, _ := w.(http.Flusher)
	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Transfer-Encoding", "chunked")

	ch := make(chan chunk, chunkBuffer)
	done := make(chan struct{})

	go func() {
		defer close(done)
		work(ch)
	}()

	go func() {
		<-done
		close(ch)
	}()

	for c := range ch {
		data, err := json.Marshal(c)
		if err != nil {
			logger.Warnf("marshaling progress chunk: %v", err)
			continue
		}
		if _, err := w.Write(append(data, '\n')); err != nil {
			// Client disconnected; the worker keeps running to
			// completion (including any DB save) per spec.md §5.
			continue
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
}

// spawnDetached starts target as a new, unattached process, used by
// GET /api/exit in launcher mode.
func spawnDetached(target string) {
	cmd := exec.Command(target)
	if err := cmd.Start(); err != nil {
		logger.Warnf("spawning launcher target %s: %v", target, err)
		return
	}
	go cmd.Wait()
}
