// Package clientworker renders the service worker script served to browsers.
package clientworker

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"net/http"
	"text/template"
	"time"
)

//go:embed service-worker.js.tmpl
var workerTemplate string

// DefaultAssets are precached on install.
var DefaultAssets = []string{
	"/",
	"/index.html",
	"/manifest.json",
	"/icon-192x192.png",
	"/icon-512x512.png",
}

type params struct {
	CacheName    string
	Assets       []string
	Icon         string
	DefaultTitle string
	DefaultBody  string
	DefaultTag   string
	Vibrate      []int
	OpenLabel    string
	CloseLabel   string
}

type Worker struct {
	script    []byte
	cacheName string
}

// CacheName returns the versioned cache tag, e.g. "leave-app-v1".
func CacheName(version int) string {
	return fmt.Sprintf("leave-app-v%d", version)
}

// New renders the worker for the given cache version. Bumping the version
// makes browsers drop every older cache on activation.
func New(version int, assets []string) (*Worker, error) {
	if version < 1 {
		return nil, fmt.Errorf("cache version must be positive, got %d", version)
	}
	if len(assets) == 0 {
		assets = DefaultAssets
	}

	tmpl, err := template.New("service-worker.js").Funcs(template.FuncMap{
		"json": func(v any) (string, error) {
			b, err := json.Marshal(v)
			return string(b), err
		},
	}).Parse(workerTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse worker template: %w", err)
	}

	p := params{
		CacheName:    CacheName(version),
		Assets:       assets,
		Icon:         "/icon-192x192.png",
		DefaultTitle: "Thông báo",
		DefaultBody:  "Có thông báo mới",
		DefaultTag:   "leave-notification",
		Vibrate:      []int{200, 100, 200},
		OpenLabel:    "Mở ứng dụng",
		CloseLabel:   "Đóng",
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, p); err != nil {
		return nil, fmt.Errorf("render worker template: %w", err)
	}
	return &Worker{script: buf.Bytes(), cacheName: p.CacheName}, nil
}

func (w *Worker) CacheName() string {
	return w.cacheName
}

func (w *Worker) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	rw.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	rw.Header().Set("Service-Worker-Allowed", "/")
	// Browsers must always revalidate so a new cache version is picked up.
	rw.Header().Set("Cache-Control", "no-cache")
	http.ServeContent(rw, r, "service-worker.js", time.Time{}, bytes.NewReader(w.script))
}
