package http

import (
	"bytes"
	"io"
	"io/fs"
	"log/slog"
	"mime"
	"net/http"
	"path"
	"strings"
	"time"
)

// indexFile is the single-page dashboard served at the root.
const indexFile = "index.html"

// FrontendHandler serves the embedded dashboard page and its assets.
type FrontendHandler struct {
	files   fs.FS
	logger  *slog.Logger
	modTime time.Time
}

// NewFrontendHandler serves files from frontendFS, which may be nil when the
// binary was built without a frontend.
func NewFrontendHandler(frontendFS fs.FS, logger *slog.Logger) *FrontendHandler {
	return &FrontendHandler{
		files:   frontendFS,
		logger:  logger.With(slog.String("handler", "frontend")),
		modTime: time.Now(),
	}
}

// ServeIndex handles GET /
func (h *FrontendHandler) ServeIndex(w http.ResponseWriter, r *http.Request) {
	h.serveFile(w, r, indexFile)
}

// ServeAsset handles GET /assets/*. Unknown assets are 404.
func (h *FrontendHandler) ServeAsset(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
	h.serveFile(w, r, name)
}

func (h *FrontendHandler) serveFile(w http.ResponseWriter, r *http.Request, name string) {
	if h.files == nil {
		http.Error(w, "Frontend not available", http.StatusNotFound)
		return
	}

	data, err := fs.ReadFile(h.files, name)
	if err != nil {
		h.logger.DebugContext(r.Context(), "frontend file not found",
			slog.String("file", name),
			slog.String("error", err.Error()))
		http.NotFound(w, r)
		return
	}

	contentType := mime.TypeByExtension(path.Ext(name))
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	w.Header().Set("Content-Type", contentType)
	if name == indexFile {
		w.Header().Set("Cache-Control", "no-cache")
	}

	http.ServeContent(w, r, name, h.modTime, io.ReadSeeker(bytes.NewReader(data)))
}
