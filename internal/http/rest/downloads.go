package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mhadifilms/reverie/internal/catalog"
	"github.com/mhadifilms/reverie/internal/logctx"
	"github.com/mhadifilms/reverie/internal/queue"
	"github.com/mhadifilms/reverie/internal/telemetry"
)

// DownloadQueue is the slice of the orchestrator the API needs.
type DownloadQueue interface {
	Enqueue(key string)
	EnqueueAll(tracks []*catalog.Track)
	Cancel(key string)
	Jobs() []queue.JobStatus
	QueueDepth() int
}

// DownloadHandler exposes the track catalog and download queue over HTTP.
type DownloadHandler struct {
	repo      catalog.TrackRepository
	queue     DownloadQueue
	telemetry *telemetry.Telemetry
}

func NewDownloadHandler(repo catalog.TrackRepository, q DownloadQueue, tel *telemetry.Telemetry) *DownloadHandler {
	return &DownloadHandler{
		repo:      repo,
		queue:     q,
		telemetry: tel,
	}
}

func (h *DownloadHandler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(telemetry.RequestID)
	r.Use(telemetry.Middleware(h.telemetry))

	r.Get("/tracks", h.ListTracks)
	r.Post("/tracks/{sourceID}/download", h.EnqueueDownload)
	r.Get("/downloads", h.ListDownloads)
	r.Post("/downloads/bulk", h.BulkEnqueue)
	r.Delete("/downloads/{sourceID}", h.CancelDownload)
	r.Get("/healthz", h.Health)

	return r
}

type trackView struct {
	ID              string  `json:"id"`
	SourceID        string  `json:"source_id"`
	Title           string  `json:"title"`
	Artist          string  `json:"artist"`
	DurationSeconds int     `json:"duration_seconds"`
	DownloadState   string  `json:"download_state"`
	Progress        float64 `json:"progress"`
	LocalPath       string  `json:"local_path,omitempty"`
	FileSize        int64   `json:"file_size,omitempty"`
	DownloadedAt    string  `json:"downloaded_at,omitempty"`
}

func newTrackView(t *catalog.Track) trackView {
	view := trackView{
		ID:              t.ID,
		SourceID:        t.SourceID,
		Title:           t.Title,
		Artist:          t.Artist,
		DurationSeconds: t.DurationSeconds,
		DownloadState:   string(t.DownloadState),
		Progress:        t.Progress,
		LocalPath:       t.LocalPath,
		FileSize:        t.FileSize,
	}

	if !t.DownloadedAt.IsZero() {
		view.DownloadedAt = t.DownloadedAt.Format(time.RFC3339)
	}

	return view
}

// ListTracks returns every track with its current download state and progress.
func (h *DownloadHandler) ListTracks(w http.ResponseWriter, r *http.Request) {
	tracks, err := h.repo.All()
	if err != nil {
		h.writeError(w, r, http.StatusInternalServerError, "failed to list tracks", err)

		return
	}

	views := make([]trackView, 0, len(tracks))
	for _, track := range tracks {
		views = append(views, newTrackView(track))
	}

	h.writeJSON(w, http.StatusOK, views)
}

// EnqueueDownload queues one track for download. Enqueueing a track that is
// already queued, downloading, or downloaded is a no-op and still accepted.
func (h *DownloadHandler) EnqueueDownload(w http.ResponseWriter, r *http.Request) {
	sourceID := chi.URLParam(r, "sourceID")

	if _, err := h.repo.Find(sourceID); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			h.writeError(w, r, http.StatusNotFound, "unknown track", err)

			return
		}

		h.writeError(w, r, http.StatusInternalServerError, "failed to look up track", err)

		return
	}

	h.queue.Enqueue(sourceID)

	h.writeJSON(w, http.StatusAccepted, map[string]string{"source_id": sourceID, "status": "queued"})
}

type bulkRequest struct {
	SourceIDs []string `json:"source_ids"`
}

// BulkEnqueue queues a batch of tracks, e.g. a playlist. Tracks that are
// already downloaded or unknown are skipped.
func (h *DownloadHandler) BulkEnqueue(w http.ResponseWriter, r *http.Request) {
	logger := logctx.LoggerFromContext(r.Context())

	var req bulkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, "malformed request body", err)

		return
	}

	tracks := make([]*catalog.Track, 0, len(req.SourceIDs))

	for _, sourceID := range req.SourceIDs {
		track, err := h.repo.Find(sourceID)
		if err != nil {
			logger.Debug("skipping unknown track in bulk enqueue", "source_id", sourceID)

			continue
		}

		tracks = append(tracks, track)
	}

	h.queue.EnqueueAll(tracks)

	h.writeJSON(w, http.StatusAccepted, map[string]int{"accepted": len(tracks)})
}

type downloadsView struct {
	Active     []queue.JobStatus `json:"active"`
	QueueDepth int               `json:"queue_depth"`
}

// ListDownloads returns the active job table and the pending queue depth.
func (h *DownloadHandler) ListDownloads(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, downloadsView{
		Active:     h.queue.Jobs(),
		QueueDepth: h.queue.QueueDepth(),
	})
}

// CancelDownload aborts an in-flight or pending download.
func (h *DownloadHandler) CancelDownload(w http.ResponseWriter, r *http.Request) {
	h.queue.Cancel(chi.URLParam(r, "sourceID"))

	w.WriteHeader(http.StatusNoContent)
}

func (h *DownloadHandler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *DownloadHandler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (h *DownloadHandler) writeError(w http.ResponseWriter, r *http.Request, status int, msg string, err error) {
	logctx.LoggerFromContext(r.Context()).Error(msg, "err", err)

	h.writeJSON(w, status, map[string]string{"error": msg})
}
