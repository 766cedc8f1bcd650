package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	chi "github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Veraticus/sapflow/internal/common"
	"github.com/Veraticus/sapflow/internal/engine"
	"github.com/Veraticus/sapflow/internal/sapresponse"
)

const recentRunsLimit = 20

func newRunID() string {
	return uuid.New().String()
}

type runStatus struct {
	Summary  *engine.Summary `json:"summary,omitempty"`
	ID       string          `json:"id"`
	Error    string          `json:"error,omitempty"`
	Lines    int             `json:"lines"`
	Finished bool            `json:"finished"`
	Canceled bool            `json:"cancel_requested"`
}

func (s *Server) statusOf(entry *runEntry) runStatus {
	status := runStatus{
		ID:       entry.run.ID,
		Lines:    len(entry.run.Trail.Lines()),
		Finished: entry.finished(),
		Canceled: entry.run.Canceled(),
	}
	if status.Finished {
		summary, err := s.runs.result(entry)
		status.Summary = &summary
		if err != nil {
			status.Error = err.Error()
		}
	}
	return status
}

func (s *Server) handlePending(w http.ResponseWriter, r *http.Request) {
	pending, err := s.store.ListPendingImputations(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": len(pending), "imputations": pending})
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.store.GetRecentRuns(r.Context(), recentRunsLimit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

func (s *Server) handleStartRun(w http.ResponseWriter, _ *http.Request) {
	run := engine.NewRun(s.newID(), nil)
	orchestrator := engine.NewWithConfig(s.store, s.config.Engine)

	err := s.runs.Start(run, func() (engine.Summary, error) {
		return orchestrator.Execute(s.baseCtx, run)
	})
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	slog.Info("Started assignment run", "run_id", run.ID)
	writeJSON(w, http.StatusAccepted, map[string]string{
		"id":     run.ID,
		"events": fmt.Sprintf("/api/runs/%s/events", run.ID),
	})
}

func (s *Server) handleRunStatus(w http.ResponseWriter, r *http.Request) {
	entry, err := s.runs.lookup(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, s.statusOf(entry))
}

// handleRunEvents streams the run's trail as server-sent events. Each line is
// a "log" event whose id is its position, so a reconnecting client resumes
// with Last-Event-ID. The stream ends with one "end" event carrying the summary.
func (s *Server) handleRunEvents(w http.ResponseWriter, r *http.Request) {
	entry, err := s.runs.lookup(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, errors.New("streaming unsupported"))
		return
	}

	from := 0
	if last, err := strconv.Atoi(r.Header.Get("Last-Event-ID")); err == nil && last >= 0 {
		from = last + 1
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	ctx := r.Context()
	for {
		lines, changed, closed := entry.run.Trail.Since(from)
		for _, line := range lines {
			if err := writeEvent(w, strconv.Itoa(from), "log", line); err != nil {
				return
			}
			from++
		}
		flusher.Flush()

		if closed {
			select {
			case <-entry.done:
			case <-ctx.Done():
				return
			}
			_ = writeEvent(w, "", "end", s.statusOf(entry))
			flusher.Flush()
			return
		}

		select {
		case <-changed:
		case <-ctx.Done():
			return
		}
	}
}

func writeEvent(w http.ResponseWriter, id, event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if id != "" {
		if _, err := fmt.Fprintf(w, "id: %s\n", id); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	return err
}

func (s *Server) handleCancelRun(w http.ResponseWriter, r *http.Request) {
	entry, err := s.runs.lookup(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	if entry.finished() {
		writeJSON(w, http.StatusOK, s.statusOf(entry))
		return
	}
	entry.run.Cancel()
	slog.Info("Cancel requested", "run_id", entry.run.ID)
	writeJSON(w, http.StatusAccepted, s.statusOf(entry))
}

// handleRunExport downloads the SAP upload file for a finished run.
func (s *Server) handleRunExport(w http.ResponseWriter, r *http.Request) {
	entry, err := s.runs.lookup(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	if !entry.finished() {
		writeError(w, http.StatusConflict, common.ErrRunInProcess)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=windows-1252")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", s.exporter.FileName()))
	if _, err := s.exporter.Stream(r.Context(), w); err != nil {
		common.LogError(err, "Export failed", common.Fields{"run_id": entry.run.ID})
		return
	}
}

func (s *Server) handleSapResponse(w http.ResponseWriter, r *http.Request) {
	defer func() { _ = r.Body.Close() }()
	result, err := sapresponse.Apply(r.Context(), s.store, r.Body)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
