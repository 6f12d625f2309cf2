// Package webhook receives GitHub webhook deliveries and maps them to
// watchdog triggers.
package webhook

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	gh "github.com/google/go-github/v82/github"

	ghadapter "github.com/assignwatch/assignwatch/internal/adapter/driven/github"
	"github.com/assignwatch/assignwatch/internal/application"
)

// WatchdogRunner is the slice of the watchdog service the receiver needs.
type WatchdogRunner interface {
	Run(ctx context.Context, trig application.Trigger) (application.Result, error)
}

// Handler maps webhook deliveries to watchdog invocations. Only
// "issues"/"assigned" deliveries trigger work; everything else is
// acknowledged and dropped.
type Handler struct {
	watchdog WatchdogRunner
	secret   []byte
	logger   *slog.Logger
}

// NewHandler creates a webhook Handler. An empty secret disables signature
// validation; only do that behind a trusted proxy.
func NewHandler(watchdog WatchdogRunner, secret string, logger *slog.Logger) *Handler {
	return &Handler{
		watchdog: watchdog,
		secret:   []byte(secret),
		logger:   logger,
	}
}

// RegisterRoutes registers the webhook and health endpoints on mux.
func RegisterRoutes(mux *http.ServeMux, h *Handler) {
	mux.HandleFunc("POST /webhook", h.handleDelivery)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}

func (h *Handler) handleDelivery(w http.ResponseWriter, r *http.Request) {
	payload, err := gh.ValidatePayload(r, h.secret)
	if err != nil {
		h.logger.Error("webhook payload rejected", "error", err)
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	event, err := gh.ParseWebHook(gh.WebHookType(r), payload)
	if err != nil {
		h.logger.Error("webhook parse failed", "type", gh.WebHookType(r), "error", err)
		writeError(w, http.StatusBadRequest, "unparseable event")
		return
	}

	switch e := event.(type) {
	case *gh.PingEvent:
		writeJSON(w, http.StatusOK, map[string]string{"message": "pong"})
	case *gh.IssuesEvent:
		h.handleIssuesEvent(w, r, e)
	default:
		writeJSON(w, http.StatusAccepted, map[string]string{"message": "event ignored"})
	}
}

func (h *Handler) handleIssuesEvent(w http.ResponseWriter, r *http.Request, e *gh.IssuesEvent) {
	if e.GetAction() != "assigned" {
		writeJSON(w, http.StatusAccepted, map[string]string{"message": "action ignored"})
		return
	}

	issue := ghadapter.MapIssue(e.GetIssue())
	trig := application.Trigger{
		Kind:   application.TriggerAssignment,
		RepoID: e.GetRepo().GetID(),
		Owner:  e.GetRepo().GetOwner().GetLogin(),
		Repo:   e.GetRepo().GetName(),
		Issue:  &issue,
	}

	res, err := h.watchdog.Run(r.Context(), trig)
	if err != nil {
		if errors.Is(err, application.ErrMissingOwner) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("watchdog run failed", "repo", trig.Owner+"/"+trig.Repo, "error", err)
		writeError(w, http.StatusInternalServerError, "watchdog run failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": res.Message})
}
