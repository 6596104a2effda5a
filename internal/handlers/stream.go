package handlers

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"agency-portal/internal/authz"
	"agency-portal/internal/livesync"
	"agency-portal/internal/models"
)

const heartbeatInterval = 25 * time.Second

// StreamHandler serves live collection snapshots as server-sent events.
// Each connection holds one subscription, released when the client goes
// away.
type StreamHandler struct {
	live      *livesync.Manager
	logger    *slog.Logger
	heartbeat time.Duration
}

func NewStreamHandler(live *livesync.Manager, logger *slog.Logger) *StreamHandler {
	return &StreamHandler{live: live, logger: logger, heartbeat: heartbeatInterval}
}

// Snapshot is the payload of a "snapshot" event.
type Snapshot struct {
	Collection string              `json:"collection"`
	Documents  []livesync.Document `json:"documents"`
}

// StreamClients godoc
// @Summary     Live client list
// @Description Server-sent events. Emits "connected", then a "snapshot" on every change. Filter with status=all|Active|On Hold|Completed.
// @Tags        stream
// @Security    BearerAuth
// @Produce     text/event-stream
// @Param       status query string false "Client status filter"
// @Success     200 {object} Snapshot
// @Failure     400 {object} models.ErrorResponse
// @Router      /stream/clients [get]
func (h *StreamHandler) StreamClients(c *gin.Context) {
	q := livesync.NewQuery("clients").OrderByDesc("created_at")
	switch filter := c.Query("status"); filter {
	case "", models.StatusFilterAll:
	default:
		if !models.ClientStatus(filter).Valid() {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request", Message: "unknown client status " + filter})
			return
		}
		q = q.Where("status", filter)
	}
	h.stream(c, q, nil)
}

// StreamClientProjects godoc
// @Summary     Live projects of a client
// @Tags        stream
// @Security    BearerAuth
// @Produce     text/event-stream
// @Param       client_id path string true "Client ID"
// @Success     200 {object} Snapshot
// @Router      /stream/clients/{client_id}/projects [get]
func (h *StreamHandler) StreamClientProjects(c *gin.Context) {
	clientID, ok := pathID(c, "client_id")
	if !ok {
		return
	}
	id, ok := currentIdentity(c)
	if !ok {
		return
	}
	var visible func(livesync.Document) bool
	if !id.IsAdmin() {
		visible = func(doc livesync.Document) bool {
			return authz.LevelFor(id, doc.ID()) != models.AccessNone
		}
	}
	h.stream(c, livesync.NewQuery("projects").Where("client_id", clientID.String()).OrderByDesc("created_at"), visible)
}

// StreamTeam godoc
// @Summary     Live team member list
// @Tags        stream
// @Security    BearerAuth
// @Produce     text/event-stream
// @Success     200 {object} Snapshot
// @Router      /stream/team [get]
func (h *StreamHandler) StreamTeam(c *gin.Context) {
	h.stream(c, livesync.NewQuery("users").Where("role", models.RoleTeamMember).OrderByAsc("email"), nil)
}

// StreamInvoices godoc
// @Summary     Live invoice list
// @Tags        stream
// @Security    BearerAuth
// @Produce     text/event-stream
// @Success     200 {object} Snapshot
// @Router      /stream/invoices [get]
func (h *StreamHandler) StreamInvoices(c *gin.Context) {
	h.stream(c, livesync.NewQuery("invoices").OrderByDesc("created_at"), nil)
}

// stream sends q's snapshots until the client disconnects. A non-nil
// visible drops documents before they reach the client.
func (h *StreamHandler) stream(c *gin.Context, q livesync.Query, visible func(livesync.Document) bool) {
	ctx := c.Request.Context()

	// Only the latest snapshot matters to a slow reader.
	snapshots := make(chan []livesync.Document, 1)
	failures := make(chan struct{}, 1)

	unsubscribe := h.live.Subscribe(ctx, q, func(docs []livesync.Document) {
		if visible != nil {
			docs = filterDocs(docs, visible)
		}
		select {
		case snapshots <- docs:
		default:
			select {
			case <-snapshots:
			default:
			}
			snapshots <- docs
		}
	}, func(error) {
		select {
		case failures <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.SSEvent("connected", gin.H{"collection": q.Collection})
	c.Writer.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	h.logger.Debug("stream opened", slog.String("collection", q.Collection))
	c.Stream(func(io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case docs := <-snapshots:
			if docs == nil {
				docs = []livesync.Document{}
			}
			c.SSEvent("snapshot", Snapshot{Collection: q.Collection, Documents: docs})
		case <-failures:
			c.SSEvent("error", models.ErrorResponse{Error: msgLoadFailed})
		case <-ticker.C:
			c.SSEvent("ping", time.Now().Unix())
		}
		return true
	})
	h.logger.Debug("stream closed", slog.String("collection", q.Collection))
}

func filterDocs(docs []livesync.Document, keep func(livesync.Document) bool) []livesync.Document {
	out := make([]livesync.Document, 0, len(docs))
	for _, d := range docs {
		if keep(d) {
			out = append(out, d)
		}
	}
	return out
}
