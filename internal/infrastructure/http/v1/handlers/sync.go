package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/zstd"

	"khata/internal/core/apperror"
	"khata/internal/core/id"
	"khata/internal/domain/sync"
)

// SyncStore is the storage surface the sync endpoints need: the engine
// store plus the owner-scoped firms lookup used when a peer fetches
// without a firm.
type SyncStore interface {
	sync.Store

	// SnapshotFirmsByOwner returns all firms registered to the owner.
	SnapshotFirmsByOwner(ctx context.Context, owner string) ([]sync.Record, error)
}

// SyncHandler exposes the replica sync protocol: locally triggered push
// and pull runs, plus the receiving side other instances talk to.
type SyncHandler struct {
	*BaseHandler
	engine *sync.Engine
	store  SyncStore
}

// NewSyncHandler creates a new sync handler.
func NewSyncHandler(base *BaseHandler, engine *sync.Engine, store SyncStore) *SyncHandler {
	return &SyncHandler{BaseHandler: base, engine: engine, store: store}
}

type syncRunRequest struct {
	RemoteURL string `json:"remoteUrl" binding:"required"`
	Owner     string `json:"owner" binding:"required"`
}

// Push handles POST /sync/push - send every table to the remote.
func (h *SyncHandler) Push(c *gin.Context) {
	ctx := c.Request.Context()

	firmID, ok := h.FirmID(c)
	if !ok {
		return
	}

	var req syncRunRequest
	if !h.BindJSON(c, &req) {
		return
	}

	results := h.engine.Push(ctx, req.RemoteURL, req.Owner, firmID)
	h.OK(c, gin.H{"results": results})
}

// Pull handles POST /sync/pull - fetch every table from the remote.
func (h *SyncHandler) Pull(c *gin.Context) {
	ctx := c.Request.Context()

	firmID, ok := h.FirmID(c)
	if !ok {
		return
	}

	var req syncRunRequest
	if !h.BindJSON(c, &req) {
		return
	}

	results := h.engine.Pull(ctx, req.RemoteURL, req.Owner, firmID)
	h.OK(c, gin.H{"results": results})
}

type syncReceiveRequest struct {
	Table   string        `json:"table" binding:"required"`
	Records []sync.Record `json:"records"`
	Owner   string        `json:"owner"`
}

// Receive handles POST /sync - a peer pushing one table snapshot.
// Large payloads arrive zstd-compressed (Content-Encoding: zstd).
func (h *SyncHandler) Receive(c *gin.Context) {
	ctx := c.Request.Context()

	if c.GetHeader("Content-Encoding") == "zstd" {
		decoder, err := zstd.NewReader(c.Request.Body)
		if err != nil {
			h.Error(c, apperror.NewInvalidInput("invalid zstd payload").WithCause(err))
			return
		}
		defer decoder.Close()
		c.Request.Body = decoder.IOReadCloser()
		c.Request.Header.Del("Content-Encoding")
	}

	var req syncReceiveRequest
	if !h.BindJSON(c, &req) {
		return
	}
	if !sync.IsKnownTable(req.Table) {
		h.Error(c, apperror.NewInvalidInput("unknown sync table").WithDetail("table", req.Table))
		return
	}

	created, updated, err := h.store.Upsert(ctx, id.Nil(), req.Table, req.Records)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, sync.PushResult{Created: created, Updated: updated})
}

// Fetch handles GET /sync/fetch - a peer pulling one table snapshot.
// The firms table may be fetched by owner alone; every other table
// requires a firmId.
func (h *SyncHandler) Fetch(c *gin.Context) {
	ctx := c.Request.Context()

	table := c.Query("table")
	if !sync.IsKnownTable(table) {
		h.Error(c, apperror.NewInvalidInput("unknown sync table").WithDetail("table", table))
		return
	}

	rawFirmID := c.Query("firmId")
	if rawFirmID == "" {
		if table != "firms" {
			h.Error(c, apperror.NewValidation("firmId is required").WithDetail("table", table))
			return
		}
		owner := c.Query("owner")
		if owner == "" {
			h.Error(c, apperror.NewValidation("owner is required for firms fetch"))
			return
		}
		records, err := h.store.SnapshotFirmsByOwner(ctx, owner)
		if err != nil {
			h.Error(c, err)
			return
		}
		h.OK(c, gin.H{"records": records})
		return
	}

	firmID, err := id.Parse(rawFirmID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid firmId").WithDetail("value", rawFirmID))
		return
	}

	records, err := h.store.Snapshot(ctx, firmID, table)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"records": records})
}
