package handlers

import (
	"bytes"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/barber-calendar/internal/httperr"
	"github.com/BruksfildServices01/barber-calendar/internal/httpresp"
	"github.com/BruksfildServices01/barber-calendar/internal/middleware"
	"github.com/BruksfildServices01/barber-calendar/internal/usecase/importer"
)

const maxImportBytes = 10 << 20

type ImportHandler struct {
	importCSV *importer.ImportCSV
	// sources are tried in order when the request carries no CSV.
	sources  []importer.Source
	maxBytes int64
	log      *zap.Logger
}

func NewImportHandler(uc *importer.ImportCSV, sources []importer.Source, log *zap.Logger) *ImportHandler {
	return &ImportHandler{importCSV: uc, sources: sources, maxBytes: maxImportBytes, log: log}
}

type ImportRequest struct {
	CSV string `json:"csv"`
}

// Import accepts the CSV as JSON {"csv": "..."}, as a multipart "file"
// field, or not at all, in which case the configured sources are read.
func (h *ImportHandler) Import(c *gin.Context) {
	ctx := c.Request.Context()

	var (
		src    io.Reader
		origin string
	)

	switch ct := c.ContentType(); {
	case ct == gin.MIMEJSON:
		var req ImportRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			httperr.BadRequest(c, "invalid_request", "Invalid request body.")
			return
		}
		if strings.TrimSpace(req.CSV) != "" {
			src, origin = strings.NewReader(req.CSV), "request"
		}

	case ct == gin.MIMEMultipartPOSTForm:
		fh, err := c.FormFile("file")
		if err != nil {
			httperr.BadRequest(c, "invalid_request", "Expected a CSV file in field \"file\".")
			return
		}
		if fh.Size > h.maxBytes {
			httperr.Write(c, http.StatusRequestEntityTooLarge, "csv_too_large", "CSV file is too large.")
			return
		}
		f, err := fh.Open()
		if err != nil {
			writeError(c, h.log, err, "failed_to_read_upload")
			return
		}
		defer f.Close()
		src, origin = f, "upload:"+fh.Filename
	}

	if src == nil {
		rc, name, err := importer.OpenFirst(ctx, h.log, h.sources...)
		if err != nil {
			writeError(c, h.log, err, "failed_to_open_import_source")
			return
		}
		defer rc.Close()
		src, origin = rc, name
	}

	// read it all first so an oversized source imports nothing
	data, err := io.ReadAll(importer.LimitReader(src, h.maxBytes))
	if err != nil {
		writeError(c, h.log, err, "failed_to_read_import_source")
		return
	}

	res, err := h.importCSV.Execute(ctx, bytes.NewReader(data), middleware.Actor(c))
	if err != nil {
		writeError(c, h.log, err, "failed_to_import_csv")
		return
	}

	h.log.Info("csv imported", zap.String("source", origin), zap.Int("created", res.Created))
	httpresp.OK(c, res)
}
