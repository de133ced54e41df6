package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mesakhbesta/Channel-Customer-Report-Emina/internal/config"
	"github.com/mesakhbesta/Channel-Customer-Report-Emina/internal/model"
	"github.com/mesakhbesta/Channel-Customer-Report-Emina/internal/service/excel"
	"github.com/mesakhbesta/Channel-Customer-Report-Emina/internal/service/report"
	"github.com/mesakhbesta/Channel-Customer-Report-Emina/internal/service/upload"
	"github.com/mesakhbesta/Channel-Customer-Report-Emina/internal/store"
)

// Upload roles, one per input workbook.
const (
	RoleMaster   = "master"
	RoleChannel  = "channel"
	RoleCustomer = "customer"
)

// Handlers API handlers
type Handlers struct {
	cfg     *config.AppConfig
	store   *store.Store
	cache   *report.Cache
	archive *upload.Archive

	parsersMu sync.RWMutex
	parsers   map[string]*excel.Parser

	hierarchyMu sync.RWMutex
	hierarchy   *model.Hierarchy

	exportsMu sync.RWMutex
	exports   map[string]string
}

// NewHandlers creates the handler set
func NewHandlers(cfg *config.AppConfig, sessionStore *store.Store) *Handlers {
	return &Handlers{
		cfg:     cfg,
		store:   sessionStore,
		cache:   report.NewCache(),
		parsers: make(map[string]*excel.Parser),
		exports: make(map[string]string),
	}
}

// UseArchive enables on-disk archiving of uploads. Without an archive the
// uploads live only in memory.
func (h *Handlers) UseArchive(archive *upload.Archive) {
	h.archive = archive
}

// RestoreUploads reloads archived workbooks so a restart keeps the last
// uploaded inputs. A workbook that no longer parses is skipped.
func (h *Handlers) RestoreUploads() error {
	if h.archive == nil {
		return nil
	}
	for _, stored := range h.archive.Stored() {
		content, fileName, ok, err := h.archive.Open(stored.Role)
		if err != nil {
			return fmt.Errorf("restore %s upload: %w", stored.Role, err)
		}
		if !ok {
			continue
		}
		if err := h.installWorkbook(stored.Role, fileName, content); err != nil {
			log.Printf("skipping archived %s upload (%s): %v", stored.Role, fileName, err)
		}
	}
	return nil
}

// RegisterRoutes registers the API routes
func (h *Handlers) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/status", h.GetStatus)

	// workbook uploads
	router.POST("/files/:role", h.UploadFile)
	router.GET("/files", h.ListFiles)

	// hierarchy and filters
	router.GET("/hierarchy", h.GetHierarchy)
	router.GET("/filters", h.GetFilters)
	router.PUT("/filters", h.UpdateFilters)

	// report generation
	router.POST("/report", h.BuildReport)
	router.POST("/export", h.Export)
	router.GET("/export/download/:token", h.Download)
}

// Response generic API envelope
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

func errorResponse(c *gin.Context, code int, message string) {
	c.JSON(http.StatusOK, Response{
		Code:    code,
		Message: message,
	})
}

// UploadFile receives one of the three input workbooks. Re-uploading a role
// replaces its workbook, drops that workbook's cached extractions and, unless
// the selection is locked, sanitizes the stored filter selection against the
// fresh hierarchy.
func (h *Handlers) UploadFile(c *gin.Context) {
	role := c.Param("role")
	if role != RoleMaster && role != RoleChannel && role != RoleCustomer {
		errorResponse(c, 1001, "unknown upload role: "+role)
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		errorResponse(c, 1001, "file is required")
		return
	}
	defer file.Close()

	if header.Size > 20*1024*1024 {
		errorResponse(c, 1003, "file too large, 20MB max")
		return
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext != ".xlsx" && ext != ".xls" {
		errorResponse(c, 1002, "only .xlsx and .xls files are supported")
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		errorResponse(c, 1002, "failed to read file")
		return
	}

	if err := h.installWorkbook(role, header.Filename, content); err != nil {
		h.uploadError(c, err)
		return
	}

	if h.archive != nil {
		if err := h.archive.Save(role, header.Filename, content); err != nil {
			log.Printf("failed to archive %s upload: %v", role, err)
		}
	}

	h.parsersMu.RLock()
	parser := h.parsers[role]
	h.parsersMu.RUnlock()

	sheets, err := parser.GetSheets()
	if err != nil {
		errorResponse(c, 1002, "failed to list sheets")
		return
	}

	success(c, gin.H{
		"role":     role,
		"fileId":   parser.FileID(),
		"fileName": header.Filename,
		"fileSize": header.Size,
		"sheets":   sheets,
	})
}

var (
	errNoSheets    = errors.New("master workbook has no sheets")
	errBadWorkbook = errors.New("failed to parse workbook")
)

// installWorkbook parses content and makes it the active workbook for role
func (h *Handlers) installWorkbook(role, fileName string, content []byte) error {
	parser := excel.NewParser()
	if err := parser.LoadFile(bytes.NewReader(content)); err != nil {
		return fmt.Errorf("%w: %v", errBadWorkbook, err)
	}
	parser.SetFileName(fileName)

	// the master workbook must yield a hierarchy before it replaces anything
	var hierarchy *model.Hierarchy
	if role == RoleMaster {
		sheets := parser.Workbook().GetSheetList()
		if len(sheets) == 0 {
			parser.Close()
			return errNoSheets
		}
		var err error
		hierarchy, err = report.BuildHierarchy(
			parser.Workbook(),
			sheets[0],
			h.cfg.Master.ChannelColumns,
			h.cfg.Master.CustomerColumns,
		)
		if err != nil {
			parser.Close()
			return fmt.Errorf("master workbook: %w", err)
		}
	}

	h.parsersMu.Lock()
	old := h.parsers[role]
	h.parsers[role] = parser
	h.parsersMu.Unlock()

	if old != nil {
		h.cache.Invalidate(old.FileID())
		old.Close()
	}

	if role == RoleMaster {
		h.hierarchyMu.Lock()
		h.hierarchy = hierarchy
		h.hierarchyMu.Unlock()

		if err := h.sanitizeStoredSelection(); err != nil {
			return fmt.Errorf("update stored selection: %w", err)
		}
	}
	return nil
}

func (h *Handlers) uploadError(c *gin.Context, err error) {
	var missingCol *model.MissingColumnError
	var missingSheet *model.MissingSheetError
	switch {
	case errors.Is(err, errNoSheets), errors.As(err, &missingCol), errors.As(err, &missingSheet):
		errorResponse(c, 2002, err.Error())
	case errors.Is(err, errBadWorkbook):
		errorResponse(c, 1002, err.Error())
	default:
		errorResponse(c, 5001, err.Error())
	}
}

// ListFiles reports the upload status per role
func (h *Handlers) ListFiles(c *gin.Context) {
	h.parsersMu.RLock()
	defer h.parsersMu.RUnlock()

	files := make(map[string]interface{}, 3)
	for _, role := range []string{RoleMaster, RoleChannel, RoleCustomer} {
		parser, ok := h.parsers[role]
		if !ok {
			files[role] = nil
			continue
		}
		files[role] = gin.H{
			"fileId":   parser.FileID(),
			"fileName": parser.FileName(),
		}
	}

	success(c, files)
}

// GetHierarchy returns the channel universe and the channel → customer map
func (h *Handlers) GetHierarchy(c *gin.Context) {
	hierarchy := h.currentHierarchy()
	if hierarchy == nil {
		errorResponse(c, 2001, "master workbook not uploaded")
		return
	}

	state, err := h.store.GetSession()
	if err != nil {
		errorResponse(c, 5001, err.Error())
		return
	}

	success(c, gin.H{
		"channels":  hierarchy.Parents,
		"children":  hierarchy.Children,
		"customers": hierarchy.ChildUniverse(state.Selection.Channels),
	})
}

// GetFilters returns the persisted filter selection
func (h *Handlers) GetFilters(c *gin.Context) {
	state, err := h.store.GetSession()
	if err != nil {
		errorResponse(c, 5001, err.Error())
		return
	}
	success(c, state)
}

// UpdateFilters stores a new filter selection. While the lock flag is set the
// previous selection is kept; turning the lock off releases it. Selections are
// sanitized against the current hierarchy so stale entries cannot linger.
func (h *Handlers) UpdateFilters(c *gin.Context) {
	var req store.SessionState
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, 1001, "invalid request body")
		return
	}

	current, err := h.store.GetSession()
	if err != nil {
		errorResponse(c, 5001, err.Error())
		return
	}

	next := &store.SessionState{
		Selection:  req.Selection,
		Lock:       req.Lock,
		CutoffDate: req.CutoffDate,
	}
	if current.Lock && req.Lock {
		next.Selection = current.Selection
	}

	if hierarchy := h.currentHierarchy(); hierarchy != nil && !next.Lock {
		next.Selection = sanitizeSelection(next.Selection, hierarchy)
	}

	if err := h.store.SaveSession(next); err != nil {
		errorResponse(c, 5001, err.Error())
		return
	}

	success(c, next)
}

// reportRequest optional overrides for one generation pass; empty fields fall
// back to the persisted session.
type reportRequest struct {
	Channels   []string `json:"channels"`
	Customers  []string `json:"customers"`
	CutoffDate string   `json:"cutoffDate"`
}

// BuildReport assembles and renders the on-screen table
func (h *Handlers) BuildReport(c *gin.Context) {
	var req reportRequest
	c.ShouldBindJSON(&req)

	rows, cutoff, err := h.assembleRows(req)
	if err != nil {
		h.reportError(c, err)
		return
	}

	table := report.RenderDisplay(rows)
	success(c, gin.H{
		"cutoffDate": cutoff,
		"columns":    table.Columns,
		"rows":       table.Rows,
	})
}

// Export renders the report workbook and stages it for download
func (h *Handlers) Export(c *gin.Context) {
	var req reportRequest
	c.ShouldBindJSON(&req)

	rows, cutoff, err := h.assembleRows(req)
	if err != nil {
		h.reportError(c, err)
		return
	}

	exporter := excel.NewReportExporter(h.cfg.Export)
	file, err := exporter.Export(rows, cutoff)
	if err != nil {
		errorResponse(c, 3001, "export failed: "+err.Error())
		return
	}

	token := uuid.New().String()
	tmpPath := filepath.Join(os.TempDir(), fmt.Sprintf("emina_report_%s.xlsx", token))
	if err := file.SaveAs(tmpPath); err != nil {
		errorResponse(c, 3001, "failed to save export")
		return
	}

	h.exportsMu.Lock()
	h.exports[token] = tmpPath
	h.exportsMu.Unlock()

	success(c, gin.H{
		"downloadUrl": fmt.Sprintf("/api/v1/export/download/%s", token),
		"expiresAt":   time.Now().Add(time.Hour).Format(time.RFC3339),
	})
}

// Download streams a staged export
func (h *Handlers) Download(c *gin.Context) {
	token := c.Param("token")

	h.exportsMu.RLock()
	path, ok := h.exports[token]
	h.exportsMu.RUnlock()

	if !ok {
		c.String(http.StatusNotFound, "export not found or expired")
		return
	}

	c.Header("Content-Disposition", "attachment; filename=Channel_Customer_Report.xlsx")
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.File(path)
}

// GetStatus reports readiness of the three uploads and the selection
func (h *Handlers) GetStatus(c *gin.Context) {
	h.parsersMu.RLock()
	_, hasMaster := h.parsers[RoleMaster]
	_, hasChannel := h.parsers[RoleChannel]
	_, hasCustomer := h.parsers[RoleCustomer]
	h.parsersMu.RUnlock()

	state, err := h.store.GetSession()
	if err != nil {
		errorResponse(c, 5001, err.Error())
		return
	}

	success(c, gin.H{
		"master":     hasMaster,
		"channel":    hasChannel,
		"customer":   hasCustomer,
		"ready":      hasMaster && hasChannel && hasCustomer,
		"lock":       state.Lock,
		"cutoffDate": state.CutoffDate,
	})
}

// assembleRows runs one report generation pass over the current uploads
func (h *Handlers) assembleRows(req reportRequest) ([]model.ReportRow, string, error) {
	hierarchy := h.currentHierarchy()
	if hierarchy == nil {
		return nil, "", errNotReady
	}

	h.parsersMu.RLock()
	channelParser := h.parsers[RoleChannel]
	customerParser := h.parsers[RoleCustomer]
	h.parsersMu.RUnlock()

	if channelParser == nil || customerParser == nil {
		return nil, "", errNotReady
	}

	state, err := h.store.GetSession()
	if err != nil {
		return nil, "", err
	}

	selection := model.FilterSelection{Channels: req.Channels, Customers: req.Customers}
	if req.Channels == nil && req.Customers == nil {
		selection = state.Selection
	}
	cutoff := req.CutoffDate
	if cutoff == "" {
		cutoff = state.CutoffDate
	}

	channelBundle, err := report.BuildBundle(channelParser.FileID(), channelParser.Workbook(), h.cache)
	if err != nil {
		return nil, "", fmt.Errorf("channel workbook: %w", err)
	}
	customerBundle, err := report.BuildBundle(customerParser.FileID(), customerParser.Workbook(), h.cache)
	if err != nil {
		return nil, "", fmt.Errorf("customer workbook: %w", err)
	}

	return report.AssembleRows(channelBundle, customerBundle, hierarchy, selection), cutoff, nil
}

var errNotReady = errors.New("all three workbooks must be uploaded first")

func (h *Handlers) reportError(c *gin.Context, err error) {
	if errors.Is(err, errNotReady) {
		errorResponse(c, 2001, err.Error())
		return
	}

	var missingCol *model.MissingColumnError
	var missingSheet *model.MissingSheetError
	if errors.As(err, &missingCol) || errors.As(err, &missingSheet) {
		errorResponse(c, 2002, err.Error())
		return
	}

	errorResponse(c, 3001, err.Error())
}

func (h *Handlers) currentHierarchy() *model.Hierarchy {
	h.hierarchyMu.RLock()
	defer h.hierarchyMu.RUnlock()
	return h.hierarchy
}

// sanitizeStoredSelection re-validates the persisted selection after a master
// re-upload; a locked selection is kept untouched.
func (h *Handlers) sanitizeStoredSelection() error {
	state, err := h.store.GetSession()
	if err != nil {
		return err
	}
	if state.Lock {
		return nil
	}

	hierarchy := h.currentHierarchy()
	if hierarchy == nil {
		return nil
	}

	state.Selection = sanitizeSelection(state.Selection, hierarchy)
	return h.store.SaveSession(state)
}

// sanitizeSelection drops entries no longer present in the hierarchy while
// preserving the user's ordering.
func sanitizeSelection(selection model.FilterSelection, hierarchy *model.Hierarchy) model.FilterSelection {
	channels := make([]string, 0, len(selection.Channels))
	channelSet := make(map[string]struct{}, len(hierarchy.Parents))
	for _, p := range hierarchy.Parents {
		channelSet[p] = struct{}{}
	}
	for _, ch := range selection.Channels {
		if _, ok := channelSet[ch]; ok {
			channels = append(channels, ch)
		}
	}

	universe := hierarchy.ChildUniverse(channels)
	customerSet := make(map[string]struct{}, len(universe))
	for _, cg := range universe {
		customerSet[cg] = struct{}{}
	}
	customers := make([]string, 0, len(selection.Customers))
	for _, cg := range selection.Customers {
		if _, ok := customerSet[cg]; ok {
			customers = append(customers, cg)
		}
	}

	return model.FilterSelection{Channels: channels, Customers: customers}
}
