package grc

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/servicedesk/servicedesk/internal/platform/httpx"
	"github.com/servicedesk/servicedesk/internal/rbac"
	"github.com/servicedesk/servicedesk/internal/shared"
)

const defaultUploadLimit = 5 << 20

// Handler wires HTTP endpoints for the GRC module.
type Handler struct {
	logger      *slog.Logger
	service     *Service
	rbac        rbac.Middleware
	uploadLimit int64
}

// NewHandler constructs the GRC handler. uploadLimit caps CSV uploads in bytes.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware, uploadLimit int64) *Handler {
	if uploadLimit <= 0 {
		uploadLimit = defaultUploadLimit
	}
	return &Handler{logger: logger, service: service, rbac: rbac, uploadLimit: uploadLimit}
}

// MountRoutes registers GRC routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermGRCView))
		r.Get("/not-received", h.handleNotReceived)
		r.Get("/not-received/{grcNumber}", h.handleNotReceivedLines)
		r.Get("/returns/{division}", h.handleOpenLines)
		r.Get("/challan/next", h.handleNextChallan)
		r.Get("/enquiry", h.handleEnquiry)
		r.Get("/enquiry.xlsx", h.handleEnquiryExport)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(shared.PermGRCEdit))
		r.Post("/receive", h.handleReceive)
		r.Post("/returns/save", h.handleSaveReturn)
		r.Post("/returns/finalize", h.handleFinalizeReturn)
		r.Post("/challan/{reportType}/pdf", h.handleChallanPDF)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(shared.PermGRCUpload))
		r.Post("/upload", h.handleUpload)
	})
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.uploadLimit)
	file, _, err := r.FormFile("file")
	if httpx.IsTooLarge(err) {
		httpx.JSON(w, http.StatusRequestEntityTooLarge, Notice{Message: "Invalid file", Resolution: "File exceeds the upload limit", Type: NoticeWarning})
		return
	}
	if err != nil {
		httpx.JSON(w, http.StatusBadRequest, Notice{Message: "Invalid file", Resolution: "Attach a CSV file as 'file'", Type: NoticeWarning})
		return
	}
	defer func() {
		_ = file.Close()
	}()

	result, err := h.service.Upload(r.Context(), file, shared.ActorFromContext(r.Context()))
	var uploadErr *UploadError
	switch {
	case errors.Is(err, ErrEmptyUpload):
		httpx.JSON(w, http.StatusBadRequest, Notice{Message: "Invalid file", Resolution: "CSV file has no headers", Type: NoticeWarning})
		return
	case errors.As(err, &uploadErr):
		httpx.JSON(w, http.StatusBadRequest, Notice{Message: "Validation failed for " + uploadErr.SpareCode, Resolution: uploadErr.Reason, Type: NoticeWarning})
		return
	case err != nil:
		h.logger.Error("grc upload failed", slog.Any("error", err))
		httpx.JSON(w, http.StatusInternalServerError, Notice{Message: "Unexpected server error", Resolution: "Upload was not saved", Type: NoticeError})
		return
	}
	if result.Inserted+result.Updated == 0 {
		httpx.JSON(w, http.StatusOK, Notice{Message: "Uploaded Successfully", Resolution: "No valid rows found", Type: NoticeSuccess})
		return
	}
	h.logger.Info("grc uploaded",
		slog.String("batch_id", result.BatchID),
		slog.Int("inserted", result.Inserted),
		slog.Int("updated", result.Updated))
	httpx.JSON(w, http.StatusCreated, Notice{
		Message:    "Spare Code Uploaded",
		Resolution: fmt.Sprintf("Inserted : %d, Updated : %d", result.Inserted, result.Updated),
		Type:       NoticeSuccess,
	})
}

func (h *Handler) handleNotReceived(w http.ResponseWriter, r *http.Request) {
	numbers, err := h.service.NotReceivedGRCNumbers(r.Context())
	if err != nil {
		h.writeError(w, "list not received", err)
		return
	}
	httpx.JSON(w, http.StatusOK, numbers)
}

func (h *Handler) handleNotReceivedLines(w http.ResponseWriter, r *http.Request) {
	grcNumber, err := strconv.ParseInt(chi.URLParam(r, "grcNumber"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "grc number must be numeric")
		return
	}
	lines, err := h.service.NotReceivedLines(r.Context(), grcNumber)
	if err != nil {
		h.writeError(w, "list not received lines", err)
		return
	}
	out := make([]receiveView, 0, len(lines))
	for _, l := range lines {
		out = append(out, receiveView{ReceiveLine: l.ReceiveLine(), Division: l.Division, SpareDescription: l.SpareDescription})
	}
	httpx.JSON(w, http.StatusOK, out)
}

type receiveView struct {
	ReceiveLine
	Division         string `json:"division"`
	SpareDescription string `json:"spare_description"`
}

func (h *Handler) handleReceive(w http.ResponseWriter, r *http.Request) {
	var lines []ReceiveLine
	if err := httpx.DecodeJSON(r, &lines); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.service.Receive(r.Context(), lines, shared.ActorFromContext(r.Context())); err != nil {
		h.writeError(w, "grc receive", err)
		return
	}
	httpx.JSON(w, http.StatusAccepted, Notice{Message: "GRC Receive Details Updated", Type: NoticeSuccess})
}

type returnView struct {
	GRCNumber        int64  `json:"grc_number"`
	GRCDate          string `json:"grc_date"`
	SpareCode        string `json:"spare_code"`
	SpareDescription string `json:"spare_description"`
	IssueQty         int    `json:"issue_qty"`
	GRCPendingQty    int    `json:"grc_pending_qty"`
	ActualPendingQty int    `json:"actual_pending_qty"`
	ReturnedQty      int    `json:"returned_qty"`
	GoodQty          int    `json:"good_qty"`
	DefectiveQty     int    `json:"defective_qty"`
	Invoice          string `json:"invoice"`
	DocketNumber     string `json:"docket_number"`
	SentThrough      string `json:"sent_through"`
}

func (h *Handler) handleOpenLines(w http.ResponseWriter, r *http.Request) {
	lines, err := h.service.OpenLines(r.Context(), chi.URLParam(r, "division"))
	if err != nil {
		h.writeError(w, "list open lines", err)
		return
	}
	out := make([]returnView, 0, len(lines))
	for _, l := range lines {
		out = append(out, returnView{
			GRCNumber:        l.GRCNumber,
			GRCDate:          formatDate(&l.GRCDate),
			SpareCode:        l.SpareCode,
			SpareDescription: l.SpareDescription,
			IssueQty:         l.IssueQty,
			GRCPendingQty:    l.GRCPendingQty,
			ActualPendingQty: l.ActualPendingQty,
			ReturnedQty:      l.ReturnedQty,
			GoodQty:          l.GoodQty,
			DefectiveQty:     l.DefectiveQty,
			Invoice:          l.Invoice,
			DocketNumber:     l.DocketNumber,
			SentThrough:      l.SentThrough,
		})
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) handleSaveReturn(w http.ResponseWriter, r *http.Request) {
	var drafts []ReturnDraft
	if err := httpx.DecodeJSON(r, &drafts); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if _, err := h.service.SaveReturn(r.Context(), drafts, shared.ActorFromContext(r.Context())); err != nil {
		h.writeError(w, "grc save return", err)
		return
	}
	httpx.JSON(w, http.StatusOK, Notice{Message: "GRC Return Details Saved", Type: NoticeSuccess})
}

func (h *Handler) handleFinalizeReturn(w http.ResponseWriter, r *http.Request) {
	var req FinalizeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	ctx := r.Context()
	result, err := h.service.FinalizeReturn(ctx, req, shared.ActorFromContext(ctx), shared.UsernameFromContext(ctx))
	if err != nil {
		h.writeError(w, "grc finalize return", err)
		return
	}
	h.logger.Info("grc return finalized",
		slog.String("challan_number", result.ChallanNumber),
		slog.Int("lines", result.Lines),
		slog.Int("returned", result.Returned))
	httpx.JSON(w, http.StatusOK, Notice{Message: "GRC Return Details Finalized", Resolution: "Challan " + result.ChallanNumber, Type: NoticeSuccess})
}

func (h *Handler) handleNextChallan(w http.ResponseWriter, r *http.Request) {
	code, err := h.service.NextChallanNumber(r.Context())
	if err != nil {
		h.writeError(w, "next challan", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"next_challan_code": code})
}

func (h *Handler) handleChallanPDF(w http.ResponseWriter, r *http.Request) {
	var doc ChallanDocument
	if err := httpx.DecodeJSON(r, &doc); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	reportType := chi.URLParam(r, "reportType")
	pdf, err := h.service.ChallanPDF(r.Context(), reportType, doc, shared.UsernameFromContext(r.Context()))
	if err != nil {
		h.writeError(w, "grc challan pdf", err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%s_%s.pdf", doc.ChallanNumber, reportType))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

func (h *Handler) handleEnquiry(w http.ResponseWriter, r *http.Request) {
	filter, err := enquiryFilterFromRequest(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	page, err := h.service.Enquiry(r.Context(), filter)
	if err != nil {
		h.writeError(w, "grc enquiry", err)
		return
	}
	httpx.JSON(w, http.StatusOK, page)
}

func (h *Handler) handleEnquiryExport(w http.ResponseWriter, r *http.Request) {
	filter, err := enquiryFilterFromRequest(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	data, err := h.service.ExportEnquiry(r.Context(), filter)
	if err != nil {
		h.writeError(w, "grc enquiry export", err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename=grc_enquiry.xlsx")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func enquiryFilterFromRequest(r *http.Request) (EnquiryFilter, error) {
	q := r.URL.Query()
	filter := EnquiryFilter{
		Division:      q.Get("division"),
		SpareCode:     q.Get("spare_code"),
		ChallanNumber: q.Get("challan_number"),
		Status:        q.Get("grc_status"),
	}
	var err error
	if v := q.Get("from_grc_date"); v != "" {
		if filter.From, err = time.Parse("2006-01-02", v); err != nil {
			return filter, fmt.Errorf("from_grc_date must be YYYY-MM-DD")
		}
	}
	if v := q.Get("to_grc_date"); v != "" {
		if filter.To, err = time.Parse("2006-01-02", v); err != nil {
			return filter, fmt.Errorf("to_grc_date must be YYYY-MM-DD")
		}
	}
	if v := q.Get("grc_number"); v != "" {
		if filter.GRCNumber, err = strconv.ParseInt(v, 10, 64); err != nil {
			return filter, fmt.Errorf("grc_number must be numeric")
		}
	}
	if v := q.Get("limit"); v != "" {
		if filter.Limit, err = strconv.Atoi(v); err != nil {
			return filter, fmt.Errorf("limit must be numeric")
		}
	}
	if v := q.Get("offset"); v != "" {
		if filter.Offset, err = strconv.Atoi(v); err != nil {
			return filter, fmt.Errorf("offset must be numeric")
		}
	}
	return filter, nil
}

type quantityResponse struct {
	Notice
	FailingIndices []int `json:"failing_indices"`
}

func (h *Handler) writeError(w http.ResponseWriter, op string, err error) {
	var (
		rejection *ReceiveRejection
		formErr   *FormError
		qtyErr    *QuantityError
		invalid   validator.ValidationErrors
	)
	switch {
	case errors.As(err, &rejection):
		httpx.JSON(w, http.StatusUnprocessableEntity, rejection.Notice)
	case errors.As(err, &formErr):
		httpx.JSON(w, http.StatusUnprocessableEntity, formErr.Result)
	case errors.As(err, &qtyErr):
		httpx.JSON(w, http.StatusUnprocessableEntity, quantityResponse{
			Notice:         Notice{Message: qtyErr.Result.Message, Resolution: "Review return quantities.", Type: NoticeError},
			FailingIndices: qtyErr.Result.FailingIndices,
		})
	case errors.As(err, &invalid):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", invalid.Error())
	case errors.Is(err, ErrDuplicateLine), errors.Is(err, ErrInvalidReportType):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
