package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"labparse/internal/catalog"
	"labparse/internal/csvexport"
	"labparse/internal/domain"
	"labparse/internal/service"
)

// ReportHandler handles lab report parsing endpoints.
type ReportHandler struct {
	reportService service.ReportService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reportService service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// ParseRequest is the body of a parse call: the OCR output for one document.
type ParseRequest struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	UseAI      bool    `json:"useAi"`
}

func (r ParseRequest) input() service.ParseInput {
	return service.ParseInput{
		OCRResult: domain.OCRResult{Text: r.Text, Confidence: r.Confidence},
		UseAI:     r.UseAI,
	}
}

// BatchRequest is the body of a batch parse call.
type BatchRequest struct {
	Documents []ParseRequest `json:"documents"`
}

// Parse handles POST /api/v1/reports/parse.
// @Summary      Parse a lab report
// @Description  Extracts indicators and metadata from recognized report text. With useAi the configured AI provider is consulted; if it fails the deterministic result is returned with a warning.
// @Tags         reports
// @Accept       json
// @Produce      json
// @Produce      text/csv
// @Param        body body ParseRequest true "OCR output"
// @Param        format query string false "Response format: json (default) or csv"
// @Success      200 {object} APIResponse{data=service.ParseResult}
// @Failure      400 {object} APIResponse
// @Router       /reports/parse [post]
func (h *ReportHandler) Parse(c *gin.Context) {
	var req ParseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	format := c.DefaultQuery("format", "json")
	if format != "json" && format != "csv" {
		RespondError(c, http.StatusBadRequest, "INVALID_FORMAT", "format must be json or csv")
		return
	}

	result, err := h.reportService.Parse(c.Request.Context(), req.input())
	if err != nil {
		HandleError(c, err)
		return
	}

	if format == "csv" {
		writeCSV(c, result)
		return
	}
	RespondOK(c, result)
}

// ParseBatch handles POST /api/v1/reports/parse-batch.
// @Summary      Parse several lab reports
// @Description  Parses independent documents concurrently. Results keep request order; a document that cannot be parsed carries an error instead of failing the batch.
// @Tags         reports
// @Accept       json
// @Produce      json
// @Param        body body BatchRequest true "Documents"
// @Success      200 {object} APIResponse{data=[]service.ParseResult,meta=BatchMeta}
// @Failure      400 {object} APIResponse
// @Failure      413 {object} APIResponse
// @Router       /reports/parse-batch [post]
func (h *ReportHandler) ParseBatch(c *gin.Context) {
	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	inputs := make([]service.ParseInput, len(req.Documents))
	for i, d := range req.Documents {
		inputs[i] = d.input()
	}

	results, err := h.reportService.ParseBatch(c.Request.Context(), inputs)
	if err != nil {
		HandleError(c, err)
		return
	}

	meta := BatchMeta{Total: len(results)}
	for _, r := range results {
		if r.Error != "" {
			meta.Failed++
		}
	}
	RespondBatch(c, results, meta)
}

// CatalogIndicator describes one indicator known to the deterministic
// extractors.
type CatalogIndicator struct {
	Name         string  `json:"name"`
	Unit         string  `json:"unit"`
	ReferenceMin float64 `json:"referenceMin"`
	ReferenceMax float64 `json:"referenceMax"`
}

// CatalogSection is a table-format section and its positional indicators.
type CatalogSection struct {
	Name       string             `json:"name"`
	Headers    []string           `json:"headers"`
	Indicators []CatalogIndicator `json:"indicators"`
}

// CatalogResponse is the body of GET /api/v1/catalog.
type CatalogResponse struct {
	Sections   []CatalogSection   `json:"sections"`
	Indicators []CatalogIndicator `json:"indicators"`
	AIEnabled  bool               `json:"aiEnabled"`
}

// Catalog handles GET /api/v1/catalog.
// @Summary      Indicator catalog
// @Description  Lists the table sections and indicators recognized without AI.
// @Tags         reports
// @Produce      json
// @Success      200 {object} APIResponse{data=CatalogResponse}
// @Router       /catalog [get]
func (h *ReportHandler) Catalog(c *gin.Context) {
	cat := h.reportService.Catalog()
	resp := CatalogResponse{
		Sections:   []CatalogSection{},
		Indicators: []CatalogIndicator{},
		AIEnabled:  h.reportService.AIEnabled(),
	}
	if cat != nil {
		for _, s := range cat.Sections() {
			section := CatalogSection{Name: s.Name, Headers: s.Headers, Indicators: []CatalogIndicator{}}
			for _, t := range s.Templates {
				section.Indicators = append(section.Indicators, toCatalogIndicator(t))
			}
			resp.Sections = append(resp.Sections, section)
		}
		for _, p := range cat.Patterns() {
			resp.Indicators = append(resp.Indicators, toCatalogIndicator(p.IndicatorTemplate))
		}
	}
	RespondOK(c, resp)
}

func toCatalogIndicator(t catalog.IndicatorTemplate) CatalogIndicator {
	return CatalogIndicator{
		Name:         t.CanonicalName,
		Unit:         t.Unit,
		ReferenceMin: t.ReferenceMin,
		ReferenceMax: t.ReferenceMax,
	}
}

func writeCSV(c *gin.Context, result *service.ParseResult) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="`+csvexport.BuildFilename("lab_report")+`"`)
	for _, w := range result.Warnings {
		c.Writer.Header().Add("X-Warning", w)
	}
	c.Status(http.StatusOK)

	if _, err := c.Writer.Write(csvexport.BOM); err != nil {
		return
	}
	w := csvexport.NewWriter(c.Writer)
	if err := w.WriteHeader(); err != nil {
		return
	}
	if err := w.WriteReport(result.ID, result.Report); err != nil {
		return
	}
	w.Flush()
}
