package http

import (
	"bytes"
	"fmt"

	"github.com/gofiber/fiber/v2"

	appcc "github.com/invorya/cyclecount-api/internal/application/cyclecount"
	"github.com/invorya/cyclecount-api/internal/application/dto"
	"github.com/invorya/cyclecount-api/internal/infrastructure/document"
)

// AuditHandler maneja la consulta de registros de auditoría y la descarga del
// documento de ajuste (regenerado bajo demanda desde el registro inmutable).
type AuditHandler struct {
	uc *appcc.SessionUseCase
}

// NewAuditHandler construye el handler.
func NewAuditHandler(uc *appcc.SessionUseCase) *AuditHandler {
	return &AuditHandler{uc: uc}
}

// Get godoc
// @Summary      Consultar registro de auditoría
// @Tags         audits
// @Produce      json
// @Param        auditId  path  string  true  "ID de auditoría"
// @Success      200  {object}  dto.AuditResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/cycle-counts/audits/{auditId} [get]
func (h *AuditHandler) Get(c *fiber.Ctx) error {
	audit, err := h.uc.GetAudit(c.Context(), c.Params("auditId"))
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(dto.FromAudit(audit))
}

// DownloadDocument godoc
// @Summary      Descargar el documento de ajuste
// @Description  Una fila por movimiento confirmado con motivo y nueva fecha de
//
//	fabricación. Formatos: xlsx (default), csv, pdf, xml.
//
// @Tags         audits
// @Produce      octet-stream
// @Param        auditId  path   string  true   "ID de auditoría"
// @Param        format   query  string  false  "xlsx | csv | pdf | xml"
// @Success      200  {file}    file
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/cycle-counts/audits/{auditId}/document [get]
func (h *AuditHandler) DownloadDocument(c *fiber.Ctx) error {
	audit, err := h.uc.GetAudit(c.Context(), c.Params("auditId"))
	if err != nil {
		return mapError(c, err)
	}

	format := c.Query("format", "xlsx")
	switch format {
	case "xlsx":
		var buf bytes.Buffer
		if err := document.WriteXLSX(&buf, audit); err != nil {
			return mapError(c, err)
		}
		c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		setAttachment(c, audit.ID, "xlsx")
		return c.Send(buf.Bytes())
	case "csv":
		var buf bytes.Buffer
		if err := document.WriteCSV(&buf, audit); err != nil {
			return mapError(c, err)
		}
		c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
		setAttachment(c, audit.ID, "csv")
		return c.Send(buf.Bytes())
	case "pdf":
		out, err := document.BuildPDF(audit)
		if err != nil {
			return mapError(c, err)
		}
		c.Set(fiber.HeaderContentType, "application/pdf")
		setAttachment(c, audit.ID, "pdf")
		return c.Send(out)
	case "xml":
		out, err := document.BuildXML(audit)
		if err != nil {
			return mapError(c, err)
		}
		c.Set(fiber.HeaderContentType, "application/xml; charset=utf-8")
		setAttachment(c, audit.ID, "xml")
		return c.Send(out)
	}
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Code: "INVALID_FORMAT", Message: fmt.Sprintf("formato no soportado: %s", format),
	})
}

func setAttachment(c *fiber.Ctx, auditID, ext string) {
	c.Set(fiber.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="ajuste-%s.%s"`, auditID, ext))
}
