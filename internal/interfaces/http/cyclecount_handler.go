package http

import (
	"github.com/gofiber/fiber/v2"

	appcc "github.com/invorya/cyclecount-api/internal/application/cyclecount"
	"github.com/invorya/cyclecount-api/internal/application/dto"
)

// CycleCountHandler maneja las peticiones HTTP de las sesiones de conteo cíclico.
type CycleCountHandler struct {
	uc *appcc.SessionUseCase
}

// NewCycleCountHandler construye el handler.
func NewCycleCountHandler(uc *appcc.SessionUseCase) *CycleCountHandler {
	return &CycleCountHandler{uc: uc}
}

// Initiate godoc
// @Summary      Iniciar sesión de conteo cíclico
// @Description  Crea la sesión ACTIVE. A lo sumo una activa a nivel sistema;
//
//	con otra vigente responde 409 SESSION_CONFLICT.
//
// @Tags         cycle-counts
// @Produce      json
// @Param        X-User-ID  header  string  true  "Usuario que inicia"
// @Success      201  {object}  dto.SessionResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/cycle-counts [post]
func (h *CycleCountHandler) Initiate(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_USER", Message: "header X-User-ID requerido"})
	}
	s, err := h.uc.Initiate(c.Context(), userID)
	if err != nil {
		return mapError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromSession(s))
}

// Active godoc
// @Summary      Sesión activa vigente
// @Tags         cycle-counts
// @Produce      json
// @Success      200  {object}  dto.SessionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/cycle-counts/active [get]
func (h *CycleCountHandler) Active(c *fiber.Ctx) error {
	s, err := h.uc.Active(c.Context())
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(dto.FromSession(s))
}

// Get godoc
// @Summary      Consultar sesión por id
// @Tags         cycle-counts
// @Produce      json
// @Param        id  path  string  true  "ID de sesión"
// @Success      200  {object}  dto.SessionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/cycle-counts/{id} [get]
func (h *CycleCountHandler) Get(c *fiber.Ctx) error {
	s, err := h.uc.Get(c.Context(), c.Params("id"))
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(dto.FromSession(s))
}

// LoadSnapshot godoc
// @Summary      Cargar snapshot de inventario en la sesión
// @Description  Reemplaza las líneas con los saldos vigentes. Con movimientos
//
//	sin confirmar exige force=true (si no, 409 UNSAVED_MOVEMENTS).
//
// @Tags         cycle-counts
// @Produce      json
// @Param        id     path   string  true   "ID de sesión"
// @Param        force  query  bool    false  "Reemplazar aunque haya movimientos"
// @Success      200  {object}  dto.SessionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      502  {object}  dto.ErrorResponse
// @Router       /api/cycle-counts/{id}/snapshot [post]
func (h *CycleCountHandler) LoadSnapshot(c *fiber.Ctx) error {
	s, err := h.uc.LoadSnapshot(c.Context(), c.Params("id"), c.QueryBool("force"))
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(dto.FromSession(s))
}

// AddMovement godoc
// @Summary      Agregar movimiento a una línea
// @Description  El movimiento se guarda aunque deje la línea con violaciones:
//
//	la validación por línea es consultiva, el gate duro es el commit.
//
// @Tags         cycle-counts
// @Accept       json
// @Produce      json
// @Param        id    path  string               true  "ID de sesión"
// @Param        sku   path  string               true  "SKU"
// @Param        body  body  dto.MovementRequest  true  "type, quantity, reason_code, new_mfg_date"
// @Success      201  {object}  dto.LineResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/cycle-counts/{id}/lines/{sku}/movements [post]
func (h *CycleCountHandler) AddMovement(c *fiber.Ctx) error {
	in, err := parseMovement(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: err.Error()})
	}
	line, err := h.uc.AddMovement(c.Context(), c.Params("id"), c.Params("sku"), in)
	if err != nil {
		return mapError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromLine(line))
}

// UpdateMovement godoc
// @Summary      Editar un movimiento
// @Tags         cycle-counts
// @Accept       json
// @Produce      json
// @Param        id          path  string               true  "ID de sesión"
// @Param        sku         path  string               true  "SKU"
// @Param        movementId  path  string               true  "ID de movimiento"
// @Param        body        body  dto.MovementRequest  true  "type, quantity, reason_code, new_mfg_date"
// @Success      200  {object}  dto.LineResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/cycle-counts/{id}/lines/{sku}/movements/{movementId} [put]
func (h *CycleCountHandler) UpdateMovement(c *fiber.Ctx) error {
	in, err := parseMovement(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: err.Error()})
	}
	line, err := h.uc.UpdateMovement(c.Context(), c.Params("id"), c.Params("sku"), c.Params("movementId"), in)
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(dto.FromLine(line))
}

// RemoveMovement godoc
// @Summary      Eliminar un movimiento
// @Tags         cycle-counts
// @Produce      json
// @Param        id          path  string  true  "ID de sesión"
// @Param        sku         path  string  true  "SKU"
// @Param        movementId  path  string  true  "ID de movimiento"
// @Success      200  {object}  dto.LineResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/cycle-counts/{id}/lines/{sku}/movements/{movementId} [delete]
func (h *CycleCountHandler) RemoveMovement(c *fiber.Ctx) error {
	line, err := h.uc.RemoveMovement(c.Context(), c.Params("id"), c.Params("sku"), c.Params("movementId"))
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(dto.FromLine(line))
}

// SaveDraft godoc
// @Summary      Guardar borrador de la sesión
// @Description  Foto congelada de líneas + movimientos. Último save gana.
// @Tags         cycle-counts
// @Produce      json
// @Param        id  path  string  true  "ID de sesión"
// @Success      200  {object}  dto.SaveDraftResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/cycle-counts/{id}/draft [post]
func (h *CycleCountHandler) SaveDraft(c *fiber.Ctx) error {
	sessionID := c.Params("id")
	savedAt, err := h.uc.SaveDraft(c.Context(), sessionID)
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(dto.SaveDraftResponse{SessionID: sessionID, SavedAt: savedAt})
}

// LoadDraft godoc
// @Summary      Recuperar el último borrador guardado
// @Tags         cycle-counts
// @Produce      json
// @Param        id  path  string  true  "ID de sesión"
// @Success      200  {object}  dto.DraftPayload
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/cycle-counts/{id}/draft [get]
func (h *CycleCountHandler) LoadDraft(c *fiber.Ctx) error {
	draft, err := h.uc.LoadDraft(c.Context(), c.Params("id"))
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(draft)
}

// Cancel godoc
// @Summary      Cancelar la sesión activa
// @Description  Transición terminal sin auditoría; reanuda el intake de pedidos.
// @Tags         cycle-counts
// @Produce      json
// @Param        id  path  string  true  "ID de sesión"
// @Success      200  {object}  dto.SessionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/cycle-counts/{id}/cancel [post]
func (h *CycleCountHandler) Cancel(c *fiber.Ctx) error {
	s, err := h.uc.Cancel(c.Context(), c.Params("id"))
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(dto.FromSession(s))
}

// RequestOtp godoc
// @Summary      Emitir reto OTP para el commit
// @Description  Exige cero violaciones en todas las líneas; si no, 422 con la
//
//	lista completa de SKUs ofensores.
//
// @Tags         cycle-counts
// @Produce      json
// @Param        id  path  string  true  "ID de sesión"
// @Success      200  {object}  dto.OtpChallengeResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Failure      502  {object}  dto.ErrorResponse
// @Router       /api/cycle-counts/{id}/otp [post]
func (h *CycleCountHandler) RequestOtp(c *fiber.Ctx) error {
	ch, err := h.uc.RequestCommitOtp(c.Context(), c.Params("id"))
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(dto.OtpChallengeResponse{ChallengeID: ch.ChallengeID, ExpiresAt: ch.ExpiresAt})
}

// Commit godoc
// @Summary      Confirmar la sesión (OTP de por medio)
// @Description  Atómico: auditoría + ajuste de stock + transición a COMMITTED
//
//	en una sola transacción. Devuelve el registro con document_ref.
//
// @Tags         cycle-counts
// @Accept       json
// @Produce      json
// @Param        id    path    string             true  "ID de sesión"
// @Param        X-User-ID  header  string        true  "Usuario que confirma"
// @Param        body  body    dto.CommitRequest  true  "otp de 6 dígitos"
// @Success      200  {object}  dto.AuditResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Failure      502  {object}  dto.ErrorResponse
// @Router       /api/cycle-counts/{id}/commit [post]
func (h *CycleCountHandler) Commit(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_USER", Message: "header X-User-ID requerido"})
	}
	var in dto.CommitRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	audit, err := h.uc.Commit(c.Context(), c.Params("id"), in.Otp, userID)
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(dto.FromAudit(audit))
}

// parseMovement interpreta el body de alta/edición de movimiento.
func parseMovement(c *fiber.Ctx) (appcc.MovementInput, error) {
	var in dto.MovementRequest
	if err := c.BodyParser(&in); err != nil {
		return appcc.MovementInput{}, err
	}
	mfgDate, err := in.ParseMfgDate()
	if err != nil {
		return appcc.MovementInput{}, err
	}
	return appcc.MovementInput{
		Type:       in.Type,
		Quantity:   in.Quantity,
		ReasonCode: in.ReasonCode,
		NewMfgDate: mfgDate,
	}, nil
}
