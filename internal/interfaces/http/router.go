package http

import (
	"github.com/gofiber/fiber/v2"

	appcc "github.com/invorya/cyclecount-api/internal/application/cyclecount"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Sessions *appcc.SessionUseCase
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	counts := api.Group("/cycle-counts")
	handler := NewCycleCountHandler(deps.Sessions)

	// Auditoría primero: "audits" no debe matchear como :id de sesión.
	audits := counts.Group("/audits")
	auditHandler := NewAuditHandler(deps.Sessions)
	audits.Get("/:auditId", auditHandler.Get)
	audits.Get("/:auditId/document", auditHandler.DownloadDocument)

	counts.Post("/", handler.Initiate)
	counts.Get("/active", handler.Active)
	counts.Get("/:id", handler.Get)
	counts.Post("/:id/snapshot", handler.LoadSnapshot)
	counts.Post("/:id/lines/:sku/movements", handler.AddMovement)
	counts.Put("/:id/lines/:sku/movements/:movementId", handler.UpdateMovement)
	counts.Delete("/:id/lines/:sku/movements/:movementId", handler.RemoveMovement)
	counts.Post("/:id/draft", handler.SaveDraft)
	counts.Get("/:id/draft", handler.LoadDraft)
	counts.Post("/:id/cancel", handler.Cancel)
	counts.Post("/:id/otp", handler.RequestOtp)
	counts.Post("/:id/commit", handler.Commit)
}
