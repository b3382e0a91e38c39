package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/narasimharaokandula8/qr-vehicle-docs/internal/audit"
	authdomain "github.com/narasimharaokandula8/qr-vehicle-docs/internal/auth/domain"
	"github.com/narasimharaokandula8/qr-vehicle-docs/internal/middleware"
)

// RegisterRoutes mounts the vehicle, document and QR endpoints. The audit
// interceptor runs outermost on every route so gate, role and ownership
// rejections are recorded with success=false, not just handler outcomes.
// Ownership checks run before the handler wherever the resource id travels
// as a route param.
func RegisterRoutes(app *fiber.App, h *DocumentHandler, gate fiber.Handler, pipeline *audit.Pipeline) {
	api := app.Group("/api/v1")

	ownVehicle := middleware.RequireOwnership("vehicleId", h.FetchVehicle)
	ownDocument := middleware.RequireOwnership("documentId", h.FetchDocument)
	ownerOnly := middleware.RequireRole(authdomain.RoleOwner)

	docAudit := func(action string, opts ...middleware.AuditOption) fiber.Handler {
		return middleware.Audit(pipeline, action, audit.CategoryDocument, opts...)
	}
	qrAudit := func(action string, opts ...middleware.AuditOption) fiber.Handler {
		return middleware.Audit(pipeline, action, audit.CategoryQR, opts...)
	}

	api.Post("/documents",
		docAudit("create_vehicle"),
		gate, ownerOnly,
		h.CreateVehicle)
	api.Get("/documents/:ownerId",
		docAudit("list_documents", middleware.WithResource("owner", "ownerId")),
		gate,
		h.ListByOwner)
	api.Put("/documents/:vehicleId",
		docAudit("update_vehicle", middleware.WithResource("vehicle", "vehicleId")),
		gate, ownVehicle,
		h.UpdateVehicle)
	api.Delete("/documents/:vehicleId",
		docAudit("delete_vehicle", middleware.WithResource("vehicle", "vehicleId"), middleware.WithRiskLevel(audit.RiskMedium)),
		gate, ownVehicle,
		h.DeleteVehicle)

	api.Post("/upload",
		docAudit("upload_document", middleware.WithRiskLevel(audit.RiskMedium)),
		gate, ownerOnly,
		h.Upload)
	api.Get("/files/:documentId",
		docAudit("serve_document", middleware.WithResource("document", "documentId")),
		gate, ownDocument,
		h.ServeFile)

	api.Get("/userqr/:userId",
		qrAudit("generate_user_qr", middleware.WithResource("user", "userId")),
		gate,
		h.UserQR)
	api.Get("/vehicleqr/:vehicleId",
		qrAudit("generate_vehicle_qr", middleware.WithResource("vehicle", "vehicleId")),
		gate,
		h.VehicleQR)
	api.Post("/scan-qr",
		qrAudit("scan_qr", middleware.WithRiskLevel(audit.RiskMedium)),
		gate,
		h.ScanQR)

	api.Get("/accessible-vehicles/:userId",
		docAudit("list_accessible_vehicles", middleware.WithResource("user", "userId")),
		gate,
		h.AccessibleVehicles)
	api.Post("/assign-driver",
		docAudit("assign_driver"),
		gate, ownerOnly,
		h.AssignDriver)
	api.Post("/grant-access",
		docAudit("grant_access"),
		gate, ownerOnly,
		h.GrantAccess)
}
