package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	authdomain "github.com/narasimharaokandula8/qr-vehicle-docs/internal/auth/domain"
	autherror "github.com/narasimharaokandula8/qr-vehicle-docs/internal/errors"
	"github.com/narasimharaokandula8/qr-vehicle-docs/internal/middleware"
	"github.com/narasimharaokandula8/qr-vehicle-docs/internal/scan"
	"github.com/narasimharaokandula8/qr-vehicle-docs/internal/vault"
	"github.com/narasimharaokandula8/qr-vehicle-docs/internal/vehicle/domain"
	"github.com/narasimharaokandula8/qr-vehicle-docs/internal/vehicle/dto"
)

var allowedUploadTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/png":       true,
}

// DocumentHandler serves the vehicle and document routes behind the security
// pipeline.
type DocumentHandler struct {
	vehicles  domain.VehicleRepository
	users     authdomain.UserRepository
	scans     *scan.Service
	vault     *vault.Vault
	uploadDir string
}

func NewDocumentHandler(vehicles domain.VehicleRepository, users authdomain.UserRepository, scans *scan.Service, v *vault.Vault, uploadDir string) *DocumentHandler {
	return &DocumentHandler{
		vehicles:  vehicles,
		users:     users,
		scans:     scans,
		vault:     v,
		uploadDir: uploadDir,
	}
}

// FetchVehicle loads a vehicle for the ownership middleware.
func (h *DocumentHandler) FetchVehicle(ctx context.Context, id string) (authdomain.Ownable, error) {
	v, err := h.vehicles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	return v, nil
}

// FetchDocument loads an uploaded document for the ownership middleware.
func (h *DocumentHandler) FetchDocument(ctx context.Context, id string) (authdomain.Ownable, error) {
	d, err := h.vehicles.GetDocumentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, nil
	}
	return d, nil
}

func (h *DocumentHandler) CreateVehicle(c *fiber.Ctx) error {
	var input dto.CreateVehicleInput
	if err := c.BodyParser(&input); err != nil || input.VehicleNo == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "vehicleNo is required",
			"code":    autherror.CodeValidationError,
		})
	}

	user, _ := middleware.CurrentUser(c)
	now := time.Now()
	vehicle := &domain.Vehicle{
		ID:          uuid.New().String(),
		VehicleNo:   input.VehicleNo,
		OwnerID:     user.ID,
		Drivers:     []string{},
		Access:      []string{},
		VehicleType: input.VehicleType,
		Make:        input.Make,
		Model:       input.Model,
		Year:        input.Year,
		Color:       input.Color,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.vehicles.Create(c.Context(), vehicle); err != nil {
		return serverError(c, "Failed to add vehicle")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Vehicle added",
		"vehicle": vehicleView(vehicle),
	})
}

// ListByOwner returns every vehicle document set the owner holds. Only the
// owner themselves or a privileged role may list.
func (h *DocumentHandler) ListByOwner(c *fiber.Ctx) error {
	ownerID := c.Params("ownerId")
	user, _ := middleware.CurrentUser(c)
	if user.ID != ownerID && !user.Role.Privileged() {
		return forbidden(c)
	}

	vehicles, err := h.vehicles.ListByOwner(c.Context(), ownerID)
	if err != nil {
		return serverError(c, "Failed to fetch documents")
	}

	return c.JSON(fiber.Map{"documents": vehicleViews(vehicles)})
}

func (h *DocumentHandler) UpdateVehicle(c *fiber.Ctx) error {
	vehicle, ok := c.Locals(middleware.LocalResource).(*domain.Vehicle)
	if !ok {
		return serverError(c, "Failed to update vehicle")
	}

	var input dto.UpdateVehicleInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "invalid input",
			"code":    autherror.CodeValidationError,
		})
	}

	if input.VehicleNo != "" {
		vehicle.VehicleNo = input.VehicleNo
	}
	if input.VehicleType != "" {
		vehicle.VehicleType = input.VehicleType
	}
	if input.Make != "" {
		vehicle.Make = input.Make
	}
	if input.Model != "" {
		vehicle.Model = input.Model
	}
	if input.Year != 0 {
		vehicle.Year = input.Year
	}
	if input.Color != "" {
		vehicle.Color = input.Color
	}

	if err := h.vehicles.UpdateDetails(c.Context(), vehicle); err != nil {
		return serverError(c, "Failed to update vehicle")
	}

	return c.JSON(fiber.Map{"message": "Vehicle updated"})
}

func (h *DocumentHandler) DeleteVehicle(c *fiber.Ctx) error {
	if err := h.vehicles.Delete(c.Context(), c.Params("vehicleId")); err != nil {
		return serverError(c, "Failed to delete vehicle")
	}
	return c.JSON(fiber.Map{"message": "Vehicle deleted"})
}

// Upload receives one custody paper, seals it at rest and records the
// artifact. The plaintext never remains on disk once sealing succeeds.
func (h *DocumentHandler) Upload(c *fiber.Ctx) error {
	vehicleID := c.FormValue("vehicleId")
	docType := domain.DocumentType(c.FormValue("docType"))
	if vehicleID == "" || !docType.Valid() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "vehicleId and a valid docType are required",
			"code":    autherror.CodeValidationError,
		})
	}

	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "file is required",
			"code":    autherror.CodeValidationError,
		})
	}
	if !allowedUploadTypes[file.Header.Get(fiber.HeaderContentType)] {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Only PDF, JPEG, PNG allowed",
			"code":    autherror.CodeValidationError,
		})
	}

	// The vehicle id travels in the form body, so ownership is checked here
	// instead of in the route-param middleware.
	vehicle, err := h.vehicles.GetByID(c.Context(), vehicleID)
	if err != nil {
		return serverError(c, "Upload failed")
	}
	if vehicle == nil {
		return notFound(c, "Vehicle not found")
	}
	user, _ := middleware.CurrentUser(c)
	if vehicle.OwnerID != user.ID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": "You do not own this resource",
			"code":    autherror.CodeNotResourceOwner,
		})
	}

	storedName := fmt.Sprintf("%d-%s", time.Now().UnixMilli(), filepath.Base(file.Filename))
	storedPath := filepath.Join(h.uploadDir, storedName)
	if err := c.SaveFile(file, storedPath); err != nil {
		return serverError(c, "Upload failed")
	}

	sealedPath, err := h.vault.SealFile(storedPath)
	if err != nil {
		return serverError(c, "Upload failed")
	}

	doc := &domain.Document{
		ID:           uuid.New().String(),
		VehicleID:    vehicle.ID,
		UserID:       user.ID,
		Type:         docType,
		FileName:     filepath.Base(sealedPath),
		OriginalName: file.Filename,
		MimeType:     file.Header.Get(fiber.HeaderContentType),
		SizeBytes:    file.Size,
		Encrypted:    h.vault.Enabled(),
		UploadedAt:   time.Now(),
	}

	if err := h.vehicles.AddDocument(c.Context(), doc); err != nil {
		return serverError(c, "Upload failed")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":    "Documents uploaded successfully",
		"documentId": doc.ID,
		"encrypted":  doc.Encrypted,
	})
}

// ServeFile decrypts an artifact transiently in memory and streams the
// plaintext to an authorized reader. Corrupted artifacts fail the request;
// altered plaintext is never served.
func (h *DocumentHandler) ServeFile(c *fiber.Ctx) error {
	doc, ok := c.Locals(middleware.LocalResource).(*domain.Document)
	if !ok {
		return serverError(c, "Failed to retrieve file")
	}

	plaintext, err := h.vault.OpenFile(filepath.Join(h.uploadDir, doc.FileName))
	if err != nil {
		return serverError(c, "Failed to decrypt file")
	}

	if doc.MimeType != "" {
		c.Set(fiber.HeaderContentType, doc.MimeType)
	}
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("inline; filename=%q", doc.OriginalName))
	return c.Send(plaintext)
}

// UserQR builds the payload a user's personal code carries.
func (h *DocumentHandler) UserQR(c *fiber.Ctx) error {
	userID := c.Params("userId")
	current, _ := middleware.CurrentUser(c)
	if current.ID != userID && !current.Role.Privileged() {
		return forbidden(c)
	}

	user, err := h.users.GetByID(c.Context(), userID)
	if err != nil {
		return serverError(c, "QR generation failed")
	}
	if user == nil {
		return notFound(c, "User not found")
	}

	payload, _ := json.Marshal(scan.Payload{UserID: user.ID, Name: user.Name, Email: user.Email})
	return c.JSON(fiber.Map{"qr": string(payload)})
}

// VehicleQR builds the payload a vehicle's code carries. Owner, assigned
// drivers, access grantees and privileged roles may request it.
func (h *DocumentHandler) VehicleQR(c *fiber.Ctx) error {
	vehicle, err := h.vehicles.GetByID(c.Context(), c.Params("vehicleId"))
	if err != nil {
		return serverError(c, "QR generation failed")
	}
	if vehicle == nil {
		return notFound(c, "Vehicle not found")
	}

	current, _ := middleware.CurrentUser(c)
	if !vehicle.Viewable(current.ID) && !current.Role.Privileged() {
		return forbidden(c)
	}

	payload, _ := json.Marshal(scan.Payload{VehicleID: vehicle.ID, VehicleNo: vehicle.VehicleNo, OwnerID: vehicle.OwnerID})
	return c.JSON(fiber.Map{"qr": string(payload)})
}

// ScanQR resolves a scanned payload, authorizes the scanner against the
// target and records the attempt with its risk score. Authorization
// failures are recorded too; only the document itself is withheld.
func (h *DocumentHandler) ScanQR(c *fiber.Ctx) error {
	var input dto.ScanInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "invalid input",
			"code":    autherror.CodeValidationError,
		})
	}

	payload, err := scan.ParsePayload(input.QRData)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid QR data",
			"code":    autherror.CodeInvalidQR,
		})
	}

	if payload.Type() == scan.QRTypeVehicle {
		return h.scanVehicleQR(c, payload, input.FromApp)
	}
	return h.scanUserQR(c, payload, input.FromApp)
}

func (h *DocumentHandler) scanVehicleQR(c *fiber.Ctx, payload scan.Payload, fromApp bool) error {
	vehicle, err := h.vehicles.GetByID(c.Context(), payload.VehicleID)
	if err != nil {
		return serverError(c, "QR scan failed")
	}
	if vehicle == nil {
		return notFound(c, "Vehicle not found")
	}

	current, _ := middleware.CurrentUser(c)
	authorized := vehicle.Viewable(current.ID) || current.Role.Privileged()

	event := h.recordScan(c, scan.QRTypeVehicle, vehicle.ID, vehicle.OwnerID, authorized)
	if !authorized {
		return forbidden(c)
	}

	var document any
	if fromApp {
		document = vehicleView(vehicle)
	} else {
		document = fiber.Map{"vehicleId": vehicle.ID, "vehicleNo": vehicle.VehicleNo, "ownerId": vehicle.OwnerID}
	}
	return c.JSON(fiber.Map{"document": document, "scan": scanView(event)})
}

func (h *DocumentHandler) scanUserQR(c *fiber.Ctx, payload scan.Payload, fromApp bool) error {
	user, err := h.users.GetByID(c.Context(), payload.UserID)
	if err != nil {
		return serverError(c, "QR scan failed")
	}
	if user == nil {
		return notFound(c, "User not found")
	}

	current, _ := middleware.CurrentUser(c)
	authorized := current.ID == user.ID || current.Role.Privileged()

	event := h.recordScan(c, scan.QRTypeUser, user.ID, user.ID, authorized)
	if !authorized {
		return forbidden(c)
	}

	var document any
	if fromApp {
		document = fiber.Map{
			"userId": user.ID, "name": user.Name, "email": user.Email,
			"role": user.Role, "isVerified": user.IsVerified,
		}
	} else {
		document = fiber.Map{"userId": user.ID, "name": user.Name, "email": user.Email}
	}
	return c.JSON(fiber.Map{"document": document, "scan": scanView(event)})
}

func (h *DocumentHandler) recordScan(c *fiber.Ctx, qrType scan.QRType, targetID, targetOwnerID string, authorized bool) *scan.Event {
	current, _ := middleware.CurrentUser(c)
	event, err := h.scans.Record(c.Context(), scan.Input{
		QRType:        qrType,
		TargetID:      targetID,
		TargetOwnerID: targetOwnerID,
		Scanner:       current,
		IP:            c.IP(),
		Fingerprint:   middleware.RequestFingerprint(c),
		Success:       authorized,
	})
	if err != nil {
		// The scan trail is best effort from the caller's perspective.
		return nil
	}
	c.Locals(middleware.LocalRiskLevel, scan.LevelForScore(event.RiskScore))
	return event
}

// AccessibleVehicles lists every vehicle the user owns, drives or was
// granted access to.
func (h *DocumentHandler) AccessibleVehicles(c *fiber.Ctx) error {
	userID := c.Params("userId")
	current, _ := middleware.CurrentUser(c)
	if current.ID != userID && !current.Role.Privileged() {
		return forbidden(c)
	}

	vehicles, err := h.vehicles.ListAccessible(c.Context(), userID)
	if err != nil {
		return serverError(c, "Fetch accessible vehicles failed")
	}
	return c.JSON(fiber.Map{"vehicles": vehicleViews(vehicles)})
}

func (h *DocumentHandler) AssignDriver(c *fiber.Ctx) error {
	var input dto.AssignDriverInput
	if err := c.BodyParser(&input); err != nil || input.VehicleID == "" || input.DriverID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "vehicleId and driverId are required",
			"code":    autherror.CodeValidationError,
		})
	}
	return h.ownerVehicleMutation(c, input.VehicleID, "Driver assigned", func(ctx context.Context) error {
		return h.vehicles.AddDriver(ctx, input.VehicleID, input.DriverID)
	})
}

func (h *DocumentHandler) GrantAccess(c *fiber.Ctx) error {
	var input dto.GrantAccessInput
	if err := c.BodyParser(&input); err != nil || input.VehicleID == "" || input.UserID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "vehicleId and userId are required",
			"code":    autherror.CodeValidationError,
		})
	}
	return h.ownerVehicleMutation(c, input.VehicleID, "Access granted", func(ctx context.Context) error {
		return h.vehicles.GrantAccess(ctx, input.VehicleID, input.UserID)
	})
}

// ownerVehicleMutation runs a mutation only the vehicle's owner may perform.
// These routes carry the vehicle id in the body, so the ownership middleware
// (which reads route params) cannot guard them.
func (h *DocumentHandler) ownerVehicleMutation(c *fiber.Ctx, vehicleID, successMessage string, mutate func(ctx context.Context) error) error {
	vehicle, err := h.vehicles.GetByID(c.Context(), vehicleID)
	if err != nil {
		return serverError(c, "Failed to verify vehicle")
	}
	if vehicle == nil {
		return notFound(c, "Vehicle not found")
	}

	current, _ := middleware.CurrentUser(c)
	if vehicle.OwnerID != current.ID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": "You do not own this resource",
			"code":    autherror.CodeNotResourceOwner,
		})
	}

	if err := mutate(c.Context()); err != nil {
		return serverError(c, "Vehicle update failed")
	}
	return c.JSON(fiber.Map{"message": successMessage})
}

func vehicleView(v *domain.Vehicle) fiber.Map {
	return fiber.Map{
		"id":          v.ID,
		"vehicleNo":   v.VehicleNo,
		"ownerId":     v.OwnerID,
		"drivers":     v.Drivers,
		"access":      v.Access,
		"vehicleType": v.VehicleType,
		"make":        v.Make,
		"model":       v.Model,
		"year":        v.Year,
		"color":       v.Color,
		"isActive":    v.IsActive,
	}
}

func vehicleViews(vehicles []domain.Vehicle) []fiber.Map {
	views := make([]fiber.Map, 0, len(vehicles))
	for i := range vehicles {
		views = append(views, vehicleView(&vehicles[i]))
	}
	return views
}

func scanView(e *scan.Event) fiber.Map {
	if e == nil {
		return nil
	}
	return fiber.Map{
		"riskScore": e.RiskScore,
		"flags":     e.Flags,
	}
}

func forbidden(c *fiber.Ctx) error {
	return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
		"message": "Forbidden",
		"code":    autherror.CodeInsufficientPerms,
	})
}

func notFound(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"message": message,
		"code":    autherror.CodeResourceNotFound,
	})
}

func serverError(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": message,
		"code":    autherror.CodeServerError,
	})
}
