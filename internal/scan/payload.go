package scan

import (
	"encoding/json"

	autherror "github.com/narasimharaokandula8/qr-vehicle-docs/internal/errors"
)

// Payload is the JSON a QR code carries. Vehicle codes embed the owner so a
// scanner can verify provenance without a second lookup; user codes carry
// display fields only.
type Payload struct {
	UserID    string `json:"userId,omitempty"`
	Name      string `json:"name,omitempty"`
	Email     string `json:"email,omitempty"`
	VehicleID string `json:"vehicleId,omitempty"`
	VehicleNo string `json:"vehicleNo,omitempty"`
	OwnerID   string `json:"ownerId,omitempty"`
}

// Type reports which variant the payload is. Vehicle wins when both ids are
// present, matching the scan endpoint's dispatch order.
func (p Payload) Type() QRType {
	if p.VehicleID != "" {
		return QRTypeVehicle
	}
	return QRTypeUser
}

// ParsePayload decodes the raw scanned string. Anything that is not JSON
// carrying at least one recognized id is rejected.
func ParsePayload(raw string) (Payload, error) {
	var p Payload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return Payload{}, autherror.ErrInvalidQRPayload
	}
	if p.VehicleID == "" && p.UserID == "" {
		return Payload{}, autherror.ErrInvalidQRPayload
	}
	return p, nil
}
