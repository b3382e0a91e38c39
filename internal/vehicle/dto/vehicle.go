package dto

type CreateVehicleInput struct {
	VehicleNo   string `json:"vehicleNo"`
	VehicleType string `json:"vehicleType"`
	Make        string `json:"make"`
	Model       string `json:"model"`
	Year        int    `json:"year"`
	Color       string `json:"color"`
}

type UpdateVehicleInput struct {
	VehicleNo   string `json:"vehicleNo"`
	VehicleType string `json:"vehicleType"`
	Make        string `json:"make"`
	Model       string `json:"model"`
	Year        int    `json:"year"`
	Color       string `json:"color"`
}

type AssignDriverInput struct {
	VehicleID string `json:"vehicleId"`
	DriverID  string `json:"driverId"`
}

type GrantAccessInput struct {
	VehicleID string `json:"vehicleId"`
	UserID    string `json:"userId"`
}

type ScanInput struct {
	QRData  string `json:"qrData"`
	FromApp bool   `json:"fromApp"`
}
