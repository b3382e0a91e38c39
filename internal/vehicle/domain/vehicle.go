package domain

import "time"

// DocumentType enumerates the custody papers a vehicle can carry.
type DocumentType string

const (
	DocumentRC        DocumentType = "rc"
	DocumentInsurance DocumentType = "insurance"
	DocumentPUC       DocumentType = "puc"
	DocumentFitness   DocumentType = "fitness"
	DocumentLicense   DocumentType = "license"
)

// Valid reports whether t is one of the known document types.
func (t DocumentType) Valid() bool {
	switch t {
	case DocumentRC, DocumentInsurance, DocumentPUC, DocumentFitness, DocumentLicense:
		return true
	}
	return false
}

// Vehicle is a registered vehicle with its access lists. Drivers and access
// grantees may view the vehicle and its code; only the owner administers it.
type Vehicle struct {
	ID        string
	VehicleNo string
	OwnerID   string
	Drivers   []string
	Access    []string

	VehicleType string
	Make        string
	Model       string
	Year        int
	Color       string

	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// OwnerRef is the vehicle's owner reference for ownership checks.
func (v *Vehicle) OwnerRef() string {
	return v.OwnerID
}

// Viewable reports whether userID may view the vehicle: the owner, an
// assigned driver, or an access grantee. Privileged roles bypass this at the
// policy layer, not here.
func (v *Vehicle) Viewable(userID string) bool {
	if v.OwnerID == userID {
		return true
	}
	for _, id := range v.Drivers {
		if id == userID {
			return true
		}
	}
	for _, id := range v.Access {
		if id == userID {
			return true
		}
	}
	return false
}

// Document is one uploaded custody paper. FileName points at the stored
// artifact, which carries an .enc suffix when sealed.
type Document struct {
	ID        string
	VehicleID string
	// UserID is the uploading owner; document ownership follows the user,
	// not the vehicle record.
	UserID string

	Type         DocumentType
	FileName     string
	OriginalName string
	MimeType     string
	SizeBytes    int64
	Encrypted    bool

	UploadedAt time.Time
}

// OwnerRef is the uploading user's id.
func (d *Document) OwnerRef() string {
	return d.UserID
}
