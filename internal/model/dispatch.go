package model

// Dispatch kinds.
const (
	DispatchMail   = "mail"
	DispatchUpload = "upload"
)

// Dispatch records that an artifact left the machine: a mail for a report date
// or an uploaded file. Used to keep re-runs from sending twice.
type Dispatch struct {
	DispatchID string `gorm:"primaryKey;type:varchar(36)"        json:"dispatch_id"`
	Kind       string `gorm:"type:varchar(16);not null;index"    json:"kind"`
	Date       string `gorm:"type:varchar(10);not null;index"    json:"date"`
	Target     string `gorm:"type:varchar(500);not null"         json:"target"`
	RemoteID   string `gorm:"type:varchar(200)"                  json:"remote_id"`
	Checksum   string `gorm:"type:varchar(64)"                   json:"checksum"`
	BaseModel
}

// TableName sets the table name.
func (Dispatch) TableName() string { return "dispatches" }
