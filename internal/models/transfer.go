package models

// ImportMetadata overrides applied to every rate card written by an import.
type ImportMetadata struct {
	FuelSurcharge     *float64 `json:"fuelSurcharge" validate:"omitempty,gte=0"`
	FuelSurchargeBase *float64 `json:"fuelSurchargeBase" validate:"omitempty,gte=0"`
	Version           *int     `json:"version" validate:"omitempty,gte=1"`
	IsLocked          *bool    `json:"isLocked"`
}

type ImportRowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

type ImportResult struct {
	Created  int              `json:"created"`
	Updated  int              `json:"updated"`
	Errors   []ImportRowError `json:"errors"`
	Warnings []string         `json:"warnings"`
}

type ExportFormat string

const (
	ExportFormatCSV  ExportFormat = "csv"
	ExportFormatXLSX ExportFormat = "xlsx"
)

type ExportFile struct {
	Filename    string
	ContentType string
	Content     []byte
	Rows        int
}
