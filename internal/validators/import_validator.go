package validators

import (
	"encoding/json"
	"strings"

	"shipdesk/internal/models"
)

// ParseImportMetadata decodes the optional metadata form field. A malformed or
// invalid blob never fails the import: the overrides are dropped and the
// problems are returned as warnings.
func ParseImportMetadata(raw string) (*models.ImportMetadata, []string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	var meta models.ImportMetadata
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&meta); err != nil {
		return nil, []string{"metadata ignored: " + err.Error()}
	}

	if errs := ValidateStruct(&meta); len(errs) > 0 {
		warnings := make([]string, 0, len(errs))
		for _, e := range errs {
			warnings = append(warnings, "metadata ignored: "+e.Field+" "+e.Message)
		}
		return nil, warnings
	}

	return &meta, nil
}
