package model

// Setting is a key/value platform configuration row. Public settings (contact
// details, payment instructions) are served without authentication.
type Setting struct {
	Key      string `json:"key"`
	Value    string `json:"value"`
	IsPublic bool   `json:"is_public"`
}

// UpdateSettingsRequest is the payload for bulk updating settings.
type UpdateSettingsRequest struct {
	Settings map[string]string `json:"settings" binding:"required"`
}
