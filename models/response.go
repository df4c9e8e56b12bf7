package models

// MessageResponse is the body for errors and for acknowledgements such as deletes.
type MessageResponse struct {
	Message string `json:"message"`
}

// PhotoResponse is returned after a profile photo upload.
type PhotoResponse struct {
	PhotoURL string `json:"photoUrl"`
}

// HealthResponse is returned by the health check.
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}
