package dto

// UploadResponse is returned by POST /common/image.
type UploadResponse struct {
	FileName string `json:"fileName"`
}

// SuccessResponse is a generic acknowledgement.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
