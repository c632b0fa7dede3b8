package models

// RemoteStatus is the status field of submission answers and history rows.
type RemoteStatus string

const (
	RemoteStatusPending    RemoteStatus = "pending"
	RemoteStatusProcessing RemoteStatus = "processing"
	RemoteStatusCompleted  RemoteStatus = "completed"
	RemoteStatusFailed     RemoteStatus = "failed"
)

// Submission is the server's initial description of an accepted upload.
// It covers both POST /convert and POST /compress answers.
type Submission struct {
	ID               string       `json:"id"`
	Status           RemoteStatus `json:"status"`
	OriginalFilename string       `json:"original_filename"`
	SourceFormat     string       `json:"source_format"`
	ErrorMessage     string       `json:"error_message,omitempty"`

	TargetFormat string `json:"target_format,omitempty"`

	OriginalSizeBytes   int64  `json:"original_size_bytes,omitempty"`
	TargetSizeBytes     int64  `json:"target_size_bytes,omitempty"`
	CompressedSizeBytes *int64 `json:"compressed_size_bytes,omitempty"`
}

// ServerPhase is the phase reported on the progress stream.
type ServerPhase string

const (
	ServerPhaseUploadingOriginal ServerPhase = "uploading_original"
	ServerPhaseConverting        ServerPhase = "converting"
	ServerPhaseUploadingResult   ServerPhase = "uploading_result"
	ServerPhaseCompleted         ServerPhase = "completed"
	ServerPhaseFailed            ServerPhase = "failed"
)

// ProgressEvent is one decoded message of GET /progress/{id}.
type ProgressEvent struct {
	Phase    ServerPhase `json:"phase"`
	Progress int         `json:"progress"`
	Message  string      `json:"message"`
	Error    string      `json:"error,omitempty"`
}

// DownloadResponse is the body of the download endpoints.
type DownloadResponse struct {
	DownloadURL string `json:"download_url"`
}

// ConversionResult is one row of GET /conversions.
type ConversionResult struct {
	ID                   string  `json:"id"`
	OriginalFilename     string  `json:"original_filename"`
	SourceFormat         string  `json:"source_format"`
	TargetFormat         string  `json:"target_format"`
	Status               string  `json:"status"`
	ErrorMessage         *string `json:"error_message,omitempty"`
	OriginalStoragePath  *string `json:"original_storage_path,omitempty"`
	ConvertedStoragePath *string `json:"converted_storage_path,omitempty"`
	FileSizeBytes        *int64  `json:"file_size_bytes,omitempty"`
	CreatedAt            *string `json:"created_at,omitempty"`
	UpdatedAt            *string `json:"updated_at,omitempty"`
}

// CompressionResult is one row of GET /compressions.
type CompressionResult struct {
	ID                    string  `json:"id"`
	OriginalFilename      string  `json:"original_filename"`
	SourceFormat          string  `json:"source_format"`
	Status                string  `json:"status"`
	OriginalSizeBytes     int64   `json:"original_size_bytes"`
	TargetSizeBytes       int64   `json:"target_size_bytes"`
	CompressedSizeBytes   *int64  `json:"compressed_size_bytes,omitempty"`
	ErrorMessage          *string `json:"error_message,omitempty"`
	CompressedStoragePath *string `json:"compressed_storage_path,omitempty"`
	CreatedAt             *string `json:"created_at,omitempty"`
	UpdatedAt             *string `json:"updated_at,omitempty"`
}
