package config

import "time"

type UploadConfig interface {
	GetUploadMaxMemory() int64
	GetUploadChunkSize() int
	GetUploadTimeout() time.Duration
}

type Upload struct{}

var _ UploadConfig = Upload{}

// GetUploadMaxMemory is the multipart form memory limit; larger parts spill to disk.
func (Upload) GetUploadMaxMemory() int64 {
	return GetEnvInt64("UPLOAD_MAX_MEMORY", 32<<20)
}

// GetUploadChunkSize is the resumable upload chunk size in bytes.
func (Upload) GetUploadChunkSize() int {
	return int(GetEnvInt64("UPLOAD_CHUNK_SIZE", 16<<20))
}

func (Upload) GetUploadTimeout() time.Duration {
	return GetEnvDuration("UPLOAD_TIMEOUT", 2*time.Hour)
}
