package utils

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"
)

// FileValidator checks an upload's size and sniffed content type against a
// MIME prefix such as "video/" or "image/".
type FileValidator struct {
	mimePrefix string
	maxSize    int64
}

func NewFileValidator(mimePrefix string, maxSizeMB int) *FileValidator {
	if maxSizeMB <= 0 {
		maxSizeMB = 5
	}
	return &FileValidator{
		mimePrefix: strings.ToLower(mimePrefix),
		maxSize:    int64(maxSizeMB) << 20,
	}
}

// ValidateFile returns the detected content type. The declared multipart
// Content-Type is trusted only when sniffing gives no answer.
func (v *FileValidator) ValidateFile(fileHeader *multipart.FileHeader) (string, error) {
	if fileHeader == nil {
		return "", fmt.Errorf("file is required")
	}
	if fileHeader.Size > v.maxSize {
		return "", fmt.Errorf("file too large (max %d MB)", v.maxSize>>20)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", err
	}
	defer file.Close()

	buffer := make([]byte, 512)
	n, err := file.Read(buffer)
	if err != nil && n == 0 {
		return "", fmt.Errorf("failed to read file header")
	}

	detected := strings.ToLower(http.DetectContentType(buffer[:n]))
	if detected == "application/octet-stream" {
		if declared := strings.ToLower(fileHeader.Header.Get("Content-Type")); declared != "" {
			detected = declared
		}
	}
	if i := strings.Index(detected, ";"); i >= 0 {
		detected = strings.TrimSpace(detected[:i])
	}
	if !strings.HasPrefix(detected, v.mimePrefix) {
		return "", fmt.Errorf("invalid file type %q, expected %s*", detected, v.mimePrefix)
	}

	return detected, nil
}
