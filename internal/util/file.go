package util

import (
	"errors"
	"net/http"
	"strings"
)

// DetectMimeType 按内容嗅探 MIME 类型，声明的 Content-Type 仅在嗅探失败时兜底
func DetectMimeType(data []byte, declared string) string {
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	mimeType := http.DetectContentType(head)
	if mimeType == "application/octet-stream" && declared != "" {
		return declared
	}
	return mimeType
}

// ValidateMimeType allowedTypes: 允许的 MIME 前缀或完整类型，如 "image/"
func ValidateMimeType(data []byte, declared string, allowedTypes []string) (string, error) {
	mimeType := DetectMimeType(data, declared)

	for _, allowed := range allowedTypes {
		if strings.HasPrefix(mimeType, allowed) || mimeType == allowed {
			return mimeType, nil
		}
	}

	return mimeType, errors.New("invalid file type: " + mimeType)
}
