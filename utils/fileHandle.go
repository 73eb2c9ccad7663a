package utils

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// MaxAttachmentSize caps a single uploaded attachment.
const MaxAttachmentSize = 20 << 20

var allowedAttachmentExt = map[string]bool{
	".pdf": true, ".doc": true, ".docx": true, ".ppt": true, ".pptx": true,
	".xls": true, ".xlsx": true, ".png": true, ".jpg": true, ".jpeg": true,
	".txt": true, ".md": true, ".zip": true,
}

// SaveUploadedFile stores file under destDir with a random name and returns
// the stored file name.
func SaveUploadedFile(file *multipart.FileHeader, destDir string) (string, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedAttachmentExt[ext] {
		return "", fmt.Errorf("file type %q is not allowed", ext)
	}
	if file.Size > MaxAttachmentSize {
		return "", fmt.Errorf("file exceeds %d bytes", MaxAttachmentSize)
	}

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", err
	}

	name := uuid.NewString() + ext
	dst, err := os.Create(filepath.Join(destDir, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}
	return name, nil
}

func GetFileURL(name string) string {
	if name == "" {
		return ""
	}
	return "/uploads/" + name
}
