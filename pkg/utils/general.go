package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"github.com/sirupsen/logrus"

	domainCampaign "github.com/rakibhoossain/whatsapp-bulk-sender/domains/campaign"
)

var unsafeFileChars = regexp.MustCompile(`[^\w.\-]`)

// CreateFolder creates every folder that does not exist yet
func CreateFolder(folderPath ...string) error {
	for _, folder := range folderPath {
		if err := os.MkdirAll(folder, 0o755); err != nil {
			return fmt.Errorf("create folder %s: %w", folder, err)
		}
	}
	return nil
}

// UploadFileName builds a timestamped, filesystem-safe name for an uploaded file
func UploadFileName(original string, now time.Time) string {
	return fmt.Sprintf("%d_%s", now.UnixMilli(), unsafeFileChars.ReplaceAllString(filepath.Base(original), "_"))
}

// LoadMediaFromPath reads an attachment and sniffs its MIME type
func LoadMediaFromPath(path string) (*domainCampaign.Media, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read media %s: %w", path, err)
	}

	mime := mimetype.Detect(data)
	logrus.WithFields(logrus.Fields{
		"path": path,
		"mime": mime.String(),
		"size": humanize.Bytes(uint64(len(data))),
	}).Debug("Campaign: Media loaded")

	return &domainCampaign.Media{
		Path:     path,
		FileName: filepath.Base(path),
		MimeType: mime.String(),
		Data:     data,
	}, nil
}
