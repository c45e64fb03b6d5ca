package whatsapp

import (
	"bytes"
	"strings"

	"github.com/disintegration/imaging"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"google.golang.org/protobuf/proto"

	domainCampaign "github.com/rakibhoossain/whatsapp-bulk-sender/domains/campaign"
)

const thumbnailWidth = 72

// MediaTypeFor maps a MIME type to the upload kind; anything unknown goes as a document
func MediaTypeFor(mimeType string) whatsmeow.MediaType {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return whatsmeow.MediaImage
	case strings.HasPrefix(mimeType, "video/"):
		return whatsmeow.MediaVideo
	case strings.HasPrefix(mimeType, "audio/"):
		return whatsmeow.MediaAudio
	default:
		return whatsmeow.MediaDocument
	}
}

// Thumbnail renders a small JPEG preview of an image
func Thumbnail(data []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	thumb := imaging.Resize(img, thumbnailWidth, 0, imaging.Lanczos)
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(70)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildMediaMessage wraps an uploaded attachment in the message kind matching its MIME type.
// Audio messages carry no caption.
func BuildMediaMessage(media *domainCampaign.Media, caption string, up whatsmeow.UploadResponse, thumbnail []byte) *waE2E.Message {
	switch MediaTypeFor(media.MimeType) {
	case whatsmeow.MediaImage:
		return &waE2E.Message{ImageMessage: &waE2E.ImageMessage{
			URL:           proto.String(up.URL),
			DirectPath:    proto.String(up.DirectPath),
			Mimetype:      proto.String(media.MimeType),
			Caption:       proto.String(caption),
			FileLength:    proto.Uint64(up.FileLength),
			FileSHA256:    up.FileSHA256,
			FileEncSHA256: up.FileEncSHA256,
			MediaKey:      up.MediaKey,
			JPEGThumbnail: thumbnail,
		}}
	case whatsmeow.MediaVideo:
		return &waE2E.Message{VideoMessage: &waE2E.VideoMessage{
			URL:           proto.String(up.URL),
			DirectPath:    proto.String(up.DirectPath),
			Mimetype:      proto.String(media.MimeType),
			Caption:       proto.String(caption),
			FileLength:    proto.Uint64(up.FileLength),
			FileSHA256:    up.FileSHA256,
			FileEncSHA256: up.FileEncSHA256,
			MediaKey:      up.MediaKey,
		}}
	case whatsmeow.MediaAudio:
		return &waE2E.Message{AudioMessage: &waE2E.AudioMessage{
			URL:           proto.String(up.URL),
			DirectPath:    proto.String(up.DirectPath),
			Mimetype:      proto.String(media.MimeType),
			FileLength:    proto.Uint64(up.FileLength),
			FileSHA256:    up.FileSHA256,
			FileEncSHA256: up.FileEncSHA256,
			MediaKey:      up.MediaKey,
		}}
	default:
		return &waE2E.Message{DocumentMessage: &waE2E.DocumentMessage{
			URL:           proto.String(up.URL),
			DirectPath:    proto.String(up.DirectPath),
			Mimetype:      proto.String(media.MimeType),
			Title:         proto.String(media.FileName),
			FileName:      proto.String(media.FileName),
			Caption:       proto.String(caption),
			FileLength:    proto.Uint64(up.FileLength),
			FileSHA256:    up.FileSHA256,
			FileEncSHA256: up.FileEncSHA256,
			MediaKey:      up.MediaKey,
		}}
	}
}
