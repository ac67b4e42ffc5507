package inbox

import (
	"encoding/base64"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/tranminh/clubhub/internal/app/models"
)

// StagedAttachment is an attachment waiting in the composer. ID is a local
// staging handle only; it never reaches the backend.
type StagedAttachment struct {
	ID         string
	Attachment models.Attachment
}

// composer holds the draft message. Attachments are converted up front into
// the self-contained inline representation the send payload carries, so
// sending involves no separate upload step.
type composer struct {
	content     string
	attachments []StagedAttachment
}

func (c *composer) payload() (string, []models.Attachment) {
	content := strings.TrimSpace(c.content)
	attachments := make([]models.Attachment, 0, len(c.attachments))
	for _, staged := range c.attachments {
		attachments = append(attachments, staged.Attachment)
	}
	return content, attachments
}

func (c *composer) clear() {
	c.content = ""
	c.attachments = nil
}

// SetDraft replaces the composer's text content
func (in *Inbox) SetDraft(content string) {
	in.mu.Lock()
	in.composer.content = content
	in.mu.Unlock()
}

// Draft returns the composer's current text content
func (in *Inbox) Draft() string {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.composer.content
}

// Attach stages raw bytes as an inline attachment and returns its staging id
func (in *Inbox) Attach(name string, data []byte) StagedAttachment {
	staged := StagedAttachment{
		ID: uuid.New().String(),
		Attachment: models.Attachment{
			URL:  dataURL(data),
			Name: name,
			Size: int64(len(data)),
		},
	}

	in.mu.Lock()
	in.composer.attachments = append(in.composer.attachments, staged)
	in.mu.Unlock()
	return staged
}

// AttachFile reads a local file and stages it
func (in *Inbox) AttachFile(path string) (StagedAttachment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return StagedAttachment{}, err
	}
	return in.Attach(filepath.Base(path), data), nil
}

// RemoveAttachment drops a staged attachment by its staging id
func (in *Inbox) RemoveAttachment(id string) {
	in.mu.Lock()
	defer in.mu.Unlock()

	kept := in.composer.attachments[:0]
	for _, staged := range in.composer.attachments {
		if staged.ID != id {
			kept = append(kept, staged)
		}
	}
	in.composer.attachments = kept
}

// Attachments returns the staged attachments in order
func (in *Inbox) Attachments() []StagedAttachment {
	in.mu.Lock()
	defer in.mu.Unlock()

	staged := make([]StagedAttachment, len(in.composer.attachments))
	copy(staged, in.composer.attachments)
	return staged
}

// CanSend reports whether a send would be accepted right now: nothing in
// flight, and either trimmed content or at least one attachment present.
func (in *Inbox) CanSend() bool {
	in.mu.Lock()
	defer in.mu.Unlock()

	if in.sending || in.selected == nil {
		return false
	}
	content, attachments := in.composer.payload()
	return content != "" || len(attachments) > 0
}

// dataURL encodes file bytes the way a browser FileReader would, sniffing
// the media type from the content itself.
func dataURL(data []byte) string {
	mediaType := http.DetectContentType(data)
	if i := strings.Index(mediaType, ";"); i >= 0 {
		mediaType = mediaType[:i]
	}
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
