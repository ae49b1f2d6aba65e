package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/campusconnect/loginflow/internal/verification/entity"
)

// allowedImageMIMEs is the set of profile picture content types the identity
// service accepts.
var allowedImageMIMEs = []string{"image/png", "image/jpg", "image/jpeg", "image/webp"}

// StageAttachment stages a profile picture on the draft. A file that is not an
// accepted image type or exceeds the configured size limit sets the attachment
// field error and keeps whatever was staged before, so a bad pick never
// destroys a good one.
func (f *Flow) StageAttachment(ctx context.Context, att entity.Attachment) {
	_, span := f.uc.startSpan(ctx, "StageAttachment")
	defer span.End()

	maxBytes := f.uc.cfg.GetInt64("modules.verification.max_attachment_bytes")

	f.mu.Lock()

	mime := strings.ToLower(strings.TrimSpace(att.MIME))
	switch {
	case !lo.Contains(allowedImageMIMEs, mime):
		f.fieldErrs[entity.FieldAttachment] = "file must be a png, jpg, jpeg or webp image"
	case att.Size > maxBytes:
		f.fieldErrs[entity.FieldAttachment] = fmt.Sprintf("file must be at most %d MB", maxBytes/(1024*1024))
	default:
		att.MIME = mime
		f.draft.Attachment = &att
		delete(f.fieldErrs, entity.FieldAttachment)
	}

	f.mu.Unlock()
	f.notifyChange()
}

// RemoveAttachment discards the staged profile picture and clears its field
// error.
func (f *Flow) RemoveAttachment(ctx context.Context) {
	_, span := f.uc.startSpan(ctx, "RemoveAttachment")
	defer span.End()

	f.mu.Lock()
	f.draft.Attachment = nil
	delete(f.fieldErrs, entity.FieldAttachment)
	f.mu.Unlock()

	f.notifyChange()
}
