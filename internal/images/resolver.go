package images

import (
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/Dante-Schacht/PaginaWeb-sub000/internal/domain"
)

// Resolver turns normalized image references into renderable absolute URLs.
// Resolve is total: it never fails, it degrades to the placeholder.
type Resolver struct {
	origin          string // catalog origin prefixed onto relative paths
	fileServiceBase string // remote file service used for bare file ids
	placeholder     string
	logger          *zap.Logger
}

func NewResolver(origin, fileServiceBase, placeholder string, logger *zap.Logger) *Resolver {
	return &Resolver{
		origin:          strings.TrimRight(origin, "/"),
		fileServiceBase: strings.TrimRight(fileServiceBase, "/"),
		placeholder:     placeholder,
		logger:          logger,
	}
}

// Resolve produces a fully qualified URL for ref, or the placeholder when
// no usable reference exists.
func (r *Resolver) Resolve(ref domain.ImageRef) string {
	if ref.IsZero() {
		return r.placeholder
	}

	switch ref.Kind {
	case domain.ImageURL, domain.ImagePath:
		return r.absolute(ref.Value)
	case domain.ImageFileID:
		// Best effort: constructing a URL from a bare file id relies on the
		// remote file service's path convention and may not hold for every
		// deployment.
		return r.fileServiceBase + "/" + ref.Value + "/view"
	default:
		r.logger.Debug("unusable image reference", zap.Int("kind", int(ref.Kind)))
		return r.placeholder
	}
}

func (r *Resolver) absolute(value string) string {
	if strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://") {
		return value
	}
	if !strings.HasPrefix(value, "/") {
		value = "/" + value
	}
	return r.origin + value
}

// imageObject covers the object shapes the catalog emits. Fields are
// checked in declaration order: url wins over path wins over id.
type imageObject struct {
	URL  string `json:"url"`
	Path string `json:"path"`
	ID   string `json:"id"`
}

// Normalize converts a raw catalog image payload (plain string or object)
// into an ImageRef. It is the single place external image shapes are
// inspected; malformed payloads normalize to the zero reference.
func Normalize(raw json.RawMessage) domain.ImageRef {
	if len(raw) == 0 || string(raw) == "null" {
		return domain.ImageRef{}
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if s == "" {
			return domain.ImageRef{}
		}
		return domain.ImageRef{Kind: domain.ImageURL, Value: s}
	}

	var obj imageObject
	if err := json.Unmarshal(raw, &obj); err != nil {
		return domain.ImageRef{}
	}
	switch {
	case obj.URL != "":
		return domain.ImageRef{Kind: domain.ImageURL, Value: obj.URL}
	case obj.Path != "":
		return domain.ImageRef{Kind: domain.ImagePath, Value: obj.Path}
	case obj.ID != "":
		return domain.ImageRef{Kind: domain.ImageFileID, Value: obj.ID}
	default:
		return domain.ImageRef{}
	}
}

// NormalizeFirst picks the first usable reference out of a single image
// payload and an images array, preferring the single image.
func NormalizeFirst(image json.RawMessage, images []json.RawMessage) domain.ImageRef {
	if ref := Normalize(image); !ref.IsZero() {
		return ref
	}
	for _, raw := range images {
		if ref := Normalize(raw); !ref.IsZero() {
			return ref
		}
	}
	return domain.ImageRef{}
}
