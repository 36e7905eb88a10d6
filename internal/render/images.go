package render

import (
	"encoding/base64"
	"net/http"
	"regexp"
	"strings"

	"github.com/synca-ui/builder-quantum-landing-sub001/internal/domain"
)

// DisplayImage is an image reference the page can use directly as src.
type DisplayImage struct {
	Src      string `json:"src"`
	Alt      string `json:"alt,omitempty"`
	Embedded bool   `json:"embedded,omitempty"`
}

var (
	dataURIRe      = regexp.MustCompile(`^data:image/[a-z0-9.+-]+(;[a-z0-9=.+-]+)*(;base64)?,`)
	relativePathRe = regexp.MustCompile(`^[A-Za-z0-9_./-]+\.(png|jpe?g|gif|webp|svg|avif)$`)
)

// NormalizeImage turns a stored image reference into one displayable src.
// Accepted: http(s), protocol-relative and root-relative URLs, relative file
// paths, image data URIs, and bare base64 payloads (sniffed into a data URI).
// ok is false when nothing displayable could be derived.
func NormalizeImage(raw string) (DisplayImage, bool) {
	src := strings.TrimSpace(raw)
	if src == "" {
		return DisplayImage{}, false
	}
	lower := strings.ToLower(src)

	switch {
	case strings.HasPrefix(lower, "data:"):
		if !dataURIRe.MatchString(lower) {
			return DisplayImage{}, false
		}
		return DisplayImage{Src: src, Embedded: true}, true
	case strings.HasPrefix(lower, "https://"), strings.HasPrefix(lower, "http://"):
		return DisplayImage{Src: src}, true
	case strings.HasPrefix(src, "//"), strings.HasPrefix(src, "/"):
		return DisplayImage{Src: src}, true
	case relativePathRe.MatchString(src):
		return DisplayImage{Src: src}, true
	}

	if uri, ok := sniffBase64(src); ok {
		return DisplayImage{Src: uri, Embedded: true}, true
	}
	return DisplayImage{}, false
}

func sniffBase64(s string) (string, bool) {
	payload := strings.Join(strings.Fields(s), "")
	decoded, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		decoded, err = base64.RawStdEncoding.DecodeString(payload)
		if err != nil {
			return "", false
		}
	}
	mime := http.DetectContentType(decoded)
	if !strings.HasPrefix(mime, "image/") {
		head := strings.TrimSpace(string(decoded[:min(len(decoded), 256)]))
		if !strings.Contains(head, "<svg") {
			return "", false
		}
		mime = "image/svg+xml"
	}
	return "data:" + mime + ";base64," + payload, true
}

func displayImage(img *domain.Image) *DisplayImage {
	if img == nil {
		return nil
	}
	d, ok := NormalizeImage(img.Source)
	if !ok {
		return nil
	}
	d.Alt = img.Alt
	return &d
}
