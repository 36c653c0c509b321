// Package upload signs direct browser uploads to the media CDN so artwork
// never passes through this service.
package upload

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/georgemunganga/printa-apparel/internal/apperr"
)

// DefaultFolder receives uploads when none is configured.
const DefaultFolder = "my-print-shop/user_uploads"

var errNotConfigured = errors.New("upload signing is not configured")

// Config holds the CDN account used for signing.
type Config struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
}

// SignedParams is everything the browser needs to upload directly.
type SignedParams struct {
	CloudName string `json:"cloudName"`
	APIKey    string `json:"apiKey"`
	Timestamp int64  `json:"timestamp"`
	Folder    string `json:"folder"`
	Signature string `json:"signature"`
}

// Signer produces signed upload parameters.
type Signer struct {
	cfg Config
	now func() time.Time
}

func NewSigner(cfg Config) *Signer {
	if cfg.Folder == "" {
		cfg.Folder = DefaultFolder
	}
	return &Signer{cfg: cfg, now: time.Now}
}

// Sign returns upload params for folder, which must be the configured folder
// or nested below it. An empty folder means the configured one.
func (s *Signer) Sign(folder string) (*SignedParams, error) {
	if s.cfg.APISecret == "" || s.cfg.CloudName == "" || s.cfg.APIKey == "" {
		return nil, errNotConfigured
	}
	folder, err := s.resolveFolder(folder)
	if err != nil {
		return nil, err
	}
	ts := s.now().Unix()
	params := map[string]string{
		"folder":    folder,
		"timestamp": strconv.FormatInt(ts, 10),
	}
	return &SignedParams{
		CloudName: s.cfg.CloudName,
		APIKey:    s.cfg.APIKey,
		Timestamp: ts,
		Folder:    folder,
		Signature: Signature(params, s.cfg.APISecret),
	}, nil
}

func (s *Signer) resolveFolder(folder string) (string, error) {
	folder = strings.Trim(strings.TrimSpace(folder), "/")
	if folder == "" {
		return s.cfg.Folder, nil
	}
	clean := path.Clean(folder)
	root := strings.Trim(s.cfg.Folder, "/")
	if clean != root && !strings.HasPrefix(clean, root+"/") {
		return "", apperr.Invalid("folder must be within %s", root)
	}
	return clean, nil
}

// Signature is the CDN request signature: the sorted key=value pairs joined
// with '&', followed by the secret, hashed with SHA-1 and hex encoded. Empty
// values are skipped.
func Signature(params map[string]string, secret string) string {
	keys := make([]string, 0, len(params))
	for k, v := range params {
		if v != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(params[k])
	}
	b.WriteString(secret)

	sum := sha1.Sum([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
