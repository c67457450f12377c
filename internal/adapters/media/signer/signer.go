// Package signer resuelve referencias gs://bucket/objeto a URLs HTTP
// reproducibles, firmadas por tiempo limitado con una clave HMAC propia.
// Sin clave opera en modo sin firma (buckets públicos de dev).
package signer

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

var ErrBadURI = errors.New("media uri is not gs://bucket/object")

type Config struct {
	BaseURL string        // default https://storage.googleapis.com
	KeyID   string        // identificador de la clave activa (query kid)
	Key     []byte        // clave HMAC; vacía => modo sin firma
	TTL     time.Duration // vigencia de la firma; default 1h
}

type Signer struct {
	baseURL string
	keyID   string
	key     []byte
	ttl     time.Duration

	now func() time.Time
}

func New(cfg Config) *Signer {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = "https://storage.googleapis.com"
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = time.Hour
	}

	return &Signer{
		baseURL: strings.TrimRight(baseURL, "/"),
		keyID:   strings.TrimSpace(cfg.KeyID),
		key:     cfg.Key,
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *Signer) PlaybackURL(_ context.Context, storageURI string) (string, error) {
	bucket, object, err := splitGSURI(storageURI)
	if err != nil {
		return "", err
	}

	base := s.baseURL + "/" + bucket + "/" + escapeObjectPath(object)
	if len(s.key) == 0 {
		return base, nil
	}

	exp := s.now().Add(s.ttl).Unix()
	q := url.Values{}
	q.Set("exp", strconv.FormatInt(exp, 10))
	if s.keyID != "" {
		q.Set("kid", s.keyID)
	}
	q.Set("sig", s.sign(bucket, object, exp))

	return base + "?" + q.Encode(), nil
}

// sign firma "bucket/objeto\nexp" con HMAC-SHA256. El objeto va SIN
// escapar: el verificador firma sobre el nombre canónico, no sobre la URL.
func (s *Signer) sign(bucket, object string, exp int64) string {
	mac := hmac.New(sha256.New, s.key)
	fmt.Fprintf(mac, "%s/%s\n%d", bucket, object, exp)
	return hex.EncodeToString(mac.Sum(nil))
}

func splitGSURI(uri string) (bucket, object string, err error) {
	rest, ok := strings.CutPrefix(uri, "gs://")
	if !ok {
		return "", "", fmt.Errorf("%w: %q", ErrBadURI, uri)
	}
	bucket, object, ok = strings.Cut(rest, "/")
	if !ok || bucket == "" || object == "" {
		return "", "", fmt.Errorf("%w: %q", ErrBadURI, uri)
	}
	return bucket, object, nil
}

// escapeObjectPath escapa cada segmento del objeto preservando los "/".
// Los videos del catálogo traen espacios en el nombre.
func escapeObjectPath(object string) string {
	segments := strings.Split(object, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return strings.Join(segments, "/")
}
