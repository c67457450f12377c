package scenarios

import (
	"context"
	"errors"
	"strings"
	"testing"

	"paw-guardian/internal/platform/logger"
)

type stubResolver struct {
	err  error
	seen []string
}

func (r *stubResolver) PlaybackURL(_ context.Context, uri string) (string, error) {
	r.seen = append(r.seen, uri)
	if r.err != nil {
		return "", r.err
	}
	return "https://media.test/" + uri, nil
}

func TestService_List_ResolvesPlaybackURLs(t *testing.T) {
	res := &stubResolver{}
	svc := NewService("paw-guardian-tokyo", res, logger.Nop())

	items := svc.List(context.Background())
	if len(items) != 4 {
		t.Fatalf("expected 4 preset scenarios, got %d", len(items))
	}
	for _, it := range items {
		if !strings.HasPrefix(it.VideoURI, "gs://paw-guardian-tokyo/") {
			t.Fatalf("expected bucket in uri, got %s", it.VideoURI)
		}
		if it.PlaybackURL == "" {
			t.Fatalf("expected playback url for %s", it.ID)
		}
	}
	if len(res.seen) != 4 {
		t.Fatalf("expected resolver called per scenario, got %d", len(res.seen))
	}
}

func TestService_List_DegradesWhenSigningFails(t *testing.T) {
	res := &stubResolver{err: errors.New("signing down")}
	svc := NewService("b", res, logger.Nop())

	items := svc.List(context.Background())
	if len(items) != 4 {
		t.Fatalf("expected full catalog even on failure, got %d", len(items))
	}
	for _, it := range items {
		if it.PlaybackURL != "" {
			t.Fatalf("expected empty playback url on failure, got %s", it.PlaybackURL)
		}
	}
}

func TestService_Get(t *testing.T) {
	svc := NewService("b", &stubResolver{}, logger.Nop())

	sc, err := svc.Get(context.Background(), "high_anxiety")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if sc.VideoURI != "gs://b/High Anxiety.mp4" {
		t.Fatalf("unexpected uri %s", sc.VideoURI)
	}

	if _, err := svc.Get(context.Background(), "nope"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
