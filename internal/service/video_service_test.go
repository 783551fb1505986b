package service

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/maarifahub/maarifa-backend/internal/video"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRewritePlaylistProxiesAbsoluteURIs(t *testing.T) {
	playlist := strings.Join([]string{
		"#EXTM3U",
		"#EXT-X-VERSION:3",
		"#EXTINF:6.0,",
		"https://cdn.example.com/seg/000.ts",
		"#EXTINF:6.0,",
		"http://cdn.example.com/seg/001.ts?token=abc",
		"#EXT-X-ENDLIST",
	}, "\n")

	rewritten, hosts := RewritePlaylist([]byte(playlist), "/api/v1/videos/proxy")
	out := string(rewritten)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")

	assert.Equal(t, "#EXTM3U", lines[0])
	assert.Equal(t, "/api/v1/videos/proxy?src=https%3A%2F%2Fcdn.example.com%2Fseg%2F000.ts", lines[3])
	assert.Equal(t, "/api/v1/videos/proxy?src=http%3A%2F%2Fcdn.example.com%2Fseg%2F001.ts%3Ftoken%3Dabc", lines[5])
	assert.Equal(t, "#EXT-X-ENDLIST", lines[6])
	assert.Equal(t, []string{"cdn.example.com", "cdn.example.com"}, hosts)
}

func TestRewritePlaylistLeavesRelativeURIs(t *testing.T) {
	playlist := "#EXTM3U\n#EXTINF:6.0,\nseg/000.ts\n"

	rewritten, hosts := RewritePlaylist([]byte(playlist), "/api/v1/videos/proxy")
	out := string(rewritten)
	assert.Contains(t, out, "\nseg/000.ts\n")
	assert.NotContains(t, out, "src=")
	assert.Empty(t, hosts)
}

func TestRewritePlaylistSkipsCommentsAndBlanks(t *testing.T) {
	playlist := "#EXT-X-KEY:METHOD=AES-128,URI=\"https://keys.example.com/k1\"\n\n"

	rewritten, hosts := RewritePlaylist([]byte(playlist), "/proxy")
	out := string(rewritten)
	// Tag lines keep their embedded URIs untouched.
	assert.Contains(t, out, "https://keys.example.com/k1")
	assert.NotContains(t, out, "src=")
	assert.Empty(t, hosts)
}

func TestProxyServesConfiguredHost(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "video/mp2t")
		_, _ = w.Write([]byte("segment-bytes"))
	}))
	defer upstream.Close()

	svc := NewVideoService(video.NewClient(upstream.URL, "key"), zerolog.Nop())

	body, contentType, err := svc.Proxy(context.Background(), upstream.URL+"/seg/000.ts")
	require.NoError(t, err)
	defer body.Close()

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "segment-bytes", string(data))
	assert.Equal(t, "video/mp2t", contentType)
}

func TestProxyRejectsForeignOrigin(t *testing.T) {
	internal := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("internal-secret"))
	}))
	defer internal.Close()

	svc := NewVideoService(video.NewClient("http://video-host.example", "key"), zerolog.Nop())

	_, _, err := svc.Proxy(context.Background(), internal.URL+"/latest/meta-data")
	assert.ErrorIs(t, err, ErrBadProxyTarget)
}

func TestProxyRejectsNonHTTPTargets(t *testing.T) {
	svc := NewVideoService(video.NewClient("http://video-host.example", "key"), zerolog.Nop())

	for _, src := range []string{"", "file:///etc/passwd", "ftp://video-host.example/x", "://bad"} {
		_, _, err := svc.Proxy(context.Background(), src)
		assert.ErrorIs(t, err, ErrBadProxyTarget, src)
	}
}

func TestProxyAdmitsHostsFromRewrittenPlaylists(t *testing.T) {
	cdn := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("cdn-segment"))
	}))
	defer cdn.Close()

	svc := NewVideoService(video.NewClient("http://video-host.example", "key"), zerolog.Nop())

	// Before the playlist names the CDN, its host is unknown.
	_, _, err := svc.Proxy(context.Background(), cdn.URL+"/000.ts")
	require.ErrorIs(t, err, ErrBadProxyTarget)

	_, hosts := RewritePlaylist([]byte("#EXTM3U\n"+cdn.URL+"/000.ts\n"), "/proxy")
	for _, h := range hosts {
		svc.allowHost(h)
	}

	body, _, err := svc.Proxy(context.Background(), cdn.URL+"/000.ts")
	require.NoError(t, err)
	defer body.Close()
	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "cdn-segment", string(data))
}
