package service

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"

	"github.com/maarifahub/maarifa-backend/internal/video"
	"github.com/rs/zerolog"
)

// ErrVideoDisabled is returned when no video host is configured.
var ErrVideoDisabled = fmt.Errorf("video host not configured")

// ErrBadProxyTarget is returned for proxy targets that are not absolute
// http(s) URLs on a known video host.
var ErrBadProxyTarget = fmt.Errorf("invalid proxy target")

// VideoService resolves and proxies third-party hosted video streams. The
// proxy only fetches origins the service has itself handed out: the
// configured host plus hosts seen in resolved stream URLs and playlists.
type VideoService struct {
	client *video.Client
	log    zerolog.Logger

	mu    sync.Mutex
	hosts map[string]struct{}
}

// NewVideoService creates a new VideoService.
func NewVideoService(client *video.Client, log zerolog.Logger) *VideoService {
	s := &VideoService{
		client: client,
		log:    log.With().Str("component", "video_service").Logger(),
		hosts:  make(map[string]struct{}),
	}
	if h := client.BaseHost(); h != "" {
		s.hosts[h] = struct{}{}
	}
	return s
}

// Resolve returns the playable stream renditions for a content ID.
func (s *VideoService) Resolve(ctx context.Context, contentID string) ([]video.Stream, error) {
	if !s.client.Enabled() {
		return nil, ErrVideoDisabled
	}
	streams, err := s.client.ResolveStreams(ctx, contentID)
	if err != nil {
		s.log.Warn().Err(err).Str("content_id", contentID).Msg("Stream resolution failed")
		return nil, err
	}
	for _, st := range streams {
		s.allowURL(st.URL)
	}
	return streams, nil
}

// Playlist fetches the playlist of the chosen rendition and rewrites every
// absolute URI in it to pass back through proxyBase, so segment requests
// stay behind the platform's auth gates.
func (s *VideoService) Playlist(ctx context.Context, contentID, quality, proxyBase string) ([]byte, error) {
	streams, err := s.Resolve(ctx, contentID)
	if err != nil {
		return nil, err
	}

	streamURL := streams[0].URL
	for _, st := range streams {
		if st.Quality == quality {
			streamURL = st.URL
			break
		}
	}

	data, err := s.client.FetchPlaylist(ctx, streamURL)
	if err != nil {
		s.log.Warn().Err(err).Str("content_id", contentID).Msg("Playlist fetch failed")
		return nil, err
	}

	rewritten, segmentHosts := RewritePlaylist(data, proxyBase)
	for _, h := range segmentHosts {
		s.allowHost(h)
	}
	return rewritten, nil
}

// Proxy streams an upstream playlist segment back to the caller. Targets
// must be absolute http(s) URLs on a host the service previously resolved,
// so the endpoint cannot be pointed at internal addresses.
func (s *VideoService) Proxy(ctx context.Context, src string) (io.ReadCloser, string, error) {
	if !s.client.Enabled() {
		return nil, "", ErrVideoDisabled
	}
	parsed, err := url.Parse(src)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, "", ErrBadProxyTarget
	}
	if !s.hostAllowed(parsed.Host) {
		s.log.Warn().Str("host", parsed.Host).Msg("Proxy target on unknown host rejected")
		return nil, "", ErrBadProxyTarget
	}
	body, contentType, err := s.client.Fetch(ctx, src)
	if err != nil {
		s.log.Warn().Err(err).Msg("Segment proxy fetch failed")
		return nil, "", err
	}
	return body, contentType, nil
}

func (s *VideoService) allowURL(raw string) {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return
	}
	s.allowHost(u.Host)
}

func (s *VideoService) allowHost(host string) {
	s.mu.Lock()
	s.hosts[host] = struct{}{}
	s.mu.Unlock()
}

func (s *VideoService) hostAllowed(host string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.hosts[host]
	return ok
}

// RewritePlaylist replaces absolute http(s) URI lines in an M3U playlist
// with proxied equivalents (proxyBase?src=<escaped>). Comment/tag lines and
// relative URIs pass through untouched. The second return value lists the
// hosts of the rewritten URIs so callers can admit them for proxying.
func RewritePlaylist(playlist []byte, proxyBase string) ([]byte, []string) {
	var out bytes.Buffer
	var hosts []string
	scanner := bufio.NewScanner(bytes.NewReader(playlist))
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed != "" && !strings.HasPrefix(trimmed, "#") &&
			(strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://")) {
			if u, err := url.Parse(trimmed); err == nil && u.Host != "" {
				hosts = append(hosts, u.Host)
			}
			line = proxyBase + "?src=" + url.QueryEscape(trimmed)
		}
		out.WriteString(line)
		out.WriteByte('\n')
	}
	return out.Bytes(), hosts
}
