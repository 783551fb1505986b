package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/maarifahub/maarifa-backend/internal/response"
	"github.com/maarifahub/maarifa-backend/internal/service"
)

// VideoHandler proxies third-party hosted video streams so stream URLs and
// host credentials never reach the client directly.
type VideoHandler struct {
	videoService *service.VideoService
	proxyPath    string
}

// NewVideoHandler creates a new VideoHandler. proxyPath is the public route
// of the segment proxy, used when rewriting playlists.
func NewVideoHandler(videoService *service.VideoService, proxyPath string) *VideoHandler {
	return &VideoHandler{
		videoService: videoService,
		proxyPath:    proxyPath,
	}
}

// Streams godoc
// GET /api/v1/videos/:contentId/streams
// Lists the available renditions for a content ID.
func (h *VideoHandler) Streams(c *gin.Context) {
	streams, err := h.videoService.Resolve(c.Request.Context(), c.Param("contentId"))
	if err != nil {
		failVideo(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"streams": streams})
}

// Playlist godoc
// GET /api/v1/videos/:contentId/playlist?quality=720p
// Returns the M3U playlist of the chosen rendition with every segment URL
// rewritten through the proxy endpoint.
func (h *VideoHandler) Playlist(c *gin.Context) {
	playlist, err := h.videoService.Playlist(
		c.Request.Context(),
		c.Param("contentId"),
		c.Query("quality"),
		h.proxyPath,
	)
	if err != nil {
		failVideo(c, err)
		return
	}

	c.Data(http.StatusOK, "application/vnd.apple.mpegurl", playlist)
}

// Proxy godoc
// GET /api/v1/videos/proxy?src=<escaped upstream URL>
// Streams one playlist segment from the video host back to the player.
func (h *VideoHandler) Proxy(c *gin.Context) {
	body, contentType, err := h.videoService.Proxy(c.Request.Context(), c.Query("src"))
	if err != nil {
		failVideo(c, err)
		return
	}
	defer body.Close()

	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, body)
}

func failVideo(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrVideoDisabled):
		response.Fail(c, http.StatusServiceUnavailable, response.ErrUpstream)
	case errors.Is(err, service.ErrBadProxyTarget):
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
	default:
		response.Fail(c, http.StatusBadGateway, response.ErrUpstream)
	}
}
