package server

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	interr "ghpool-go/internal/errors"
	"ghpool-go/internal/github"
	"ghpool-go/internal/logging"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

const relayBodyLimit = 1 << 20

func (s *Server) registerRoutes() {
	s.engine.GET("/healthz", s.handleHealth)
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	auth := RequireAuth(NewAuthConfig(s.cfg))
	v1 := s.engine.Group("/v1", auth)
	{
		v1.GET("/pool", s.handlePoolStatus)
		v1.POST("/pool/probe", s.handlePoolProbe)
		v1.POST("/repos/:owner/:repo/statuses/:sha", s.handleCreateStatus)
		v1.POST("/repos/:owner/:repo/issues/:number/comments", s.handleCreateComment)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handlePoolStatus reports the usage snapshot plus the active token.
func (s *Server) handlePoolStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"active_token": s.client.Ring().Current().Masked(),
		"pool_size":    s.client.Ring().Len(),
		"usage":        s.tracker.Snapshot(),
	})
}

// handlePoolProbe probes every token's remaining quota on demand.
func (s *Server) handlePoolProbe(c *gin.Context) {
	type probeResult struct {
		Token     string `json:"token"`
		Remaining int    `json:"remaining,omitempty"`
		Error     string `json:"error,omitempty"`
	}

	results := make([]probeResult, 0, s.client.Ring().Len())
	for _, token := range s.client.Ring().All() {
		remaining, err := s.client.ProbeRateLimit(c.Request.Context(), token)
		r := probeResult{Token: token.Masked()}
		if err != nil {
			r.Error = err.Error()
		} else {
			r.Remaining = remaining
		}
		results = append(results, r)
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

type statusRequest struct {
	State       string `json:"state" binding:"required"`
	TargetURL   string `json:"target_url"`
	Description string `json:"description"`
	Context     string `json:"context"`
}

func (s *Server) handleCreateStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := s.client.CreateStatus(c.Request.Context(),
		c.Param("owner"), c.Param("repo"), c.Param("sha"),
		github.Status{
			State:       req.State,
			TargetURL:   req.TargetURL,
			Description: req.Description,
			Context:     req.Context,
		})
	s.relay(c, resp, err)
}

type commentRequest struct {
	Body string `json:"body" binding:"required"`
}

func (s *Server) handleCreateComment(c *gin.Context) {
	number, err := strconv.Atoi(c.Param("number"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "issue number must be an integer"})
		return
	}

	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := s.client.CreateComment(c.Request.Context(),
		c.Param("owner"), c.Param("repo"), number, req.Body)
	s.relay(c, resp, err)
}

// relay passes the upstream status and body through. Invalid input surfaces
// as 400; transport failures as 502.
func (s *Server) relay(c *gin.Context, resp *http.Response, err error) {
	if err != nil {
		var reqErr *interr.RequestError
		if errors.As(err, &reqErr) {
			logging.WithReq(c, log.Fields{"error": err.Error(), "kind": string(reqErr.Kind)}).
				Warn("relay request failed")
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	body, readErr := io.ReadAll(io.LimitReader(resp.Body, relayBodyLimit))
	if readErr != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": readErr.Error()})
		return
	}
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/json"
	}
	c.Data(resp.StatusCode, contentType, body)
}
