package api

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"scenario-analysis/web/internal/analysis"
	"scenario-analysis/web/internal/form"
)

//go:embed templates/*.html
var templateFS embed.FS

// Config defines server dependencies.
type Config struct {
	Analysis       analysis.Config
	AllowedOrigins []string
	// Analyzer replaces the HTTP analysis client when set.
	Analyzer analysis.Analyzer
}

// Server wires HTTP handlers to the analysis backend.
type Server struct {
	analyzer       analysis.Analyzer
	endpoint       string
	timeout        time.Duration
	allowedOrigins []string
}

// NewServer constructs the front-end server.
func NewServer(cfg Config) (*Server, error) {
	server := &Server{
		analyzer:       cfg.Analyzer,
		endpoint:       cfg.Analysis.Endpoint,
		timeout:        cfg.Analysis.Timeout,
		allowedOrigins: cfg.AllowedOrigins,
	}

	if server.analyzer == nil {
		client, err := analysis.NewClient(cfg.Analysis)
		if err != nil {
			return nil, fmt.Errorf("analysis client: %w", err)
		}
		server.analyzer = client
		server.endpoint = client.Endpoint()
		server.timeout = client.Timeout()
	}

	logrus.WithFields(logrus.Fields{
		"endpoint": server.endpoint,
		"timeout":  server.timeout,
		"origins":  len(server.allowedOrigins),
	}).Info("analysis backend configured")

	return server, nil
}

// Router configures gin routes.
func (s *Server) Router() (*gin.Engine, error) {
	tmpl, err := template.New("").ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	corsCfg := cors.DefaultConfig()
	if len(s.allowedOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = s.allowedOrigins
	}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	corsCfg.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	// cors.New panics on a config Validate rejects.
	if err := corsCfg.Validate(); err != nil {
		return nil, fmt.Errorf("cors: %w", err)
	}

	r := gin.Default()
	r.SetHTMLTemplate(tmpl)
	r.Use(cors.New(corsCfg))

	r.GET("/", s.handleIndex)
	r.POST("/", s.handleSubmit)
	r.GET("/ws/analyze", s.handleSession)

	api := r.Group("/api")
	{
		api.GET("/healthz", s.handleHealth)
		api.GET("/config", s.handleConfig)
		api.POST("/analyze", s.handleAnalyze)
	}

	return r, nil
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleConfig(c *gin.Context) {
	c.JSON(http.StatusOK, ConfigResponse{
		Endpoint:       s.endpoint,
		TimeoutSeconds: s.timeout.Seconds(),
		AllowedOrigins: s.allowedOrigins,
	})
}

func (s *Server) handleIndex(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", form.View{Phase: form.PhaseIdle})
}

func (s *Server) handleSubmit(c *gin.Context) {
	f := form.New(s.analyzer)
	view, err := f.Submit(c.Request.Context(), c.PostForm("scenario"), c.PostForm("constraints"))
	if err != nil {
		c.HTML(http.StatusBadRequest, "index.html", view)
		return
	}
	c.HTML(http.StatusOK, "index.html", view)
}

// handleAnalyze relays a JSON request body to the analysis backend.
func (s *Server) handleAnalyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.renderError(c, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if strings.TrimSpace(req.Scenario) == "" {
		s.renderError(c, http.StatusBadRequest, form.ErrMissingScenario)
		return
	}
	if req.Constraints == nil {
		req.Constraints = []string{}
	}

	resp, err := s.analyzer.Analyze(c.Request.Context(), analysis.Request{
		Scenario:    req.Scenario,
		Constraints: req.Constraints,
	})
	if err != nil {
		logrus.WithError(err).WithField("constraints", len(req.Constraints)).Error("relay scenario analysis")
		s.renderError(c, http.StatusBadGateway, errors.New(form.GenericError))
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) renderError(c *gin.Context, status int, err error) {
	c.JSON(status, gin.H{"error": err.Error()})
}

func (s *Server) originAllowed(r *http.Request) bool {
	if len(s.allowedOrigins) == 0 {
		return true
	}
	origin := strings.TrimSpace(r.Header.Get("Origin"))
	if origin == "" {
		return true
	}
	for _, allowed := range s.allowedOrigins {
		if strings.EqualFold(origin, allowed) {
			return true
		}
	}
	return false
}
