package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"quoteboard/pkg/dashboard"
	"quoteboard/pkg/logger"
	"quoteboard/pkg/watchlist"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ErrorResponse 错误响应
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// AddRequest 添加自选请求
type AddRequest struct {
	Code string `json:"code" binding:"required"`
}

// Server 看板 Web 服务
type Server struct {
	board    *dashboard.Board
	reload   func()
	metrics  http.Handler
	interval time.Duration
	addr     string
	router   *gin.Engine
	server   *http.Server
	log      *logrus.Entry
}

// Option 服务选项
type Option func(*Server)

// WithReload 自选变更后触发的重新加载
func WithReload(reload func()) Option {
	return func(s *Server) { s.reload = reload }
}

// WithMetrics 挂载 /metrics 处理器
func WithMetrics(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// WithRefreshInterval 页面自动刷新间隔
func WithRefreshInterval(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithAddr 监听地址
func WithAddr(addr string) Option {
	return func(s *Server) {
		if addr != "" {
			s.addr = addr
		}
	}
}

// New 创建 Web 服务并注册路由
func New(board *dashboard.Board, opts ...Option) *Server {
	s := &Server{
		board:    board,
		interval: 10 * time.Second,
		addr:     ":8501",
		log:      logger.WithComponent("WebServer"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() *gin.Engine {
	router := gin.New()

	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(s.corsMiddleware())
	router.SetHTMLTemplate(indexTemplate)

	router.GET("/", s.index)
	router.POST("/watchlist", s.addForm)
	router.POST("/watchlist/remove", s.removeForm)
	router.GET("/health", s.healthCheck)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/quotes", s.getQuotes)
		v1.GET("/watchlist", s.getWatchlist)
		v1.POST("/watchlist", s.addJSON)
		v1.DELETE("/watchlist/:code", s.removeJSON)
	}

	if s.metrics != nil {
		router.GET("/metrics", gin.WrapH(s.metrics))
	}
	return router
}

// Handler 返回路由，供测试使用
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start 在后台启动 HTTP 服务
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	s.log.WithField("addr", s.addr).Info("看板服务启动")

	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.WithError(err).Error("HTTP 服务异常退出")
		}
	}()
	return nil
}

// Stop 优雅关闭
func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown server: %w", err)
	}
	return nil
}

func (s *Server) index(c *gin.Context) {
	data := newPageData(s.board.Snapshot(), s.board.Watchlist().Codes(), s.interval)
	switch level := c.Query("level"); level {
	case "success", "warning":
		data.Flash = c.Query("msg")
		data.FlashLevel = level
	}
	c.HTML(http.StatusOK, "index", data)
}

func (s *Server) addForm(c *gin.Context) {
	msg, err := s.board.Add(strings.TrimSpace(c.PostForm("code")))
	if err != nil {
		s.redirect(c, err.Error(), "warning")
		return
	}
	s.reloadNow()
	s.redirect(c, msg, "success")
}

func (s *Server) removeForm(c *gin.Context) {
	codes := c.PostFormArray("codes")
	if n := s.board.Remove(codes...); n > 0 {
		s.reloadNow()
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) getQuotes(c *gin.Context) {
	c.JSON(http.StatusOK, s.board.Snapshot())
}

func (s *Server) getWatchlist(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"codes": s.board.Watchlist().Codes()})
}

func (s *Server) addJSON(c *gin.Context) {
	var req AddRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "bad_request", Message: err.Error()})
		return
	}

	msg, err := s.board.Add(strings.TrimSpace(req.Code))
	switch {
	case errors.Is(err, watchlist.ErrInvalidCode):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_code", Message: err.Error()})
		return
	case errors.Is(err, watchlist.ErrDuplicate):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "duplicate", Message: err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal", Message: err.Error()})
		return
	}

	s.reloadNow()
	c.JSON(http.StatusCreated, gin.H{"message": msg, "codes": s.board.Watchlist().Codes()})
}

func (s *Server) removeJSON(c *gin.Context) {
	removed := s.board.Remove(c.Param("code"))
	if removed > 0 {
		s.reloadNow()
	}
	c.JSON(http.StatusOK, gin.H{"removed": removed, "codes": s.board.Watchlist().Codes()})
}

func (s *Server) healthCheck(c *gin.Context) {
	snap := s.board.Snapshot()
	status := "healthy"
	if !s.board.ProviderHealthy() {
		status = "degraded"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    status,
		"provider":  s.board.ProviderName(),
		"cycle":     snap.Cycle,
		"session":   snap.Session,
		"timestamp": time.Now().Unix(),
	})
}

func (s *Server) reloadNow() {
	if s.reload != nil {
		s.reload()
	}
}

func (s *Server) redirect(c *gin.Context, msg, level string) {
	q := url.Values{"msg": {msg}, "level": {level}}
	c.Redirect(http.StatusSeeOther, "/?"+q.Encode())
}

func (s *Server) corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
