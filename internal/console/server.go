package console

import (
	"context"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	log "github.com/sirupsen/logrus"

	"github.com/certchain/admin-console/config"
	"github.com/certchain/admin-console/internal/backend"
	"github.com/certchain/admin-console/internal/session"
)

type Server struct {
	echo     *echo.Echo
	handlers *handlers
}

func NewServer(client *backend.Client, sess *session.Session, cfg config.Config) *Server {
	return &Server{handlers: newHandlers(client, sess, cfg)}
}

func (s *Server) Start(cfg config.ConsoleConf) error {
	log.Infof("console server starting...")

	s.echo = s.makeEcho()

	err := s.echo.Start(fmt.Sprintf("%s:%s", cfg.Host, cfg.Port))
	if err != nil {
		return err
	}
	return nil
}

func (s *Server) Stop() error {
	const shutdownTimeout = time.Second * 10

	ctx, cancelTimeout := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelTimeout()

	if err := s.echo.Shutdown(ctx); err != nil {
		return err
	}
	s.handlers.stop()

	return nil
}

func (s *Server) makeEcho() *echo.Echo {
	e := echo.New()
	e.Use(middleware.Recover())

	e.Validator = &CustomValidator{validator: validator.New()}
	e.Renderer = newRenderer()

	h := s.handlers

	e.GET("/", h.IssuePage)
	e.POST("/issue", h.IssueSubmit)
	e.GET("/revoke", h.RevokePage)
	e.POST("/revoke", h.RevokeSubmit)
	e.GET("/verify", h.VerifyPage)
	e.POST("/verify", h.VerifySubmit)
	e.GET("/events", h.EventsPage)
	e.GET("/admin", h.AdminPage)
	e.POST("/admin/add", h.AdminAdd)
	e.POST("/admin/remove", h.AdminRemove)
	e.GET("/login", h.LoginPage)
	e.POST("/login", h.LoginSubmit)
	e.POST("/logout", h.Logout)
	e.GET("/healthz", h.Health)

	return e
}

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

type renderer struct {
	templates *template.Template
}

func newRenderer() *renderer {
	return &renderer{
		templates: template.Must(template.ParseFS(templatesFS, "templates/*.html")),
	}
}

func (r *renderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	return r.templates.ExecuteTemplate(w, name, data)
}
