package console

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"github.com/certchain/admin-console/config"
	"github.com/certchain/admin-console/internal/backend"
	"github.com/certchain/admin-console/internal/dispatch"
	"github.com/certchain/admin-console/internal/events"
	"github.com/certchain/admin-console/internal/session"
)

const loginFirstMsg = "Please log in first"

type issueForm struct {
	ID        string `form:"id" validate:"required"`
	Recipient string `form:"recipient" validate:"required"`
	Course    string `form:"course" validate:"required"`
}

type revokeForm struct {
	ID string `form:"id" validate:"required"`
}

type verifyForm struct {
	ID string `form:"id" validate:"required"`
}

type adminForm struct {
	Address string `form:"address" validate:"required"`
}

type loginForm struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}

type handlers struct {
	backend *backend.Client
	session *session.Session
	cfg     config.Config

	// One runner per view: a view never has two backend calls in flight.
	runners map[string]*dispatch.Runner
}

func newHandlers(client *backend.Client, sess *session.Session, cfg config.Config) *handlers {
	runners := make(map[string]*dispatch.Runner)
	for _, view := range []string{"issue", "revoke", "verify", "admin", "login", "events"} {
		runners[view] = dispatch.NewRunner()
	}
	return &handlers{
		backend: client,
		session: sess,
		cfg:     cfg,
		runners: runners,
	}
}

func (h *handlers) stop() {
	for _, r := range h.runners {
		r.Stop()
	}
}

// requireAuth refuses the submission before any network call when the
// session has no token.
func (h *handlers) requireAuth(p *page) (string, bool) {
	token := h.session.Token()
	if token == "" {
		p.Notice = errorNotice(loginFirstMsg)
		return "", false
	}
	return token, true
}

func (h *handlers) IssuePage(c echo.Context) error {
	return c.Render(http.StatusOK, "issue.html", h.newPage("Issue Certificate", "issue"))
}

func (h *handlers) IssueSubmit(c echo.Context) error {
	p := h.newPage("Issue Certificate", "issue")

	var form issueForm
	if err := c.Bind(&form); err != nil {
		log.WithError(err).Error("bind issue form")
		p.Notice = errorNotice("Invalid form submission")
		return c.Render(http.StatusOK, "issue.html", p)
	}
	p.Form = map[string]string{"id": form.ID, "recipient": form.Recipient, "course": form.Course}

	if err := c.Validate(form); err != nil {
		p.Notice = errorNotice("All fields are required")
		return c.Render(http.StatusOK, "issue.html", p)
	}

	token, ok := h.requireAuth(p)
	if !ok {
		return c.Render(http.StatusOK, "issue.html", p)
	}

	var res *backend.TxResult
	err := h.runners["issue"].Do(c.Request().Context(), func(ctx context.Context) error {
		r, err := h.backend.IssueCertificate(ctx, token, backend.IssueRequest{
			ID:        form.ID,
			Recipient: form.Recipient,
			Course:    form.Course,
		})
		res = r
		return err
	})
	if err != nil {
		log.WithError(err).WithField("id", form.ID).Error("issue certificate")
		p.Notice = failureNotice(err, "Failed to issue certificate")
		return c.Render(http.StatusOK, "issue.html", p)
	}

	log.WithField("id", form.ID).WithField("txHash", res.TxHash).Info("certificate issued")
	p.Form = map[string]string{}
	p.Notice = txNotice(res, "Certificate issued successfully!")
	return c.Render(http.StatusOK, "issue.html", p)
}

func (h *handlers) RevokePage(c echo.Context) error {
	return c.Render(http.StatusOK, "revoke.html", h.newPage("Revoke Certificate", "revoke"))
}

func (h *handlers) RevokeSubmit(c echo.Context) error {
	p := h.newPage("Revoke Certificate", "revoke")

	var form revokeForm
	if err := c.Bind(&form); err != nil {
		log.WithError(err).Error("bind revoke form")
		p.Notice = errorNotice("Invalid form submission")
		return c.Render(http.StatusOK, "revoke.html", p)
	}
	p.Form = map[string]string{"id": form.ID}

	if err := c.Validate(form); err != nil {
		p.Notice = errorNotice("All fields are required")
		return c.Render(http.StatusOK, "revoke.html", p)
	}

	token, ok := h.requireAuth(p)
	if !ok {
		return c.Render(http.StatusOK, "revoke.html", p)
	}

	var res *backend.TxResult
	err := h.runners["revoke"].Do(c.Request().Context(), func(ctx context.Context) error {
		r, err := h.backend.RevokeCertificate(ctx, token, form.ID)
		res = r
		return err
	})
	if err != nil {
		log.WithError(err).WithField("id", form.ID).Error("revoke certificate")
		p.Notice = failureNotice(err, "Failed to revoke certificate")
		return c.Render(http.StatusOK, "revoke.html", p)
	}

	log.WithField("id", form.ID).WithField("txHash", res.TxHash).Info("certificate revoked")
	p.Form = map[string]string{}
	p.Notice = txNotice(res, "Certificate revoked successfully!")
	return c.Render(http.StatusOK, "revoke.html", p)
}

func (h *handlers) VerifyPage(c echo.Context) error {
	return c.Render(http.StatusOK, "verify.html", h.newPage("Verify Certificate", "verify"))
}

// VerifySubmit needs no session: verification is public. On success the
// result panel is populated; on failure any previous panel is gone because
// the page is rendered fresh without a certificate.
func (h *handlers) VerifySubmit(c echo.Context) error {
	p := h.newPage("Verify Certificate", "verify")

	var form verifyForm
	if err := c.Bind(&form); err != nil {
		log.WithError(err).Error("bind verify form")
		p.Notice = errorNotice("Invalid form submission")
		return c.Render(http.StatusOK, "verify.html", p)
	}
	p.Form = map[string]string{"id": form.ID}

	if err := c.Validate(form); err != nil {
		p.Notice = errorNotice("All fields are required")
		return c.Render(http.StatusOK, "verify.html", p)
	}

	var cert *backend.Certificate
	err := h.runners["verify"].Do(c.Request().Context(), func(ctx context.Context) error {
		r, err := h.backend.VerifyCertificate(ctx, form.ID)
		cert = r
		return err
	})
	if err != nil {
		log.WithError(err).WithField("id", form.ID).Error("verify certificate")
		p.Notice = failureNotice(err, "Failed to look up certificate")
		return c.Render(http.StatusOK, "verify.html", p)
	}

	p.Cert = newCertView(cert)
	p.Notice = successNotice("Certificate found")
	return c.Render(http.StatusOK, "verify.html", p)
}

// EventsPage fetches both event collections once per activation. Malformed
// data degrades to placeholders or dropped rows; only a non-array
// admin_events collection is treated as a structural error.
func (h *handlers) EventsPage(c echo.Context) error {
	p := h.newPage("Events", "events")

	var payload *backend.EventsPayload
	err := h.runners["events"].Do(c.Request().Context(), func(ctx context.Context) error {
		r, err := h.backend.Events(ctx)
		payload = r
		return err
	})
	if err != nil {
		log.WithError(err).Error("load events")
		p.EventsErr = failureNotice(err, "Failed to load events").Text
		return c.Render(http.StatusOK, "events.html", p)
	}

	adminRows, err := events.ParseAdminRows(payload.AdminEvents, h.cfg.Explorer.TxURL)
	if err != nil {
		log.WithError(err).Error("parse admin events")
		p.EventsErr = "Admin events from the backend are malformed"
		return c.Render(http.StatusOK, "events.html", p)
	}

	p.CertRows = events.ParseCertificateRows(payload.CertificateEvents)
	p.AdminRows = adminRows
	return c.Render(http.StatusOK, "events.html", p)
}

func (h *handlers) AdminPage(c echo.Context) error {
	return c.Render(http.StatusOK, "admin.html", h.newPage("Admin Management", "admin"))
}

func (h *handlers) AdminAdd(c echo.Context) error {
	return h.adminSubmit(c, h.backend.AddAdmin, "Admin added successfully!", "Failed to add admin", "admin added")
}

func (h *handlers) AdminRemove(c echo.Context) error {
	return h.adminSubmit(c, h.backend.RemoveAdmin, "Admin removed successfully!", "Failed to remove admin", "admin removed")
}

type adminCall func(ctx context.Context, token, address string) (*backend.TxResult, error)

func (h *handlers) adminSubmit(c echo.Context, call adminCall, success, fallback, logMsg string) error {
	p := h.newPage("Admin Management", "admin")

	var form adminForm
	if err := c.Bind(&form); err != nil {
		log.WithError(err).Error("bind admin form")
		p.Notice = errorNotice("Invalid form submission")
		return c.Render(http.StatusOK, "admin.html", p)
	}
	p.Form = map[string]string{"address": form.Address}

	if err := c.Validate(form); err != nil {
		p.Notice = errorNotice("All fields are required")
		return c.Render(http.StatusOK, "admin.html", p)
	}

	token, ok := h.requireAuth(p)
	if !ok {
		return c.Render(http.StatusOK, "admin.html", p)
	}

	var res *backend.TxResult
	err := h.runners["admin"].Do(c.Request().Context(), func(ctx context.Context) error {
		r, err := call(ctx, token, form.Address)
		res = r
		return err
	})
	if err != nil {
		log.WithError(err).WithField("address", form.Address).Error(logMsg)
		p.Notice = failureNotice(err, fallback)
		return c.Render(http.StatusOK, "admin.html", p)
	}

	log.WithField("address", form.Address).WithField("txHash", res.TxHash).Info(logMsg)
	p.Form = map[string]string{}
	p.Notice = txNotice(res, success)
	return c.Render(http.StatusOK, "admin.html", p)
}

func (h *handlers) LoginPage(c echo.Context) error {
	return c.Render(http.StatusOK, "login.html", h.newPage("Log in", "login"))
}

func (h *handlers) LoginSubmit(c echo.Context) error {
	p := h.newPage("Log in", "login")

	var form loginForm
	if err := c.Bind(&form); err != nil {
		log.WithError(err).Error("bind login form")
		p.Notice = errorNotice("Invalid form submission")
		return c.Render(http.StatusOK, "login.html", p)
	}
	// The password is deliberately never echoed back into the page.
	p.Form = map[string]string{"username": form.Username}

	if err := c.Validate(form); err != nil {
		p.Notice = errorNotice("All fields are required")
		return c.Render(http.StatusOK, "login.html", p)
	}

	var token string
	err := h.runners["login"].Do(c.Request().Context(), func(ctx context.Context) error {
		t, err := h.backend.Login(ctx, form.Username, form.Password)
		token = t
		return err
	})
	if err != nil {
		log.WithError(err).WithField("username", form.Username).Error("login")
		p.Notice = failureNotice(err, "Login failed")
		return c.Render(http.StatusOK, "login.html", p)
	}

	if err := h.session.Login(token); err != nil {
		log.WithError(err).Error("persist session")
		p.Notice = errorNotice("Logged in, but saving the session failed")
		return c.Render(http.StatusOK, "login.html", p)
	}

	log.WithField("username", form.Username).Info("logged in")
	p.LoggedIn = true
	p.Form = map[string]string{}
	p.Notice = successNotice("Logged in successfully!")
	return c.Render(http.StatusOK, "login.html", p)
}

func (h *handlers) Logout(c echo.Context) error {
	if err := h.session.Logout(); err != nil {
		log.WithError(err).Error("logout")
	}

	p := h.newPage("Log in", "login")
	p.LoggedIn = false
	p.Notice = successNotice("Logged out successfully!")
	return c.Render(http.StatusOK, "login.html", p)
}

func (h *handlers) Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}
