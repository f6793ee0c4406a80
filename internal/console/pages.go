package console

import (
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/certchain/admin-console/internal/backend"
	"github.com/certchain/admin-console/internal/dispatch"
	"github.com/certchain/admin-console/internal/events"
)

type noticeKind string

const (
	noticeSuccess noticeKind = "success"
	noticeError   noticeKind = "error"
)

type notice struct {
	Kind noticeKind
	Text string
}

// certView is the verify result panel, pre-formatted for the template.
type certView struct {
	ID            string
	Recipient     string
	Course        string
	IssueDate     string
	Status        string
	RecipientHash string
	CourseHash    string
	Signature     string
}

type registryLink struct {
	URL   string
	Short string
}

// page is the data every template renders from. Form holds the submitted
// field values so a failed submission keeps what the operator typed.
type page struct {
	Title     string
	Active    string
	LoggedIn  bool
	Notice    *notice
	Form      map[string]string
	Cert      *certView
	CertRows  []events.CertificateRow
	AdminRows []events.AdminRow
	EventsErr string
	Registry  *registryLink
}

func (h *handlers) newPage(title, active string) *page {
	return &page{
		Title:    title,
		Active:   active,
		LoggedIn: h.session.Authenticated(),
		Form:     map[string]string{},
		Registry: h.registryLink(),
	}
}

func (h *handlers) registryLink() *registryLink {
	if h.cfg.RegistryAddress == (common.Address{}) || h.cfg.Explorer.AddressURL == "" {
		return nil
	}
	addr := h.cfg.RegistryAddress.Hex()
	return &registryLink{
		URL:   fmt.Sprintf(h.cfg.Explorer.AddressURL, addr),
		Short: events.Abbreviate(addr, 6, 4),
	}
}

func successNotice(text string) *notice {
	return &notice{Kind: noticeSuccess, Text: text}
}

func errorNotice(text string) *notice {
	return &notice{Kind: noticeError, Text: text}
}

// failureNotice maps an action failure to exactly one user-visible notice:
// the backend's detail message when it sent one, otherwise the per-action
// fallback. A refused double submission gets its own message.
func failureNotice(err error, fallback string) *notice {
	if errors.Is(err, dispatch.ErrBusy) {
		return errorNotice("Another operation is still in progress, please wait")
	}
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return errorNotice(apiErr.Detail)
	}
	return errorNotice(fallback)
}

// txNotice builds the success notice for mutating actions, carrying
// whatever the backend returned.
func txNotice(res *backend.TxResult, fallback string) *notice {
	text := fallback
	if res.Message != "" {
		text = res.Message
	}
	if res.TxHash != "" {
		text = fmt.Sprintf("%s TxHash: %s", text, res.TxHash)
	}
	return successNotice(text)
}

func newCertView(cert *backend.Certificate) *certView {
	v := &certView{
		ID:            cert.ID,
		Recipient:     cert.Recipient,
		Course:        cert.Course,
		IssueDate:     time.Unix(cert.IssueDate, 0).UTC().Format("2006-01-02 15:04:05 MST"),
		Status:        "Valid",
		RecipientHash: cert.RecipientHash,
		CourseHash:    cert.CourseHash,
		Signature:     cert.Signature,
	}
	if cert.Revoked {
		v.Status = "Revoked"
	}
	return v
}
