package backend

import "encoding/json"

type TokenResponse struct {
	AccessToken string `json:"access_token"`
}

// TxResult is what mutating endpoints return. Depending on the action the
// backend fills message, txHash or both.
type TxResult struct {
	Message string `json:"message"`
	TxHash  string `json:"txHash"`
}

// Certificate is the record returned by the verify endpoint. It is owned by
// the backend; the console only displays it.
type Certificate struct {
	ID            string `json:"id"`
	Recipient     string `json:"recipient"`
	Course        string `json:"course"`
	IssueDate     int64  `json:"issueDate"`
	Revoked       bool   `json:"revoked"`
	RecipientHash string `json:"recipientHash"`
	CourseHash    string `json:"courseHash"`
	Signature     string `json:"signature"`
}

// EventsPayload keeps both collections raw. The events package decides
// row by row what is renderable, so decoding here must not reject
// malformed entries.
type EventsPayload struct {
	CertificateEvents json.RawMessage `json:"certificate_events"`
	AdminEvents       json.RawMessage `json:"admin_events"`
}

type IssueRequest struct {
	ID        string `json:"id"`
	Recipient string `json:"recipient"`
	Course    string `json:"course"`
}

type RevokeRequest struct {
	ID string `json:"id"`
}

type AdminRequest struct {
	Address string `json:"address"`
}
