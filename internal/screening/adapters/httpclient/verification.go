package httpclient

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"caslkey/internal/screening/models"
	"caslkey/internal/screening/ports"
	id "caslkey/pkg/domain"
)

const verificationCollaborator = "verification"

// VerificationClient implements ports.VerificationService against the
// verification vendor API.
type VerificationClient struct {
	c   *client
	now func() time.Time
}

func NewVerificationClient(baseURL string, opts ...Option) *VerificationClient {
	return &VerificationClient{
		c:   newClient(verificationCollaborator, baseURL, opts...),
		now: time.Now,
	}
}

type artifactRequest struct {
	CaslKeyID string `json:"casl_key_id"`
	ports.ArtifactPayload
}

type ticketResponse struct {
	Status      string `json:"status"`
	Reference   string `json:"reference"`
	SubmittedAt string `json:"submitted_at"`
}

type statusResponse struct {
	Status       string               `json:"status"`
	CheckedAt    string               `json:"checked_at"`
	PlatformData *models.PlatformData `json:"platform_data"`
}

func (v *VerificationClient) SubmitArtifact(ctx context.Context, method id.VerificationMethod, payload ports.ArtifactPayload, caslKeyID id.CaslKeyID) (ports.Ticket, error) {
	const op = "submit_artifact"
	path := "/v1/verifications/" + url.PathEscape(method.String())
	status, body, err := v.c.roundTrip(ctx, op, http.MethodPost, path, artifactRequest{
		CaslKeyID:       caslKeyID.String(),
		ArtifactPayload: payload,
	})
	if err != nil {
		return ports.Ticket{}, err
	}
	return parseTicketResponse(method, status, body, v.now)
}

func (v *VerificationClient) GetStatus(ctx context.Context, method id.VerificationMethod, caslKeyID id.CaslKeyID) (ports.StatusReport, error) {
	const op = "get_status"
	path := "/v1/verifications/" + url.PathEscape(method.String()) + "/" + url.PathEscape(caslKeyID.String())
	status, body, err := v.c.roundTrip(ctx, op, http.MethodGet, path, nil)
	if err != nil {
		return ports.StatusReport{}, err
	}
	return parseStatusResponse(method, status, body, v.now)
}

func parseTicketResponse(method id.VerificationMethod, status int, body []byte, now func() time.Time) (ports.Ticket, error) {
	const op = "submit_artifact"
	if !isSuccess(status) {
		return ports.Ticket{}, statusError(verificationCollaborator, op, status, body)
	}

	var resp ticketResponse
	if err := decode(verificationCollaborator, op, body, &resp); err != nil {
		return ports.Ticket{}, err
	}
	st := models.StatusProcessing
	if resp.Status != "" {
		parsed, err := models.ParseVerificationStatus(resp.Status)
		if err != nil {
			return ports.Ticket{}, ports.NewTransportError(ports.ErrorBadResponse, verificationCollaborator, op, "unknown status", err)
		}
		st = parsed
	}

	return ports.Ticket{
		Method:      method,
		Status:      st,
		Reference:   resp.Reference,
		SubmittedAt: parseTime(resp.SubmittedAt, now),
	}, nil
}

func parseStatusResponse(method id.VerificationMethod, status int, body []byte, now func() time.Time) (ports.StatusReport, error) {
	const op = "get_status"
	if !isSuccess(status) {
		return ports.StatusReport{}, statusError(verificationCollaborator, op, status, body)
	}

	var resp statusResponse
	if err := decode(verificationCollaborator, op, body, &resp); err != nil {
		return ports.StatusReport{}, err
	}
	st, err := models.ParseVerificationStatus(resp.Status)
	if err != nil {
		return ports.StatusReport{}, ports.NewTransportError(ports.ErrorBadResponse, verificationCollaborator, op, "unknown status", err)
	}

	report := ports.StatusReport{
		Method:    method,
		Status:    st,
		CheckedAt: parseTime(resp.CheckedAt, now),
	}
	if st == models.StatusVerified && method == id.MethodSocial {
		report.Detail = resp.PlatformData
	}
	return report, nil
}
