package httpclient

import (
	"context"
	"net/http"

	"caslkey/internal/screening/models"
	"caslkey/internal/screening/ports"
	id "caslkey/pkg/domain"
)

const identityCollaborator = "identity"

// IdentityClient implements ports.IdentityService against the identity API.
type IdentityClient struct {
	c *client
}

func NewIdentityClient(baseURL string, opts ...Option) *IdentityClient {
	return &IdentityClient{c: newClient(identityCollaborator, baseURL, opts...)}
}

type identityResponse struct {
	CaslKeyID        string               `json:"casl_key_id"`
	Existing         bool                 `json:"existing"`
	Verified         bool                 `json:"verified"`
	VerificationType string               `json:"verification_type"`
	PlatformData     *models.PlatformData `json:"platform_data"`
}

func (i *IdentityClient) CheckOrCreateIdentity(ctx context.Context, req ports.IdentityRequest) (ports.Identity, error) {
	const op = "check_or_create_identity"
	status, body, err := i.c.roundTrip(ctx, op, http.MethodPost, "/v1/identities/check", req)
	if err != nil {
		return ports.Identity{}, err
	}
	return parseIdentityResponse(status, body)
}

func parseIdentityResponse(status int, body []byte) (ports.Identity, error) {
	const op = "check_or_create_identity"
	if !isSuccess(status) {
		return ports.Identity{}, statusError(identityCollaborator, op, status, body)
	}

	var resp identityResponse
	if err := decode(identityCollaborator, op, body, &resp); err != nil {
		return ports.Identity{}, err
	}
	caslKeyID, err := id.ParseCaslKeyID(resp.CaslKeyID)
	if err != nil {
		return ports.Identity{}, ports.NewTransportError(ports.ErrorBadResponse, identityCollaborator, op, "invalid casl_key_id", err)
	}

	return ports.Identity{
		ID:               caslKeyID,
		Existing:         resp.Existing,
		Verified:         resp.Verified,
		VerificationType: resp.VerificationType,
		PlatformData:     resp.PlatformData,
	}, nil
}
