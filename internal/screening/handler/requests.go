package handler

import (
	"strings"

	"caslkey/internal/screening/models"
	"caslkey/internal/screening/ports"
	id "caslkey/pkg/domain"
	dErrors "caslkey/pkg/domain-errors"
	strutil "caslkey/pkg/platform/strings"
)

const (
	maxLinks       = 10
	maxMetadata    = 20
	maxFieldLength = 64
)

// UpdateFieldRequest is the body of PATCH /sessions/{id}/fields.
type UpdateFieldRequest struct {
	Field string `json:"field"`
	Value any    `json:"value"`

	parsedField models.Field
}

// Validate checks the field name. Value shape is checked by the workflow so
// a bad value becomes a field error instead of a rejected request.
func (r *UpdateFieldRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Field = strings.TrimSpace(r.Field)
	if r.Field == "" {
		return dErrors.New(dErrors.CodeBadRequest, "field is required")
	}
	if len(r.Field) > maxFieldLength {
		return dErrors.New(dErrors.CodeBadRequest, "field name too long")
	}
	field := models.Field(r.Field)
	if !field.IsKnown() {
		return dErrors.New(dErrors.CodeBadRequest, "unknown field: "+r.Field)
	}
	r.parsedField = field
	return nil
}

// ArtifactRequest is the body of POST /sessions/{id}/artifacts.
type ArtifactRequest struct {
	Method    string            `json:"method"`
	Reference string            `json:"reference,omitempty"`
	Links     []string          `json:"links,omitempty"`
	Consent   bool              `json:"consent,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`

	parsedMethod id.VerificationMethod
}

func (r *ArtifactRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.Links) > maxLinks {
		return dErrors.New(dErrors.CodeBadRequest, "too many links")
	}
	if len(r.Metadata) > maxMetadata {
		return dErrors.New(dErrors.CodeBadRequest, "too many metadata entries")
	}
	method, err := id.ParseVerificationMethod(strings.TrimSpace(r.Method))
	if err != nil {
		return dErrors.New(dErrors.CodeBadRequest, "unsupported verification method")
	}
	r.parsedMethod = method
	return nil
}

func (r *ArtifactRequest) Payload() ports.ArtifactPayload {
	return ports.ArtifactPayload{
		Reference: strings.TrimSpace(r.Reference),
		Links:     strutil.DedupeAndTrim(r.Links),
		Consent:   r.Consent,
		Metadata:  r.Metadata,
	}
}
