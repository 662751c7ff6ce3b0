package handler_test

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"caslkey/internal/screening/handler"
	"caslkey/internal/screening/handler/mocks"
	"caslkey/internal/screening/models"
	"caslkey/internal/screening/ports"
	"caslkey/internal/screening/service"
	"caslkey/internal/screening/session"
	"caslkey/internal/screening/workflow"
	id "caslkey/pkg/domain"
	dErrors "caslkey/pkg/domain-errors"
	audit "caslkey/pkg/platform/audit"
	"caslkey/pkg/testutil"
)

type HandlerSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	service   *mocks.MockService
	workflow  *mocks.MockWorkflow
	security  *mocks.MockSecurityEmitter
	tokens    *session.TokenService
	router    chi.Router
	sessionID id.SessionID
	token     string
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.service = mocks.NewMockService(s.ctrl)
	s.workflow = mocks.NewMockWorkflow(s.ctrl)
	s.security = mocks.NewMockSecurityEmitter(s.ctrl)
	s.tokens = session.NewTokenService("handler-test-key", "caslkey", "guests", time.Hour)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := handler.New(s.service, s.tokens, s.security, logger)
	s.router = chi.NewRouter()
	h.Register(s.router)

	s.sessionID = id.NewSessionID()
	token, _, err := s.tokens.Issue(s.sessionID, "desktop")
	s.Require().NoError(err)
	s.token = token
}

func (s *HandlerSuite) path(suffix string) string {
	return "/sessions/" + s.sessionID.String() + suffix
}

func (s *HandlerSuite) expectWorkflow() {
	s.service.EXPECT().Workflow(gomock.Any(), s.sessionID).Return(s.workflow, nil)
}

func (s *HandlerSuite) TestStartNewSession() {
	s.service.EXPECT().Start(gomock.Any(), (*id.SessionID)(nil)).Return(&service.Started{
		SessionID: s.sessionID,
		Token:     "tok",
		ExpiresAt: time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC),
		View:      workflow.View{SessionID: s.sessionID},
	}, nil)

	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodPost, "/sessions"))

	testutil.AssertStatus(s.T(), rr, http.StatusCreated)
	resp := testutil.UnmarshalResponse[handler.StartResponse](s.T(), rr)
	s.Equal(s.sessionID.String(), resp.SessionID)
	s.Equal("tok", resp.Token)
	s.False(resp.Resumed)
}

func (s *HandlerSuite) TestStartResumesTokenSession() {
	s.service.EXPECT().Start(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ any, resume *id.SessionID) (*service.Started, error) {
			s.Require().NotNil(resume)
			s.Equal(s.sessionID, *resume)
			return &service.Started{SessionID: s.sessionID, Token: "tok", Resumed: true}, nil
		})

	req := testutil.WithBearer(testutil.NewRequest(s.T(), http.MethodPost, "/sessions"), s.token)
	rr := testutil.DoRequest(s.router, req)

	testutil.AssertStatus(s.T(), rr, http.StatusOK)
	s.True(testutil.UnmarshalResponse[handler.StartResponse](s.T(), rr).Resumed)
}

func (s *HandlerSuite) TestStartRejectsBadResumeToken() {
	req := testutil.WithBearer(testutil.NewRequest(s.T(), http.MethodPost, "/sessions"), "garbage")
	rr := testutil.DoRequest(s.router, req)
	testutil.AssertStatusAndError(s.T(), rr, http.StatusUnauthorized, "unauthorized")
}

func (s *HandlerSuite) TestStartUnavailable() {
	s.service.EXPECT().Start(gomock.Any(), gomock.Any()).
		Return(nil, dErrors.New(dErrors.CodeUnavailable, "service is shutting down"))

	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodPost, "/sessions"))
	testutil.AssertStatusAndError(s.T(), rr, http.StatusServiceUnavailable, "service_unavailable")
	testutil.AssertJSONContains(s.T(), rr, "retryable", true)
}

func (s *HandlerSuite) TestMissingTokenIsUnauthorized() {
	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, s.path("")))
	testutil.AssertStatusAndError(s.T(), rr, http.StatusUnauthorized, "unauthorized")
}

func (s *HandlerSuite) TestGetSession() {
	s.expectWorkflow()
	s.workflow.EXPECT().View(gomock.Any()).Return(workflow.View{
		SessionID: s.sessionID,
		State:     models.WorkflowState{CurrentStep: models.StepBooking},
	})

	req := testutil.WithBearer(testutil.NewRequest(s.T(), http.MethodGet, s.path("")), s.token)
	rr := testutil.DoRequest(s.router, req)

	testutil.AssertStatus(s.T(), rr, http.StatusOK)
	view := testutil.UnmarshalResponse[workflow.View](s.T(), rr)
	s.Equal(models.StepBooking, view.State.CurrentStep)
}

func (s *HandlerSuite) TestForeignSessionIsHidden() {
	other := id.NewSessionID()
	s.security.EXPECT().Emit(gomock.Any(), gomock.Any()).Do(func(_ any, event audit.SecurityEvent) {
		s.Equal(audit.EventSessionAccessDenied, event.Action)
		s.Equal(s.sessionID, event.SessionID)
		s.Equal(audit.SeverityWarning, event.Severity)
	})

	req := testutil.WithBearer(testutil.NewRequest(s.T(), http.MethodGet, "/sessions/"+other.String()), s.token)
	rr := testutil.DoRequest(s.router, req)
	testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "not_found")
}

func (s *HandlerSuite) TestMalformedSessionID() {
	req := testutil.WithBearer(testutil.NewRequest(s.T(), http.MethodGet, "/sessions/not-a-uuid"), s.token)
	rr := testutil.DoRequest(s.router, req)
	testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "invalid_input")
}

func (s *HandlerSuite) TestUpdateField() {
	s.expectWorkflow()
	s.workflow.EXPECT().UpdateField(gomock.Any(), models.FieldTotalGuests, float64(3)).
		Return(models.WorkflowState{CurrentStep: models.StepStayIntent, IsValid: true}, nil)

	body := map[string]any{"field": "total_guests", "value": 3}
	req := testutil.WithBearer(testutil.NewJSONRequest(s.T(), http.MethodPatch, s.path("/fields"), body), s.token)
	rr := testutil.DoRequest(s.router, req)

	testutil.AssertStatus(s.T(), rr, http.StatusOK)
	resp := testutil.UnmarshalResponse[handler.StateResponse](s.T(), rr)
	s.True(resp.State.IsValid)
}

func (s *HandlerSuite) TestUpdateFieldRejectsUnknownField() {
	s.expectWorkflow()

	body := map[string]any{"field": "favourite_colour", "value": "teal"}
	req := testutil.WithBearer(testutil.NewJSONRequest(s.T(), http.MethodPatch, s.path("/fields"), body), s.token)
	rr := testutil.DoRequest(s.router, req)

	testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
}

func (s *HandlerSuite) TestUpdateFieldRejectsUnknownJSONKeys() {
	s.expectWorkflow()

	body := map[string]any{"field": "platform", "value": "airbnb", "extra": true}
	req := testutil.WithBearer(testutil.NewJSONRequest(s.T(), http.MethodPatch, s.path("/fields"), body), s.token)
	rr := testutil.DoRequest(s.router, req)

	testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
}

func (s *HandlerSuite) TestAdvanceValidationFailure() {
	s.expectWorkflow()
	s.workflow.EXPECT().Advance(gomock.Any()).Return(models.WorkflowState{},
		dErrors.Validation("step is incomplete", map[string]string{"check_in_date": "Check-in date is required"}))

	req := testutil.WithBearer(testutil.NewRequest(s.T(), http.MethodPost, s.path("/advance")), s.token)
	rr := testutil.DoRequest(s.router, req)

	testutil.AssertStatus(s.T(), rr, http.StatusUnprocessableEntity)
	resp := testutil.UnmarshalErrorResponse(s.T(), rr)
	s.Equal("validation_error", resp["error"])
	fields, ok := resp["fields"].(map[string]any)
	s.Require().True(ok)
	s.Equal("Check-in date is required", fields["check_in_date"])
}

func (s *HandlerSuite) TestAdvanceSubmits() {
	s.expectWorkflow()
	s.workflow.EXPECT().Advance(gomock.Any()).
		Return(models.WorkflowState{CurrentStep: models.StepAgreements, Submitted: true, IsValid: true}, nil)

	req := testutil.WithBearer(testutil.NewRequest(s.T(), http.MethodPost, s.path("/advance")), s.token)
	rr := testutil.DoRequest(s.router, req)

	testutil.AssertStatus(s.T(), rr, http.StatusOK)
	s.True(testutil.UnmarshalResponse[handler.StateResponse](s.T(), rr).State.Submitted)
}

func (s *HandlerSuite) TestRetreat() {
	s.expectWorkflow()
	s.workflow.EXPECT().Retreat(gomock.Any()).Return(models.WorkflowState{CurrentStep: models.StepIdentity}, nil)

	req := testutil.WithBearer(testutil.NewRequest(s.T(), http.MethodPost, s.path("/retreat")), s.token)
	rr := testutil.DoRequest(s.router, req)

	testutil.AssertStatus(s.T(), rr, http.StatusOK)
}

func (s *HandlerSuite) TestSubmitArtifact() {
	submittedAt := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	s.expectWorkflow()
	s.workflow.EXPECT().SubmitArtifact(gomock.Any(), id.MethodSocial, ports.ArtifactPayload{
		Links: []string{"https://example.com/me"},
	}).Return(ports.Ticket{
		Method:      id.MethodSocial,
		Status:      models.StatusProcessing,
		SubmittedAt: submittedAt,
	}, nil)

	body := map[string]any{"method": "social", "links": []string{"https://example.com/me"}}
	req := testutil.WithBearer(testutil.NewJSONRequest(s.T(), http.MethodPost, s.path("/artifacts"), body), s.token)
	rr := testutil.DoRequest(s.router, req)

	testutil.AssertStatus(s.T(), rr, http.StatusAccepted)
	resp := testutil.UnmarshalResponse[handler.TicketResponse](s.T(), rr)
	s.Equal("social", resp.Method)
	s.Equal("PROCESSING", resp.Status)
}

func (s *HandlerSuite) TestSubmitArtifactUnknownMethod() {
	s.expectWorkflow()

	body := map[string]any{"method": "retina"}
	req := testutil.WithBearer(testutil.NewJSONRequest(s.T(), http.MethodPost, s.path("/artifacts"), body), s.token)
	rr := testutil.DoRequest(s.router, req)

	testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
}

func (s *HandlerSuite) TestSubmitArtifactUpstreamDown() {
	s.expectWorkflow()
	s.workflow.EXPECT().SubmitArtifact(gomock.Any(), id.MethodID, gomock.Any()).
		Return(ports.Ticket{}, dErrors.Wrap(errors.New("dial tcp"), dErrors.CodeUnavailable, "verification service unavailable"))

	body := map[string]any{"method": "id", "reference": "doc-1"}
	req := testutil.WithBearer(testutil.NewJSONRequest(s.T(), http.MethodPost, s.path("/artifacts"), body), s.token)
	rr := testutil.DoRequest(s.router, req)

	testutil.AssertStatusAndError(s.T(), rr, http.StatusServiceUnavailable, "service_unavailable")
}

func (s *HandlerSuite) TestReset() {
	s.expectWorkflow()
	s.workflow.EXPECT().Reset(gomock.Any()).Return(models.WorkflowState{CurrentStep: models.StepIdentity}, nil)

	req := testutil.WithBearer(testutil.NewRequest(s.T(), http.MethodPost, s.path("/reset")), s.token)
	rr := testutil.DoRequest(s.router, req)

	testutil.AssertStatus(s.T(), rr, http.StatusOK)
}

func (s *HandlerSuite) TestPreview() {
	s.expectWorkflow()
	s.workflow.EXPECT().Preview(gomock.Any()).Return(&models.TrustPreview{
		TrustLevel: models.TrustReview,
		Score:      62,
	}, nil)

	req := testutil.WithBearer(testutil.NewRequest(s.T(), http.MethodGet, s.path("/preview")), s.token)
	rr := testutil.DoRequest(s.router, req)

	testutil.AssertStatus(s.T(), rr, http.StatusOK)
	resp := testutil.UnmarshalResponse[handler.PreviewResponse](s.T(), rr)
	s.Require().NotNil(resp.Preview)
	s.Equal(62, resp.Preview.Score)
}

func (s *HandlerSuite) TestPreviewBeforeIdentity() {
	s.expectWorkflow()
	s.workflow.EXPECT().Preview(gomock.Any()).Return(nil, nil)

	req := testutil.WithBearer(testutil.NewRequest(s.T(), http.MethodGet, s.path("/preview")), s.token)
	rr := testutil.DoRequest(s.router, req)

	testutil.AssertStatus(s.T(), rr, http.StatusOK)
	testutil.AssertJSONContains(s.T(), rr, "preview", nil)
}

func (s *HandlerSuite) TestCloseSession() {
	s.service.EXPECT().Close(gomock.Any(), s.sessionID).Return(nil)

	req := testutil.WithBearer(testutil.NewRequest(s.T(), http.MethodDelete, s.path("")), s.token)
	rr := testutil.DoRequest(s.router, req)

	testutil.AssertStatus(s.T(), rr, http.StatusNoContent)
}

func (s *HandlerSuite) TestClosedSessionNotFound() {
	s.service.EXPECT().Workflow(gomock.Any(), s.sessionID).
		Return(nil, dErrors.New(dErrors.CodeNotFound, "session not found"))

	req := testutil.WithBearer(testutil.NewRequest(s.T(), http.MethodPost, s.path("/advance")), s.token)
	rr := testutil.DoRequest(s.router, req)

	testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "not_found")
}
