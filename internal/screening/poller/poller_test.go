package poller

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"caslkey/internal/screening/metrics"
	"caslkey/internal/screening/models"
	"caslkey/internal/screening/ports"
	"caslkey/internal/screening/ports/mocks"
	id "caslkey/pkg/domain"
)

const (
	interval  = 10 * time.Millisecond
	caslKeyID = id.CaslKeyID("ck_123")
)

type recordingSink struct {
	mu       sync.Mutex
	resolved []ports.StatusReport
	failed   []*PollingError
}

func (s *recordingSink) StatusResolved(ctx context.Context, report ports.StatusReport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ctx.Err() != nil {
		return
	}
	s.resolved = append(s.resolved, report)
}

func (s *recordingSink) PollFailed(ctx context.Context, err *PollingError) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ctx.Err() != nil {
		return
	}
	s.failed = append(s.failed, err)
}

func (s *recordingSink) counts() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.resolved), len(s.failed)
}

type PollerSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	checker *mocks.MockVerificationService
	sink    *recordingSink
	metrics *metrics.Metrics
	poller  *Poller
}

func TestPollerSuite(t *testing.T) {
	suite.Run(t, new(PollerSuite))
}

func (s *PollerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.checker = mocks.NewMockVerificationService(s.ctrl)
	s.sink = &recordingSink{}
	s.metrics = metrics.NewWith(prometheus.NewRegistry())
	s.poller = New(s.checker, s.sink, WithInterval(interval), WithMetrics(s.metrics))
}

func (s *PollerSuite) TearDownTest() {
	s.poller.StopAll()
	s.poller.Wait()
}

func report(method id.VerificationMethod, status models.VerificationStatus) ports.StatusReport {
	return ports.StatusReport{Method: method, Status: status}
}

func (s *PollerSuite) TestProcessingUntilVerified() {
	gomock.InOrder(
		s.checker.EXPECT().GetStatus(gomock.Any(), id.MethodID, caslKeyID).Return(report(id.MethodID, models.StatusProcessing), nil),
		s.checker.EXPECT().GetStatus(gomock.Any(), id.MethodID, caslKeyID).Return(report(id.MethodID, models.StatusProcessing), nil),
		s.checker.EXPECT().GetStatus(gomock.Any(), id.MethodID, caslKeyID).Return(report(id.MethodID, models.StatusVerified), nil),
	)

	s.poller.Start(context.Background(), id.MethodID, caslKeyID, models.StatusProcessing)
	s.True(s.poller.Active(id.MethodID))

	s.Eventually(func() bool {
		resolved, _ := s.sink.counts()
		return resolved == 1
	}, time.Second, interval/2)
	s.poller.Wait()

	s.False(s.poller.Active(id.MethodID), "loop must stop after a terminal status")
	s.Equal(models.StatusVerified, s.poller.Status(id.MethodID))

	// No further checks once stopped; gomock fails on a fourth call.
	time.Sleep(5 * interval)
	resolved, failed := s.sink.counts()
	s.Equal(1, resolved)
	s.Zero(failed)
	s.Equal(0.0, testutil.ToFloat64(s.metrics.ActivePolls))
	s.Equal(2.0, testutil.ToFloat64(s.metrics.PollChecks.WithLabelValues("id", "PROCESSING")))
	s.Equal(1.0, testutil.ToFloat64(s.metrics.PollOutcomes.WithLabelValues("id", "VERIFIED")))
}

func (s *PollerSuite) TestTransportFailureKeepsLastStatus() {
	gomock.InOrder(
		s.checker.EXPECT().GetStatus(gomock.Any(), id.MethodPhone, caslKeyID).Return(report(id.MethodPhone, models.StatusProcessing), nil),
		s.checker.EXPECT().GetStatus(gomock.Any(), id.MethodPhone, caslKeyID).
			Return(ports.StatusReport{}, ports.NewTransportError(ports.ErrorUnavailable, "verification", "status", "503", nil)),
	)

	s.poller.Start(context.Background(), id.MethodPhone, caslKeyID, models.StatusProcessing)

	s.Eventually(func() bool {
		_, failed := s.sink.counts()
		return failed == 1
	}, time.Second, interval/2)
	s.poller.Wait()

	s.sink.mu.Lock()
	perr := s.sink.failed[0]
	s.sink.mu.Unlock()
	s.Equal(id.MethodPhone, perr.Method)
	s.Equal(models.StatusProcessing, perr.LastStatus)
	s.Equal(ports.ErrorUnavailable, ports.CategoryOf(perr))
	s.False(s.poller.Active(id.MethodPhone))
	s.Equal(models.StatusProcessing, s.poller.Status(id.MethodPhone))
}

func (s *PollerSuite) TestSessionFailureIsRetriedOnce() {
	gomock.InOrder(
		s.checker.EXPECT().GetStatus(gomock.Any(), id.MethodSocial, caslKeyID).
			Return(ports.StatusReport{}, ports.NewTransportError(ports.ErrorSessionExpired, "verification", "status", "expired", nil)),
		s.checker.EXPECT().GetStatus(gomock.Any(), id.MethodSocial, caslKeyID).Return(report(id.MethodSocial, models.StatusVerified), nil),
	)

	s.poller.Start(context.Background(), id.MethodSocial, caslKeyID, models.StatusProcessing)

	s.Eventually(func() bool {
		resolved, _ := s.sink.counts()
		return resolved == 1
	}, time.Second, interval/2)
}

func (s *PollerSuite) TestStopBeforeFirstCheck() {
	s.poller.Start(context.Background(), id.MethodID, caslKeyID, models.StatusProcessing)
	s.poller.Stop(id.MethodID)
	s.poller.Wait()

	time.Sleep(3 * interval)
	resolved, failed := s.sink.counts()
	s.Zero(resolved)
	s.Zero(failed)
	s.Equal(0.0, testutil.ToFloat64(s.metrics.ActivePolls))
}

func (s *PollerSuite) TestStartReplacesRunningLoop() {
	s.checker.EXPECT().GetStatus(gomock.Any(), id.MethodID, caslKeyID).
		Return(report(id.MethodID, models.StatusProcessing), nil).AnyTimes()

	s.poller.Start(context.Background(), id.MethodID, caslKeyID, models.StatusProcessing)
	s.poller.Start(context.Background(), id.MethodID, caslKeyID, models.StatusProcessing)

	s.Equal(1, s.poller.ActiveCount())
	s.Equal(1.0, testutil.ToFloat64(s.metrics.ActivePolls))
}

func (s *PollerSuite) TestNonPollableStatusStartsNoLoop() {
	s.poller.Start(context.Background(), id.MethodBackgroundCheck, caslKeyID, models.StatusManualReview)

	s.False(s.poller.Active(id.MethodBackgroundCheck))
	s.Equal(models.StatusManualReview, s.poller.Status(id.MethodBackgroundCheck))
}

func (s *PollerSuite) TestCallerCancellationDoesNotStopLoop() {
	s.checker.EXPECT().GetStatus(gomock.Any(), id.MethodID, caslKeyID).Return(report(id.MethodID, models.StatusRejected), nil)

	ctx, cancel := context.WithCancel(context.Background())
	s.poller.Start(ctx, id.MethodID, caslKeyID, models.StatusProcessing)
	cancel()

	s.Eventually(func() bool {
		resolved, _ := s.sink.counts()
		return resolved == 1
	}, time.Second, interval/2)
}

func (s *PollerSuite) TestResetForgetsStatuses() {
	s.poller.Start(context.Background(), id.MethodPhone, caslKeyID, models.StatusVerified)
	s.poller.Reset()
	s.Equal(models.StatusNotSubmitted, s.poller.Status(id.MethodPhone))
}

func TestPollingError_AsDomainError(t *testing.T) {
	perr := &PollingError{Method: id.MethodID, LastStatus: models.StatusProcessing, Err: assert.AnError}
	err := perr.AsDomainError()
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, perr.Error(), "PROCESSING")
}
