package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "caslkey/pkg/platform/audit"
	"caslkey/pkg/platform/audit/store/postgres"
)

type fakeOutbox struct {
	pending []postgres.OutboxEntry
	marked  []uuid.UUID
}

func (o *fakeOutbox) FetchPending(_ context.Context, limit int) ([]postgres.OutboxEntry, error) {
	return o.pending[:min(limit, len(o.pending))], nil
}

func (o *fakeOutbox) MarkPublished(_ context.Context, ids []uuid.UUID) error {
	o.marked = append(o.marked, ids...)
	return nil
}

type record struct {
	topic string
	key   string
}

type fakeProducer struct {
	records []record
	failAt  int
}

func (p *fakeProducer) Publish(_ context.Context, topic string, key, _ []byte) error {
	if p.failAt > 0 && len(p.records)+1 == p.failAt {
		return errors.New("broker unavailable")
	}
	p.records = append(p.records, record{topic: topic, key: string(key)})
	return nil
}

type passthroughTx struct{ calls int }

func (t *passthroughTx) InTx(ctx context.Context, fn func(context.Context) error) error {
	t.calls++
	return fn(ctx)
}

func entry(action audit.AuditEvent, aggregate string) postgres.OutboxEntry {
	return postgres.OutboxEntry{ID: uuid.New(), AggregateID: aggregate, EventType: string(action)}
}

func TestRelayOnce_RoutesByCategory(t *testing.T) {
	outbox := &fakeOutbox{pending: []postgres.OutboxEntry{
		entry(audit.EventScreeningSubmitted, "s1"),
		entry(audit.EventStepAdvanced, "s1"),
		entry(audit.EventSessionAccessDenied, "s2"),
	}}
	producer := &fakeProducer{}
	tx := &passthroughTx{}

	n, err := NewRelay(outbox, producer, tx).RelayOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, n)
	assert.Equal(t, 1, tx.calls)
	assert.Equal(t, []record{
		{"caslkey.audit.compliance", "s1"},
		{"caslkey.audit.ops", "s1"},
		{"caslkey.audit.security", "s2"},
	}, producer.records)
	assert.Len(t, outbox.marked, 3)
}

func TestRelayOnce_StopsAtFirstPublishFailure(t *testing.T) {
	outbox := &fakeOutbox{pending: []postgres.OutboxEntry{
		entry(audit.EventIdentityChecked, "s1"),
		entry(audit.EventArtifactSubmitted, "s1"),
		entry(audit.EventScreeningSubmitted, "s1"),
	}}
	producer := &fakeProducer{failAt: 2}

	n, err := NewRelay(outbox, producer, &passthroughTx{}).RelayOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, n)
	assert.Equal(t, []uuid.UUID{outbox.pending[0].ID}, outbox.marked)
}

func TestRelayOnce_RespectsBatchSize(t *testing.T) {
	outbox := &fakeOutbox{pending: []postgres.OutboxEntry{
		entry(audit.EventStepAdvanced, "a"),
		entry(audit.EventStepAdvanced, "b"),
	}}
	n, err := NewRelay(outbox, &fakeProducer{}, &passthroughTx{}, WithBatchSize(1)).RelayOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
