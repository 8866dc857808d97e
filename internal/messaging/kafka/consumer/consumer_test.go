package consumer_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"go-payroll/internal/events"
	"go-payroll/internal/messaging/kafka/consumer"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeReader struct {
	msgs      []kafkago.Message
	committed []int64
	cancel    context.CancelFunc
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafkago.Message, error) {
	if len(r.msgs) == 0 {
		r.cancel()
		<-ctx.Done()
		return kafkago.Message{}, ctx.Err()
	}
	msg := r.msgs[0]
	r.msgs = r.msgs[1:]
	return msg, nil
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafkago.Message) error {
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

type fakeRenderer struct {
	calls []string
	err   error
}

func (f *fakeRenderer) RenderPeriodPayslips(_ context.Context, companyID, periodID string) (int, error) {
	f.calls = append(f.calls, companyID+"/"+periodID)
	return 3, f.err
}

func approvedMessage(t *testing.T, offset int64, periodID string) kafkago.Message {
	t.Helper()
	body, err := json.Marshal(events.PayrollPeriodApprovedEvent{
		EventType:  events.PayrollPeriodApprovedType,
		PeriodID:   periodID,
		CompanyID:  "c-1",
		ApprovedBy: "u-1",
		OccurredAt: time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return kafkago.Message{Topic: events.PayrollPeriodApprovedTopic, Offset: offset, Value: body}
}

func TestRun_PayrollPeriodApproved(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reader := &fakeReader{cancel: cancel, msgs: []kafkago.Message{
		approvedMessage(t, 1, "p-1"),
		{Topic: events.PayrollPeriodApprovedTopic, Offset: 2, Value: []byte("not-json")},
		approvedMessage(t, 3, "p-3"),
	}}
	renderer := &fakeRenderer{}

	consumer.Run(ctx, reader, "test", consumer.PayrollPeriodApprovedHandler(renderer, zap.NewNop()), zap.NewNop())

	assert.Equal(t, []string{"c-1/p-1", "c-1/p-3"}, renderer.calls)
	assert.Equal(t, []int64{1, 2, 3}, reader.committed)
}

func TestRun_HandlerErrorLeavesMessageUncommitted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reader := &fakeReader{cancel: cancel, msgs: []kafkago.Message{approvedMessage(t, 7, "p-7")}}
	renderer := &fakeRenderer{err: errors.New("storage unavailable")}

	consumer.Run(ctx, reader, "test", consumer.PayrollPeriodApprovedHandler(renderer, zap.NewNop()), zap.NewNop())

	assert.Len(t, renderer.calls, 1)
	assert.Empty(t, reader.committed)
}
