package redpanda

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kmsg"
)

type fakeRequester struct {
	codes []int16
	errs  []error
	calls int
}

func (f *fakeRequester) Request(_ context.Context, req kmsg.Request) (kmsg.Response, error) {
	i := f.calls
	f.calls++
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	create := req.(*kmsg.CreateTopicsRequest)
	resp := kmsg.NewPtrCreateTopicsResponse()
	t := kmsg.NewCreateTopicsResponseTopic()
	t.Topic = create.Topics[0].Topic
	if i < len(f.codes) {
		t.ErrorCode = f.codes[i]
	}
	resp.Topics = append(resp.Topics, t)
	return resp, nil
}

func TestEnsureTopic_Validation(t *testing.T) {
	ctx := context.Background()
	assert.Error(t, ensureTopic(ctx, &fakeRequester{}, "", 1, 1))
	assert.Error(t, ensureTopic(ctx, &fakeRequester{}, "t", 0, 1))
	assert.Error(t, ensureTopic(ctx, &fakeRequester{}, "t", 1, 0))
}

func TestEnsureTopic_Created(t *testing.T) {
	f := &fakeRequester{}
	require.NoError(t, ensureTopic(context.Background(), f, "t", 1, 1))
	assert.Equal(t, 1, f.calls)
}

func TestEnsureTopic_AlreadyExists(t *testing.T) {
	f := &fakeRequester{codes: []int16{kerr.TopicAlreadyExists.Code}}
	require.NoError(t, ensureTopic(context.Background(), f, "t", 1, 1))
}

func TestEnsureTopic_RetriesTransportError(t *testing.T) {
	f := &fakeRequester{errs: []error{errors.New("dial tcp: refused")}}
	require.NoError(t, ensureTopic(context.Background(), f, "t", 1, 1))
	assert.Equal(t, 2, f.calls)
}

func TestEnsureTopic_PermanentError(t *testing.T) {
	f := &fakeRequester{codes: []int16{kerr.TopicAuthorizationFailed.Code}}
	err := ensureTopic(context.Background(), f, "t", 1, 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, kerr.TopicAuthorizationFailed)
	assert.Equal(t, 1, f.calls)
}
