package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/fyrsmithlabs/pestid/internal/ai"
	"github.com/fyrsmithlabs/pestid/internal/location"
	"github.com/fyrsmithlabs/pestid/internal/logging"
	"github.com/fyrsmithlabs/pestid/internal/secrets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func newTestService(t *testing.T, reply string, replyErr error) (*Service, *[]ai.Request, *logging.TestLogger) {
	t.Helper()
	var calls []ai.Request
	model := ai.ModelFunc(func(_ context.Context, req ai.Request) (string, error) {
		calls = append(calls, req)
		return reply, replyErr
	})
	tl := logging.NewTestLogger()
	svc, err := NewService(model, secrets.MustNew(nil), tl.Underlying())
	require.NoError(t, err)
	return svc, &calls, tl
}

func TestReply(t *testing.T) {
	svc, calls, _ := newTestService(t, "  Rotate your beds and mulch well.  ", nil)

	got, err := svc.Reply(context.Background(), Request{
		Message:  "How do I stop blight?",
		Location: &location.Info{Country: "Kenya", Region: "Nakuru", City: "Nakuru"},
		History: []Message{
			{Text: "Hi", IsUser: true},
			{Text: "Hello! How can I help?", IsUser: false},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, Reply{Reply: "Rotate your beds and mulch well."}, got)

	require.Len(t, *calls, 1)
	req := (*calls)[0]
	assert.Nil(t, req.Image)
	assert.InDelta(t, Temperature, req.Temperature, 0.0001)
	assert.Contains(t, req.Prompt, "agricultural")
	assert.Contains(t, req.Prompt, "Nakuru, Kenya")
	assert.Contains(t, req.Prompt, "User: Hi\n")
	assert.Contains(t, req.Prompt, "Assistant: Hello! How can I help?\n")
	assert.True(t, strings.HasSuffix(req.Prompt, "User: How do I stop blight?\nAssistant:"))
}

func TestReply_BlankIsNoop(t *testing.T) {
	svc, calls, _ := newTestService(t, "unused", nil)

	for _, msg := range []string{"", "   ", "\n\t"} {
		_, err := svc.Reply(context.Background(), Request{Message: msg})
		assert.ErrorIs(t, err, ErrEmptyMessage)
	}
	assert.Empty(t, *calls)
}

func TestReply_ModelErrorFallsBack(t *testing.T) {
	svc, _, tl := newTestService(t, "", errors.New("quota exceeded"))

	got, err := svc.Reply(context.Background(), Request{Message: "When should I plant maize?"})
	require.NoError(t, err)
	assert.Equal(t, Reply{Reply: FallbackReply, Fallback: true}, got)
	tl.AssertLogged(t, zapcore.ErrorLevel, "chat model call failed")
}

func TestReply_EmptyModelTextFallsBack(t *testing.T) {
	svc, _, _ := newTestService(t, "   ", nil)

	got, err := svc.Reply(context.Background(), Request{Message: "Is neem oil safe for bees?"})
	require.NoError(t, err)
	assert.True(t, got.Fallback)
}

func TestReply_ScrubsUserText(t *testing.T) {
	svc, calls, tl := newTestService(t, "ok", nil)
	key := "AIza" + strings.Repeat("K", 35)

	_, err := svc.Reply(context.Background(), Request{
		Message: "my sensor key is " + key,
		History: []Message{{Text: "earlier " + key, IsUser: true}},
	})
	require.NoError(t, err)

	require.Len(t, *calls, 1)
	assert.NotContains(t, (*calls)[0].Prompt, key)
	assert.Contains(t, (*calls)[0].Prompt, "[REDACTED]")
	tl.AssertLogged(t, zapcore.WarnLevel, "redacted secrets")
}

func TestBuildPrompt_Location(t *testing.T) {
	assert.NotContains(t, BuildPrompt("q", nil, nil), "farms in")
	assert.NotContains(t, BuildPrompt("q", nil, &location.Info{Country: location.Unknown}), "farms in")
	assert.Contains(t, BuildPrompt("q", nil, &location.Info{Country: "Ghana"}), "farms in Ghana.")
	assert.Contains(t, BuildPrompt("q", nil, &location.Info{Country: "Ghana", Region: location.Unknown}), "farms in Ghana.")
}

func TestBuildPrompt_TruncatesHistory(t *testing.T) {
	var history []Message
	for i := 0; i < MaxHistory+5; i++ {
		history = append(history, Message{Text: fmt.Sprintf("turn-%02d", i), IsUser: i%2 == 0})
	}

	prompt := BuildPrompt("latest", history, nil)
	assert.NotContains(t, prompt, "turn-04")
	assert.Contains(t, prompt, "turn-05")
	assert.Contains(t, prompt, fmt.Sprintf("turn-%02d", MaxHistory+4))
}

func TestNewService_RequiresModel(t *testing.T) {
	_, err := NewService(nil, nil, nil)
	assert.Error(t, err)
}
