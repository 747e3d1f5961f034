package mailer

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestDraft_SurvivesJSON(t *testing.T) {
	t.Parallel()

	draft := New(&MockTransport{}).Make().
		To("a@example.com").
		To("b@example.com", "").
		CC("c@example.com", "C").
		Tag("welcome", struct{}{}).
		Tag("plan", "pro").
		Priority(PriorityHigh).
		Attach(Attachment{Filename: "a.txt", Content: []byte("hello")}).
		View("welcome", map[string]any{"Name": "Ann"}).
		Draft()

	raw, err := json.Marshal(draft)
	require.NoError(t, err)

	var got Draft
	require.NoError(t, json.Unmarshal(raw, &got))

	require.Len(t, got.Options.To, 2)
	assert.False(t, got.Options.To[0].HasName())
	assert.True(t, got.Options.To[1].HasName())
	assert.Equal(t, NewAddress("c@example.com", "C"), got.Options.CC[0])
	assert.Equal(t, Tags{"welcome": struct{}{}, "plan": "pro"}, got.Options.Tags)
	assert.Equal(t, PriorityHigh, got.Options.Priority)
	assert.Equal(t, []byte("hello"), got.Options.Attachments[0].Content)
	assert.Equal(t, "welcome", got.View)
	assert.Equal(t, map[string]any{"Name": "Ann"}, got.ViewData)
}

func TestDraft_WithoutView(t *testing.T) {
	t.Parallel()

	draft := New(&MockTransport{}).Make().HTML("<p>hi</p>").Draft()
	assert.Empty(t, draft.View)
	assert.Nil(t, draft.ViewData)
	assert.Equal(t, "<p>hi</p>", draft.Options.HTML)
}

func TestMailer_SendDraft(t *testing.T) {
	t.Parallel()

	renderer := RenderFunc(func(_ context.Context, view string, data any) (string, error) {
		return "<p>" + view + ":" + data.(map[string]any)["Name"].(string) + "</p>", nil
	})
	from := NewAddress("team@example.com")
	transport := &MockTransport{}
	sent := captureSend(transport)
	m := New(transport, WithRenderer(renderer), WithDefaults(Defaults{From: &from}))

	draft := Draft{
		Options:  &Options{To: []Address{NewAddress("u@example.com")}, HTML: "<p>ignored</p>"},
		View:     "welcome",
		ViewData: map[string]any{"Name": "Ann"},
	}
	_, err := m.SendDraft(context.Background(), draft)
	require.NoError(t, err)

	require.Len(t, *sent, 1)
	assert.Equal(t, "<p>welcome:Ann</p>", (*sent)[0].HTML)
	assert.Equal(t, from, *(*sent)[0].From)
	assert.Equal(t, "<p>ignored</p>", draft.Options.HTML, "draft is not modified")
	assert.Nil(t, draft.Options.From)
}

func TestMailer_SendDraft_NilOptions(t *testing.T) {
	t.Parallel()

	transport := &MockTransport{}
	transport.On("Send", mock.Anything, mock.Anything).Return(&Result{MessageID: "x"}, nil).Once()

	result, err := New(transport).SendDraft(context.Background(), Draft{})
	require.NoError(t, err)
	assert.Equal(t, "x", result.MessageID)
}
