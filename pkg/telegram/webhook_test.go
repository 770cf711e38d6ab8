package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cerberus/pkg/errors"
	"cerberus/pkg/logger"
)

func postUpdate(t *testing.T, handler http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/hook", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestWebhookHandler_DeliversUpdate(t *testing.T) {
	var got Update
	wh := NewWebhookHandler(func(ctx context.Context, update Update) error {
		got = update
		return nil
	}, logger.Get())

	body := `{"update_id":7,"message":{"message_id":1,"chat":{"id":42,"type":"private"},"text":"/unlock"}}`
	rec := postUpdate(t, wh, body)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.True(t, got.HasMessage())
	assert.Equal(t, int64(42), got.Message.Chat.ID)
	assert.Equal(t, "/unlock", got.Message.Text)
}

func TestWebhookHandler_HandlerErrorFailsLoudly(t *testing.T) {
	wh := NewWebhookHandler(func(ctx context.Context, update Update) error {
		return errors.Wrap(errors.ErrUnavailable, "store down")
	}, logger.Get())

	rec := postUpdate(t, wh, `{"update_id":7}`)

	// Non-OK so the transport layer retries instead of dropping the update
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok":false`)
}

func TestWebhookHandler_RejectsInvalidJSON(t *testing.T) {
	called := false
	wh := NewWebhookHandler(func(ctx context.Context, update Update) error {
		called = true
		return nil
	}, logger.Get())

	rec := postUpdate(t, wh, `{not json`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, called)
}

func TestWebhookHandler_RejectsNonPOST(t *testing.T) {
	wh := NewWebhookHandler(func(ctx context.Context, update Update) error {
		return nil
	}, logger.Get())

	req := httptest.NewRequest(http.MethodGet, "/hook", nil)
	rec := httptest.NewRecorder()
	wh.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestUpdate_HasMessage(t *testing.T) {
	assert.False(t, (&Update{}).HasMessage())
	assert.False(t, (&Update{Message: &Message{}}).HasMessage())
	assert.True(t, (&Update{Message: &Message{Chat: &Chat{ID: 1}}}).HasMessage())
}
