package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dodorico/property-assistant/internal/model"
	"github.com/dodorico/property-assistant/internal/service"
	"github.com/dodorico/property-assistant/pkg/logger"
)

type fakeChatter struct {
	result  *service.ChatResult
	err     error
	gotUser string
	gotText string
}

func (f *fakeChatter) Chat(_ context.Context, userID, text string) (*service.ChatResult, error) {
	f.gotUser = userID
	f.gotText = text
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func postChat(t *testing.T, h *ChatHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Chat(rec, req)
	return rec
}

func TestChatReturnsReplyAndProperties(t *testing.T) {
	chatter := &fakeChatter{result: &service.ChatResult{
		Text:       "Encontré una propiedad",
		Properties: []model.Property{{ID: 42, Title: "Depto", Currency: "USD"}},
	}}
	h := NewChatHandler(chatter, logger.NewNop())

	rec := postChat(t, h, `{"userId":"u-1","message":"busco depto"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u-1", chatter.gotUser)
	assert.Equal(t, "busco depto", chatter.gotText)

	body := rec.Body.String()
	assert.Contains(t, body, `"ok":true`)
	assert.Contains(t, body, `"respuesta":"Encontré una propiedad"`)
	assert.Contains(t, body, `"titulo":"Depto"`)
}

func TestChatDefaultsUserID(t *testing.T) {
	chatter := &fakeChatter{result: &service.ChatResult{Text: "hola"}}
	h := NewChatHandler(chatter, logger.NewNop())

	rec := postChat(t, h, `{"message":"hola"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, defaultWebUser, chatter.gotUser)
}

func TestChatRejectsBadRequests(t *testing.T) {
	h := NewChatHandler(&fakeChatter{}, logger.NewNop())

	assert.Equal(t, http.StatusBadRequest, postChat(t, h, `not json`).Code)
	assert.Equal(t, http.StatusBadRequest, postChat(t, h, `{"message":""}`).Code)
	assert.Equal(t, http.StatusBadRequest, postChat(t, h, `{"message":"`+strings.Repeat("a", 5000)+`"}`).Code)
}

func TestChatProcessingFailure(t *testing.T) {
	chatter := &fakeChatter{err: errors.New("model down")}
	h := NewChatHandler(chatter, logger.NewNop())

	rec := postChat(t, h, `{"message":"hola"}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "failed to process message")
	assert.Contains(t, rec.Body.String(), "model down",
		"the development endpoint surfaces the failure cause")
}
