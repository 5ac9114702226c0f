package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Warn(string, ...interface{})  {}

// fakeBotAPI answers getMe and forwardMessage the way the Bot API does.
type fakeBotAPI struct {
	mu       sync.Mutex
	calls    []string
	forwards []map[string]string
	tokens   map[string]string // token -> username
	forward  func(form map[string]string) (int, string)
}

func (f *fakeBotAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// path: /bot<token>/<method>
	parts := strings.SplitN(strings.TrimPrefix(r.URL.Path, "/bot"), "/", 2)
	token, method := parts[0], parts[1]
	_ = r.ParseForm()

	f.mu.Lock()
	f.calls = append(f.calls, method)
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch method {
	case "getMe":
		username, ok := f.tokens[token]
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"ok":false,"error_code":401,"description":"Unauthorized"}`)
			return
		}
		fmt.Fprintf(w, `{"ok":true,"result":{"id":42,"is_bot":true,"first_name":"Helper","username":%q}}`, username)
	case "forwardMessage":
		form := map[string]string{
			"chat_id":      r.PostForm.Get("chat_id"),
			"from_chat_id": r.PostForm.Get("from_chat_id"),
			"message_id":   r.PostForm.Get("message_id"),
		}
		f.mu.Lock()
		f.forwards = append(f.forwards, form)
		f.mu.Unlock()
		if f.forward != nil {
			if code, desc := f.forward(form); code != 0 {
				w.WriteHeader(code)
				fmt.Fprintf(w, `{"ok":false,"error_code":%d,"description":%q}`, code, desc)
				return
			}
		}
		fmt.Fprint(w, `{"ok":true,"result":{"message_id":900,"date":0,"chat":{"id":1,"type":"private"}}}`)
	default:
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"ok":false,"error_code":404,"description":"Not Found"}`)
	}
}

func newTestProvider(t *testing.T, api *fakeBotAPI) *BotAPIProvider {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	p, err := NewBotAPIProvider(&Config{Endpoint: srv.URL + "/bot%s/%s", Timeout: 2 * time.Second}, nopLogger{})
	require.NoError(t, err)
	return p
}

func TestGetMeReturnsUsername(t *testing.T) {
	api := &fakeBotAPI{tokens: map[string]string{"123:abc": "helper_bot"}}
	p := newTestProvider(t, api)

	id, err := p.GetMe(context.Background(), "123:abc")
	require.NoError(t, err)
	assert.Equal(t, "helper_bot", id.Username)
	assert.Equal(t, int64(42), id.ID)
}

func TestGetMeRejectedToken(t *testing.T) {
	api := &fakeBotAPI{tokens: map[string]string{}}
	p := newTestProvider(t, api)

	_, err := p.GetMe(context.Background(), "bad")
	var gwErr *GatewayError
	require.True(t, errors.As(err, &gwErr))
	assert.Equal(t, ErrTypeProvider, gwErr.Type)
	assert.Equal(t, "Unauthorized", gwErr.Description())
}

func TestGetMeEmptyTokenMakesNoCall(t *testing.T) {
	api := &fakeBotAPI{}
	p := newTestProvider(t, api)

	_, err := p.GetMe(context.Background(), "  ")
	var gwErr *GatewayError
	require.True(t, errors.As(err, &gwErr))
	assert.Equal(t, ErrTypeValidation, gwErr.Type)
	assert.Empty(t, api.calls)
}

func TestGetMeNetworkFailure(t *testing.T) {
	p, err := NewBotAPIProvider(&Config{Endpoint: "http://127.0.0.1:1/bot%s/%s", Timeout: time.Second}, nopLogger{})
	require.NoError(t, err)

	_, err = p.GetMe(context.Background(), "123:abc")
	var gwErr *GatewayError
	require.True(t, errors.As(err, &gwErr))
	assert.Equal(t, ErrTypeNetwork, gwErr.Type)
}

func TestForwardMessageSendsExactParameters(t *testing.T) {
	api := &fakeBotAPI{}
	p := newTestProvider(t, api)

	err := p.ForwardMessage(context.Background(), ForwardRequest{
		Token: "123:abc", ToChatID: "555", FromChatID: "@source_channel", MessageID: 17,
	})
	require.NoError(t, err)

	require.Len(t, api.forwards, 1)
	assert.Equal(t, map[string]string{
		"chat_id":      "555",
		"from_chat_id": "@source_channel",
		"message_id":   "17",
	}, api.forwards[0])
	assert.Equal(t, []string{"forwardMessage"}, api.calls)
}

func TestForwardMessageSurfacesDescription(t *testing.T) {
	api := &fakeBotAPI{forward: func(map[string]string) (int, string) {
		return http.StatusBadRequest, "Bad Request: message to forward not found"
	}}
	p := newTestProvider(t, api)

	err := p.ForwardMessage(context.Background(), ForwardRequest{
		Token: "123:abc", ToChatID: "555", FromChatID: "777", MessageID: 1,
	})
	var gwErr *GatewayError
	require.True(t, errors.As(err, &gwErr))
	assert.Equal(t, ErrTypeProvider, gwErr.Type)
	assert.Equal(t, 400, gwErr.Code)
	assert.Equal(t, "Bad Request: message to forward not found", gwErr.Description())
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
	assert.Error(t, (&Config{Endpoint: "https://api.telegram.org/bot", Timeout: time.Second}).Validate())
	assert.Error(t, (&Config{Endpoint: DefaultEndpoint}).Validate())
}
