package preferences

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCookieStoreRoundTrip(t *testing.T) {
	rec := httptest.NewRecorder()
	store := NewCookieStore(rec, httptest.NewRequest(http.MethodPut, "/api/profile", nil), false)

	_, ok := store.Get(KeyUserChatID)
	assert.False(t, ok)

	require.NoError(t, store.Set(KeyUserChatID, "-100 42"))
	v, ok := store.Get(KeyUserChatID)
	require.True(t, ok)
	assert.Equal(t, "-100 42", v)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, KeyUserChatID, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.Greater(t, cookies[0].MaxAge, 0)

	next := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	next.AddCookie(cookies[0])
	v, ok = NewCookieStore(httptest.NewRecorder(), next, false).Get(KeyUserChatID)
	require.True(t, ok)
	assert.Equal(t, "-100 42", v)
}

func TestMemoryStoreTreatsEmptyAsUnset(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Set(KeyUserChatID, ""))
	_, ok := store.Get(KeyUserChatID)
	assert.False(t, ok)

	require.NoError(t, store.Set(KeyUserChatID, "12345"))
	v, ok := store.Get(KeyUserChatID)
	assert.True(t, ok)
	assert.Equal(t, "12345", v)
}
