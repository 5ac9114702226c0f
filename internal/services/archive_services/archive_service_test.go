package archive_services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/iyunix/go-chatarchive/internal/changefeed"
	"github.com/iyunix/go-chatarchive/internal/debounce"
	"github.com/iyunix/go-chatarchive/internal/domain"
	"github.com/iyunix/go-chatarchive/internal/repository/archive"
	"github.com/iyunix/go-chatarchive/internal/services"
	"github.com/iyunix/go-chatarchive/internal/services/telegram"
	"github.com/iyunix/go-chatarchive/internal/testutil"
	"github.com/iyunix/go-chatarchive/internal/vault"
)

type fakeGateway struct {
	mu       sync.Mutex
	getMe    []string
	forwards []telegram.ForwardRequest
	bots     map[string]string
	forward  error
}

func (g *fakeGateway) GetMe(ctx context.Context, token string) (*telegram.BotIdentity, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.getMe = append(g.getMe, token)
	name, ok := g.bots[token]
	if !ok {
		return nil, &telegram.GatewayError{Type: telegram.ErrTypeProvider, Method: "getMe", Code: 401, Message: "Unauthorized"}
	}
	return &telegram.BotIdentity{ID: 1, Username: name}, nil
}

func (g *fakeGateway) ForwardMessage(ctx context.Context, req telegram.ForwardRequest) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.forwards = append(g.forwards, req)
	return g.forward
}

func (g *fakeGateway) getMeCalls() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.getMe...)
}

func signedIn(id uint) SessionProvider {
	return SessionFunc(func(context.Context) (uint, bool) { return id, true })
}

var anonymous = SessionFunc(func(context.Context) (uint, bool) { return 0, false })

type archiveFixture struct {
	db      *gorm.DB
	hub     *changefeed.Hub
	gateway *fakeGateway
	sealer  *vault.Sealer
	repo    archive.ArchiveRepository
}

func newArchiveFixture(t *testing.T) *archiveFixture {
	t.Helper()
	db := testutil.NewTestDB(t)
	hub := changefeed.NewHub(&services.NoOpLogger{})
	return &archiveFixture{
		db:      db,
		hub:     hub,
		gateway: &fakeGateway{bots: map[string]string{"123:abc": "helper_bot"}},
		sealer:  vault.New("test-passphrase"),
		repo:    archive.NewArchiveRepository(db, hub),
	}
}

func (f *archiveFixture) service(session SessionProvider, delay time.Duration) *ArchiveService {
	return NewArchiveService(f.repo, f.gateway, session, f.sealer, debounce.New(delay), &services.NoOpLogger{})
}

func TestResolveBotNameSuccess(t *testing.T) {
	f := newArchiveFixture(t)
	svc := f.service(signedIn(1), time.Millisecond)

	res, err := svc.ResolveBotName(context.Background(), "form-1", "123:abc")
	require.NoError(t, err)
	assert.Equal(t, "helper_bot", res.BotName)
	assert.False(t, res.Superseded)
}

func TestResolveBotNameEmptyKeyMakesNoCall(t *testing.T) {
	f := newArchiveFixture(t)
	svc := f.service(signedIn(1), time.Millisecond)

	res, err := svc.ResolveBotName(context.Background(), "form-1", "   ")
	require.NoError(t, err)
	assert.Empty(t, res.BotName)
	assert.Empty(t, f.gateway.getMeCalls())
}

func TestResolveBotNameInvalidKey(t *testing.T) {
	f := newArchiveFixture(t)
	svc := f.service(signedIn(1), time.Millisecond)

	res, err := svc.ResolveBotName(context.Background(), "form-1", "nope")
	require.Error(t, err)
	assert.True(t, IsType(err, ErrTypeRemote))
	assert.Empty(t, res.BotName)
}

func TestResolveBotNameRapidEditsValidateOnlyLastKey(t *testing.T) {
	f := newArchiveFixture(t)
	svc := f.service(signedIn(1), 50*time.Millisecond)

	keys := []string{"1", "12", "123", "123:", "123:abc"}
	results := make([]*BotResolution, len(keys))
	var wg sync.WaitGroup
	for i, k := range keys {
		wg.Add(1)
		go func(i int, k string) {
			defer wg.Done()
			results[i], _ = svc.ResolveBotName(context.Background(), "form-1", k)
		}(i, k)
		time.Sleep(5 * time.Millisecond)
	}
	wg.Wait()

	assert.Equal(t, []string{"123:abc"}, f.gateway.getMeCalls())
	for _, r := range results[:len(results)-1] {
		assert.True(t, r.Superseded)
	}
	assert.Equal(t, "helper_bot", results[len(results)-1].BotName)
}

func TestResolveBotNameClearingCancelsPendingCheck(t *testing.T) {
	f := newArchiveFixture(t)
	svc := f.service(signedIn(1), 50*time.Millisecond)

	done := make(chan *BotResolution, 1)
	go func() {
		res, _ := svc.ResolveBotName(context.Background(), "form-1", "123:abc")
		done <- res
	}()
	time.Sleep(10 * time.Millisecond)

	_, err := svc.ResolveBotName(context.Background(), "form-1", "")
	require.NoError(t, err)

	res := <-done
	assert.True(t, res.Superseded)
	assert.Empty(t, f.gateway.getMeCalls())
}

func TestCreateArchiveRequiresSession(t *testing.T) {
	f := newArchiveFixture(t)
	svc := f.service(anonymous, time.Millisecond)

	_, err := svc.CreateArchive(context.Background(), CreateArchiveInput{APIKey: "123:abc"})
	assert.True(t, IsType(err, ErrTypeAuthRequired))

	var count int64
	require.NoError(t, f.db.Model(&domain.ChatArchive{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreateArchiveStoresSealedCredential(t *testing.T) {
	f := newArchiveFixture(t)
	svc := f.service(signedIn(7), time.Millisecond)
	sub := f.hub.Subscribe(changefeed.TableArchives)
	defer sub.Close()

	created, err := svc.CreateArchive(context.Background(), CreateArchiveInput{
		APIKey:       "123:abc",
		BotName:      "helper_bot",
		SenderChatID: "-100200",
	})
	require.NoError(t, err)

	var stored domain.ChatArchive
	require.NoError(t, f.db.First(&stored, "id = ?", created.ID).Error)
	assert.Equal(t, uint(7), stored.UserID)
	assert.NotEqual(t, "123:abc", stored.APIKey)
	plain, err := f.sealer.Open(stored.APIKey)
	require.NoError(t, err)
	assert.Equal(t, "123:abc", plain)
	require.NotNil(t, stored.BotName)
	assert.Equal(t, "helper_bot", *stored.BotName)
	assert.Nil(t, stored.ReceiverChatID)

	select {
	case ev := <-sub.C:
		assert.Equal(t, changefeed.EventInsert, ev.Type)
		assert.Equal(t, created.ID, ev.RecordID)
	case <-time.After(time.Second):
		t.Fatal("no change event after insert")
	}
}

func TestCreateArchiveEmptyBotNameStoredAsNull(t *testing.T) {
	f := newArchiveFixture(t)
	svc := f.service(signedIn(1), time.Millisecond)

	created, err := svc.CreateArchive(context.Background(), CreateArchiveInput{APIKey: "123:abc"})
	require.NoError(t, err)
	assert.Nil(t, created.BotName)
}

func TestListArchivesOwnerScoped(t *testing.T) {
	f := newArchiveFixture(t)
	testutil.SeedArchive(t, f.db, domain.ChatArchive{UserID: 1, APIKey: "a"})
	testutil.SeedArchive(t, f.db, domain.ChatArchive{UserID: 2, APIKey: "b"})

	archives, err := f.service(signedIn(1), time.Millisecond).ListArchives(context.Background())
	require.NoError(t, err)
	require.Len(t, archives, 1)
	assert.Equal(t, "a", archives[0].APIKey)

	_, err = f.service(anonymous, time.Millisecond).ListArchives(context.Background())
	assert.True(t, IsType(err, ErrTypeAuthRequired))
}

func TestDeleteArchive(t *testing.T) {
	f := newArchiveFixture(t)
	a := testutil.SeedArchive(t, f.db, domain.ChatArchive{UserID: 1, APIKey: "a"})
	testutil.SeedMessage(t, f.db, a.ID, 1, "hello")

	err := f.service(signedIn(2), time.Millisecond).DeleteArchive(context.Background(), a.ID)
	assert.True(t, IsType(err, ErrTypeNotFound))

	require.NoError(t, f.service(signedIn(1), time.Millisecond).DeleteArchive(context.Background(), a.ID))

	var archives, messages int64
	require.NoError(t, f.db.Model(&domain.ChatArchive{}).Count(&archives).Error)
	require.NoError(t, f.db.Model(&domain.MessageArchive{}).Count(&messages).Error)
	assert.Zero(t, archives)
	assert.Equal(t, int64(1), messages)
}

func TestArchiveErrorUnwraps(t *testing.T) {
	cause := errors.New("boom")
	err := NewRemoteError("op", "Failed", cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "REMOTE")
}
