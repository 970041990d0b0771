package apiclient_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tdhoang/evdealer-client/apiclient"
	"github.com/tdhoang/evdealer-client/constant"
	"github.com/tdhoang/evdealer-client/dealertest"
	"github.com/tdhoang/evdealer-client/model"
	cerr "github.com/tdhoang/evdealer-client/utils/errors"
	"github.com/tdhoang/evdealer-client/utils/logger"
)

func TestMain(m *testing.M) {
	logger.SetNop()
	os.Exit(m.Run())
}

func newClient(t *testing.T, server *dealertest.Server) (*apiclient.Client, *apiclient.MemoryStore) {
	t.Helper()
	store := apiclient.NewMemoryStore()
	access, refresh := server.Tokens()
	require.NoError(t, store.Set(apiclient.KeyToken, access))
	require.NoError(t, store.Set(apiclient.KeyRefreshToken, refresh))

	client, err := apiclient.New(apiclient.Config{
		BaseURL: server.URL(),
		Store:   store,
	})
	require.NoError(t, err)
	return client, store
}

func seedOrder(server *dealertest.Server, status constant.RestockStatus) uint64 {
	return server.AddOrder(model.RestockOrder{
		Status:              status,
		AgencyID:            1,
		WarehouseID:         1,
		ElectricMotorbikeID: 1,
		Quantity:            3,
		OrderAt:             time.Now(),
		Warehouse:           &model.Warehouse{Name: "Hanoi Central Warehouse"},
		ElectricMotorbike:   &model.ElectricMotorbike{Name: "Klara S"},
	})
}

func TestDo_AttachesBearerToken(t *testing.T) {
	server := dealertest.New()
	defer server.Close()
	client, _ := newClient(t, server)
	orderID := seedOrder(server, constant.RestockStatusPending)

	body, err := client.Do(context.Background(), http.MethodGet, fmt.Sprintf("/order-restock/detail/%d", orderID), nil, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, body)
	assert.Equal(t, 1, server.DetailCalls(orderID))
}

func TestDo_RefreshRetryOn401(t *testing.T) {
	server := dealertest.New()
	defer server.Close()
	client, store := newClient(t, server)
	orderID := seedOrder(server, constant.RestockStatusPending)

	// invalidate the stored access token; the refresh token stays valid
	server.ExpireAccessToken()

	_, err := client.Do(context.Background(), http.MethodGet, fmt.Sprintf("/order-restock/detail/%d", orderID), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, server.RefreshCalls())

	stored, err := store.Get(apiclient.KeyToken)
	require.NoError(t, err)
	access, _ := server.Tokens()
	assert.Equal(t, access, stored, "refreshed token must be persisted")
}

func TestDo_ConcurrentRefreshCoalesced(t *testing.T) {
	server := dealertest.New()
	defer server.Close()
	server.SetRefreshDelay(100 * time.Millisecond)
	client, _ := newClient(t, server)
	orderID := seedOrder(server, constant.RestockStatusPending)

	server.ExpireAccessToken()

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = client.Do(context.Background(), http.MethodGet, fmt.Sprintf("/order-restock/detail/%d", orderID), nil, nil)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		assert.NoErrorf(t, err, "request %d", i)
	}
	assert.Equal(t, 1, server.RefreshCalls(), "concurrent 401s must share one refresh")
}

func TestDo_RefreshFailureClearsCredentials(t *testing.T) {
	server := dealertest.New()
	defer server.Close()
	client, store := newClient(t, server)
	orderID := seedOrder(server, constant.RestockStatusPending)

	// both tokens revoked: the 401 retry path must give up and wipe the store
	server.RevokeSession()

	_, err := client.Do(context.Background(), http.MethodGet, fmt.Sprintf("/order-restock/detail/%d", orderID), nil, nil)
	require.Error(t, err)
	assert.True(t, cerr.IsType(err, constant.ErrUnauthorized))

	for _, key := range []string{apiclient.KeyToken, apiclient.KeyRefreshToken, apiclient.KeyUser} {
		v, gerr := store.Get(key)
		require.NoError(t, gerr)
		assert.Emptyf(t, v, "key %s must be cleared", key)
	}
}

func TestDo_ProactiveRefreshOfExpiredJWT(t *testing.T) {
	server := dealertest.New()
	defer server.Close()
	client, store := newClient(t, server)
	orderID := seedOrder(server, constant.RestockStatusPending)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "1",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	signed, err := expired.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	require.NoError(t, store.Set(apiclient.KeyToken, signed))

	_, err = client.Do(context.Background(), http.MethodGet, fmt.Sprintf("/order-restock/detail/%d", orderID), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, server.RefreshCalls(), "expired token must refresh before the request")
	assert.Equal(t, 1, server.DetailCalls(orderID), "no wasted 401 round trip")
}

func TestDo_Timeout(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer slow.Close()

	client, err := apiclient.New(apiclient.Config{
		BaseURL: slow.URL,
		Timeout: 50 * time.Millisecond,
	})
	require.NoError(t, err)

	_, err = client.Do(context.Background(), http.MethodGet, "/order-restock/detail/1", nil, nil)
	require.Error(t, err)
	assert.True(t, cerr.IsType(err, constant.ErrTimeout), "got %v", err)
}

func TestDo_NetworkError(t *testing.T) {
	server := dealertest.New()
	url := server.URL()
	server.Close()

	client, err := apiclient.New(apiclient.Config{BaseURL: url})
	require.NoError(t, err)

	_, err = client.Do(context.Background(), http.MethodGet, "/agency/list", nil, nil)
	require.Error(t, err)
	assert.True(t, cerr.IsType(err, constant.ErrNetwork), "got %v", err)
}

func TestDo_DomainErrorVerbatim(t *testing.T) {
	server := dealertest.New()
	defer server.Close()
	client, _ := newClient(t, server)
	orderID := seedOrder(server, constant.RestockStatusPaid)

	_, err := client.Do(context.Background(), http.MethodPatch,
		fmt.Sprintf("/order-restock-management/status/%d", orderID), nil,
		&model.UpdateStatusRequest{Status: constant.RestockStatusApproved})
	require.Error(t, err)
	assert.True(t, cerr.IsType(err, constant.ErrDomain))
	assert.Equal(t, "cannot change status from PAID to APPROVED", err.Error())
}

func TestDo_NotFound(t *testing.T) {
	server := dealertest.New()
	defer server.Close()
	client, _ := newClient(t, server)

	_, err := client.Do(context.Background(), http.MethodGet, "/order-restock/detail/9999", nil, nil)
	require.Error(t, err)
	assert.True(t, cerr.IsType(err, constant.ErrNotFound))
}

func TestLogin_StoresSession(t *testing.T) {
	server := dealertest.New()
	defer server.Close()

	store := apiclient.NewMemoryStore()
	client, err := apiclient.New(apiclient.Config{BaseURL: server.URL(), Store: store})
	require.NoError(t, err)

	user, err := client.Login(context.Background(), &model.Credentials{
		Email:    "manager@evdealer.vn",
		Password: "secret",
	})
	require.NoError(t, err)
	assert.Equal(t, constant.RoleManager, user.Role)

	token, _ := store.Get(apiclient.KeyToken)
	refresh, _ := store.Get(apiclient.KeyRefreshToken)
	assert.NotEmpty(t, token)
	assert.NotEmpty(t, refresh)

	current, err := client.CurrentUser()
	require.NoError(t, err)
	assert.Equal(t, user.Email, current.Email)

	require.NoError(t, client.Logout())
	_, err = client.CurrentUser()
	assert.True(t, cerr.IsType(err, constant.ErrUnauthorized))
}

func TestLogin_InvalidCredentialsRejectedLocally(t *testing.T) {
	server := dealertest.New()
	defer server.Close()
	client, err := apiclient.New(apiclient.Config{BaseURL: server.URL()})
	require.NoError(t, err)

	_, err = client.Login(context.Background(), &model.Credentials{Email: "not-an-email", Password: "x"})
	require.Error(t, err)
	assert.True(t, cerr.IsType(err, constant.ErrInvalidRequest))
}

func TestFileStore_RoundTrip(t *testing.T) {
	path := t.TempDir() + "/session.json"
	store := apiclient.NewFileStore(path)

	require.NoError(t, store.Set(apiclient.KeyToken, "tok-1"))
	require.NoError(t, store.Set(apiclient.KeyRefreshToken, "ref-1"))

	v, err := store.Get(apiclient.KeyToken)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", v)

	reopened := apiclient.NewFileStore(path)
	v, err = reopened.Get(apiclient.KeyRefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "ref-1", v)

	require.NoError(t, store.Clear())
	v, err = store.Get(apiclient.KeyToken)
	require.NoError(t, err)
	assert.Empty(t, v)
}
