package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/dinnerpicker/internal/auth"
	"github.com/mmynk/dinnerpicker/pkg/api"
	"github.com/mmynk/dinnerpicker/pkg/api/apiconnect"
)

// echoMenu reports the auth method and request id it observed in Lang.
type echoMenu struct{}

func (echoMenu) GetMenu(ctx context.Context, req *connect.Request[api.GetMenuRequest]) (*connect.Response[api.GetMenuResponse], error) {
	return connect.NewResponse(&api.GetMenuResponse{
		Lang:      GetAuthMethod(ctx),
		Languages: []string{GetRequestID(ctx), GetSessionID(ctx)},
	}), nil
}

func setupTestServer(t *testing.T, public ...string) (apiconnect.MenuServiceClient, *auth.JWTManager) {
	t.Helper()

	jwtManager, err := auth.NewJWTManager("test-secret", time.Hour)
	require.NoError(t, err)
	authenticator, err := auth.NewSharedPasswordAuthenticator("family2024", "")
	require.NoError(t, err)

	path, handler := apiconnect.NewMenuServiceHandler(echoMenu{},
		connect.WithInterceptors(LoggingInterceptor(), RequireAuth(jwtManager, authenticator, public...)),
	)
	mux := http.NewServeMux()
	mux.Handle(path, handler)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return apiconnect.NewMenuServiceClient(http.DefaultClient, server.URL), jwtManager
}

func TestRequireAuth(t *testing.T) {
	client, jwtManager := setupTestServer(t)
	token, err := jwtManager.Generate()
	require.NoError(t, err)
	claims, err := jwtManager.Validate(token)
	require.NoError(t, err)

	tests := []struct {
		name       string
		header     string
		value      string
		wantMethod string
		wantCode   connect.Code
	}{
		{name: "bearer token", header: "Authorization", value: "Bearer " + token, wantMethod: MethodToken},
		{name: "password header", header: PasswordHeader, value: "family2024", wantMethod: MethodPassword},
		{name: "no credentials", wantCode: connect.CodeUnauthenticated},
		{name: "wrong password", header: PasswordHeader, value: "nope", wantCode: connect.CodeUnauthenticated},
		{name: "malformed authorization", header: "Authorization", value: token, wantCode: connect.CodeUnauthenticated},
		{name: "forged token", header: "Authorization", value: "Bearer abc.def.ghi", wantCode: connect.CodeUnauthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := connect.NewRequest(&api.GetMenuRequest{})
			if tt.header != "" {
				req.Header().Set(tt.header, tt.value)
			}

			resp, err := client.GetMenu(context.Background(), req)
			if tt.wantCode != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, connect.CodeOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantMethod, resp.Msg.Lang)
			if tt.wantMethod == MethodToken {
				assert.Equal(t, claims.ID, resp.Msg.Languages[1])
			}
		})
	}
}

func TestRequireAuthPublicProcedure(t *testing.T) {
	client, _ := setupTestServer(t, apiconnect.MenuServiceGetMenuProcedure)

	resp, err := client.GetMenu(context.Background(), connect.NewRequest(&api.GetMenuRequest{}))
	require.NoError(t, err)
	assert.Empty(t, resp.Msg.Lang)
}

func TestLoggingInterceptorRequestID(t *testing.T) {
	client, _ := setupTestServer(t, apiconnect.MenuServiceGetMenuProcedure)

	t.Run("generated", func(t *testing.T) {
		resp, err := client.GetMenu(context.Background(), connect.NewRequest(&api.GetMenuRequest{}))
		require.NoError(t, err)
		id := resp.Header().Get(RequestIDHeader)
		assert.NotEmpty(t, id)
		assert.Equal(t, id, resp.Msg.Languages[0])
	})

	t.Run("propagated", func(t *testing.T) {
		req := connect.NewRequest(&api.GetMenuRequest{})
		req.Header().Set(RequestIDHeader, "req-42")
		resp, err := client.GetMenu(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, "req-42", resp.Header().Get(RequestIDHeader))
		assert.Equal(t, "req-42", resp.Msg.Languages[0])
	})
}
