// internal/vault/vault_test.go
//
// Unit-tests for reference parsing and KV-v2 resolution against an
// httptest fake of the Vault HTTP API.
//
// Run: go test ./internal/vault -v

package vault

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	vault "github.com/hashicorp/vault/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRef(t *testing.T) {
	cases := []struct {
		in      string
		want    Ref
		wantErr bool
	}{
		{"vault:secret/db#password", Ref{"secret", "db", "password"}, false},
		{"vault:kv/apps/billing/pg#pw", Ref{"kv", "apps/billing/pg", "pw"}, false},
		{"vault:/secret/db/#password", Ref{"secret", "db", "password"}, false},
		{"secret/db#password", Ref{}, true},
		{"vault:secret/db", Ref{}, true},
		{"vault:secret/db#", Ref{}, true},
		{"vault:secret#password", Ref{}, true},
		{"vault:#password", Ref{}, true},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseRef(tc.in)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrInvalidRef)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestRefString(t *testing.T) {
	r := Ref{Mount: "secret", Path: "db", Key: "password"}
	assert.Equal(t, "vault:secret/db#password", r.String())
	assert.True(t, IsRef(r.String()))
	assert.False(t, IsRef("hunter2"))
}

// fakeVault serves GET /v1/secret/data/db with a single KV-v2 version.
func fakeVault(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"errors":[]}`))
	})
	mux.HandleFunc("/v1/secret/data/db", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Vault-Token") != "test-token" {
			http.Error(w, `{"errors":["permission denied"]}`, http.StatusForbidden)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"data": {
				"data": {"password": "s3cret", "port": 5432},
				"metadata": {
					"created_time": "2024-01-01T00:00:00Z",
					"custom_metadata": null,
					"deletion_time": "",
					"destroyed": false,
					"version": 3
				}
			}
		}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(t *testing.T, addr string) *Client {
	t.Helper()
	cfg := vault.DefaultConfig()
	cfg.Address = addr
	cli, err := New(cfg, t.Logf)
	require.NoError(t, err)
	cli.SetToken("test-token")
	return cli
}

func TestResolve(t *testing.T) {
	srv := fakeVault(t)
	cli := newTestClient(t, srv.URL)

	got, err := cli.Resolve(context.Background(), "vault:secret/db#password")
	require.NoError(t, err)
	assert.Equal(t, "s3cret", got)
}

func TestResolve_MissingKey(t *testing.T) {
	srv := fakeVault(t)
	cli := newTestClient(t, srv.URL)

	_, err := cli.Resolve(context.Background(), "vault:secret/db#nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `key "nope" not found`)
}

func TestResolve_NonString(t *testing.T) {
	srv := fakeVault(t)
	cli := newTestClient(t, srv.URL)

	_, err := cli.Resolve(context.Background(), "vault:secret/db#port")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a string")
}

func TestResolve_NotFound(t *testing.T) {
	srv := fakeVault(t)
	cli := newTestClient(t, srv.URL)

	_, err := cli.Resolve(context.Background(), "vault:secret/other#password")
	require.Error(t, err)
	assert.True(t, errors.Is(err, vault.ErrSecretNotFound), "got %v", err)
}

func TestResolve_BadRef(t *testing.T) {
	cli := newTestClient(t, "http://127.0.0.1:1")

	_, err := cli.Resolve(context.Background(), "plain-password")
	assert.ErrorIs(t, err, ErrInvalidRef)
}

func TestNew_ReadsEnvironment(t *testing.T) {
	srv := fakeVault(t)
	t.Setenv("VAULT_ADDR", srv.URL)
	t.Setenv("VAULT_TOKEN", "test-token")

	cli, err := New(nil, t.Logf)
	require.NoError(t, err)

	got, err := cli.Resolve(context.Background(), "vault:secret/db#password")
	require.NoError(t, err)
	assert.Equal(t, "s3cret", got)
}

func TestNew_ExplicitTokenWins(t *testing.T) {
	srv := fakeVault(t)
	t.Setenv("VAULT_TOKEN", "stale-token")

	cli := newTestClient(t, srv.URL)
	assert.Equal(t, "test-token", cli.api.Token())

	got, err := cli.Resolve(context.Background(), "vault:secret/db#password")
	require.NoError(t, err)
	assert.Equal(t, "s3cret", got)
}
