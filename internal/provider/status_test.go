package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mockCID(t *testing.T) string {
	t.Helper()
	client := newTestClient("http://127.0.0.1:0", "")
	result := client.Upload(context.Background(), []byte("x"), "probe.html")
	require.True(t, result.Mock)
	return result.CID
}

func TestCheckStatusMockShortCircuit(t *testing.T) {
	var probes int
	gw := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		probes++
	}))
	defer gw.Close()

	client := newTestClient("http://127.0.0.1:0", "", gw.URL+"/ipfs/")
	status := client.CheckStatus(context.Background(), mockCID(t))

	assert.Equal(t, "active", status.Status)
	assert.True(t, status.PDPVerified)
	assert.NotNil(t, status.LastVerified)
	assert.Zero(t, probes, "mock CIDs must not hit the gateways")
}

func TestCheckStatusFirstGatewayWins(t *testing.T) {
	var firstProbes, secondProbes int
	first := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		firstProbes++
		assert.Equal(t, http.MethodHead, r.Method)
	}))
	defer first.Close()
	second := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		secondProbes++
	}))
	defer second.Close()

	client := newTestClient("http://127.0.0.1:0", "", first.URL+"/ipfs/", second.URL+"/ipfs/")
	status := client.CheckStatus(context.Background(), "QmRealCid")

	assert.Equal(t, "active", status.Status)
	assert.True(t, status.PDPVerified)
	require.NotNil(t, status.LastVerified)
	assert.Equal(t, 1, firstProbes)
	assert.Zero(t, secondProbes, "probing must stop at the first success")
}

func TestCheckStatusFallsThroughFailedGateways(t *testing.T) {
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer failing.Close()
	working := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer working.Close()

	client := newTestClient("http://127.0.0.1:0", "", failing.URL+"/ipfs/", working.URL+"/ipfs/")
	status := client.CheckStatus(context.Background(), "QmRealCid")

	assert.Equal(t, "active", status.Status)
}

func TestCheckStatusAllGatewaysUnreachable(t *testing.T) {
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer failing.Close()

	// One failing gateway, one that refuses connections entirely.
	client := newTestClient("http://127.0.0.1:0", "", failing.URL+"/ipfs/", "http://127.0.0.1:1/ipfs/")
	status := client.CheckStatus(context.Background(), "QmRealCid")

	assert.Equal(t, "sealing", status.Status)
	assert.False(t, status.PDPVerified)
	assert.Nil(t, status.LastVerified)
	assert.Equal(t, "QmRealCid", status.CID)
	assert.NotEmpty(t, status.DealID)
}

func TestCheckStatusIdempotent(t *testing.T) {
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer failing.Close()

	client := newTestClient("http://127.0.0.1:0", "", failing.URL+"/ipfs/")

	first := client.CheckStatus(context.Background(), "QmRealCid")
	second := client.CheckStatus(context.Background(), "QmRealCid")
	assert.Equal(t, first.Status, second.Status)
	assert.Equal(t, first.PDPVerified, second.PDPVerified)
}
