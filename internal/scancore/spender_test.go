package scancore

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyKnownProtocol(t *testing.T) {
	c := NewSpenderClassifier("")

	info := c.Classify(context.Background(), "0x7a250D5630B4cF539739dF2C5dAcb4c659F2488D", false)
	assert.Equal(t, "Uniswap V2: Router 2", info.Name)
	assert.True(t, info.Verified)
	assert.True(t, info.IsContract)
	assert.True(t, info.SourceAvailable)
	assert.Equal(t, uniswapV2Router, info.Address)
}

func TestClassifyWithoutAPIKey(t *testing.T) {
	c := NewSpenderClassifier("")

	info := c.Classify(context.Background(), testSpender, true)
	assert.Equal(t, testSpender, info.Address)
	assert.True(t, info.IsContract)
	assert.False(t, info.Verified)
	assert.Equal(t, "Contract", info.DisplayName())

	info = c.Classify(context.Background(), testSpender, false)
	assert.False(t, info.IsContract)
	assert.Equal(t, "EOA", info.DisplayName())
}

func TestClassifyExplorerLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "getsourcecode", r.URL.Query().Get("action"))
		require.Equal(t, testSpender, r.URL.Query().Get("address"))
		require.Equal(t, "test-key", r.URL.Query().Get("apikey"))
		w.Write([]byte(`{"status":"1","result":[{"ContractName":"SushiRouter"}]}`))
	}))
	defer srv.Close()

	c := NewSpenderClassifier("test-key")
	c.explorerAPI = srv.URL

	info := c.Classify(context.Background(), testSpender, true)
	assert.Equal(t, "SushiRouter", info.Name)
	assert.True(t, info.Verified)
	assert.True(t, info.SourceAvailable)
}

func TestClassifyExplorerUnverifiedContract(t *testing.T) {
	// Explorer answers but the contract has no published source.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"1","result":[{"ContractName":""}]}`))
	}))
	defer srv.Close()

	c := NewSpenderClassifier("test-key")
	c.explorerAPI = srv.URL

	info := c.Classify(context.Background(), testSpender, true)
	assert.Empty(t, info.Name)
	assert.False(t, info.Verified)
	assert.True(t, info.IsContract)
}

func TestClassifyExplorerFailureFallsThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "NOTOK", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewSpenderClassifier("test-key")
	c.explorerAPI = srv.URL

	info := c.Classify(context.Background(), testSpender, true)
	assert.Empty(t, info.Name)
	assert.False(t, info.Verified)
	assert.True(t, info.IsContract)
}

func TestClassifyEOANeverQueriesExplorer(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.Write([]byte(`{"status":"1","result":[{"ContractName":"X"}]}`))
	}))
	defer srv.Close()

	c := NewSpenderClassifier("test-key")
	c.explorerAPI = srv.URL

	c.Classify(context.Background(), testSpender, false)
	assert.False(t, called)
}
