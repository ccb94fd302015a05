package aria2

import (
	"context"
	"encoding/json"
	"github.com/liulifox233/tracker-collector/internal/core/trackers"
	"github.com/stretchr/testify/assert"
	"net/http"
	"net/http/httptest"
	"net/url"
	"nhooyr.io/websocket"
	"strings"
	"testing"
)

func TestNewClient_ShouldFailWithoutEndpoint(t *testing.T) {
	_, err := NewClient("", "s3cret", nil)
	assert.Error(t, err)
}

func TestNewClient_ShouldFailWithoutSecret(t *testing.T) {
	_, err := NewClient("http://localhost:6800/jsonrpc", "  ", nil)
	assert.Error(t, err)
}

func TestTransportFor_ShouldSelectTransportByScheme(t *testing.T) {
	tests := []struct {
		name        string
		endpoint    string
		isWebSocket bool
	}{
		{name: "shouldUseHttpTransportForHttp", endpoint: "http://host/jsonrpc", isWebSocket: false},
		{name: "shouldUseHttpTransportForHttps", endpoint: "https://host/jsonrpc", isWebSocket: false},
		{name: "shouldUseWebSocketTransportForWs", endpoint: "ws://host/jsonrpc", isWebSocket: true},
		{name: "shouldUseWebSocketTransportForWss", endpoint: "wss://host/jsonrpc", isWebSocket: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			endpoint, err := url.Parse(tt.endpoint)
			if err != nil {
				t.Fatalf("Failed to parse url: %+v", err)
			}
			transport := transportFor(endpoint, &http.Client{})
			if tt.isWebSocket {
				assert.IsType(t, &webSocketTransport{}, transport)
			} else {
				assert.IsType(t, &httpTransport{}, transport)
			}
		})
	}
}

func TestPushTrackers_HttpShouldPostJsonRpcEnvelope(t *testing.T) {
	var received rpcRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("Failed to decode request body: %+v", err)
		}
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":"cron","result":"OK"}`))
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "s3cret", server.Client())
	if err != nil {
		t.Fatalf("Failed to create client: %+v", err)
	}

	rpcErr, err := client.PushTrackers(context.Background(), trackers.NewSet("udp://a/announce", "udp://b/announce"))
	if err != nil {
		t.Fatalf("Failed to push trackers: %+v", err)
	}
	assert.Nil(t, rpcErr)

	assert.Equal(t, "2.0", received.Version)
	assert.Equal(t, "aria2.changeGlobalOption", received.Method)
	assert.Equal(t, "cron", received.Id)
	assert.Len(t, received.Params, 2)
	assert.Equal(t, "token:s3cret", received.Params[0])
	options := received.Params[1].(map[string]interface{})
	assert.Equal(t, "udp://a/announce,udp://b/announce", options["bt-tracker"])
}

func TestPushTrackers_HttpShouldReturnDaemonErrorAsValue(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":"cron","error":{"code":1,"message":"Unauthorized"}}`))
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "wrong", server.Client())
	if err != nil {
		t.Fatalf("Failed to create client: %+v", err)
	}

	rpcErr, err := client.PushTrackers(context.Background(), trackers.NewSet("udp://a/announce"))

	assert.NoError(t, err)
	if assert.NotNil(t, rpcErr) {
		assert.Equal(t, 1, rpcErr.Code)
		assert.Equal(t, "Unauthorized", rpcErr.Message)
	}
}

func TestPushTrackers_HttpShouldFailOnTransportErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{name: "shouldFailOnNon2xxStatus", handler: func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", http.StatusBadGateway)
		}},
		{name: "shouldFailOnMalformedBody", handler: func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("most definitely not json"))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			client, err := NewClient(server.URL, "s3cret", server.Client())
			if err != nil {
				t.Fatalf("Failed to create client: %+v", err)
			}

			_, err = client.PushTrackers(context.Background(), trackers.NewSet("udp://a/announce"))
			assert.Error(t, err)
		})
	}
}

func TestPushTrackers_WebSocketShouldSkipUncorrelatedFrames(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			t.Errorf("Failed to accept websocket: %+v", err)
			return
		}
		defer func() { _ = conn.Close(websocket.StatusNormalClosure, "done") }()
		ctx := r.Context()

		// notifications streamed before the client's request is even
		// read, the client must discard them
		_ = conn.Write(ctx, websocket.MessageText, []byte(`{"jsonrpc":"2.0","method":"aria2.onDownloadStart","params":[{"gid":"2089b05ecca3d829"}]}`))
		_ = conn.Write(ctx, websocket.MessageText, []byte(`{"jsonrpc":"2.0","id":"other-caller","result":"OK"}`))

		_, frame, err := conn.Read(ctx)
		if err != nil {
			t.Errorf("Failed to read request frame: %+v", err)
			return
		}
		var req rpcRequest
		if err := json.Unmarshal(frame, &req); err != nil {
			t.Errorf("Failed to parse request frame: %+v", err)
			return
		}
		assert.Equal(t, "aria2.changeGlobalOption", req.Method)
		assert.Equal(t, "cron", req.Id)

		_ = conn.Write(ctx, websocket.MessageText, []byte(`{"jsonrpc":"2.0","id":"cron","result":"OK"}`))
	}))
	defer server.Close()

	endpoint := strings.Replace(server.URL, "http://", "ws://", 1)
	client, err := NewClient(endpoint, "s3cret", server.Client())
	if err != nil {
		t.Fatalf("Failed to create client: %+v", err)
	}

	rpcErr, err := client.PushTrackers(context.Background(), trackers.NewSet("udp://a/announce"))
	if err != nil {
		t.Fatalf("Failed to push trackers: %+v", err)
	}
	assert.Nil(t, rpcErr)
}

func TestPushTrackers_WebSocketShouldReturnDaemonErrorAsValue(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			t.Errorf("Failed to accept websocket: %+v", err)
			return
		}
		defer func() { _ = conn.Close(websocket.StatusNormalClosure, "done") }()
		ctx := r.Context()

		if _, _, err := conn.Read(ctx); err != nil {
			t.Errorf("Failed to read request frame: %+v", err)
			return
		}
		_ = conn.Write(ctx, websocket.MessageText, []byte(`{"jsonrpc":"2.0","id":"cron","error":{"code":1,"message":"x"}}`))
	}))
	defer server.Close()

	endpoint := strings.Replace(server.URL, "http://", "ws://", 1)
	client, err := NewClient(endpoint, "s3cret", server.Client())
	if err != nil {
		t.Fatalf("Failed to create client: %+v", err)
	}

	rpcErr, err := client.PushTrackers(context.Background(), trackers.NewSet("udp://a/announce"))

	assert.NoError(t, err)
	if assert.NotNil(t, rpcErr) {
		assert.Equal(t, 1, rpcErr.Code)
		assert.Equal(t, "x", rpcErr.Message)
	}
}

func TestPushTrackers_WebSocketShouldFailWhenConnectionCloses(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		// close without ever sending a correlated reply
		_ = conn.Close(websocket.StatusGoingAway, "bye")
	}))
	defer server.Close()

	endpoint := strings.Replace(server.URL, "http://", "ws://", 1)
	client, err := NewClient(endpoint, "s3cret", server.Client())
	if err != nil {
		t.Fatalf("Failed to create client: %+v", err)
	}

	_, err = client.PushTrackers(context.Background(), trackers.NewSet("udp://a/announce"))
	assert.Error(t, err)
}
