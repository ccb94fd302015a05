package aria2

import (
	"context"
	"encoding/json"
	"github.com/liulifox233/tracker-collector/internal/core/logs"
	"github.com/liulifox233/tracker-collector/internal/core/trackers"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"net/http"
	"net/url"
	"strings"
)

type IClient interface {
	// PushTrackers delivers the tracker set to the daemon through a
	// single aria2.changeGlobalOption call. A transport or protocol
	// breakdown comes back through the error return; a daemon that
	// answered but refused the call comes back as a *RpcError with a
	// nil error, the caller decides how loud to be about it.
	PushTrackers(ctx context.Context, set *trackers.Set) (*RpcError, error)
}

// iTransport performs one request/response exchange, whichever way the
// endpoint speaks.
type iTransport interface {
	exchange(ctx context.Context, payload []byte) (*rpcResponse, error)
}

type client struct {
	secret    string
	transport iTransport
}

func NewClient(endpoint string, secret string, httpClient *http.Client) (IClient, error) {
	if strings.TrimSpace(endpoint) == "" {
		return nil, errors.New("aria2 endpoint is not configured")
	}
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("aria2 secret is not configured")
	}
	endpointUrl, err := url.Parse(endpoint)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse aria2 endpoint '%s'", endpoint)
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	return &client{
		secret:    secret,
		transport: transportFor(endpointUrl, httpClient),
	}, nil
}

// An http(s) scheme means plain POST, anything else (ws, wss) means a
// persistent websocket connection.
func transportFor(endpoint *url.URL, httpClient *http.Client) iTransport {
	if strings.HasPrefix(endpoint.Scheme, "http") {
		return &httpTransport{endpoint: endpoint.String(), client: httpClient}
	}
	return &webSocketTransport{endpoint: endpoint.String(), client: httpClient}
}

func (c *client) PushTrackers(ctx context.Context, set *trackers.Set) (*RpcError, error) {
	log := logs.GetLogger()

	payload, err := json.Marshal(changeGlobalOptionRequest(c.secret, map[string]string{
		btTrackerOption: set.Join(","),
	}))
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal rpc request")
	}

	resp, err := c.transport.exchange(ctx, payload)
	if err != nil {
		return nil, err
	}

	if resp.Error != nil {
		return resp.Error, nil
	}
	log.Info("aria2 accepted the tracker list", zap.ByteString("result", resp.Result))
	return nil, nil
}
