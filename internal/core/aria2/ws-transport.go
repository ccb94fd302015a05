package aria2

import (
	"context"
	"encoding/json"
	"github.com/liulifox233/tracker-collector/internal/core/logs"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"net/http"
	"nhooyr.io/websocket"
)

type webSocketTransport struct {
	endpoint string
	client   *http.Client
}

// exchange sends the request as one text frame and reads frames until
// the correlated reply shows up. Send and receive run concurrently: a
// daemon may start streaming notification frames the moment the
// connection opens, waiting for the write to finish before reading
// would risk missing the reply behind a filled buffer.
func (t *webSocketTransport) exchange(ctx context.Context, payload []byte) (*rpcResponse, error) {
	log := logs.GetLogger()

	conn, _, err := websocket.Dial(ctx, t.endpoint, &websocket.DialOptions{
		HTTPClient: t.client,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to connect to websocket endpoint '%s'", t.endpoint)
	}
	defer func() { _ = conn.Close(websocket.StatusNormalClosure, "tracker sync done") }()

	writeDone := make(chan error, 1)
	go func() {
		writeDone <- conn.Write(ctx, websocket.MessageText, payload)
	}()

	var matched *rpcResponse
	for matched == nil {
		msgType, frame, err := conn.Read(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "websocket closed before a correlated reply arrived")
		}
		if msgType != websocket.MessageText {
			continue
		}

		var resp rpcResponse
		if err := json.Unmarshal(frame, &resp); err != nil {
			return nil, errors.Wrap(err, "failed to parse incoming websocket frame")
		}
		if resp.Id != correlationId {
			// Server-pushed notification unrelated to our request
			log.Debug("discarding uncorrelated websocket frame", zap.String("id", resp.Id))
			continue
		}
		matched = &resp
	}

	if err := <-writeDone; err != nil {
		return nil, errors.Wrap(err, "failed to send rpc frame")
	}
	return matched, nil
}
