package aria2

import (
	"encoding/json"
	"fmt"
)

const (
	jsonRpcVersion           = "2.0"
	methodChangeGlobalOption = "aria2.changeGlobalOption"
	// correlationId is the value carried in the request `id` field and
	// used to pick the reply out of the frames a websocket daemon sends
	// back, which may include unrelated notifications.
	correlationId = "cron"

	btTrackerOption = "bt-tracker"
)

type rpcRequest struct {
	Version string        `json:"jsonrpc"`
	Method  string        `json:"method"`
	Id      string        `json:"id"`
	Params  []interface{} `json:"params"`
}

func changeGlobalOptionRequest(secret string, options map[string]string) *rpcRequest {
	return &rpcRequest{
		Version: jsonRpcVersion,
		Method:  methodChangeGlobalOption,
		Id:      correlationId,
		Params: []interface{}{
			fmt.Sprintf("token:%s", secret),
			options,
		},
	}
}

type rpcResponse struct {
	Version string          `json:"jsonrpc"`
	Id      string          `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RpcError       `json:"error,omitempty"`
}

// RpcError is the daemon's application-level refusal. The exchange
// itself succeeded, so it is reported as a value rather than through
// the error return.
type RpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RpcError) Error() string {
	return fmt.Sprintf("aria2 replied with error %d: %s", e.Code, e.Message)
}
