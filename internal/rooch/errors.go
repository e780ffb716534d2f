// internal/rooch/errors.go
package rooch

import (
	"context"
	"errors"
	"strings"

	"github.com/gagliardetto/solana-go/rpc/jsonrpc"
)

// Error types reported by AnalyzeRPCError.
const (
	ErrorTypeNone      = "none"
	ErrorTypeRPC       = "rpc_error"
	ErrorTypeTimeout   = "timeout"
	ErrorTypeCanceled  = "canceled"
	ErrorTypeTransport = "transport_error"
)

// RPCErrorInfo is a flattened view of an RPC failure for logging.
type RPCErrorInfo struct {
	Type    string
	Code    int
	Message string
	// MoveAbort is set when the node reports a Move abort, e.g. insufficient balance.
	MoveAbort bool
	Data      interface{}
}

// AnalyzeRPCError classifies err into an application error returned by the node
// or a failure to reach it.
func AnalyzeRPCError(err error) RPCErrorInfo {
	if err == nil {
		return RPCErrorInfo{Type: ErrorTypeNone}
	}

	var rpcErr *jsonrpc.RPCError
	if errors.As(err, &rpcErr) {
		return RPCErrorInfo{
			Type:      ErrorTypeRPC,
			Code:      rpcErr.Code,
			Message:   rpcErr.Message,
			MoveAbort: strings.Contains(strings.ToUpper(rpcErr.Message), "MOVE_ABORT") || strings.Contains(rpcErr.Message, "MoveAbort"),
			Data:      rpcErr.Data,
		}
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return RPCErrorInfo{Type: ErrorTypeTimeout, Message: err.Error()}
	case errors.Is(err, context.Canceled):
		return RPCErrorInfo{Type: ErrorTypeCanceled, Message: err.Error()}
	}
	return RPCErrorInfo{Type: ErrorTypeTransport, Message: err.Error()}
}

// IsRetryable reports whether err is worth retrying. Errors the node answered
// with are final.
func IsRetryable(err error) bool {
	switch AnalyzeRPCError(err).Type {
	case ErrorTypeTransport, ErrorTypeTimeout:
		return true
	}
	return false
}
