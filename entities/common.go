package entities

type RPCError struct {
	Code       int    `json:"code"`
	Message    string `json:"message"`
	StackTrace string `json:"stackTrace,omitempty"`
}

type RPCBaseRes struct {
	ID       int       `json:"id"`
	JSONRPC  string    `json:"jsonrpc"`
	RPCError *RPCError `json:"error"`
}
