package entities

type VersionRes struct {
	RPCBaseRes
	Result string `json:"result"`
}

type UnlockRes struct {
	RPCBaseRes
	Result string `json:"result"`
}
