package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	resty "github.com/go-resty/resty/v2"
)

const DefaultRPCTimeout = 60 * time.Second

type HttpClient struct {
	client   *resty.Client
	url      string
	protocol string
	host     string
	port     string
}

// NewHttpClient to get http client instance
func NewHttpClient(url string, protocol string, host string, port string) *HttpClient {
	client := resty.New().
		SetTimeout(DefaultRPCTimeout).
		SetHeader("Content-Type", "application/json")
	return &HttpClient{
		client:   client,
		url:      url,
		protocol: protocol,
		host:     host,
		port:     port,
	}
}

func buildHttpServerAddress(url string, protocol string, host string, port string) string {
	if url != "" {
		return url
	}
	return fmt.Sprintf("%s://%s:%s", protocol, host, port)
}

// RPCCall posts a JSON-RPC 2.0 request and decodes the whole response
// envelope into rpcResponse. RPC level errors are left in the envelope for
// the caller to inspect.
func (client *HttpClient) RPCCall(
	ctx context.Context,
	method string,
	params interface{},
	rpcResponse interface{},
) error {
	rpcEndpoint := buildHttpServerAddress(
		client.url, client.protocol, client.host, client.port,
	)
	payload := map[string]interface{}{
		"jsonrpc": "2.0",
		"method":  method,
		"params":  params,
		"id":      1,
	}

	resp, err := client.client.R().
		SetContext(ctx).
		SetBody(payload).
		Post(rpcEndpoint)
	if err != nil {
		return fmt.Errorf("rpc %v: %w", method, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("rpc %v: response status code: %v", method, resp.StatusCode())
	}

	err = json.Unmarshal(resp.Body(), rpcResponse)
	if err != nil {
		return fmt.Errorf("rpc %v: could not parse response: %w", method, err)
	}
	return nil
}

func (client HttpClient) GetURL() string {
	return buildHttpServerAddress(client.url, client.protocol, client.host, client.port)
}
