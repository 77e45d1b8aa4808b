package forwarder

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
)

// lambdaAPI is the minimal Lambda interface required by Client.
type lambdaAPI interface {
	Invoke(ctx context.Context, in *lambda.InvokeInput, optFns ...func(*lambda.Options)) (*lambda.InvokeOutput, error)
}

// FunctionError is returned when the target function ran but reported a failure.
type FunctionError struct {
	Kind    string
	Payload string
}

func (e *FunctionError) Error() string {
	return fmt.Sprintf("forwarder: function error %s: %s", e.Kind, e.Payload)
}

// Client invokes one downstream function synchronously.
type Client struct {
	api          lambdaAPI
	functionName string
}

// New creates a Client targeting functionName.
func New(api lambdaAPI, functionName string) (*Client, error) {
	if api == nil {
		return nil, errors.New("forwarder: api must not be nil")
	}
	if strings.TrimSpace(functionName) == "" {
		return nil, errors.New("forwarder: function name must not be empty")
	}
	return &Client{api: api, functionName: functionName}, nil
}

// Forward invokes the function with payload and returns its response payload.
func (c *Client) Forward(ctx context.Context, payload []byte) ([]byte, error) {
	out, err := c.api.Invoke(ctx, &lambda.InvokeInput{
		FunctionName:   aws.String(c.functionName),
		InvocationType: types.InvocationTypeRequestResponse,
		Payload:        payload,
	})
	if err != nil {
		return nil, fmt.Errorf("forwarder: invoke %s: %w", c.functionName, err)
	}
	if out == nil {
		return nil, nil
	}
	if out.FunctionError != nil {
		return nil, &FunctionError{Kind: *out.FunctionError, Payload: string(out.Payload)}
	}
	return out.Payload, nil
}
