package farm

import "fmt"

// GatewayError is the single failure kind returned by HTTPClient. Transport
// errors leave Status at zero; non-2xx responses carry the status code and
// the response body as Message.
type GatewayError struct {
	Method   string
	Endpoint string
	Status   int
	Message  string
	Err      error
}

func (e *GatewayError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("farm api %s %s failed: %d: %s", e.Method, e.Endpoint, e.Status, e.Message)
	}
	return fmt.Sprintf("farm api %s %s failed: %s", e.Method, e.Endpoint, e.Message)
}

func (e *GatewayError) Unwrap() error { return e.Err }
