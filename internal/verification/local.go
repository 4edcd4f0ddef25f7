package verification

import (
	"context"
	"net/http"
)

// Local calls the in-process Service and reports the same StatusError values
// an HTTP round trip to the endpoint would.
type Local struct {
	service *Service
}

func NewLocal(service *Service) *Local {
	return &Local{service: service}
}

func (l *Local) Verify(ctx context.Context, req Request) (*Response, error) {
	status, resp := Outcome(l.service.Verify(ctx, req))
	if status != http.StatusOK {
		return nil, &StatusError{Code: status, Message: resp.Message, Data: resp.Data}
	}
	return &resp, nil
}
