// Package dispatch implements the TickDispatcher port over HTTP.
package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HTTPTickDispatcher POSTs tick requests to the worker endpoint. The response
// body carries no contract beyond the status code.
type HTTPTickDispatcher struct {
	session   *http.Client
	workerURL string
}

func NewHTTPTickDispatcher(workerURL string) (*HTTPTickDispatcher, error) {
	workerURL = strings.TrimSpace(workerURL)
	if workerURL == "" {
		return nil, errors.New("tick dispatcher: worker URL is empty")
	}

	return &HTTPTickDispatcher{
		session:   &http.Client{Timeout: 15 * time.Second},
		workerURL: workerURL,
	}, nil
}

type tickDispatchBody struct {
	ShipmentID string `json:"shipment_id"`
}

func (d *HTTPTickDispatcher) DispatchTick(ctx context.Context, shipmentID string) error {
	if strings.TrimSpace(shipmentID) == "" {
		return errors.New("dispatch tick: shipmentID must be non-empty")
	}

	payload, err := json.Marshal(tickDispatchBody{ShipmentID: shipmentID})
	if err != nil {
		return fmt.Errorf("dispatch tick %q: marshal: %w", shipmentID, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.workerURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("dispatch tick %q: create request: %w", shipmentID, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.session.Do(req)
	if err != nil {
		return fmt.Errorf("dispatch tick %q: %w", shipmentID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("dispatch tick %q: worker returned %d: %s", shipmentID, resp.StatusCode, strings.TrimSpace(string(b)))
	}

	return nil
}
