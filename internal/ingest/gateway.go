package ingest

import (
	"context"
	"time"

	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
	"github.com/yanun0323/pkg/sys"
	"github.com/yanun0323/pkg/ws"

	"main/internal/schema"
	"main/pkg/exception"
)

const loginMethodID = 1

// Gateway is the websocket adapter to the exchange gateway. It decodes
// inbound lifecycle and market-data events and writes outbound commands;
// all network I/O stays outside the engine's event handlers.
type Gateway struct {
	wss *ws.WebSocket
}

// NewGateway creates a gateway adapter for the given endpoint.
func NewGateway(ctx context.Context, url string) *Gateway {
	return &Gateway{
		wss: ws.New(ctx, url),
	}
}

// Start opens the websocket connection.
func (g *Gateway) Start(ctx context.Context) error {
	if err := g.wss.Start(ctx); err != nil {
		return errors.Wrap(err, "start wss")
	}
	return nil
}

// Close tears the connection down.
func (g *Gateway) Close() {
	g.wss.Close()
}

// Len returns the number of active subscriptions.
func (g *Gateway) Len() int {
	return g.wss.Len()
}

type loginRequest struct {
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Account string `json:"account"`
	Secret  string `json:"secret"`
}

type loginResponse struct {
	ID     int    `json:"id"`
	Status string `json:"status"`
}

// Login identifies the trading account. Events only flow after a
// successful login acknowledgment.
func (g *Gateway) Login(ctx context.Context, account, secret string) error {
	if err := g.wss.SendAndWait(ctx, ws.Sidecar{
		Sender: func(ctx context.Context, client *ws.WebSocket) error {
			payload := loginRequest{
				ID:      loginMethodID,
				Method:  "login",
				Account: account,
				Secret:  secret,
			}
			if err := client.WriteJSON(payload); err != nil {
				return errors.Wrap(err, "write login payload")
			}
			return nil
		},
		Waiter: func(ctx context.Context, m ws.Message) (bool, error) {
			resp, ok := ws.ReadMessage[loginResponse](m)
			if !ok || resp.ID != loginMethodID {
				return false, nil
			}
			if resp.Status != "ok" {
				return false, errors.Errorf("login rejected, status: %s", resp.Status)
			}
			return true, nil
		},
	}); err != nil {
		return errors.Wrap(err, "send and wait")
	}
	return nil
}

// ObserveEvents decodes inbound frames and forwards them to the handler
// until the context is done.
func (g *Gateway) ObserveEvents(ctx context.Context, handler func(schema.Event)) (unsubscribe func()) {
	ch, cancel := g.wss.Subscribe()
	go func() {
		defer cancel()
		for {
			select {
			case <-sys.Shutdown():
				return
			case <-ctx.Done():
				return
			case m, ok := <-ch:
				if !ok {
					return
				}
				ev, ok := ws.ReadMessage[schema.Event](m)
				if !ok || ev.Header.Type == schema.EventUnknown {
					continue
				}
				if ev.Header.TsRecv == 0 {
					ev.Header.TsRecv = time.Now().UTC().UnixNano()
				}
				handler(ev)
			}
		}
	}()
	return cancel
}

// SendInsertOrder writes an insert command to the gateway.
func (g *Gateway) SendInsertOrder(cmd schema.InsertOrder) error {
	return g.send(schema.Command{Insert: &cmd})
}

// SendCancelOrder writes a cancel command to the gateway.
func (g *Gateway) SendCancelOrder(cmd schema.CancelOrder) error {
	return g.send(schema.Command{Cancel: &cmd})
}

// SendHedgeOrder writes a hedge command to the gateway.
func (g *Gateway) SendHedgeOrder(cmd schema.HedgeOrder) error {
	return g.send(schema.Command{Hedge: &cmd})
}

func (g *Gateway) send(cmd schema.Command) error {
	if g == nil || g.wss == nil {
		return exception.ErrNilInstance
	}
	if err := g.wss.WriteJSON(cmd); err != nil {
		logs.Errorf("write command, err: %+v", err)
		return errors.Wrap(err, "write command")
	}
	return nil
}
