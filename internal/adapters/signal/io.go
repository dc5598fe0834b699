package signal

import (
	"context"
	"errors"
	"time"

	"github.com/dkeye/coderoom/internal/domain"
	"github.com/dkeye/coderoom/internal/protocol"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/panics"
)

// writePump owns all writes to the socket, including pings.
func (ctl *SignalWSController) writePump(ctx context.Context, id domain.ConnID, c *WsSignalConn) {
	ticker := time.NewTicker(ctl.opts.PingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(ctl.opts.WriteWait))
			return
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(ctl.opts.WriteWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Str("conn", string(id)).Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Warn().Err(err).Str("module", "signal").Str("conn", string(id)).Msg("writePump write error")
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(ctl.opts.WriteWait)); err != nil {
				log.Warn().Err(err).Str("module", "signal").Str("conn", string(id)).Msg("writePump ping")
				return
			}
		}
	}
}

func (ctl *SignalWSController) readPump(ctx context.Context, id domain.ConnID, c *WsSignalConn) {
	logger := log.With().Str("module", "signal").Str("conn", string(id)).Logger()
	sampled := logger.Sample(&zerolog.BasicSampler{N: 100})
	limiter := newConnLimiter(ctl.opts.MessagesPerSecond, ctl.opts.MessageBurst)

	c.conn.SetReadLimit(ctl.opts.ReadLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(ctl.opts.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(ctl.opts.PongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) && ctx.Err() == nil {
				logger.Warn().Err(err).Msg("readPump read error")
			} else {
				logger.Debug().Err(err).Msg("readPump closing")
			}
			return
		}

		switch limiter.allow() {
		case verdictAllow:
		case verdictDrop:
			sampled.Warn().Int("violations", limiter.violations).Msg("rate limited, message dropped")
			continue
		case verdictDisconnect:
			logger.Warn().Int("violations", limiter.violations).Msg("rate limit violations exceeded, disconnecting")
			return
		}

		ctl.dispatch(ctx, id, data)
	}
}

// dispatch decodes one frame and hands it to the orchestrator. A panic in a
// handler is logged and the connection keeps serving.
func (ctl *SignalWSController) dispatch(ctx context.Context, id domain.ConnID, data []byte) {
	msg, err := protocol.Decode(data)
	if err != nil {
		if errors.Is(err, protocol.ErrUnknownKind) {
			log.Warn().Err(err).Str("module", "signal").Str("conn", string(id)).Msg("unknown event")
		} else {
			log.Debug().Err(err).Str("module", "signal").Str("conn", string(id)).Msg("bad payload")
		}
		ctl.Orch.Reject(id, "bad_payload")
		return
	}

	var pc panics.Catcher
	pc.Try(func() { ctl.Orch.Handle(ctx, id, msg) })
	if r := pc.Recovered(); r != nil {
		log.Error().Err(r.AsError()).Str("module", "signal").Str("conn", string(id)).Str("type", string(msg.Kind())).Msg("handler panic")
		ctl.Orch.Reject(id, "Internal error.")
	}
}
