package relay

import (
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const writeWait = 5 * time.Second

func (c *Channel) writePump() {
	defer func() {
		log.Info().Str("module", "relay").Msg("writePump closing")
		c.Close()
	}()

	for {
		select {
		case <-c.done:
			log.Info().Str("module", "relay").Msg("writePump done")
			return
		case frame, ok := <-c.send:
			if !ok {
				log.Warn().Str("module", "relay").Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Error().Err(err).Str("module", "relay").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				log.Error().Err(err).Str("module", "relay").Msg("writePump write error")
				return
			}
		}
	}
}

func (c *Channel) readPump() {
	defer func() {
		log.Info().Str("module", "relay").Msg("readPump closing")
		c.Close()
	}()

	for {
		select {
		case <-c.done:
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				log.Error().Err(err).Str("module", "relay").Msg("readPump read error")
				return
			}
			c.dispatch(data)
		}
	}
}
