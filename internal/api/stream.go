package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"petrosmart/internal/game"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// The stream is one-way; clients only send control frames.
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

const (
	frameEntry = "entry"
	frameReset = "reset"
)

type streamFrame struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	GameID     string         `json:"gameId"`
	Generation uint64         `json:"generation"`
	Index      int            `json:"index"`
	Entry      *game.Snapshot `json:"entry,omitempty"`
}

// handleHistoryStream pushes ledger entries as they are appended. When the
// session swaps in another ledger (new game, resume, exit) the client gets a
// reset frame and the feed starts again from index 0.
func (s *Server) handleHistoryStream(w http.ResponseWriter, r *http.Request) {
	since, err := sinceParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("stream upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadLimit(maxMessageSize)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			conn.SetReadDeadline(time.Now().Add(pongWait))
			return nil
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	poll := time.NewTicker(s.cfg.StreamPoll)
	ping := time.NewTicker(pingPeriod)
	defer poll.Stop()
	defer ping.Stop()

	_, current, _ := s.game.Ledger()
	cursor := since
	send := func(f streamFrame) bool {
		f.ID = uuid.NewString()
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteJSON(f) == nil
	}
	flush := func() bool {
		gameID, gen, ledger := s.game.Ledger()
		if gen != current {
			current = gen
			cursor = 0
			if !send(streamFrame{Type: frameReset, GameID: gameID, Generation: gen}) {
				return false
			}
		}
		for _, e := range ledger.Since(cursor) {
			entry := e
			if !send(streamFrame{Type: frameEntry, GameID: gameID, Generation: gen, Index: cursor, Entry: &entry}) {
				return false
			}
			cursor++
		}
		return true
	}

	if !flush() {
		return
	}
	for {
		select {
		case <-r.Context().Done():
			return
		case <-closed:
			return
		case <-poll.C:
			if !flush() {
				return
			}
		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
