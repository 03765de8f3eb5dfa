package ws

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vovakirdan/drop-merge/internal/engine"
	"github.com/vovakirdan/drop-merge/internal/session"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

var errTurnInProgress = errors.New("turn in progress")

// outbound is a queued message, written after waiting delay.
type outbound struct {
	data  []byte
	delay time.Duration
}

// conn is one player connection. Its session is only touched by readPump.
type conn struct {
	srv    *Server
	ws     *websocket.Conn
	send   chan outbound
	done   chan struct{} // Closed when writePump exits
	player string

	env        session.Env
	sess       session.Session
	busyUntil  time.Time
	scoreSaved bool
}

func newConn(srv *Server, ws *websocket.Conn, player string) *conn {
	return &conn{
		srv:    srv,
		ws:     ws,
		send:   make(chan outbound, 256),
		done:   make(chan struct{}),
		player: player,
		env:    session.NewEnv(srv.opts.Config.Rules(), srv.opts.Seed),
	}
}

// readPump loads the session, then handles requests until the peer leaves.
func (c *conn) readPump() {
	defer func() {
		close(c.send)
		c.ws.Close()
	}()

	c.ws.SetReadLimit(maxMessageSize)
	//nolint:errcheck // Deadline errors surface on the next read
	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	c.sess = c.load()
	c.enqueue(stateMessage(c.srv.opts.Variant, c.sess), 0)

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.srv.logger.Warn("websocket read failed", "player", c.player, "err", err)
			}
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.enqueue(ErrorMessage{Type: TypeError, Error: "malformed message"}, 0)
			continue
		}
		if err := c.handle(msg); err != nil {
			c.enqueue(ErrorMessage{Type: TypeError, Error: err.Error()}, 0)
		}
	}
}

func (c *conn) handle(msg ClientMessage) error {
	if time.Now().Before(c.busyUntil) {
		return errTurnInProgress
	}

	switch msg.Type {
	case TypeDrop:
		return c.drop(msg.Col)

	case TypeUndo:
		next, err := session.Undo(c.sess)
		if err != nil {
			return err
		}
		c.settle(next)

	case TypeRestart:
		c.settle(session.Restart(c.sess, c.env))

	default:
		return errors.New("unknown message type " + msg.Type)
	}
	return nil
}

// drop resolves a turn and queues its frames with the configured pacing.
// Further requests are refused until the last frame has been sent.
func (c *conn) drop(col int) error {
	next, out, err := session.ApplyDrop(c.sess, col, c.env)
	if err != nil {
		return err
	}
	if out.Truncated {
		c.srv.logger.Warn("turn stopped at cycle cap",
			"player", c.player, "cycles", out.Cycles, "score_delta", out.ScoreDelta)
	}

	pacing := c.srv.opts.Config.Pacing
	score := c.sess.Score
	var delay, total time.Duration
	for _, f := range out.Frames {
		score += f.Scored
		c.enqueue(FrameMessage{
			Type:   TypeFrame,
			Kind:   f.Kind.String(),
			Blocks: f.Grid.Blocks,
			Diff:   f.Diff,
			Scored: f.Scored,
			Combo:  f.Combo,
			Score:  score,
		}, delay)
		if f.Combo >= 2 {
			c.enqueue(ComboMessage{Type: TypeCombo, Level: f.Combo}, 0)
		}
		total += delay

		delay = pacing.CycleDelay()
		if f.Kind == engine.FrameDrop {
			delay = pacing.DropDelay()
		}
	}
	total += delay
	c.busyUntil = time.Now().Add(total)

	c.sess = next
	c.save()
	c.enqueue(stateMessage(c.srv.opts.Variant, next), delay)
	return nil
}

// settle replaces the session without playback.
func (c *conn) settle(s session.Session) {
	c.sess = s
	c.save()
	c.enqueue(stateMessage(c.srv.opts.Variant, s), 0)
}

// load resumes the player's saved session, or starts a new game.
func (c *conn) load() session.Session {
	store := c.srv.opts.Store
	if store == nil {
		return session.NewGame(0, c.env)
	}

	variant := c.srv.opts.Variant
	high, err := store.HighScore(variant, c.player)
	if err != nil {
		c.srv.logger.Warn("cannot load high score", "player", c.player, "err", err)
	}
	data, err := store.LoadSession(variant, c.player)
	if err != nil {
		c.srv.logger.Warn("cannot load saved session", "player", c.player, "err", err)
	}
	if data == nil {
		return session.NewGame(high, c.env)
	}

	s, err := session.Unmarshal(data, high, c.env)
	if err != nil {
		c.srv.logger.Warn("discarding unreadable saved session", "player", c.player, "err", err)
		return session.NewGame(high, c.env)
	}
	c.scoreSaved = s.GameOver()
	return s
}

// save writes the session and high score, and records a finished game once.
func (c *conn) save() {
	store := c.srv.opts.Store
	if store == nil {
		return
	}
	variant := c.srv.opts.Variant

	data, err := session.Marshal(c.sess)
	if err == nil {
		err = store.SaveSession(variant, c.player, data)
	}
	if err != nil {
		c.srv.logger.Warn("cannot save session", "player", c.player, "err", err)
	}
	if err := store.SetHighScore(variant, c.player, c.sess.HighScore); err != nil {
		c.srv.logger.Warn("cannot save high score", "player", c.player, "err", err)
	}

	if !c.sess.GameOver() {
		c.scoreSaved = false
		return
	}
	if !c.scoreSaved && c.sess.Score > 0 {
		if _, err := store.SaveScore(variant, c.player, c.sess.Score, c.sess.Grid.MaxValue()); err != nil {
			c.srv.logger.Warn("cannot save score", "player", c.player, "err", err)
		}
	}
	c.scoreSaved = true
}

// enqueue encodes v for writePump. It gives up once the writer has exited.
func (c *conn) enqueue(v any, delay time.Duration) {
	data, err := json.Marshal(v)
	if err != nil {
		c.srv.logger.Error("cannot encode message", "err", err)
		return
	}
	select {
	case c.send <- outbound{data: data, delay: delay}:
	case <-c.done:
	}
}

// writePump writes queued messages in order and keeps the connection alive.
func (c *conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		close(c.done)
		c.ws.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				//nolint:errcheck // Connection is closing anyway
				c.ws.SetWriteDeadline(time.Now().Add(writeWait))
				//nolint:errcheck // Connection is closing anyway
				c.ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if msg.delay > 0 {
				time.Sleep(msg.delay)
			}
			//nolint:errcheck // A failed deadline shows up as a write error
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, msg.data); err != nil {
				return
			}

		case <-ticker.C:
			//nolint:errcheck // A failed deadline shows up as a write error
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
