package comms

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/edrobertsrayne/nerftank/onboard"
)

// FRAMERATE is how many state updates per second are pushed to connected
// clients.
const FRAMERATE = 10

// Halter is implemented by devices that can stop their drive motors; the
// "stop" command uses it when available.
type Halter interface {
	Halt()
}

// Conductor sits between the websocket transport and the tank. It decodes
// and validates every inbound payload before anything reaches the core, and
// pushes periodic state snapshots back out to every connected client.
type Conductor struct {
	Device onboard.Tank

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

// ProcessMessage handles one raw inbound websocket message. Malformed
// payloads are rejected here, never passed through to the device.
func (c *Conductor) ProcessMessage(data []byte) error {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return fmt.Errorf("malformed control message: %w", err)
	}

	if msg.Cmd != "" {
		return c.processCommand(msg.Cmd)
	}

	if msg.Drive == nil && msg.Turret == nil {
		return fmt.Errorf("control message carries neither a frame nor a command")
	}

	frame, err := msg.frame()
	if err != nil {
		return err
	}
	c.Device.Update(frame)
	return nil
}

func (c *Conductor) processCommand(cmd string) error {
	switch cmd {
	case CmdArm:
		c.Device.Arm()
	case CmdDisarm:
		c.Device.Disarm()
	case CmdFire:
		c.Device.Fire()
	case CmdStop:
		c.Device.Update(onboard.InputFrame{})
		if h, ok := c.Device.(Halter); ok {
			h.Halt()
		}
	default:
		return fmt.Errorf("unable to process command %q", cmd)
	}
	return nil
}

// AddClient registers a connection for state broadcasts.
func (c *Conductor) AddClient(conn *websocket.Conn) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.clients == nil {
		c.clients = make(map[*websocket.Conn]struct{})
	}
	c.clients[conn] = struct{}{}
}

func (c *Conductor) RemoveClient(conn *websocket.Conn) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.clients, conn)
}

// UpdateClients pushes the device status to every client at FRAMERATE until
// ctx is cancelled. Clients that fail a write are dropped; the read loop
// notices the closed connection and cleans up.
func (c *Conductor) UpdateClients(ctx context.Context) {
	ticker := time.NewTicker(time.Second / FRAMERATE)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		msg, err := json.Marshal(c.Device.Status())
		if err != nil {
			log.Println("status marshal:", err)
			continue
		}

		for _, conn := range c.snapshot() {
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.RemoveClient(conn)
			}
		}
	}
}

func (c *Conductor) snapshot() []*websocket.Conn {
	c.mu.Lock()
	defer c.mu.Unlock()
	conns := make([]*websocket.Conn, 0, len(c.clients))
	for conn := range c.clients {
		conns = append(conns, conn)
	}
	return conns
}
