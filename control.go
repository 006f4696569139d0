package main

import (
	"log"
	"net/http"

	"github.com/go-chi/render"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ControlHandler is the main drive socket: every inbound message is decoded
// and dispatched by the conductor, and the connection receives the periodic
// state broadcast while it lives.
func ControlHandler(w http.ResponseWriter, r *http.Request) {
	c, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Print("upgrade:", err)
		return
	}

	ENV.Conductor.AddClient(c)
	defer func() {
		ENV.Conductor.RemoveClient(c)
		c.Close()
	}()

	for {
		_, message, err := c.ReadMessage()
		if err != nil {
			log.Println("read:", err)
			break
		}
		if ENV.DEBUG {
			log.Printf("recv: %s", message)
		}
		if err := ENV.Conductor.ProcessMessage(message); err != nil {
			log.Println("control:", err)
		}
	}
}

func EchoHandler(w http.ResponseWriter, r *http.Request) {
	c, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Print("upgrade:", err)
		return
	}
	defer c.Close()
	for {
		mt, message, err := c.ReadMessage()
		if err != nil {
			log.Println("read:", err)
			break
		}
		if err = c.WriteMessage(mt, message); err != nil {
			log.Println("write:", err)
			break
		}
	}
}

func StatusHandler(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, ENV.Conductor.Device.Status())
}

func ArmHandler(w http.ResponseWriter, r *http.Request) {
	ENV.Conductor.Device.Arm()
	render.JSON(w, r, ENV.Conductor.Device.Status())
}

func DisarmHandler(w http.ResponseWriter, r *http.Request) {
	ENV.Conductor.Device.Disarm()
	render.JSON(w, r, ENV.Conductor.Device.Status())
}

func FireHandler(w http.ResponseWriter, r *http.Request) {
	ENV.Conductor.Device.Fire()
	render.JSON(w, r, ENV.Conductor.Device.Status())
}
