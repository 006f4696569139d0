package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/abiosoft/ishell/v2"
	"github.com/caarlos0/env/v10"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"gopkg.in/yaml.v2"

	"github.com/edrobertsrayne/nerftank/comms"
	"github.com/edrobertsrayne/nerftank/onboard"
	"github.com/edrobertsrayne/nerftank/onboard/hardware"
)

type EnvConfig struct {
	PORT    string `env:"PORT" envDefault:"0.0.0.0:80"`
	DEBUG   bool   `env:"DEBUG" envDefault:"0"`
	SRCDIR  string `env:"SRCDIR" envDefault:"."`
	HTMLDIR string `env:"HTMLDIR" envDefault:"./static/"`

	Conductor *comms.Conductor
	Simulated bool
}

var (
	ENV *EnvConfig
)

func init() {
	ENV = new(EnvConfig)
	if err := env.Parse(ENV); err != nil {
		panic(fmt.Sprintf("Unable to parse environment: %v", err))
	}
}

func main() {
	// process flags
	simulated := flag.Bool("sim", false, "Run the tank with simulated pins")
	port := flag.String("port", "", "Override the ip:port to listen on")
	configFile := flag.String("config", "", "Path to the tank yaml config")
	flag.Parse()

	ENV.Simulated = *simulated
	if *port != "" {
		ENV.PORT = *port
	}

	// Load the hardware config; the stock wiring applies when no file is
	// present.
	config := onboard.DefaultConfig()
	filename := *configFile
	if filename == "" {
		filename = filepath.Join(ENV.SRCDIR, "nerftank.yaml")
	}
	if raw, err := os.ReadFile(filename); err == nil {
		if err = yaml.Unmarshal(raw, &config); err != nil {
			log.Fatalf("Unable to unmarshal yaml: %v", err)
		}
	} else if *configFile != "" {
		log.Fatalf("Unable to read config file: %v", err)
	}

	var pins hardware.PinSource
	if ENV.Simulated {
		fmt.Println("Creating simulated pin bank")
		pins = hardware.NewSimPins()
	} else {
		gpio, err := hardware.OpenGPIO()
		if err != nil {
			log.Fatalf("Unable to open gpio: %v", err)
		}
		defer gpio.Close()
		pins = gpio
	}

	robot, err := onboard.NewRobot(config, pins)
	if err != nil {
		log.Fatalf("Unable to initialize robot: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	turretDone := robot.Start(ctx)

	ENV.Conductor = &comms.Conductor{Device: robot}
	go ENV.Conductor.UpdateClients(ctx)

	//---
	// Create a local shell
	//---
	{
		shell := ishell.New()
		shell.Println("nerftank development shell")
		shell.ShowPrompt(true)

		shell.AddCmd(&ishell.Cmd{
			Name: "state",
			Help: "show turret state, ammo and armed flag",
			Func: func(c *ishell.Context) {
				s := robot.Status()
				c.Printf("turret: %s  ammo: %d  armed: %v\n", s.Turret, s.Ammo, s.Armed)
			},
		})

		shell.AddCmd(&ishell.Cmd{
			Name: "arm",
			Help: "arm the turret",
			Func: func(c *ishell.Context) {
				robot.Arm()
				c.Println("armed")
			},
		})

		shell.AddCmd(&ishell.Cmd{
			Name: "disarm",
			Help: "disarm the turret",
			Func: func(c *ishell.Context) {
				robot.Disarm()
				c.Println("disarmed")
			},
		})

		shell.AddCmd(&ishell.Cmd{
			Name: "fire",
			Help: "request a single shot",
			Func: func(c *ishell.Context) {
				robot.Fire()
			},
		})

		shell.AddCmd(&ishell.Cmd{
			Name: "move",
			Help: "move <pan> <tilt>  (normalized -1..1)",
			Func: func(c *ishell.Context) {
				if len(c.Args) != 2 {
					c.Err(fmt.Errorf("usage: move <pan> <tilt>"))
					return
				}
				pan, _ := strconv.ParseFloat(c.Args[0], 64)
				tilt, _ := strconv.ParseFloat(c.Args[1], 64)
				robot.Turret().Move(pan, tilt)
			},
		})

		shell.AddCmd(&ishell.Cmd{
			Name: "drive",
			Help: "drive <speed> <turn>  (normalized -1..1)",
			Func: func(c *ishell.Context) {
				if len(c.Args) != 2 {
					c.Err(fmt.Errorf("usage: drive <speed> <turn>"))
					return
				}
				speed, _ := strconv.ParseFloat(c.Args[0], 64)
				turn, _ := strconv.ParseFloat(c.Args[1], 64)
				robot.Update(onboard.InputFrame{Drive: onboard.Stick{X: turn, Y: speed}})
			},
		})

		shell.AddCmd(&ishell.Cmd{
			Name: "stop",
			Help: "stop all drive motors",
			Func: func(c *ishell.Context) {
				robot.Halt()
				c.Println("stopped")
			},
		})

		// Start an instance of the shell so it can be controlled from the CLI
		go shell.Start()
	}

	//---
	// Build the API routes
	//---
	r := chi.NewRouter()

	// A good base middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.RedirectSlashes)
	r.Use(middleware.Recoverer) // make sure this is last

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", StatusHandler)
		r.Post("/arm", ArmHandler)
		r.Post("/disarm", DisarmHandler)
		r.Post("/fire", FireHandler)
	})

	// Add websocket routes
	r.Route("/ws", func(r chi.Router) {
		r.Get("/echo", EchoHandler)
		r.Get("/control", ControlHandler)
	})

	// add static base routes
	FileServer(r, "/", http.Dir(ENV.HTMLDIR))

	srv := &http.Server{Addr: ENV.PORT, Handler: r}
	go func() {
		<-ctx.Done()
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		srv.Shutdown(shutdownCtx)
	}()

	fmt.Println("Listening on port", ENV.PORT)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}

	// wait for the turret loop to park the actuators, then drop the drive
	<-turretDone
	robot.Halt()
	fmt.Println("Shutting down.")
}

// FileServer conveniently sets up a http.FileServer handler to serve
// static files from a http.FileSystem.
func FileServer(r chi.Router, path string, root http.FileSystem) {
	if strings.ContainsAny(path, "{}*") {
		panic("FileServer does not permit URL parameters.")
	}

	fs := http.StripPrefix(path, http.FileServer(root))

	if path != "/" && path[len(path)-1] != '/' {
		r.Get(path, http.RedirectHandler(path+"/", 301).ServeHTTP)
		path += "/"
	}
	path += "*"

	r.Get(path, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fs.ServeHTTP(w, r)
	}))
}
