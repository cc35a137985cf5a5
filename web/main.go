package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/df07/go-recursive-raytracer/web/server"
)

func main() {
	port := flag.Int("port", 8080, "Port to serve on")
	static := flag.String("static", "static", "Directory of static files")
	flag.Parse()

	webServer := server.NewServer(*port, *static)

	log.Printf("Recursive Raytracer Web Server")
	log.Printf("Visit http://localhost:%d to start rendering", *port)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := webServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("Error shutting down: %v", err)
		}
	}()

	if err := webServer.Start(); err != nil {
		log.Printf("Error starting server: %v", err)
		os.Exit(1)
	}
}
