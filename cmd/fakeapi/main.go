package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4/middleware"

	"github.com/dmitrijs2005/fileconv/internal/fakeapi"
)

// slowScript spreads the default walk over a few seconds so the CLI
// renderer has something to show.
func slowScript(job fakeapi.Job, attempt int) []fakeapi.Frame {
	frames := fakeapi.DefaultScript(job, attempt)
	for i := range frames {
		frames[i].Delay = 700 * time.Millisecond
	}
	return frames
}

func main() {
	_ = godotenv.Load()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}

	noStream := flag.Bool("no-stream", false, "answer the progress stream with 404 and complete jobs on the third download poll")
	flag.Parse()

	opts := []fakeapi.Option{fakeapi.WithScript(slowScript), fakeapi.WithBasePath("/api")}
	if *noStream {
		opts = append(opts, fakeapi.WithoutStream(), fakeapi.WithReadyAfterPolls(3))
	}

	srv := fakeapi.New(opts...)
	srv.Echo().Use(middleware.Logger())

	log.Printf("fake conversion API listening on http://localhost:%s/api", port)
	if err := srv.Echo().Start(fmt.Sprintf(":%s", port)); err != nil {
		log.Fatal(err)
	}
}
