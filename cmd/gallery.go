package main

import (
	"flag"
	"log"
	"os"

	"github.com/indieinfra/gallery/config"
	"github.com/indieinfra/gallery/server"
)

func main() {
	log.SetPrefix("gallery: ")
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile | log.Lmsgprefix)

	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("gallery", flag.ContinueOnError)
	configFile := fs.String("config", "", "Path to an optional configuration file (i.e., /etc/gallery.yaml)")
	envFile := fs.String("env", ".env", "Path to an optional dotenv file")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	if err := config.LoadEnvFile(*envFile); err != nil {
		log.Printf("failed to load env file %q: %v", *envFile, err)
		return 1
	}

	log.Println("loading configuration...")
	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Printf("failed to load configuration: %v", err)
		return 1
	}

	log.Println("starting http server...")
	if err := server.StartServer(cfg); err != nil {
		log.Printf("server stopped with error: %v", err)
		return 1
	}

	return 0
}
