package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/daccred/warupay/config"
	"github.com/daccred/warupay/server"
)

func main() {
	environment := flag.String("e", "development", "")
	flag.Usage = func() {
		fmt.Println("Usage: server -e {mode}")
		os.Exit(1)
	}
	flag.Parse()
	if *environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	config.Init(*environment)
	server.Init()
}
