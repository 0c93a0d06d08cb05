package main

import (
	"log"
	"os"

	"github.com/jonghyeonseol/Glycolamp/cmd/glycolamp/cmd"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
