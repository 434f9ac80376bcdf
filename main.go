package main

import (
	"ticket-market/cmd"

	_ "go.uber.org/automaxprocs"
)

func main() {
	cmd.Start()
}
