// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package main

import (
	"log"

	"github.com/northbound/seekkb/cmd/seekkbd/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		log.Fatal(err)
	}
}
