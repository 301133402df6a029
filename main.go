package main

import "github.com/personaforge/personaforge/cmd"

func main() {
	cmd.Execute()
}
