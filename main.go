package main

import "github.com/s4bridge/s4bridge/cmd"

func main() {
	cmd.Execute()
}
