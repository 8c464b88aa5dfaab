package main

import "github.com/kozaktomas/reframer/cmd"

func main() {
	cmd.Execute()
}
