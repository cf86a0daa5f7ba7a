package main

import "EchoWave/cmd"

func main() {
	cmd.Execute()
}
