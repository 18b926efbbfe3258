package main

import "tasc/cmd"

func main() {
	cmd.Run()
}
