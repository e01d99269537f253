package main

import "o365sync/cmd"

func main() {
	cmd.Execute()
}
