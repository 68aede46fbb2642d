package main

import "provkit/cmd"

func main() {
	cmd.Execute()
}
