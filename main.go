package main

import "bluecherry-cli/cmd"

func main() {
	cmd.Execute()
}
