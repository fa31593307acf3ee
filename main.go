package main

import "astrobook/cmd"

func main() {
	cmd.Execute()
}
