package main

import "github.com/mellonpizza/callisto/cmd"

func main() {
	cmd.Execute()
}
