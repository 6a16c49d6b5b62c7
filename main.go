package main

import "github.com/KostasZigo/gocaf/cmd"

func main() {
	cmd.Execute()
}
