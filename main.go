package main

import "github.com/Tiliavir/heatlog/cmd"

func main() {
	cmd.Execute()
}
