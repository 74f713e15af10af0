package main

import "github.com/maxvaer/apiprobe/cmd"

func main() {
	cmd.Execute()
}
