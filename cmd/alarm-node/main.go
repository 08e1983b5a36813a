package main

import "github.com/oshokin/alarm-node/cmd/alarm-node/cmd"

func main() {
	cmd.Execute()
}
