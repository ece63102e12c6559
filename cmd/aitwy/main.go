package main

import "github.com/aitwy/aitwy-server/cmd"

func main() {
	cmd.Execute()
}
