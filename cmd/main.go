package main

import "github.com/canopy-network/omniroute/cmd/cli"

func main() {
	cli.Execute()
}
