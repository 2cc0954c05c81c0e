package main

import "ballotchain/cmd"

func main() {
	cmd.Execute()
}
