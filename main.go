package main

import "github.com/theirongolddev/gemledger/cmd"

func main() {
	cmd.Execute()
}
