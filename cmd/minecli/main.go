package main

import "github.com/iov-one/weave-mining/cmd/minecli/cmd"

func main() {
	cmd.Execute()
}
