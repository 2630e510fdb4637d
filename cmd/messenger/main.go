package main

import "github.com/doc82/bruce-messenger-fun/cmd/messenger/cmd"

func main() {
	cmd.Execute()
}
