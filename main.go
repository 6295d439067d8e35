package main

import "github.com/theirongolddev/mrrcast/cmd"

func main() {
	cmd.Execute()
}
