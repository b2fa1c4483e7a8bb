package main

import "github.com/paduszym/bomtool/cmd"

func main() {
	cmd.Execute()
}
