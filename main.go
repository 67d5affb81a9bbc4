package main

import "github.com/faceattend/faceattend/cmd"

func main() {
	cmd.Execute()
}
