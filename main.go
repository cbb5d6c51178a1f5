package main

import "github.com/Taichi-iskw/yt-scribe/cmd"

func main() {
	cmd.Execute()
}
