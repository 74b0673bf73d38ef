//go:build cli
// +build cli

package main

import (
	_ "commerce.GO/custom"

	"commerce.GO/cmd"
	"commerce.GO/config"
)

func main() {
	config.LoadEnv()
	cmd.Execute()
}
