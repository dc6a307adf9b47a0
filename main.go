// Package main is the entry point for the repolens CLI.
package main

import "repolens.dev/pkg/repolens/cmd"

func main() {
	cmd.Execute()
}
