// Package main provides the CLI entrypoint for hitotop.
package main

func main() {
	Execute()
}
