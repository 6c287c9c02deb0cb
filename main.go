package main

import "github.com/samuelfneumann/gocopter/examples"

func main() {
	examples.Hover(16, 1_000, false)
}
