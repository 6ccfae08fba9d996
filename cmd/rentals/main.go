// Command rentals is the apartment and contract administration console.
package main

import "github.com/mesh-intelligence/rentals/internal/cli"

func main() {
	cli.Execute()
}
