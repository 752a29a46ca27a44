package main

import "github.com/owasp-bumper/repolist/cmd"

func main() {
	cmd.Execute()
}
