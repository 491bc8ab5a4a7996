// Command release-manifest builds a versions manifest from GitHub releases.
package main

import "github.com/oshokin/release-manifest/cmd/release-manifest/cmd"

func main() {
	cmd.Execute()
}
