// Command fairsim is the entrypoint for the fairsim discrete-event
// fair-share simulator: `fairsim run`, `fairsim search`, and `fairsim serve`.
package main

import "github.com/fairsim/fairsim/internal/cli"

func main() {
	cli.Execute()
}
