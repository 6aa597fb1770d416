// card-inspector prints the native SQL and result columns of a Metabase card.
//
//	card-inspector <card_id> [-o text|json|table|markdown]
//	card-inspector explain <card_id>
//	card-inspector serve
package main

import (
	"os"

	"github.com/sozercan/card-inspector/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
