package handlers

import (
	"fmt"
	"strings"
)

const DefaultExplorerURL = "https://stellar.expert/explorer"

// ExplorerURL links to a transaction on the public explorer of the given
// network kind ("testnet" or "public").
func ExplorerURL(base, networkKind, hash string) string {
	if base == "" {
		base = DefaultExplorerURL
	}
	return fmt.Sprintf("%s/%s/tx/%s", strings.TrimRight(base, "/"), networkKind, hash)
}
