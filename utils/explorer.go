package utils

import (
	"fmt"
	"strings"
)

// TxExplorerLink points at a transaction page of the layer 1 explorer.
func TxExplorerLink(scannerURL string, txHash string) string {
	return fmt.Sprintf("%s/transaction/%s", strings.TrimRight(scannerURL, "/"), txHash)
}
