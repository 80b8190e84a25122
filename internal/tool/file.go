package tool

import (
	"os"
	"strings"
)

// IsFileExists reports whether filename exists. Errors other than "not found" are returned.
func IsFileExists(filename string) (bool, error) {
	_, err := os.Stat(filename)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// TrimWorkerSuffix drops the ".worker" part of a stratum username
func TrimWorkerSuffix(wallet string) string {
	wallet = strings.TrimSpace(wallet)
	if idx := strings.Index(wallet, "."); idx > 0 {
		return wallet[:idx]
	}
	return wallet
}
