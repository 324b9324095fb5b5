package database

import (
	"fmt"
	"strings"
)

// ConstructDatabaseURL combines a base URL with an optional database name
// and ensures sslmode is set. Existing query parameters are preserved.
func ConstructDatabaseURL(baseURL, databaseName string) string {
	databaseURL := strings.TrimRight(baseURL, "/")

	if databaseName != "" {
		if strings.Contains(databaseURL, "?") {
			parts := strings.SplitN(databaseURL, "?", 2)
			databaseURL = fmt.Sprintf("%s/%s?%s", parts[0], databaseName, parts[1])
		} else {
			databaseURL = fmt.Sprintf("%s/%s", databaseURL, databaseName)
		}
	}

	if !strings.Contains(databaseURL, "sslmode=") {
		separator := "&"
		if !strings.Contains(databaseURL, "?") {
			separator = "?"
		}
		databaseURL = fmt.Sprintf("%s%ssslmode=disable", databaseURL, separator)
	}

	return databaseURL
}
