package database

import (
	"fmt"
	"strings"
)

// ConstructDatabaseURL joins a server URL with a database name.
// sslmode=disable is appended when the URL does not choose a mode itself.
func ConstructDatabaseURL(baseURL, databaseName string) string {
	if databaseName == "" {
		return baseURL
	}

	baseURL = strings.TrimRight(baseURL, "/")

	var databaseURL string
	if strings.Contains(baseURL, "?") {
		parts := strings.SplitN(baseURL, "?", 2)
		databaseURL = fmt.Sprintf("%s/%s?%s", parts[0], databaseName, parts[1])
	} else {
		databaseURL = fmt.Sprintf("%s/%s", baseURL, databaseName)
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

// RedactURL hides the password portion of a database URL for logging
func RedactURL(databaseURL string) string {
	schemeEnd := strings.Index(databaseURL, "://")
	at := strings.LastIndex(databaseURL, "@")
	if schemeEnd < 0 || at < schemeEnd {
		return databaseURL
	}
	userInfo := databaseURL[schemeEnd+3 : at]
	colon := strings.Index(userInfo, ":")
	if colon < 0 {
		return databaseURL
	}
	return databaseURL[:schemeEnd+3] + userInfo[:colon] + ":***" + databaseURL[at:]
}
