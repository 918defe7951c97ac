package parser

import (
	"path/filepath"
	"strconv"
	"strings"
)

// UnknownPartition is the partition key used when no year segment is found.
const UnknownPartition = "unknown"

// PartitionKeyFromPath returns the output partition for a source path: the
// first path segment that is a 4-digit year between 2000 and 2100 inclusive,
// or UnknownPartition when there is none.
func PartitionKeyFromPath(path string) string {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if len(part) != 4 {
			continue
		}
		year, err := strconv.Atoi(part)
		if err != nil {
			continue
		}
		if year >= 2000 && year <= 2100 {
			return part
		}
	}
	return UnknownPartition
}
