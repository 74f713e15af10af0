package output

import (
	"fmt"
	"path/filepath"
	"strings"
)

// DefaultDir is where derived output files are written.
const DefaultDir = "outputs"

// DefaultPath derives the output file name from the base URL and the word
// list: "https://host/api/" with "dict.txt" becomes
// "outputs/https__host_api__dict_results.csv".
func DefaultPath(baseURL, wordlistPath, format string) string {
	name := strings.ReplaceAll(baseURL, "/", "_")
	name = strings.ReplaceAll(name, ":", "")

	list := filepath.Base(wordlistPath)
	if i := strings.Index(list, "."); i >= 0 {
		list = list[:i]
	}

	return filepath.Join(DefaultDir, fmt.Sprintf("%s_%s_results.%s", name, list, Extension(format)))
}

// Extension returns the file extension for an output format.
func Extension(format string) string {
	switch format {
	case "json":
		return "json"
	case "text":
		return "txt"
	default:
		return "csv"
	}
}
