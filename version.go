// Package arxivparq turns the arXiv metadata snapshot into a long-form
// parquet table, one row per paper and category.
package arxivparq

const (
	// AppName is printed along with the version.
	AppName = "arxivparq"
	// Version of the tools.
	Version = "0.1.0"
)
