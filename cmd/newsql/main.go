// Command newsql is an interactive SQL workbench over embedded DuckDB
// with attached external data sources.
package main

import "github.com/leandrosousa110490/new-sql/internal/cli"

func main() {
	cli.Execute()
}
