// Command sqlengine is a thin demo harness: it loads one or more CSV
// files as named tables and runs a single query against them through
// the engine package, printing the result as tab-separated rows. It
// exists to exercise engine.ExecuteSQL end to end, not as a product
// surface in its own right.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/tessera-sql/sqlengine/datasource"
	"github.com/tessera-sql/sqlengine/engine"
	"github.com/tessera-sql/sqlengine/value"
)

func main() {
	query := flag.String("query", "", "SQL query to run (required)")
	tableFlags := multiFlag{}
	flag.Var(&tableFlags, "table", "name=path.csv, repeatable")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	if *query == "" || len(tableFlags) == 0 {
		fmt.Fprintln(os.Stderr, "usage: sqlengine -table name=file.csv [-table ...] -query \"SELECT ...\"")
		os.Exit(2)
	}

	eng := engine.New(engine.DefaultConfig())
	if *verbose {
		eng.Logger.SetLevel(logrus.DebugLevel)
	}

	for _, spec := range tableFlags {
		name, path, ok := strings.Cut(spec, "=")
		if !ok {
			fmt.Fprintf(os.Stderr, "invalid -table %q, want name=path.csv\n", spec)
			os.Exit(2)
		}
		ds, err := loadCSV(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "loading table %q: %v\n", name, err)
			os.Exit(1)
		}
		eng.RegisterTable(name, ds)
	}

	res, err := eng.ExecuteSQL(engine.Options{Query: *query})
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	defer res.Close()

	if err := printRows(res); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func printRows(res *engine.Result) error {
	first := true
	for {
		r, err := res.Next()
		if err != nil {
			return err
		}
		if r == nil {
			return nil
		}
		if first {
			fmt.Println(strings.Join(r.Columns, "\t"))
			first = false
		}
		cells := make([]string, len(r.Columns))
		for i := range r.Columns {
			v, err := r.Get(i)
			if err != nil {
				return err
			}
			cells[i] = value.Stringify(v)
		}
		fmt.Println(strings.Join(cells, "\t"))
	}
}

func loadCSV(path string) (*datasource.Array, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return datasource.NewArray(nil, nil), nil
	}
	columns := records[0]
	rows := make([][]value.SqlValue, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make([]value.SqlValue, len(columns))
		for i := range columns {
			if i < len(rec) {
				row[i] = value.Of(rec[i])
			} else {
				row[i] = value.Null
			}
		}
		rows = append(rows, row)
	}
	return datasource.NewArray(columns, rows), nil
}

type multiFlag []string

func (m *multiFlag) String() string { return strings.Join(*m, ",") }
func (m *multiFlag) Set(v string) error {
	*m = append(*m, v)
	return nil
}
