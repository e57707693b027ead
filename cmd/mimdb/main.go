// Command mimdb is the command-line wrapper around the storage core: CSV
// bulk load, full-scan queries, column metrics, and the REST server.
package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/mimdb/mimdb"
	"github.com/mimdb/mimdb/csvload"
	"github.com/mimdb/mimdb/format"
	"github.com/mimdb/mimdb/metastore"
	"github.com/mimdb/mimdb/metrics"
	"github.com/mimdb/mimdb/server"
)

var (
	dataDir      string
	rowsPerBatch int
)

func main() {
	root := &cobra.Command{
		Use:           "mimdb",
		Short:         "Columnar analytical storage engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&dataDir, "data-dir", "./mimdb-data", "directory holding table files and the catalog")
	root.PersistentFlags().IntVar(&rowsPerBatch, "rows-per-batch", 0, "rows per codec batch (0 = default)")

	root.AddCommand(loadCmd(), queryCmd(), metricsCmd(), tablesCmd(), dropCmd(), serveCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "mimdb:", err)
		os.Exit(1)
	}
}

func openStore() (*metastore.Store, error) {
	return metastore.Open(dataDir)
}

func batchConfig() mimdb.Config {
	return mimdb.Config{RowsPerBatch: rowsPerBatch}
}

func loadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load <table> <csv-file>",
		Short: "Bulk-load a CSV file into a new table",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, csvPath := args[0], args[1]

			store, err := openStore()
			if err != nil {
				return err
			}

			t, err := csvload.LoadFile(csvPath)
			if err != nil {
				return err
			}

			path, err := store.Register(name)
			if err != nil {
				return err
			}

			if err := mimdb.WriteFile(path, t, batchConfig()); err != nil {
				if dropErr := store.Drop(name); dropErr != nil {
					log.Printf("drop %q after failed write: %v", name, dropErr)
				}

				return err
			}

			fmt.Printf("loaded %q: %d rows, %d columns\n", name, t.RowCount(), len(t.ColumnNames()))

			return nil
		},
	}
}

func queryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "query <table>",
		Short: "Full-scan a table and print it as CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := readTable(args[0])
			if err != nil {
				return err
			}

			names := t.ColumnNames()
			printRow(names)

			row := make([]string, len(names))
			for i := 0; i < t.RowCount(); i++ {
				for j, name := range names {
					data, _ := t.Get(name)
					if data.Type() == format.Int64 {
						row[j] = fmt.Sprintf("%d", data.Ints()[i])
					} else {
						row[j] = data.Strings()[i]
					}
				}
				printRow(row)
			}

			return nil
		},
	}
}

func metricsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "metrics <table>",
		Short: "Print integer averages and ASCII byte counts for a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := readTable(args[0])
			if err != nil {
				return err
			}

			printSortedFloats("average", metrics.TableAverages(t))
			printSortedInts("ascii_bytes", metrics.TableAsciiByteCounts(t))

			return nil
		},
	}
}

func tablesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List registered tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}

			for _, name := range store.List() {
				fmt.Println(name)
			}

			return nil
		},
	}
}

func dropCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "drop <table>",
		Short: "Drop a table and delete its file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}

			return store.Drop(args[0])
		},
	}
}

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}

			srv := server.New(store, batchConfig())
			log.Printf("mimdb listening on %s, data dir %s", addr, dataDir)

			return http.ListenAndServe(addr, srv)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")

	return cmd
}

func readTable(name string) (*mimdb.Table, error) {
	store, err := openStore()
	if err != nil {
		return nil, err
	}

	path, err := store.Path(name)
	if err != nil {
		return nil, err
	}

	return mimdb.ReadFile(path)
}

func printRow(fields []string) {
	for i, f := range fields {
		if i > 0 {
			fmt.Print(",")
		}
		fmt.Print(f)
	}
	fmt.Println()
}

func printSortedFloats(label string, m map[string]float64) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		fmt.Printf("%s(%s) = %g\n", label, k, m[k])
	}
}

func printSortedInts(label string, m map[string]int) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		fmt.Printf("%s(%s) = %d\n", label, k, m[k])
	}
}
