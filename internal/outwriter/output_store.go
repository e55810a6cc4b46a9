package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/huangsam/legacylens/internal/contract"
	"github.com/huangsam/legacylens/schema"
	"github.com/olekukonko/tablewriter"
)

// statusOrder is the display order of file statuses.
var statusOrder = []schema.ProcessingStatus{
	schema.StatusUploaded,
	schema.StatusProcessing,
	schema.StatusAnalyzed,
	schema.StatusFailed,
}

// WriteStoreStatusResult outputs the persistence layer status.
func WriteStoreStatusResult(status schema.StoreStatus, cfg *contract.Config) error {
	return render(cfg, renderer{
		data:      status,
		csvHeader: []string{"section", "key", "value"},
		csvRows: func(w *csv.Writer) error {
			return w.WriteAll(storeStatusRows(status))
		},
		table: func(w io.Writer) error {
			return writeStoreStatusTable(status, w)
		},
	})
}

// storeStatusRows flattens the status into section/key/value rows.
func storeStatusRows(status schema.StoreStatus) [][]string {
	rows := [][]string{
		{"store", "backend", status.Backend},
		{"store", "connected", strconv.FormatBool(status.Connected)},
		{"files", "total", strconv.FormatInt(status.TotalFiles, 10)},
	}
	for _, s := range statusOrder {
		rows = append(rows, []string{"files", string(s), strconv.FormatInt(status.FilesByStatus[s], 10)})
	}
	rows = append(rows,
		[]string{"analyses", "total", strconv.FormatInt(status.TotalAnalyses, 10)},
		[]string{"analyses", "last_id", strconv.FormatInt(status.LastAnalysisID, 10)},
	)
	if !status.LastAnalysisTime.IsZero() {
		rows = append(rows, []string{"analyses", "last_time", status.LastAnalysisTime.Format(contract.DateTimeFormat)})
	}
	tables := make([]string, 0, len(status.TableSizes))
	for name := range status.TableSizes {
		tables = append(tables, name)
	}
	slices.Sort(tables)
	for _, name := range tables {
		rows = append(rows, []string{"tables", name, strconv.FormatInt(status.TableSizes[name], 10)})
	}
	return rows
}

func writeStoreStatusTable(status schema.StoreStatus, writer io.Writer) error {
	table := tablewriter.NewWriter(writer)
	table.Header([]string{"Section", "Key", "Value"})
	if err := table.Bulk(storeStatusRows(status)); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	if !status.Connected {
		_, err := fmt.Fprintln(writer, "Store is not reachable")
		return err
	}
	return nil
}
