package main

import (
	"chat-room/internal"
	"chat-room/storage"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	"github.com/gookit/color"
	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"
	flag "github.com/spf13/pflag"
)

func main() {
	dbPath := flag.StringP("db", "d", os.Getenv("BADGER_FILEPATH"), "Path to badger DB")
	prefix := flag.StringP("prefix", "p", "msg:", "Key prefix to scan (participant:, msg:, msg-id:)")
	noColor := flag.Bool("no-color", false, "Disable coloured output")
	flag.Parse()

	if *dbPath == "" {
		log.Fatal("missing --db (or BADGER_FILEPATH)")
	}

	db, err := storage.Open(*dbPath, logs.GetLoggerFromLevel(slog.LevelError), true)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	rows, err := internal.ScanRows(db, *prefix, internal.ChatMapper)
	if err != nil {
		log.Fatal(err)
	}
	render(os.Stdout, rows, !*noColor)
}

func render(w io.Writer, rows []internal.InspectRow, colours bool) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Key", "Type", "Time", "Subject", "Detail"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	for _, row := range rows {
		kind := row.Type
		if colours {
			kind = colourOf(kind).Render(kind)
		}
		table.Append([]string{row.Key, kind, row.Time, row.Subject, row.Detail})
	}
	table.Render()
	fmt.Fprintf(w, "%d key(s)\n", len(rows))
}

func colourOf(kind string) color.Color {
	switch kind {
	case "PARTICIPANT":
		return color.FgGreen
	case "STATUS":
		return color.FgYellow
	case "PRIVATE_MESSAGE":
		return color.FgMagenta
	case "MESSAGE":
		return color.FgCyan
	default:
		return color.FgGray
	}
}
