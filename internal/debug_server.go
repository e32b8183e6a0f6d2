package internal

import (
	"chat-room/repositories"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/fxamacker/cbor/v2"
)

//go:embed inspect.html
var templatesFS embed.FS

type InspectRow struct {
	Key     string
	Type    string
	Time    string
	Subject string
	Detail  string
}

type RowMapper func(key string, val []byte) InspectRow
type StatsProvider func() map[string]any

type PageData struct {
	Prefix string
	Items  []InspectRow
	Stats  map[string]any
}

// NewDebugServer serves a read-only HTML listing of the raw Badger keys under
// endpoint, filtered by the "prefix" query parameter (default "msg:").
func NewDebugServer(db *badger.DB, port int, endpoint string, statsProvider StatsProvider) *http.Server {
	mux := http.NewServeMux()
	tmpl := template.Must(template.ParseFS(templatesFS, "inspect.html"))

	mux.HandleFunc(endpoint, func(w http.ResponseWriter, r *http.Request) {
		prefix := r.URL.Query().Get("prefix")
		if prefix == "" {
			prefix = "msg:"
		}
		data := PageData{Prefix: prefix, Stats: make(map[string]any)}
		if statsProvider != nil {
			data.Stats = statsProvider()
		}
		rows, err := ScanRows(db, prefix, ChatMapper)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		data.Items = rows

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = tmpl.Execute(w, data)
	})

	return &http.Server{
		Addr:              fmt.Sprintf("localhost:%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// StartDebugServer runs the inspector in the background until the process exits.
func StartDebugServer(log *slog.Logger, db *badger.DB, port int, statsProvider StatsProvider) *http.Server {
	srv := NewDebugServer(db, port, "/inspect", statsProvider)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn("Debug inspector stopped", "err", err)
		}
	}()
	log.Info("Debug Badger inspector available", "url", fmt.Sprintf("http://localhost:%d/inspect", port))
	return srv
}

// ScanRows maps every key under prefix through mapper, in key order.
func ScanRows(db *badger.DB, prefix string, mapper RowMapper) ([]InspectRow, error) {
	var rows []InspectRow
	err := db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
			item := it.Item()
			key := string(item.KeyCopy(nil))
			err := item.Value(func(val []byte) error {
				rows = append(rows, mapper(key, val))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return rows, err
}

// ChatMapper decodes participant and message rows, anything else is shown raw.
func ChatMapper(key string, val []byte) InspectRow {
	row := InspectRow{Key: key, Type: "RAW", Time: "--:--:--", Subject: "-", Detail: fmt.Sprintf("Size: %d bytes", len(val))}
	switch {
	case strings.HasPrefix(key, "participant:"):
		var p repositories.DiskParticipant
		if err := cbor.Unmarshal(val, &p); err != nil {
			row.Detail = "Error: unmarshal failed"
			return row
		}
		row.Type = "PARTICIPANT"
		row.Subject = p.Name
		row.Time = time.Unix(0, p.LastStatus).UTC().Format("15:04:05")
		row.Detail = "last status"
	case strings.HasPrefix(key, "msg-id:"):
		row.Type = "INDEX"
		row.Detail = string(val)
	case strings.HasPrefix(key, "msg:"):
		var m repositories.DiskMessage
		if err := cbor.Unmarshal(val, &m); err != nil {
			row.Detail = "Error: unmarshal failed"
			return row
		}
		row.Type = strings.ToUpper(m.Kind)
		row.Subject = fmt.Sprintf("%s -> %s", m.From, m.To)
		row.Time = time.Unix(0, m.At).UTC().Format("15:04:05")
		row.Detail = m.Text
	}
	return row
}
