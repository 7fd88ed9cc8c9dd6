package format

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	tm "github.com/buger/goterm"
	"github.com/fatih/color"
	"github.com/gioco-play/easy-i18n/i18n"
)

// Status is the indicator printed at the end of a summary row
type Status int

const (
	StatusDone Status = iota
	StatusError
	StatusSkip
)

func (s Status) tip() string {
	switch s {
	case StatusError:
		return color.RedString("[ERROR]")
	case StatusSkip:
		return color.YellowString("[SKIP]")
	default:
		return color.GreenString("[DONE]")
	}
}

// Row is one line of a summary table
type Row struct {
	Item    string
	Msg     string
	Suggest string
	Status  Status
}

// Output writes a single row with its status indicator to w
func Output(w io.Writer, item, msg, suggest string, ok bool) {
	status := StatusDone
	if !ok {
		status = StatusError
	}
	Table(w, []Row{{Item: item, Msg: msg, Suggest: suggest, Status: status}})
}

// Table writes rows aligned in columns to w. Item and Suggest are looked up
// in the active i18n catalog.
func Table(w io.Writer, rows []Row) {
	table := tm.NewTable(0, 4, 2, ' ', 0)
	for _, r := range rows {
		fmt.Fprint(table, i18n.Sprintf("\t%s\t%s\t%s\t%s",
			padding(i18n.Sprintf(r.Item), 14),
			padding(r.Msg, 60),
			padding(i18n.Sprintf(r.Suggest), 20),
			r.Status.tip()))
		fmt.Fprintln(table)
	}
	io.WriteString(w, table.String())
}

// padding adds spaces to ensure consistent column width
func padding(item string, length int) string {
	itemLen := utf8.RuneCountInString(item)
	if itemLen < length {
		item += strings.Repeat(" ", length-itemLen)
	}
	return item
}
