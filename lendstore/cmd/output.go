package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"

	"github.com/arthur-debert/lendstore/search"
	"github.com/arthur-debert/lendstore/types"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var outputFormats = []string{"table", "json", "yaml"}

// tabular is implemented by every reply that can be shown as a table.
type tabular interface {
	Header() []string
	Rows() [][]string
}

// OutputFormatter handles formatting command results for different output formats
type OutputFormatter struct {
	format string
}

// NewOutputFormatter creates a new output formatter
func NewOutputFormatter(format string) *OutputFormatter {
	return &OutputFormatter{format: format}
}

// Write formats data and writes it to w followed by a newline.
func (of *OutputFormatter) Write(w io.Writer, data any) error {
	if data == nil {
		return nil
	}
	text, err := of.Format(data)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, strings.TrimRight(text, "\n"))
	return err
}

// Format formats the given data according to the specified format
func (of *OutputFormatter) Format(data any) (string, error) {
	switch of.format {
	case "json":
		return of.formatJSON(data)
	case "yaml":
		return of.formatYAML(data)
	default:
		return of.formatTable(data)
	}
}

func (of *OutputFormatter) formatJSON(data any) (string, error) {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func (of *OutputFormatter) formatYAML(data any) (string, error) {
	bytes, err := yaml.Marshal(data)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func (of *OutputFormatter) formatTable(data any) (string, error) {
	switch v := data.(type) {
	case message:
		return string(v), nil
	case tabular:
		var b strings.Builder
		tw := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, strings.Join(v.Header(), "\t"))
		for _, row := range v.Rows() {
			fmt.Fprintln(tw, strings.Join(row, "\t"))
		}
		if err := tw.Flush(); err != nil {
			return "", err
		}
		return b.String(), nil
	default:
		return of.formatYAML(data)
	}
}

// message is a one-line reply.
type message string

func (m message) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{"message": string(m)})
}

func (m message) MarshalYAML() (any, error) {
	return map[string]string{"message": string(m)}, nil
}

type bookRow struct {
	ID        types.BookID `json:"id" yaml:"id"`
	Title     string       `json:"title" yaml:"title"`
	Author    string       `json:"author" yaml:"author"`
	Quantity  uint32       `json:"quantity" yaml:"quantity"`
	Available uint32       `json:"available" yaml:"available"`
}

type bookList []bookRow

func (bookList) Header() []string { return []string{"ID", "TITLE", "AUTHOR", "COPIES", "AVAILABLE"} }

func (l bookList) Rows() [][]string {
	rows := make([][]string, len(l))
	for i, b := range l {
		rows[i] = []string{b.ID.String(), b.Title, b.Author, u32(b.Quantity), u32(b.Available)}
	}
	return rows
}

type searchList []search.Result

func (searchList) Header() []string { return []string{"ID", "TITLE", "AUTHOR", "SCORE"} }

func (l searchList) Rows() [][]string {
	rows := make([][]string, len(l))
	for i, r := range l {
		title, author := r.Book.Title, r.Book.Author
		if h, ok := r.Highlights[search.FieldTitle]; ok {
			title = h
		}
		if h, ok := r.Highlights[search.FieldAuthor]; ok {
			author = h
		}
		rows[i] = []string{r.Book.ID.String(), title, author, strconv.FormatFloat(r.Score, 'f', 2, 64)}
	}
	return rows
}

type userRow struct {
	ID          types.UserID `json:"id" yaml:"id"`
	ChatID      string       `json:"chat_id" yaml:"chat_id"`
	DisplayName string       `json:"display_name" yaml:"display_name"`
	Approver    bool         `json:"approver" yaml:"approver"`
}

type userList []userRow

func (userList) Header() []string { return []string{"ID", "CHAT ID", "NAME", "APPROVER"} }

func (l userList) Rows() [][]string {
	rows := make([][]string, len(l))
	for i, u := range l {
		rows[i] = []string{u.ID.String(), u.ChatID, u.DisplayName, strconv.FormatBool(u.Approver)}
	}
	return rows
}

type checkoutRow struct {
	ID          types.CheckoutID `json:"id" yaml:"id"`
	Book        types.BookID     `json:"book" yaml:"book"`
	Title       string           `json:"title" yaml:"title"`
	Renter      string           `json:"renter" yaml:"renter"`
	Status      types.Status     `json:"status" yaml:"status"`
	RequestedAt time.Time        `json:"requested_at" yaml:"requested_at"`
	DueDate     *time.Time       `json:"due_date,omitempty" yaml:"due_date,omitempty"`
	HandedOutBy string           `json:"handed_out_by,omitempty" yaml:"handed_out_by,omitempty"`
	VerifiedBy  string           `json:"verified_by,omitempty" yaml:"verified_by,omitempty"`
}

type checkoutList []checkoutRow

func (checkoutList) Header() []string {
	return []string{"ID", "BOOK", "RENTER", "STATUS", "DUE"}
}

func (l checkoutList) Rows() [][]string {
	rows := make([][]string, len(l))
	for i, c := range l {
		due := "-"
		if c.DueDate != nil {
			due = c.DueDate.Format(time.DateOnly)
		}
		rows[i] = []string{c.ID.String(), c.Title, c.Renter, c.Status.String(), due}
	}
	return rows
}

type statusView struct {
	DB          string `json:"db" yaml:"db"`
	Books       int    `json:"books" yaml:"books"`
	Users       int    `json:"users" yaml:"users"`
	Checkouts   int    `json:"checkouts" yaml:"checkouts"`
	Outstanding int    `json:"outstanding" yaml:"outstanding"`
	Overdue     int    `json:"overdue" yaml:"overdue"`
}

func (statusView) Header() []string {
	return []string{"DB", "BOOKS", "USERS", "CHECKOUTS", "OUTSTANDING", "OVERDUE"}
}

func (s statusView) Rows() [][]string {
	return [][]string{{s.DB, strconv.Itoa(s.Books), strconv.Itoa(s.Users),
		strconv.Itoa(s.Checkouts), strconv.Itoa(s.Outstanding), strconv.Itoa(s.Overdue)}}
}

func u32(n uint32) string {
	return strconv.FormatUint(uint64(n), 10)
}
