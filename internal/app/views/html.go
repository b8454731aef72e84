// Package views holds the shared markup of the account portal: layout,
// tables, alerts, chips and pagination, built as templ components.
//
//go:generate templ generate
package views

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	twmerge "github.com/Oudwins/tailwind-merge-go"
	"github.com/a-h/templ"

	"github.com/FACorreiaa/greengrove-accounts/internal/app/listing"
	"github.com/FACorreiaa/greengrove-accounts/internal/app/tabs"
)

const htmxSrc = "https://unpkg.com/htmx.org@2.0.4"

// Class merges tailwind class lists, later classes winning conflicts.
func Class(classes ...string) string {
	return twmerge.Merge(classes...)
}

// Severity picks the colour of an alert.
type Severity string

const (
	SeverityError   Severity = "error"
	SeveritySuccess Severity = "success"
	SeverityInfo    Severity = "info"
)

var severityClasses = map[Severity]string{
	SeverityError:   "bg-red-50 text-red-700 border-red-200",
	SeveritySuccess: "bg-green-50 text-green-700 border-green-200",
	SeverityInfo:    "bg-blue-50 text-blue-700 border-blue-200",
}

var chipColors = map[string]string{
	"info":      "bg-blue-100 text-blue-800",
	"warning":   "bg-orange-100 text-orange-800",
	"success":   "bg-green-100 text-green-800",
	"secondary": "bg-purple-100 text-purple-800",
	"primary":   "bg-indigo-100 text-indigo-800",
	"error":     "bg-red-100 text-red-800",
}

// Column is a table header.
type Column struct {
	Label string
	Align string
}

// Cell is one table cell; Node wins over Text when set.
type Cell struct {
	Text  string
	Node  templ.Component
	Align string
}

func alignClass(a string) string {
	if a == "right" {
		return "text-right"
	}
	return ""
}

// Option is an entry of a select control.
type Option struct {
	Value string
	Label string
}

// Options turns plain values into options labelled by themselves.
func Options(values ...string) []Option {
	out := make([]Option, len(values))
	for i, v := range values {
		out[i] = Option{Value: v, Label: v}
	}
	return out
}

// EnumOptions prepends listing.All to values.
func EnumOptions(values []string) []Option {
	return Options(append([]string{listing.All}, values...)...)
}

// PageSizeSelect offers the allowed rows-per-page values.
func PageSizeSelect(current int) templ.Component {
	opts := make([]Option, len(listing.PageSizeOptions))
	for i, n := range listing.PageSizeOptions {
		s := strconv.Itoa(n)
		opts[i] = Option{Value: s, Label: s}
	}
	return Select("per_page", "Rows per page", strconv.Itoa(current), opts)
}

// pageURL links to page index of action, keeping the current filters.
func pageURL(action string, filters url.Values, index, size int) string {
	q := url.Values{}
	for k, v := range filters {
		q[k] = v
	}
	q.Set("page", strconv.Itoa(index))
	q.Set("per_page", strconv.Itoa(size))
	return action + "?" + q.Encode()
}

func rowRange(info listing.PageInfo) string {
	return fmt.Sprintf("%d–%d of %d", info.StartRow(), info.EndRow(), info.Total)
}

func invalidClass(errMsg string) string {
	if errMsg != "" {
		return "border-red-500"
	}
	return ""
}

func navClass(active bool) string {
	if active {
		return Class("hover:underline", "font-semibold underline")
	}
	return "hover:underline"
}

func tabClass(selected bool) string {
	cls := "tab px-4 py-3 text-sm whitespace-nowrap"
	if selected {
		return Class(cls, "border-b-2 border-green-600 font-semibold text-green-700")
	}
	return cls
}

// SelectTabURL is where the tab button at position index posts to.
func SelectTabURL(index int) string { return fmt.Sprintf("/account/tabs/%d", index) }

func PanelURL(id tabs.ID) string { return "/account/tabs/" + string(id) + "/panel" }

func RetryURL(id tabs.ID) string { return "/account/tabs/" + string(id) + "/retry" }

const (
	dateLayout     = "Jan 2, 2006"
	dateTimeLayout = "Jan 2, 2006, 03:04 PM"
)

func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

func FormatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateTimeLayout)
}

func FormatPrice(v float64) string {
	if v < 0 {
		return fmt.Sprintf("-$%.2f", -v)
	}
	return fmt.Sprintf("$%.2f", v)
}
