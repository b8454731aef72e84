package views

import (
	"bytes"
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/greengrove-accounts/internal/app/listing"
	"github.com/FACorreiaa/greengrove-accounts/internal/app/models"
	"github.com/FACorreiaa/greengrove-accounts/internal/app/tabs"
)

func render(t *testing.T, c templ.Component) *goquery.Document {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)
	return doc
}

func TestTableEscapesText(t *testing.T) {
	doc := render(t, Table("tickets",
		[]Column{{Label: "Subject"}, {Label: "Points", Align: "right"}},
		[][]Cell{{{Text: "<b>hi</b>"}, {Node: Chip("Open", "info"), Align: "right"}}},
	))

	assert.Equal(t, 2, doc.Find("th").Length())
	assert.Equal(t, "<b>hi</b>", doc.Find("td").First().Text())
	assert.Equal(t, 0, doc.Find("td b").Length())
	assert.Equal(t, "Open", doc.Find("td .chip").Text())
	assert.True(t, doc.Find("td").Last().HasClass("text-right"))
}

func TestPaginationKeepsFilters(t *testing.T) {
	info := listing.NewPageInfo(listing.Page{Index: 1, Size: 10}, 35)
	doc := render(t, Pagination("/account/tabs/support/panel", url.Values{"status": {"Open"}}, info))

	assert.Equal(t, "11–20 of 35", doc.Find(".rows").Text())
	links := doc.Find("a")
	require.Equal(t, 2, links.Length())

	prev, _ := links.First().Attr("hx-get")
	u, err := url.Parse(prev)
	require.NoError(t, err)
	assert.Equal(t, "0", u.Query().Get("page"))
	assert.Equal(t, "Open", u.Query().Get("status"))
	assert.Equal(t, "10", u.Query().Get("per_page"))
}

func TestPaginationDisablesEdges(t *testing.T) {
	info := listing.NewPageInfo(listing.Page{Index: 0, Size: 10}, 3)
	doc := render(t, Pagination("/x", nil, info))
	assert.Equal(t, 0, doc.Find("a").Length())
}

func TestTabStrip(t *testing.T) {
	descs := tabs.Compose(models.RoleCustomer, nil)
	doc := render(t, TabStrip(descs, 2))

	buttons := doc.Find("[role=tab]")
	require.Equal(t, 5, buttons.Length())
	selected := doc.Find(`[role=tab][aria-selected="true"]`)
	require.Equal(t, 1, selected.Length())
	id, _ := selected.Attr("data-tab")
	assert.Equal(t, "support", id)

	panel := doc.Find("[data-tab-panel]")
	src, _ := panel.Attr("hx-get")
	assert.Equal(t, "/account/tabs/support/panel", src)
	assert.Equal(t, 1, panel.Find(".spinner").Length())
}

func TestClassMergesConflicts(t *testing.T) {
	assert.ElementsMatch(t, []string{"p-2", "text-right"}, strings.Fields(Class("p-2 text-left", "text-right")))
}

func TestTextFieldMarksErrors(t *testing.T) {
	doc := render(t, TextField("email", "Email", "email", "x@", "Invalid email"))
	input := doc.Find(`input[name="email"]`)
	assert.Equal(t, "true", input.AttrOr("aria-invalid", ""))
	assert.True(t, input.HasClass("border-red-500"))
	assert.False(t, input.HasClass("border-gray-300"))
	assert.Equal(t, "Invalid email", doc.Find(`.field-error[data-field="email"]`).Text())

	doc = render(t, TextField("email", "Email", "email", "a@b.co", ""))
	_, invalid := doc.Find("input").Attr("aria-invalid")
	assert.False(t, invalid)
	assert.Equal(t, 0, doc.Find(".field-error").Length())
}

func TestSelectMarksCurrent(t *testing.T) {
	doc := render(t, Select("status", "Status", "Open", EnumOptions([]string{"Open", "Closed"})))
	assert.Equal(t, 3, doc.Find("option").Length())
	assert.Equal(t, "Open", doc.Find("option[selected]").AttrOr("value", ""))
}

func TestGroupSkipsNil(t *testing.T) {
	doc := render(t, Group(Text("a"), nil, Paragraph("note", "b")))
	assert.Equal(t, "b", doc.Find("p.note").Text())
	assert.Contains(t, doc.Text(), "a")
}

func TestFallback(t *testing.T) {
	doc := render(t, Fallback("Boom", "/retry"))
	assert.Equal(t, "Boom", doc.Find("p").Text())
	u, _ := doc.Find("button").Attr("hx-post")
	assert.Equal(t, "/retry", u)
}

func TestFormatters(t *testing.T) {
	ts := time.Date(2024, 3, 5, 14, 7, 0, 0, time.UTC)
	assert.Equal(t, "Mar 5, 2024", FormatDate(ts))
	assert.Equal(t, "Mar 5, 2024, 02:07 PM", FormatDateTime(ts))
	assert.Equal(t, "", FormatDate(time.Time{}))
	assert.Equal(t, "$12.50", FormatPrice(12.5))
	assert.Equal(t, "-$3.00", FormatPrice(-3))
}

func TestLayoutMarksActiveNav(t *testing.T) {
	doc := render(t, Layout(models.LayoutTempl{
		Title:     "Account",
		Nav:       models.MainNav,
		ActiveNav: "Dashboard",
		Content:   Text("body"),
	}))
	assert.Equal(t, "Account", doc.Find("title").Text())
	assert.True(t, doc.Find(`#main-nav a[href="/account"]`).First().HasClass("underline"))
	assert.Equal(t, "body", doc.Find("main").Text())
}
