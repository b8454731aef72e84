package models

import "github.com/a-h/templ"

type NavItem struct {
	Name string
	URL  string
}

type Navigation struct {
	Items []NavItem
}

type LayoutTempl struct {
	Title     string
	Selection Selection
	Nav       Navigation
	Secondary Navigation
	ActiveNav string
	Content   templ.Component
}

var MainNav = Navigation{
	Items: []NavItem{
		{Name: "Dashboard", URL: "/account"},
		{Name: "Reports", URL: "/account?tab=activity"},
		{Name: "Rewards Program", URL: "/account?tab=rewards"},
		{Name: "Feedback Submission", URL: "/account?tab=support"},
		{Name: "Resources", URL: "/account"},
	},
}

var AccountNav = Navigation{
	Items: []NavItem{
		{Name: "Profile", URL: "/account?tab=profile"},
		{Name: "Settings", URL: "/account?tab=profile"},
	},
}
