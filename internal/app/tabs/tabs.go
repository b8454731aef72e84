// Package tabs composes the ordered set of account tabs for a role.
package tabs

import (
	"fmt"
	"sync"

	"github.com/a-h/templ"
	"github.com/gin-gonic/gin"

	"github.com/FACorreiaa/greengrove-accounts/internal/app/models"
)

// ID is the stable key of a tab. It is what the tab query parameter holds.
type ID string

const (
	Profile   ID = "profile"
	Activity  ID = "activity"
	Support   ID = "support"
	Rewards   ID = "rewards"
	Purchases ID = "purchases"
)

var labels = map[ID]string{
	Profile:   "Profile & Preferences",
	Activity:  "Activity Log",
	Support:   "Support Tickets",
	Rewards:   "Rewards",
	Purchases: "Purchase History",
}

// ParseID returns the ID named by s.
func ParseID(s string) (ID, error) {
	id := ID(s)
	if _, ok := labels[id]; !ok {
		return "", fmt.Errorf("%w: %q", models.ErrUnknownTab, s)
	}
	return id, nil
}

func (id ID) Label() string { return labels[id] }

func (id ID) String() string { return string(id) }

// Content renders the body of one tab for the selected user.
type Content interface {
	Render(c *gin.Context, sel models.Selection) templ.Component
}

// ContentFunc adapts a function to Content.
type ContentFunc func(c *gin.Context, sel models.Selection) templ.Component

func (f ContentFunc) Render(c *gin.Context, sel models.Selection) templ.Component {
	return f(c, sel)
}

// Descriptor is one tab: its id, display label and content.
type Descriptor struct {
	ID      ID
	Label   string
	Content Content
}

// Compose returns the tabs for role in display order. Profile, activity and
// support are always present; non-admins also get rewards and purchases.
func Compose(role models.Role, contents map[ID]Content) []Descriptor {
	ids := []ID{Profile, Activity, Support}
	if !role.IsAdmin() {
		ids = append(ids, Rewards, Purchases)
	}
	out := make([]Descriptor, 0, len(ids))
	for _, id := range ids {
		out = append(out, Descriptor{ID: id, Label: id.Label(), Content: contents[id]})
	}
	return out
}

// IndexOf returns the position of id in descs, or -1.
func IndexOf(descs []Descriptor, id ID) int {
	for i, d := range descs {
		if d.ID == id {
			return i
		}
	}
	return -1
}

// Composer memoises Compose on the role.
type Composer struct {
	mu       sync.Mutex
	contents map[ID]Content
	role     models.Role
	cached   []Descriptor
}

func NewComposer(contents map[ID]Content) *Composer {
	return &Composer{contents: contents}
}

// For returns the tabs for role, recomputing only when role differs from the
// previous call.
func (c *Composer) For(role models.Role) []Descriptor {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cached != nil && c.role == role {
		return c.cached
	}
	c.role = role
	c.cached = Compose(role, c.contents)
	return c.cached
}
