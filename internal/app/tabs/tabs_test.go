package tabs

import (
	"testing"

	"github.com/a-h/templ"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/greengrove-accounts/internal/app/models"
)

func ids(descs []Descriptor) []ID {
	out := make([]ID, len(descs))
	for i, d := range descs {
		out[i] = d.ID
	}
	return out
}

func TestCompose(t *testing.T) {
	tests := []struct {
		name string
		role models.Role
		want []ID
	}{
		{"customer", models.RoleCustomer, []ID{Profile, Activity, Support, Rewards, Purchases}},
		{"admin", models.RoleAdmin, []ID{Profile, Activity, Support}},
		{"unset role behaves as customer", models.Role(""), []ID{Profile, Activity, Support, Rewards, Purchases}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Compose(tc.role, nil)
			assert.Equal(t, tc.want, ids(got))
			assert.Equal(t, ids(got), ids(Compose(tc.role, nil)), "composition is deterministic")
		})
	}
}

func TestCompose_AttachesContentAndLabels(t *testing.T) {
	var called ID
	profile := ContentFunc(func(c *gin.Context, sel models.Selection) templ.Component {
		called = Profile
		return templ.NopComponent
	})

	descs := Compose(models.RoleAdmin, map[ID]Content{Profile: profile})

	require.NotNil(t, descs[0].Content)
	descs[0].Content.Render(nil, models.Selection{})
	assert.Equal(t, Profile, called)
	assert.Equal(t, "Profile & Preferences", descs[0].Label)
	assert.Nil(t, descs[1].Content)
}

func TestParseID(t *testing.T) {
	id, err := ParseID("rewards")
	require.NoError(t, err)
	assert.Equal(t, Rewards, id)

	_, err = ParseID("billing")
	assert.ErrorIs(t, err, models.ErrUnknownTab)
}

func TestIndexOf(t *testing.T) {
	descs := Compose(models.RoleCustomer, nil)
	assert.Equal(t, 3, IndexOf(descs, Rewards))
	assert.Equal(t, -1, IndexOf(Compose(models.RoleAdmin, nil), Rewards))
}

func TestComposer_MemoisesOnRole(t *testing.T) {
	c := NewComposer(nil)

	first := c.For(models.RoleCustomer)
	again := c.For(models.RoleCustomer)
	assert.Same(t, &first[0], &again[0], "same role reuses the computed slice")

	admin := c.For(models.RoleAdmin)
	assert.Len(t, admin, 3)

	back := c.For(models.RoleCustomer)
	assert.NotSame(t, &first[0], &back[0], "a role change recomputes")
	assert.Equal(t, ids(first), ids(back))
}
