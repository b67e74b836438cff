package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCan(t *testing.T) {

	var actions = []Action{ManageProjects, ManageUsers, ViewReviews, CreateReview, AdvanceReview}

	// admin may do everything
	for _, action := range actions {
		assert.True(t, Can(Admin, action))
	}

	// none may do nothing
	for _, action := range actions {
		assert.False(t, Can(None, action))
	}

	// read only may only view
	assert.True(t, Can(ReadOnly, ViewReviews))
	assert.False(t, Can(ReadOnly, CreateReview))
	assert.False(t, Can(ReadOnly, AdvanceReview))
	assert.False(t, Can(ReadOnly, ManageProjects))
	assert.False(t, Can(ReadOnly, ManageUsers))

	// developer and approver work with reviews but don't administrate
	for _, p := range []Privilege{Developer, Approver} {
		assert.True(t, Can(p, ViewReviews))
		assert.True(t, Can(p, CreateReview))
		assert.True(t, Can(p, AdvanceReview))
		assert.False(t, Can(p, ManageProjects))
		assert.False(t, Can(p, ManageUsers))
	}
}

func TestPrivilegeItems(t *testing.T) {

	var items = PrivilegeItems()
	assert.Len(t, items, 5)

	// ascending order, names match String()
	for i, item := range items {
		assert.Equal(t, Privilege(i), item.Value)
		assert.Equal(t, item.Value.String(), item.Name)
	}
}

func TestParsePrivilege(t *testing.T) {

	p, err := ParsePrivilege(2)
	assert.NoError(t, err)
	assert.Equal(t, Developer, p)

	_, err = ParsePrivilege(-1)
	assert.Error(t, err)

	_, err = ParsePrivilege(5)
	assert.Error(t, err)
}
