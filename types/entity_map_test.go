package types_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/charbonnierg/cedar/internal/testutil"
	"github.com/charbonnierg/cedar/types"
)

func TestNewEntityMap(t *testing.T) {
	t.Parallel()

	alice := types.NewEntityUID("User", "alice")
	admins := types.NewEntityUID("Group", "admins")
	staff := types.NewEntityUID("Group", "staff")

	t.Run("valid hierarchy", func(t *testing.T) {
		t.Parallel()
		em, err := types.NewEntityMap([]types.Entity{
			{UID: alice, Parents: types.NewEntityUIDSet(admins)},
			{UID: admins, Parents: types.NewEntityUIDSet(staff)},
			{UID: staff},
		})
		testutil.OK(t, err)
		testutil.Equals(t, len(em), 3)
		got, ok := em.Get(alice)
		testutil.Equals(t, ok, true)
		testutil.Equals(t, got.Parents.Contains(admins), true)
		_, ok = em.Get(types.NewEntityUID("User", "bob"))
		testutil.Equals(t, ok, false)
	})

	t.Run("parents may be absent from the map", func(t *testing.T) {
		t.Parallel()
		_, err := types.NewEntityMap([]types.Entity{
			{UID: alice, Parents: types.NewEntityUIDSet(types.NewEntityUID("Group", "external"))},
		})
		testutil.OK(t, err)
	})

	t.Run("duplicate uid rejected", func(t *testing.T) {
		t.Parallel()
		_, err := types.NewEntityMap([]types.Entity{{UID: alice}, {UID: alice}})
		testutil.Error(t, err)
		testutil.FatalIf(t, !strings.Contains(err.Error(), "duplicate"), "error %q", err)
	})

	t.Run("self parent rejected", func(t *testing.T) {
		t.Parallel()
		_, err := types.NewEntityMap([]types.Entity{
			{UID: alice, Parents: types.NewEntityUIDSet(alice)},
		})
		testutil.Error(t, err)
		testutil.FatalIf(t, !strings.Contains(err.Error(), "itself"), "error %q", err)
	})

	t.Run("cycle rejected", func(t *testing.T) {
		t.Parallel()
		_, err := types.NewEntityMap([]types.Entity{
			{UID: alice, Parents: types.NewEntityUIDSet(admins)},
			{UID: admins, Parents: types.NewEntityUIDSet(staff)},
			{UID: staff, Parents: types.NewEntityUIDSet(alice)},
		})
		testutil.Error(t, err)
		testutil.FatalIf(t, !strings.Contains(err.Error(), "cycle"), "error %q", err)
	})

	t.Run("diamond is not a cycle", func(t *testing.T) {
		t.Parallel()
		_, err := types.NewEntityMap([]types.Entity{
			{UID: alice, Parents: types.NewEntityUIDSet(admins, staff)},
			{UID: admins, Parents: types.NewEntityUIDSet(types.NewEntityUID("Group", "all"))},
			{UID: staff, Parents: types.NewEntityUIDSet(types.NewEntityUID("Group", "all"))},
			{UID: types.NewEntityUID("Group", "all")},
		})
		testutil.OK(t, err)
	})
}

func TestEntityMapUIDs(t *testing.T) {
	t.Parallel()
	em, err := types.NewEntityMap([]types.Entity{
		{UID: types.NewEntityUID("User", "bob")},
		{UID: types.NewEntityUID("Group", "eng")},
		{UID: types.NewEntityUID("User", "alice")},
	})
	testutil.OK(t, err)
	testutil.Equals(t, em.UIDs(), []types.EntityUID{
		types.NewEntityUID("Group", "eng"),
		types.NewEntityUID("User", "alice"),
		types.NewEntityUID("User", "bob"),
	})
}

func TestEntityMapJSON(t *testing.T) {
	t.Parallel()

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()
		em, err := types.NewEntityMap([]types.Entity{
			{
				UID:        types.NewEntityUID("User", "alice"),
				Parents:    types.NewEntityUIDSet(types.NewEntityUID("Group", "eng")),
				Attributes: types.NewRecord(types.RecordMap{"age": types.Long(30)}),
			},
			{UID: types.NewEntityUID("Group", "eng")},
		})
		testutil.OK(t, err)

		out, err := json.Marshal(em)
		testutil.OK(t, err)
		var back types.EntityMap
		testutil.OK(t, json.Unmarshal(out, &back))
		testutil.Equals(t, back.UIDs(), em.UIDs())
		alice, _ := back.Get(types.NewEntityUID("User", "alice"))
		v, ok := alice.Attributes.Get("age")
		testutil.Equals(t, ok, true)
		testutil.FatalIf(t, !v.Equal(types.Long(30)), "attribute got %v", v)
	})

	t.Run("construction checks apply", func(t *testing.T) {
		t.Parallel()
		doc := `[
			{"uid": {"type": "User", "id": "a"}, "attrs": {}},
			{"uid": {"type": "User", "id": "a"}, "attrs": {}}
		]`
		var em types.EntityMap
		testutil.Error(t, json.Unmarshal([]byte(doc), &em))
	})
}
