package schema_test

import (
	"strings"
	"testing"

	"github.com/charbonnierg/cedar/internal/testutil"
	"github.com/charbonnierg/cedar/types"
)

func mustEntities(t testing.TB, entities ...types.Entity) types.EntityMap {
	t.Helper()
	em, err := types.NewEntityMap(entities)
	testutil.OK(t, err)
	return em
}

func TestValidateEntities(t *testing.T) {
	t.Parallel()
	s := photoSchema()

	t.Run("conforming entities pass", func(t *testing.T) {
		t.Parallel()
		em := mustEntities(t,
			types.Entity{
				UID:     types.NewEntityUID("PhotoApp::User", "alice"),
				Parents: types.NewEntityUIDSet(types.NewEntityUID("PhotoApp::UserGroup", "eng")),
				Attributes: types.NewRecord(types.RecordMap{
					"name": types.String("Alice"),
					"age":  types.Long(34),
				}),
			},
			types.Entity{UID: types.NewEntityUID("PhotoApp::UserGroup", "eng")},
			types.Entity{
				UID: types.NewEntityUID("PhotoApp::Photo", "sunset"),
				Attributes: types.NewRecord(types.RecordMap{
					"private": types.False,
					"tags":    types.NewSet([]types.Value{types.String("beach")}),
					"owner":   types.NewEntityUID("PhotoApp::User", "alice"),
				}),
			},
		)
		res := s.ValidateEntities(em)
		testutil.Equals(t, res.Passed(), true)
		testutil.Equals(t, res.PassedWithoutWarning(), true)
	})

	t.Run("optional attributes may be absent", func(t *testing.T) {
		t.Parallel()
		em := mustEntities(t, types.Entity{
			UID:        types.NewEntityUID("PhotoApp::User", "bob"),
			Attributes: types.NewRecord(types.RecordMap{"name": types.String("Bob")}),
		})
		testutil.Equals(t, s.ValidateEntities(em).Passed(), true)
	})

	t.Run("problems are collected with uids", func(t *testing.T) {
		t.Parallel()
		em := mustEntities(t,
			// Undeclared entity type.
			types.Entity{UID: types.NewEntityUID("Alien", "zork")},
			// Missing required name, wrong type for age, bad parent type.
			types.Entity{
				UID:        types.NewEntityUID("PhotoApp::User", "carol"),
				Parents:    types.NewEntityUIDSet(types.NewEntityUID("PhotoApp::Photo", "sunset")),
				Attributes: types.NewRecord(types.RecordMap{"age": types.String("old")}),
			},
		)
		res := s.ValidateEntities(em)
		testutil.Equals(t, res.Passed(), false)
		testutil.Equals(t, len(res.Errors), 4)
		joined := strings.Join(res.Errors, "\n")
		testutil.FatalIf(t, !strings.Contains(joined, `Alien::"zork"`), "errors lack uid: %s", joined)
		testutil.FatalIf(t, !strings.Contains(joined, "not declared"), "errors: %s", joined)
		testutil.FatalIf(t, !strings.Contains(joined, "missing required attribute \"name\""), "errors: %s", joined)
		testutil.FatalIf(t, !strings.Contains(joined, "expected long"), "errors: %s", joined)
		testutil.FatalIf(t, !strings.Contains(joined, "parent type"), "errors: %s", joined)
	})

	t.Run("undeclared attribute", func(t *testing.T) {
		t.Parallel()
		em := mustEntities(t, types.Entity{
			UID: types.NewEntityUID("PhotoApp::User", "dave"),
			Attributes: types.NewRecord(types.RecordMap{
				"name":   types.String("Dave"),
				"height": types.Long(180),
			}),
		})
		res := s.ValidateEntities(em)
		testutil.Equals(t, res.Passed(), false)
		testutil.FatalIf(t, !strings.Contains(res.Errors[0], "undeclared attribute \"height\""),
			"unexpected error %q", res.Errors[0])
	})

	t.Run("wrong entity reference type", func(t *testing.T) {
		t.Parallel()
		em := mustEntities(t, types.Entity{
			UID: types.NewEntityUID("PhotoApp::Photo", "p"),
			Attributes: types.NewRecord(types.RecordMap{
				"private": types.True,
				"tags":    types.NewSet(nil),
				"owner":   types.NewEntityUID("PhotoApp::UserGroup", "eng"),
			}),
		})
		res := s.ValidateEntities(em)
		testutil.Equals(t, res.Passed(), false)
		testutil.FatalIf(t, !strings.Contains(res.Errors[0], `expected entity of type "PhotoApp::User"`),
			"unexpected error %q", res.Errors[0])
	})

	t.Run("set element type", func(t *testing.T) {
		t.Parallel()
		em := mustEntities(t, types.Entity{
			UID: types.NewEntityUID("PhotoApp::Photo", "p"),
			Attributes: types.NewRecord(types.RecordMap{
				"private": types.True,
				"tags":    types.NewSet([]types.Value{types.Long(1)}),
			}),
		})
		res := s.ValidateEntities(em)
		testutil.Equals(t, res.Passed(), false)
		testutil.FatalIf(t, !strings.Contains(res.Errors[0], "set element"),
			"unexpected error %q", res.Errors[0])
	})
}
