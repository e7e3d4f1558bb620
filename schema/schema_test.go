package schema_test

import (
	"encoding/json"
	"testing"

	"github.com/charbonnierg/cedar/internal/testutil"
	"github.com/charbonnierg/cedar/schema"
	"github.com/charbonnierg/cedar/types"
)

func photoSchema() *schema.Schema {
	return schema.NewSchema().
		WithNamespace("PhotoApp",
			schema.NewEntity("User").
				WithAttribute("name", schema.String()).
				WithOptionalAttribute("age", schema.Long()).
				MemberOf("UserGroup"),
			schema.NewEntity("UserGroup"),
			schema.NewEntity("Photo").
				WithAttribute("private", schema.Bool()).
				WithAttribute("tags", schema.Set(schema.String())).
				WithOptionalAttribute("owner", schema.EntityRef("User")),
			schema.NewAction("viewPhoto").
				AppliesTo(schema.Principals("User"), schema.Resources("Photo"), nil),
			schema.NewAction("listAlbums").
				MemberOf("readOnly").
				AppliesTo(schema.Principals("User"), schema.Resources("Photo"), nil),
		)
}

func TestSchemaLookups(t *testing.T) {
	t.Parallel()
	s := photoSchema()

	testutil.Equals(t, s.EntityTypes(), []types.EntityType{
		"PhotoApp::Photo", "PhotoApp::User", "PhotoApp::UserGroup",
	})
	testutil.Equals(t, s.HasEntityType("PhotoApp::User"), true)
	testutil.Equals(t, s.HasEntityType("User"), false)

	view := types.NewEntityUID("PhotoApp::Action", "viewPhoto")
	testutil.Equals(t, s.HasAction(view), true)
	testutil.Equals(t, s.HasAction(types.NewEntityUID("Action", "viewPhoto")), false)

	principals, resources, ok := s.AppliesTo(view)
	testutil.Equals(t, ok, true)
	testutil.Equals(t, principals, []types.EntityType{"PhotoApp::User"})
	testutil.Equals(t, resources, []types.EntityType{"PhotoApp::Photo"})

	testutil.Equals(t, s.ParentTypes("PhotoApp::User"), []types.EntityType{"PhotoApp::UserGroup"})
}

func TestSchemaJSONRoundTrip(t *testing.T) {
	t.Parallel()
	s := photoSchema()
	out, err := json.Marshal(s)
	testutil.OK(t, err)

	var back schema.Schema
	testutil.OK(t, json.Unmarshal(out, &back))

	testutil.Equals(t, back.EntityTypes(), s.EntityTypes())
	testutil.Equals(t, back.Actions(), s.Actions())
	for _, uid := range s.Actions() {
		wantP, wantR, _ := s.AppliesTo(uid)
		gotP, gotR, ok := back.AppliesTo(uid)
		testutil.Equals(t, ok, true)
		testutil.Equals(t, gotP, wantP)
		testutil.Equals(t, gotR, wantR)
	}
}

func TestSchemaUnmarshalJSON(t *testing.T) {
	t.Parallel()
	doc := `{
		"": {
			"entityTypes": {
				"User": {
					"memberOfTypes": ["Group"],
					"shape": {
						"type": "Record",
						"attributes": {
							"name": {"type": "String"},
							"age": {"type": "Long", "required": false},
							"manager": {"type": "Entity", "name": "User"}
						}
					}
				},
				"Group": {}
			},
			"actions": {
				"view": {
					"appliesTo": {
						"principalTypes": ["User"],
						"resourceTypes": ["Group"]
					}
				}
			}
		}
	}`
	var s schema.Schema
	testutil.OK(t, json.Unmarshal([]byte(doc), &s))
	testutil.Equals(t, s.EntityTypes(), []types.EntityType{"Group", "User"})
	testutil.Equals(t, s.HasAction(types.NewEntityUID("Action", "view")), true)
}

func TestSchemaUnmarshalJSONErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		doc  string
	}{
		{"not json", `{`},
		{"shape not a record", `{"": {"entityTypes": {"User": {"shape": {"type": "String"}}}, "actions": {}}}`},
		{"set missing element", `{"": {"entityTypes": {"User": {"shape": {"type": "Record", "attributes": {"tags": {"type": "Set"}}}}}, "actions": {}}}`},
		{"entity missing name", `{"": {"entityTypes": {"User": {"shape": {"type": "Record", "attributes": {"boss": {"type": "Entity"}}}}}, "actions": {}}}`},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var s schema.Schema
			testutil.Error(t, json.Unmarshal([]byte(tt.doc), &s))
		})
	}
}
